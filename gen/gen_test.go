package gen

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/GustawXYZ/bitbucket-converter/b1"
)

func TestFrameClassifies(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 512; i++ {
		payload := Frame(RandBuckets(rng), RandBits(1+rng.Intn(64), rng), false)

		frames := b1.Classify([]string{payload})
		if len(frames) != 1 {
			t.Fatalf("Expected valid frame: %s\n", payload)
		}
		if frames[0].BucketCount != 4 {
			t.Fatalf("Expected: %d buckets Got: %d\n", 4, frames[0].BucketCount)
		}
	}
}

func TestFrameSpaced(t *testing.T) {
	unspaced := Frame([]int{300, 200, 400, 150}, "0101", false)
	spaced := Frame([]int{300, 200, 400, 150}, "0101", true)

	if strings.ReplaceAll(spaced, " ", "") != unspaced {
		t.Fatalf("Expected: %s Got: %s\n", unspaced, spaced)
	}
}

func TestCorrupt(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	payload := Frame(RandBuckets(rng), RandBits(32, rng), false)

	for n := 1; n <= 4; n++ {
		corrupted := Corrupt(payload, n, rng)

		if len(corrupted) != len(payload) {
			t.Fatalf("Length changed: %d != %d\n", len(corrupted), len(payload))
		}

		// header and bucket table untouched
		if corrupted[:22] != payload[:22] {
			t.Fatalf("Expected: %s Got: %s\n", payload[:22], corrupted[:22])
		}

		diff := 0
		for i := range payload {
			if payload[i] != corrupted[i] {
				diff++
			}
		}
		if diff != n {
			t.Fatalf("Expected: %d flipped chars Got: %d\n", n, diff)
		}
	}
}

func TestWrap(t *testing.T) {
	payload := Frame([]int{300, 200, 400, 150}, "0101", false)

	line := Wrap(payload)
	if !strings.Contains(line, `"RfRaw"`) || !strings.Contains(line, payload) {
		t.Fatalf("Got: %s\n", line)
	}
}
