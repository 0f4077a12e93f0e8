package pick

import (
	"math/rand"
	"reflect"
	"testing"
	"testing/quick"

	"github.com/google/go-cmp/cmp"

	"github.com/GustawXYZ/bitbucket-converter/b1"
	"github.com/GustawXYZ/bitbucket-converter/gen"
)

func classify(t *testing.T, payloads ...string) []b1.Frame {
	t.Helper()

	frames := b1.Classify(payloads)
	if len(frames) != len(payloads) {
		t.Fatalf("Expected %d valid frames, got %d\n", len(payloads), len(frames))
	}

	return frames
}

func TestPickMode(t *testing.T) {
	x := gen.Frame([]int{300, 200, 400, 150}, "0101", false)
	y := gen.Frame([]int{300, 200, 400, 150}, "1111", false)

	frames := classify(t, x, y, x)

	best, err := Pick(frames)
	if err != nil {
		t.Fatalf("%+v\n", err)
	}

	if !cmp.Equal(frames[0], best) {
		t.Fatal(cmp.Diff(frames[0], best))
	}
}

// With every data section distinct, the close pair outvotes the outlier and
// the tie between its two members falls to the first seen.
func TestPickSimilarity(t *testing.T) {
	frames := classify(t,
		"AA B1 04 012C 00C8 0190 0096 0102 55",
		"AA B1 04 012C 00C8 0190 0096 0103 55",
		"AA B1 04 012C 00C8 0190 0096 9999 55",
	)

	best, err := Pick(frames)
	if err != nil {
		t.Fatalf("%+v\n", err)
	}

	if best.Data != "0102" {
		t.Fatalf("Expected: %s Got: %s\n", "0102", best.Data)
	}
}

func TestPickSingle(t *testing.T) {
	frames := classify(t, gen.Frame([]int{300, 200, 400, 150}, "0011", false))

	best, err := Pick(frames)
	if err != nil {
		t.Fatalf("%+v\n", err)
	}

	if best.Raw != frames[0].Raw {
		t.Fatalf("Expected: %s Got: %s\n", frames[0].Raw, best.Raw)
	}
}

func TestPickEmpty(t *testing.T) {
	if _, err := Pick(nil); err != ErrNoCandidates {
		t.Fatalf("Expected: %v Got: %v\n", ErrNoCandidates, err)
	}
}

func TestDataCount(t *testing.T) {
	x := gen.Frame([]int{300, 200, 400, 150}, "0101", false)
	y := gen.Frame([]int{300, 200, 400, 150}, "1111", false)

	frames := classify(t, x, y, x)

	if n := DataCount(frames, frames[0].Data); n != 2 {
		t.Fatalf("Expected: %d Got: %d\n", 2, n)
	}
	if n := DataCount(frames, "zz"); n != 0 {
		t.Fatalf("Expected: %d Got: %d\n", 0, n)
	}
}

// A CandidateSet is one base capture followed by single-bit-flip variants,
// with the base repeated at the end. Variants flip distinct bits, so every
// payload in the set is distinct except the two copies of the base.
type CandidateSet struct {
	Base     string
	Payloads []string
}

func (cs CandidateSet) Generate(rand *rand.Rand, size int) reflect.Value {
	buckets := gen.RandBuckets(rand)
	bits := gen.RandBits(8+rand.Intn(56), rand)
	base := gen.Frame(buckets, bits, false)

	n := 2 + rand.Intn(6)
	payloads := []string{base}
	for i := 0; i < n; i++ {
		flipped := []byte(bits)
		flipped[i] ^= 1
		payloads = append(payloads, gen.Frame(buckets, string(flipped), false))
	}
	payloads = append(payloads, base)

	return reflect.ValueOf(CandidateSet{Base: base, Payloads: payloads})
}

// A duplicated capture wins by frequency no matter how many near misses
// surround it.
func TestPickDuplicated(t *testing.T) {
	err := quick.Check(func(cs CandidateSet) bool {
		frames := b1.Classify(cs.Payloads)
		if len(frames) != len(cs.Payloads) {
			return false
		}

		best, err := Pick(frames)

		return err == nil && best.Raw == cs.Base
	}, nil)

	if err != nil {
		t.Fatal("Error testing duplicate selection:", err)
	}
}

// Without the duplicate, the base is still closest to every variant and
// wins on aggregate agreement.
func TestPickClosest(t *testing.T) {
	err := quick.Check(func(cs CandidateSet) bool {
		payloads := cs.Payloads[:len(cs.Payloads)-1]

		frames := b1.Classify(payloads)
		if len(frames) != len(payloads) {
			return false
		}

		best, err := Pick(frames)

		return err == nil && best.Raw == cs.Base
	}, nil)

	if err != nil {
		t.Fatal("Error testing closest selection:", err)
	}
}
