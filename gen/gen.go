package gen

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

const hexDigits = "0123456789ABCDEF"

// Frame builds a capture payload from a bucket table and a run of data
// bits. Bits become nibble codes between two sync marks, so the result
// decodes back to exactly the given bits. When spaced, tokens are separated
// the way the bridge console prints them.
func Frame(buckets []int, bits string, spaced bool) string {
	tokens := []string{"AA", "B1", fmt.Sprintf("%02X", len(buckets))}
	for _, w := range buckets {
		tokens = append(tokens, fmt.Sprintf("%04X", w))
	}

	var data strings.Builder
	data.WriteString("3")
	for _, bit := range bits {
		if bit == '0' {
			data.WriteString("12")
		} else {
			data.WriteString("21")
		}
	}
	data.WriteString("3")

	tokens = append(tokens, data.String(), "55")

	if spaced {
		return strings.Join(tokens, " ")
	}

	return strings.Join(tokens, "")
}

// RandBits draws a bit string of length n.
func RandBits(n int, rng *rand.Rand) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '0' + byte(rng.Intn(2))
	}

	return string(b)
}

// RandBuckets draws a four-bucket table of random widths.
func RandBuckets(rng *rand.Rand) []int {
	b := make([]int, 4)
	for i := range b {
		b[i] = rng.Intn(0x10000)
	}

	return b
}

// Corrupt flips n distinct characters of an unspaced payload's data section
// to different hex digits, leaving the header, bucket table, and trailer
// intact.
func Corrupt(payload string, n int, rng *rand.Rand) string {
	count, err := strconv.ParseUint(payload[4:6], 16, 8)
	if err != nil {
		panic(err)
	}

	start := 6 + int(count)*4
	end := len(payload) - 2
	if n > end-start {
		panic(fmt.Errorf("cannot corrupt %d of %d data characters", n, end-start))
	}

	out := []byte(payload)
	seen := make(map[int]bool)
	for n > 0 {
		pos := start + rng.Intn(end-start)
		if seen[pos] {
			continue
		}
		seen[pos] = true

		d := hexDigits[rng.Intn(len(hexDigits))]
		for d == out[pos] {
			d = hexDigits[rng.Intn(len(hexDigits))]
		}
		out[pos] = d
		n--
	}

	return string(out)
}

// Wrap embeds a payload in the console line format the extractor scans for.
func Wrap(payload string) string {
	return fmt.Sprintf(`{"Time":"2020-05-07T08:42:07","RfRaw":{"Data":"%s"}}`, payload)
}
