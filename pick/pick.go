// Implements candidate selection among repeated noisy captures.
package pick

import (
	"github.com/pkg/errors"

	"github.com/GustawXYZ/bitbucket-converter/b1"
)

// ErrNoCandidates reports selection over an empty candidate set. Callers
// are expected to check for candidates before picking.
var ErrNoCandidates = errors.New("no candidate frames")

// Pick returns the single frame that best represents a set of captures of
// the same transmission.
//
// When any data section repeats, the first frame carrying the most frequent
// data section wins. When every data section is distinct, each frame is
// scored by position-wise character agreement against all others and the
// highest aggregate score wins: under single-character radio noise the true
// signal sits closest to the centroid of the receptions. Ties fall back to
// first-seen order, so selection is deterministic for a given input order.
func Pick(frames []b1.Frame) (b1.Frame, error) {
	if len(frames) == 0 {
		return b1.Frame{}, ErrNoCandidates
	}

	if best, count := mode(frames); count > 1 {
		for _, f := range frames {
			if f.Data == best {
				return f, nil
			}
		}
	}

	return closest(frames), nil
}

// mode returns the first-seen data section with the highest frequency.
func mode(frames []b1.Frame) (best string, count int) {
	counts := make(map[string]int, len(frames))
	var order []string

	for _, f := range frames {
		if counts[f.Data] == 0 {
			order = append(order, f.Data)
		}
		counts[f.Data]++
	}

	for _, data := range order {
		if counts[data] > count {
			best, count = data, counts[data]
		}
	}

	return
}

// closest returns the frame with the highest aggregate positional agreement
// against every other frame.
func closest(frames []b1.Frame) b1.Frame {
	bestIdx, bestScore := 0, -1

	for i := range frames {
		score := 0
		for j := range frames {
			if i == j {
				continue
			}
			score += agreement(frames[i].Raw, frames[j].Raw)
		}
		if score > bestScore {
			bestIdx, bestScore = i, score
		}
	}

	return frames[bestIdx]
}

// agreement counts index-wise equal characters over the shorter of the two
// payloads. This is positional identity, not edit distance: bucket noise
// flips characters in place and never shifts them.
func agreement(a, b string) (n int) {
	if len(b) < len(a) {
		a, b = b, a
	}
	for i := 0; i < len(a); i++ {
		if a[i] == b[i] {
			n++
		}
	}

	return
}

// DataCount reports how many frames carry the given data section.
func DataCount(frames []b1.Frame, data string) (n int) {
	for _, f := range frames {
		if f.Data == data {
			n++
		}
	}

	return
}
