// BitBucketConverter - Generates 'B0' transmit frames from captured 'B1' data.
// Copyright (C) 2025 GustawXYZ
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package b1

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Marker identifies a bucket capture frame, the second byte on the wire.
const Marker = "B1"

// Buckets are 16-bit timer tick counts, two bytes on the wire.
const bucketHexLen = 4

// A Bucket is one pulse-width duration from the frame's timing table.
type Bucket struct {
	Hex   string `xml:",attr"`
	Ticks int    `xml:",attr"`
}

// A Frame is a validated B1 capture: a bucket table followed by a
// bucket-coded data section and a trailer byte. Frames are values and are
// never modified after Parse returns them.
type Frame struct {
	Raw         string   // normalized unspaced payload the frame was built from
	Tokens      []string // token sequence as captured
	BucketCount int
	Buckets     []Bucket
	Data        string
	Trailer     string
}

// Parse validates a payload and builds a Frame from it. Payloads arrive
// either as whitespace-separated tokens straight from a console line, or as
// one unspaced hex string normalized by extraction; the latter is split on
// the wire format's fixed byte boundaries.
func Parse(payload string) (Frame, error) {
	tokens := strings.Fields(strings.ToUpper(payload))

	if len(tokens) == 1 {
		var err error
		tokens, err = splitBytes(tokens[0])
		if err != nil {
			return Frame{}, err
		}
	}

	return build(tokens)
}

// splitBytes recovers the token boundaries of an unspaced payload: three
// leading bytes, bucket_count two-byte buckets, the data section, and a
// one-byte trailer.
func splitBytes(s string) ([]string, error) {
	if len(s)%2 != 0 {
		return nil, errors.Errorf("odd payload length %d", len(s))
	}
	if len(s) < 10 {
		return nil, errors.Errorf("payload too short: %d hex chars", len(s))
	}

	count, err := strconv.ParseUint(s[4:6], 16, 8)
	if err != nil {
		return nil, errors.Wrap(err, "bucket count")
	}

	need := 6 + int(count)*bucketHexLen + 2 + 2
	if len(s) < need {
		return nil, errors.Errorf("%d hex chars, need %d for %d buckets", len(s), need, count)
	}

	tokens := []string{s[0:2], s[2:4], s[4:6]}
	off := 6
	for i := 0; i < int(count); i++ {
		tokens = append(tokens, s[off:off+bucketHexLen])
		off += bucketHexLen
	}
	tokens = append(tokens, s[off:len(s)-2], s[len(s)-2:])

	return tokens, nil
}

func build(tokens []string) (Frame, error) {
	if len(tokens) < 4 {
		return Frame{}, errors.Errorf("too few tokens: %d", len(tokens))
	}

	for _, tok := range tokens {
		if !isHex(tok) {
			return Frame{}, errors.Errorf("non-hex token %q", tok)
		}
	}

	if tokens[1] != Marker {
		return Frame{}, errors.Errorf("marker is %q, not %s", tokens[1], Marker)
	}

	count64, err := strconv.ParseUint(tokens[2], 16, 8)
	if err != nil {
		return Frame{}, errors.Wrap(err, "bucket count")
	}
	count := int(count64)

	if len(tokens) < count+5 {
		return Frame{}, errors.Errorf("%d tokens, need %d for %d buckets", len(tokens), count+5, count)
	}

	buckets := make([]Bucket, count)
	for i := range buckets {
		hex := tokens[3+i]
		ticks, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return Frame{}, errors.Wrapf(err, "bucket %d", i)
		}
		buckets[i] = Bucket{Hex: hex, Ticks: int(ticks)}
	}

	data := tokens[3+count]
	if len(data) < 2 || len(data)%2 != 0 {
		return Frame{}, errors.Errorf("data section length %d", len(data))
	}

	return Frame{
		Raw:         strings.Join(tokens, ""),
		Tokens:      tokens,
		BucketCount: count,
		Buckets:     buckets,
		Data:        data,
		Trailer:     tokens[3+count+1],
	}, nil
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}

// Classify parses each payload and keeps the valid B1 frames, preserving
// order of appearance. Malformed payloads are dropped: capture logs are
// noisy and a bad frame is expected, not an error.
func Classify(payloads []string) (frames []Frame) {
	for _, payload := range payloads {
		f, err := Parse(payload)
		if err != nil {
			log.Debugf("dropping payload %q: %v", Snippet(payload), err)
			continue
		}
		frames = append(frames, f)
	}

	return
}

// Snippet shortens a payload for log and error context.
func Snippet(s string) string {
	const max = 48
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func (f Frame) String() string {
	hexes := make([]string, len(f.Buckets))
	for i, b := range f.Buckets {
		hexes[i] = b.Hex
	}
	return fmt.Sprintf("{BucketCount:%d Buckets:[%s] Data:%s Trailer:%s}",
		f.BucketCount, strings.Join(hexes, " "), f.Data, f.Trailer,
	)
}

// Log writes the frame's structure to the debug log.
func (f Frame) Log() {
	log.Debugln("BucketCount:", f.BucketCount)
	for i, b := range f.Buckets {
		log.Debugf("Bucket[%d]: %s (%d ticks)", i, b.Hex, b.Ticks)
	}
	log.Debugln("Data:", f.Data)
	log.Debugln("Trailer:", f.Trailer)
}

// A FilterChain takes a list of filters and applies them iteratively to
// frames sent through the chain.
type FilterChain []Filter

func (fc *FilterChain) Add(filter Filter) {
	*fc = append(*fc, filter)
}

func (fc FilterChain) Match(f Frame) bool {
	if len(fc) == 0 {
		return true
	}

	for _, filter := range fc {
		if !filter.Filter(f) {
			return false
		}
	}

	return true
}

type Filter interface {
	Filter(Frame) bool
}
