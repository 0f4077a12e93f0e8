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

package b0

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/GustawXYZ/bitbucket-converter/b1"
	"github.com/GustawXYZ/bitbucket-converter/encode"
)

func init() {
	encode.Register("b0", NewEncoder)
}

// Marker identifies a repeatable transmit frame, the second byte on the wire.
const Marker = "B0"

// The length byte is assembled as a placeholder first and patched once the
// full frame is known; the bridge reads it as the byte count between the
// length byte and the trailer.
const lengthPlaceholder = "xx"

var (
	// ErrBucketCount reports a frame whose declared bucket count does not
	// match the bucket table actually present.
	ErrBucketCount = errors.New("bucket table does not match declared count")

	// ErrTooLong reports a frame whose payload exceeds the length byte.
	ErrTooLong = errors.New("frame payload exceeds one length byte")
)

type Encoder struct {
	repeat byte
}

func NewEncoder(cfg encode.Config) encode.Encoder {
	return Encoder{repeat: cfg.Repeat}
}

func (e Encoder) Encode(f b1.Frame) (encode.Command, error) {
	cmd, err := Encode(f, e.repeat)
	if err != nil {
		return nil, err
	}
	return cmd, nil
}

// A B0 is a self-contained transmit frame: the source frame's bucket table
// and data section stamped with a repeat count and a recomputed length.
type B0 struct {
	Length      byte   `xml:",attr"`
	BucketCount int    `xml:",attr"`
	Repeat      byte   `xml:",attr"`
	Buckets     []string
	Data        string `xml:",attr"`
	Trailer     string `xml:",attr"`
	Hex         string `xml:",attr"`
}

// Encode derives a transmit frame from a capture frame. The length byte is
// total byte count minus the sync byte, marker, length, and trailer, which
// the bridge does not count as payload.
func Encode(f b1.Frame, repeat byte) (B0, error) {
	if f.BucketCount != len(f.Buckets) {
		return B0{}, errors.Wrapf(ErrBucketCount, "declared %d, have %d in %s",
			f.BucketCount, len(f.Buckets), b1.Snippet(f.Raw))
	}

	var b strings.Builder
	b.WriteString("AA")
	b.WriteString(Marker)
	b.WriteString(lengthPlaceholder)
	fmt.Fprintf(&b, "%02X%02X", f.BucketCount, repeat)

	buckets := make([]string, len(f.Buckets))
	for i, bk := range f.Buckets {
		b.WriteString(bk.Hex)
		buckets[i] = bk.Hex
	}
	b.WriteString(f.Data)
	b.WriteString(f.Trailer)

	hex := b.String()
	length := len(hex)/2 - 4
	if length > 0xFF {
		return B0{}, errors.Wrapf(ErrTooLong, "%d payload bytes in %s", length, b1.Snippet(f.Raw))
	}
	hex = strings.Replace(hex, lengthPlaceholder, fmt.Sprintf("%02X", length), 1)

	return B0{
		Length:      byte(length),
		BucketCount: f.BucketCount,
		Repeat:      repeat,
		Buckets:     buckets,
		Data:        f.Data,
		Trailer:     f.Trailer,
		Hex:         hex,
	}, nil
}

func (c B0) CmdType() string {
	return "B0"
}

// String renders the frame as space-separated byte pairs, the form the
// bridge console accepts back.
func (c B0) String() string {
	var parts []string
	for i := 0; i < len(c.Hex); i += 2 {
		end := i + 2
		if end > len(c.Hex) {
			end = len(c.Hex)
		}
		parts = append(parts, c.Hex[i:end])
	}
	return strings.Join(parts, " ")
}

func (c B0) Record() (r []string) {
	r = append(r, fmt.Sprintf("0x%02X", c.Length))
	r = append(r, strconv.Itoa(c.BucketCount))
	r = append(r, fmt.Sprintf("0x%02X", c.Repeat))
	r = append(r, strings.Join(c.Buckets, " "))
	r = append(r, c.Data)
	r = append(r, c.Trailer)
	r = append(r, c.Hex)

	return
}

// Log writes the computed fields to the debug log.
func (c B0) Log() {
	log.Debugf("Length: %02X (%d)", c.Length, c.Length)
	log.Debugln("BucketCount:", c.BucketCount)
	log.Debugf("Repeat: %02X (%d)", c.Repeat, c.Repeat)
}
