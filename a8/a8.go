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

package a8

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
	encode.Register("a8", NewEncoder)
}

// Marker identifies a sync command, the second byte on the wire.
const Marker = "A8"

// Bucket roles under the standard four-bucket capture layout: the sniffing
// firmware sorts buckets so sync low comes first and sync high last.
const (
	syncLowBucket  = 0
	bitLowBucket   = 1
	bitHighBucket  = 2
	syncHighBucket = 3

	minBuckets = 4
)

// Data bits ride on two-character nibble codes; any other pair is framing
// noise and carries no bit.
const (
	nibbleZero = "12"
	nibbleOne  = "21"
)

// defaultDuty is the 50% fallback used when the bit buckets have no width.
const defaultDuty = 0x32

var (
	// ErrInsufficientBuckets reports a frame without the four buckets the
	// sync layout assigns roles to.
	ErrInsufficientBuckets = errors.New("sync inference needs four buckets")

	// ErrOverflow reports a capture with more data bits than the one-byte
	// count field can carry.
	ErrOverflow = errors.New("bit count exceeds one byte")
)

type Encoder struct{}

func NewEncoder(_ encode.Config) encode.Encoder {
	return Encoder{}
}

func (e Encoder) Encode(f b1.Frame) (encode.Command, error) {
	cmd, err := Encode(f)
	if err != nil {
		return nil, err
	}
	return cmd, nil
}

// An A8 carries the timing profile of a capture: sync and bit bucket widths,
// duty cycles, and the decoded payload, in the layout the bridge accepts as
// a sync command.
type A8 struct {
	Length      byte   `xml:",attr"`
	SyncHigh    string `xml:",attr"`
	SyncLow     string `xml:",attr"`
	BitHighTime string `xml:",attr"`
	BitHighDuty byte   `xml:",attr"`
	BitLowTime  string `xml:",attr"`
	BitLowDuty  byte   `xml:",attr"`
	BitCount    byte   `xml:",attr"`
	HexData     string `xml:",attr"`

	// Decoding diagnostics, not part of the frame.
	SyncPair string `xml:",attr"`
	Nibbles  []string
	Bits     string `xml:",attr"`
}

// Encode derives a sync command from a capture frame. The data section's
// first and last characters are the sync marks; the interior is scanned two
// characters at a time and each nibble code becomes one bit. Bits pack into
// hex digits four at a time, high bit first, and a trailing group of fewer
// than four bits is dropped after it has been counted.
func Encode(f b1.Frame) (A8, error) {
	if len(f.Buckets) < minBuckets {
		return A8{}, errors.Wrapf(ErrInsufficientBuckets, "%d buckets in %s",
			len(f.Buckets), b1.Snippet(f.Raw))
	}
	if len(f.Data) < 2 {
		return A8{}, errors.Errorf("data section too short in %s", b1.Snippet(f.Raw))
	}

	syncPair := f.Data[len(f.Data)-1:] + f.Data[:1]
	interior := f.Data[1 : len(f.Data)-1]

	nibbles := make([]string, 0, len(interior)/2)
	var bits strings.Builder
	for i := 0; i+2 <= len(interior); i += 2 {
		nibble := interior[i : i+2]
		nibbles = append(nibbles, nibble)
		switch nibble {
		case nibbleZero:
			bits.WriteByte('0')
		case nibbleOne:
			bits.WriteByte('1')
		}
	}

	bitStr := bits.String()
	if len(bitStr) > 0xFF {
		return A8{}, errors.Wrapf(ErrOverflow, "%d bits in %s", len(bitStr), b1.Snippet(f.Raw))
	}

	var hexData strings.Builder
	for i := 0; i+4 <= len(bitStr); i += 4 {
		v, _ := strconv.ParseUint(bitStr[i:i+4], 2, 8)
		fmt.Fprintf(&hexData, "%X", v)
	}

	high := f.Buckets[bitHighBucket].Ticks
	low := f.Buckets[bitLowBucket].Ticks

	dutyHigh, dutyLow := byte(defaultDuty), byte(defaultDuty)
	if total := high + low; total > 0 {
		dutyHigh = byte(high * 100 / total)
		dutyLow = byte(low * 100 / total)
	}

	cmd := A8{
		SyncHigh:    f.Buckets[syncHighBucket].Hex,
		SyncLow:     f.Buckets[syncLowBucket].Hex,
		BitHighTime: f.Buckets[bitHighBucket].Hex,
		BitHighDuty: dutyHigh,
		BitLowTime:  f.Buckets[bitLowBucket].Hex,
		BitLowDuty:  dutyLow,
		BitCount:    byte(len(bitStr)),
		HexData:     hexData.String(),

		SyncPair: syncPair,
		Nibbles:  nibbles,
		Bits:     bitStr,
	}
	cmd.Length = byte(len(strings.Join(cmd.payload(), "")) / 2)

	return cmd, nil
}

// payload renders the tokens between the length byte and the trailer. An
// empty data payload contributes no token.
func (c A8) payload() []string {
	p := []string{
		"7F",
		c.SyncHigh,
		c.SyncLow,
		c.BitHighTime,
		fmt.Sprintf("%02X", c.BitHighDuty),
		c.BitLowTime,
		fmt.Sprintf("%02X", c.BitLowDuty),
		fmt.Sprintf("%02X", c.BitCount),
	}
	if c.HexData != "" {
		p = append(p, c.HexData)
	}

	return p
}

func (c A8) CmdType() string {
	return "A8"
}

func (c A8) String() string {
	parts := append([]string{"AA", Marker, fmt.Sprintf("%02X", c.Length)}, c.payload()...)
	parts = append(parts, "55")
	return strings.Join(parts, " ")
}

func (c A8) Record() (r []string) {
	r = append(r, fmt.Sprintf("0x%02X", c.Length))
	r = append(r, c.SyncHigh)
	r = append(r, c.SyncLow)
	r = append(r, c.BitHighTime)
	r = append(r, fmt.Sprintf("0x%02X", c.BitHighDuty))
	r = append(r, c.BitLowTime)
	r = append(r, fmt.Sprintf("0x%02X", c.BitLowDuty))
	r = append(r, strconv.Itoa(int(c.BitCount)))
	r = append(r, c.HexData)

	return
}

// Log writes the decode diagnostics to the debug log, one field per line.
func (c A8) Log() {
	log.Debugln("Sync:", c.SyncPair)
	log.Debugln("DataNibbles:", strings.Join(c.Nibbles, " "))
	log.Debugln("Bits:", c.Bits)
	log.Debugln("HexData:", c.HexData)
	log.Debugln("SyncHigh:", c.SyncHigh)
	log.Debugln("SyncLow:", c.SyncLow)
	log.Debugln("BitHighTime:", c.BitHighTime)
	log.Debugf("BitHighDuty: %02X (%d%%)", c.BitHighDuty, c.BitHighDuty)
	log.Debugln("BitLowTime:", c.BitLowTime)
	log.Debugf("BitLowDuty: %02X (%d%%)", c.BitLowDuty, c.BitLowDuty)
	log.Debugf("BitCount: %02X (%d)", c.BitCount, c.BitCount)
}
