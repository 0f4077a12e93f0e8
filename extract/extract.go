// Locates raw RF payloads embedded in bridge log output.
package extract

import (
	"regexp"
	"strings"
)

// Matches the quoted Data value of an RfRaw log fragment, e.g.
//
//	{"Time":"2020-05-17T21:23:04","RfRaw":{"Data":"AA B1 04 ..."}}
//
// Key matching is case-insensitive and tolerates whitespace around the
// separators, which varies between firmware versions.
var dataRE = regexp.MustCompile(`(?i)"RfRaw"\s*:\s*\{\s*"Data"\s*:\s*"([^"]*)"`)

// Payloads returns the normalized payload of every RfRaw Data field found in
// text, in order of appearance. Absence of matches is normal and yields an
// empty slice, never an error.
func Payloads(text string) (payloads []string) {
	for _, m := range dataRE.FindAllStringSubmatch(text, -1) {
		payloads = append(payloads, Normalize(m[1]))
	}

	return
}

// Normalize removes all whitespace from a captured payload and upper-cases
// it. Byte boundaries lost here are recovered structurally during
// classification; the bucket table has a fixed on-wire width.
func Normalize(payload string) string {
	return strings.ToUpper(strings.Join(strings.Fields(payload), ""))
}
