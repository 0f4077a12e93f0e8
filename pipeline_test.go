package main

import (
	"testing"

	"github.com/GustawXYZ/bitbucket-converter/encode"
	"github.com/GustawXYZ/bitbucket-converter/pick"
)

// Three captures of one button press: the first two share a data section,
// the third picked up a flipped character. Bucket tables drift by a few
// ticks between receptions.
const consoleLog = `
12:07:32 MQT: tele/bridge/RESULT = {"Time":"2025-05-07T12:07:32","RfRaw":{"Data":"AA B1 04 012C 00C8 0190 0096 12211221122112211221 55"}}
12:07:33 MQT: tele/bridge/RESULT = {"Time":"2025-05-07T12:07:33","RfRaw":{"Data":"AA B1 04 012D 00C7 0190 0096 12211221122112211221 55"}}
12:07:34 MQT: tele/bridge/RESULT = {"Time":"2025-05-07T12:07:34","RfRaw":{"Data":"AA B1 04 012C 00C8 0190 0096 12211221122112212211 55"}}
`

func TestPipeline(t *testing.T) {
	var conv Converter

	frames := conv.candidates(consoleLog)
	if len(frames) != 3 {
		t.Fatalf("Expected: %d frames Got: %d\n", 3, len(frames))
	}

	best, err := pick.Pick(frames)
	if err != nil {
		t.Fatalf("%+v\n", err)
	}

	if best.Raw != frames[0].Raw {
		t.Fatalf("Expected first frame, got: %s\n", best.Raw)
	}
	if n := pick.DataCount(frames, best.Data); n != 2 {
		t.Fatalf("Expected: %d Got: %d\n", 2, n)
	}

	b0enc, err := encode.NewEncoder("b0", encode.Config{Repeat: encode.DefaultRepeat})
	if err != nil {
		t.Fatalf("%+v\n", err)
	}

	cmd, err := b0enc.Encode(best)
	if err != nil {
		t.Fatalf("%+v\n", err)
	}

	want := "AA B0 14 04 14 01 2C 00 C8 01 90 00 96 12 21 12 21 12 21 12 21 12 21 55"
	if got := cmd.String(); got != want {
		t.Fatalf("Expected: %s Got: %s\n", want, got)
	}

	a8enc, err := encode.NewEncoder("a8", encode.Config{})
	if err != nil {
		t.Fatalf("%+v\n", err)
	}

	cmd, err = a8enc.Encode(best)
	if err != nil {
		t.Fatalf("%+v\n", err)
	}

	want = "AA A8 0C 7F 0096 012C 0190 42 00C8 21 00 55"
	if got := cmd.String(); got != want {
		t.Fatalf("Expected: %s Got: %s\n", want, got)
	}
}

// A bare frame on the command line converts without any console wrapping.
func TestCandidatesBarePayload(t *testing.T) {
	var conv Converter

	frames := conv.candidates("AA B1 04 012C 00C8 0190 0096 12211221122112211221 55")
	if len(frames) != 1 {
		t.Fatalf("Expected: %d frame Got: %d\n", 1, len(frames))
	}
	if frames[0].BucketCount != 4 {
		t.Fatalf("Expected: %d buckets Got: %d\n", 4, frames[0].BucketCount)
	}
}

func TestCandidatesEmpty(t *testing.T) {
	var conv Converter

	if frames := conv.candidates(""); frames != nil {
		t.Fatalf("Expected no frames, got: %v\n", frames)
	}
}
