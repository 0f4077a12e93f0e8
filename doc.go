/*
BitBucketConverter recovers 'B1' capture frames from Sonoff RF Bridge console
output and converts them into 'B0' transmit frames and 'A8' sync commands for
the Portisch firmware.

Console text is read from stdin when piped, otherwise the non-flag arguments
are joined and treated as one payload:

	cat console.log | bitbucket-converter
	bitbucket-converter 'AA B1 04 012C 00C8 0190 0096 12211221122112211221 55'

Command-line Flags:

	-all=false

Converts every valid capture frame in the input. By default the converter
selects a single frame: the one whose data section repeats most often, or
when no section repeats, the one most similar to the other candidates.

	-config=""

Reads flag defaults from a TOML file. Keys match flag names:

	repeat = 30
	format = "csv"
	unique = true

Values given on the command line or in the environment win over the file.

	-debug=false

Logs decode diagnostics for each converted frame: the frame structure, the
sync pair, the nibble stream, the decoded bits and the duty cycles.

	-emit="all"

Selects which command types to generate, comma-separated. "all" is shorthand
for "b0,a8".

	-filterbuckets=""

Converts only frames whose bucket count appears in the given comma-separated
list. Captures from different devices usually differ in bucket count, so
this isolates one device's traffic.

	-format="plain"

Sets the output format. Defaults to plain.

Plain output prints each command the way the bridge console accepts it, one
per line, transmit frames prefixed with RfRaw:

	RfRaw AA B0 14 04 14 01 2C 00 C8 01 90 00 96 12 21 12 21 12 21 12 21 12 21 55
	AA A8 0C 7F 0096 012C 0190 42 00C8 21 00 55

For csv, json and xml output each command is wrapped in an envelope carrying
the conversion time, the candidate's index, and how often the candidate's
data section appeared in the capture set:

	type LogCommand struct {
		Time  time.Time
		Index int
		Count int
		Type  string
		Command
	}

Commands are encoded one per line for all formats. For json and xml each
line is an element, there is no root node.

	-repeat=20

Sets the transmission repeat count stamped into B0 frames. The bridge
resends the signal this many times.

	-unique=false

Suppresses frames whose data section has already been seen. Useful with
-all when a button was held down during capture.

	-version=false

Displays build information and exits.

Environment variables override flag defaults using the BITBUCKET_ prefix,
for example BITBUCKET_REPEAT=30. Explicit command-line flags always win.
*/
package main
