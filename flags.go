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

package main

import (
	"encoding/json"
	"encoding/xml"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/GustawXYZ/bitbucket-converter/b1"
	"github.com/GustawXYZ/bitbucket-converter/csv"
	"github.com/GustawXYZ/bitbucket-converter/encode"
)

var configFilename = flag.String("config", "", "TOML file of flag defaults, command line and environment win")

var repeat = flag.Uint("repeat", uint(encode.DefaultRepeat), "number of times the bridge repeats the transmission")

var all = flag.Bool("all", false, "convert every capture frame instead of selecting the best one")

var debug = flag.Bool("debug", false, "log decode diagnostics for each converted frame")

var emit = flag.String("emit", "all", "command types to generate: comma-separated list of b0, a8 or all")
var emitTypes []string

var bucketCount BucketCountFilter
var fc b1.FilterChain

var unique = flag.Bool("unique", false, "suppress frames repeating an already seen data section")

var encoder Encoder
var format = flag.String("format", "plain", "converted command output format: plain, csv, json, or xml")

var version = flag.Bool("version", false, "display build date and commit hash")

func RegisterFlags() {
	bucketCount = BucketCountFilter{make(UintMap)}

	flag.Var(bucketCount, "filterbuckets", "convert only frames with a bucket count in a comma-separated list of counts.")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s: [flags] [payload ...]\n", os.Args[0])
		flag.CommandLine.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(os.Stderr, "  -%s=%s: %s\n", f.Name, f.Value, f.Usage)
		})

		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Reads bridge console output from stdin when no payloads are given:")
		fmt.Fprintf(os.Stderr, "  cat console.log | %s\n", os.Args[0])
	}
}

func EnvOverride() {
	flag.VisitAll(func(f *flag.Flag) {
		envName := "BITBUCKET_" + strings.ToUpper(f.Name)
		flagValue := os.Getenv(envName)
		if flagValue == "" {
			return
		}

		if err := flag.Set(f.Name, flagValue); err != nil {
			log.Warnf(
				"Environment variable %q failed to override flag %q with value %q: %v",
				envName, f.Name, flagValue, err,
			)
		} else {
			log.Infof("Environment variable %q overrides flag %q with %q", envName, f.Name, flagValue)
		}
	})
}

func HandleFlags() {
	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	if *repeat > 0xFF {
		log.Fatalf("Invalid repeat count: %d (maximum 255)", *repeat)
	}

	// If the emit type "all" is given alone, generate both command types in
	// console order, transmit frame first.
	*emit = strings.ToLower(*emit)
	if *emit == "all" {
		*emit = "b0,a8"
	}
	for _, name := range strings.Split(*emit, ",") {
		if name = strings.TrimSpace(name); name != "" {
			emitTypes = append(emitTypes, name)
		}
	}
	if len(emitTypes) == 0 {
		log.Fatalf("No command types given, registered types are: %s", strings.Join(encode.Names(), ", "))
	}

	if *unique {
		fc.Add(NewUniqueFilter())
	}
	if len(bucketCount.UintMap) > 0 {
		fc.Add(bucketCount)
	}

	*format = strings.ToLower(*format)
	switch *format {
	case "plain":
		encoder = PlainEncoder{}
	case "csv":
		encoder = csv.NewEncoder(os.Stdout)
	case "json":
		encoder = json.NewEncoder(os.Stdout)
	case "xml":
		encoder = xml.NewEncoder(os.Stdout)
	default:
		log.Fatal("Invalid output format: ", *format)
	}
}

// JSON, XML and CSV all implement this interface so we can simplify
// command output formatting.
type Encoder interface {
	Encode(interface{}) error
}

type UintMap map[uint]bool

func (m UintMap) String() string {
	values := make([]string, 0, len(m))
	for k := range m {
		values = append(values, strconv.FormatUint(uint64(k), 10))
	}
	sort.Strings(values)

	return strings.Join(values, ",")
}

func (m UintMap) Set(value string) error {
	for _, v := range strings.Split(value, ",") {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return err
		}

		m[uint(n)] = true
	}

	return nil
}

type BucketCountFilter struct {
	UintMap
}

func (bf BucketCountFilter) Filter(f b1.Frame) bool {
	return bf.UintMap[uint(f.BucketCount)]
}

// A UniqueFilter passes each data section through once. Repeat
// transmissions of the same capture carry identical data sections even when
// their bucket tables drift by a few ticks.
type UniqueFilter map[string]bool

func NewUniqueFilter() UniqueFilter {
	return make(UniqueFilter)
}

func (uf UniqueFilter) Filter(f b1.Frame) bool {
	if uf[f.Data] {
		return false
	}

	uf[f.Data] = true

	return true
}

// A PlainEncoder prints bare commands, ready to paste back into the bridge
// console. Transmit frames get the RfRaw prefix the console expects.
type PlainEncoder struct{}

func (pe PlainEncoder) Encode(msg interface{}) (err error) {
	if m, ok := msg.(encode.LogCommand); ok {
		if m.Type == "B0" {
			_, err = fmt.Println("RfRaw", m.Command)
		} else {
			_, err = fmt.Println(m.Command)
		}
		return
	}

	_, err = fmt.Println(msg)

	return
}
