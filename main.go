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
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/GustawXYZ/bitbucket-converter/b1"
	"github.com/GustawXYZ/bitbucket-converter/encode"
	"github.com/GustawXYZ/bitbucket-converter/extract"
	"github.com/GustawXYZ/bitbucket-converter/pick"

	_ "github.com/GustawXYZ/bitbucket-converter/a8"
	_ "github.com/GustawXYZ/bitbucket-converter/b0"
)

var ErrNoInput = errors.New("no input provided (stdin or arguments)")

var conv Converter

type Converter struct {
	encoders []encode.Encoder
}

func (conv *Converter) NewConverter() {
	cfg := encode.Config{Repeat: byte(*repeat)}

	// For each given emit type, look up its encoder.
	for _, name := range emitTypes {
		enc, err := encode.NewEncoder(name, cfg)
		if err != nil {
			log.Fatal(err)
		}

		conv.encoders = append(conv.encoders, enc)
	}

	log.Debugln("Repeat:", *repeat)
	log.Debugln("Emit:", strings.Join(emitTypes, ","))
	log.Debugln("Format:", *format)
}

// readInput takes console text from stdin when it is piped in, otherwise
// from the non-flag arguments joined by spaces.
func readInput() (string, error) {
	stat, err := os.Stdin.Stat()
	if err == nil && stat.Mode()&os.ModeCharDevice == 0 {
		text, err := io.ReadAll(os.Stdin)
		return string(text), errors.Wrap(err, "reading stdin")
	}

	if args := flag.Args(); len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	return "", ErrNoInput
}

// candidates pulls payloads out of console text and classifies them into
// frames. Text with no embedded payloads is tried whole as one bare
// payload, so a raw frame can be passed directly.
func (conv *Converter) candidates(text string) (frames []b1.Frame) {
	payloads := extract.Payloads(text)
	if len(payloads) == 0 && strings.TrimSpace(text) != "" {
		payloads = []string{text}
	}

	for _, f := range b1.Classify(payloads) {
		if fc.Match(f) {
			frames = append(frames, f)
		}
	}

	return
}

// emit converts one frame with each configured encoder and writes the
// results to the output encoder. idx is the frame's 1-based position among
// the candidates and count how often its data section appeared.
func (conv *Converter) emit(idx, count int, f b1.Frame) error {
	f.Log()

	for _, enc := range conv.encoders {
		cmd, err := enc.Encode(f)
		if err != nil {
			return err
		}

		var logCmd encode.LogCommand
		logCmd.Time = time.Now()
		logCmd.Index = idx
		logCmd.Count = count
		logCmd.Type = cmd.CmdType()
		logCmd.Command = cmd

		cmd.Log()
		log.Debugln(logCmd.StringCompact())

		if err := encoder.Encode(logCmd); err != nil {
			log.Fatal("Error encoding command: ", err)
		}
	}

	return nil
}

func (conv *Converter) Run() {
	text, err := readInput()
	if err != nil {
		flag.Usage()
		log.Fatal(err)
	}

	frames := conv.candidates(text)
	if len(frames) == 0 {
		log.Fatal("No B1 frames found.")
	}

	if *all {
		log.Infof("Found %d capture frame(s)", len(frames))

		emitted := 0
		for i, f := range frames {
			if err := conv.emit(i+1, pick.DataCount(frames, f.Data), f); err != nil {
				log.Warnf("Skipping frame %d: %v", i+1, err)
				continue
			}
			emitted++
		}

		if emitted == 0 {
			log.Fatal("No commands generated.")
		}

		return
	}

	best, err := pick.Pick(frames)
	if err != nil {
		log.Fatal(err)
	}

	count := pick.DataCount(frames, best.Data)
	log.Infof("Most common data pattern appeared %d time(s)", count)

	idx := 1
	for i := range frames {
		if frames[i].Raw == best.Raw {
			idx = i + 1
			break
		}
	}

	if err := conv.emit(idx, count, best); err != nil {
		log.Fatal(err)
	}
}

func init() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: encode.TimeFormat,
	})
}

var (
	buildTag   = "dev"     // v#.#.#
	buildDate  = "unknown" // date -u '+%Y-%m-%d'
	commitHash = "unknown" // git rev-parse HEAD
)

func main() {
	RegisterFlags()
	EnvOverride()
	flag.Parse()

	if *version {
		fmt.Println("Build Tag: ", buildTag)
		fmt.Println("Build Date:", buildDate)
		fmt.Println("Commit:    ", commitHash)
		os.Exit(0)
	}

	if *configFilename != "" {
		if err := loadConfig(*configFilename); err != nil {
			log.Fatal(err)
		}
	}

	HandleFlags()

	conv.NewConverter()
	conv.Run()
}
