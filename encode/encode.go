package encode

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/GustawXYZ/bitbucket-converter/b1"
	"github.com/GustawXYZ/bitbucket-converter/csv"
)

const (
	TimeFormat = "2006-01-02T15:04:05.000"

	// DefaultRepeat is the transmission repeat count stamped into B0
	// frames when no override is configured.
	DefaultRepeat byte = 0x14
)

var (
	encoderMutex sync.Mutex
	encoders     = make(map[string]NewEncoderFunc)
)

// Config carries the external knobs shared by all command encoders.
// Encoders ignore fields they have no use for.
type Config struct {
	Repeat byte
}

type NewEncoderFunc func(cfg Config) Encoder

// Given a name and an encoder constructor, register an encoder for use.
// Later used by underscore importing each encoder package:
//
//	import _ "github.com/GustawXYZ/bitbucket-converter/b0"
func Register(name string, encoderFn NewEncoderFunc) {
	encoderMutex.Lock()
	defer encoderMutex.Unlock()

	if encoderFn == nil {
		panic("encode: new encoder func is nil")
	}
	if _, dup := encoders[name]; dup {
		panic(fmt.Sprintf("encode: encoder already registered (%s)", name))
	}
	encoders[name] = encoderFn
}

// Given a name and config, look up the encoder and make a new one.
func NewEncoder(name string, cfg Config) (Encoder, error) {
	encoderMutex.Lock()
	defer encoderMutex.Unlock()

	if encoderFn, exists := encoders[name]; exists {
		return encoderFn(cfg), nil
	}
	return nil, fmt.Errorf("invalid command type: %q", name)
}

// Names returns the registered encoder names in sorted order.
func Names() (names []string) {
	encoderMutex.Lock()
	defer encoderMutex.Unlock()

	for name := range encoders {
		names = append(names, name)
	}
	sort.Strings(names)

	return
}

// An Encoder converts a selected capture frame into one wire command.
type Encoder interface {
	Encode(b1.Frame) (Command, error)
}

// A Command is a fully assembled wire command ready for output.
type Command interface {
	csv.Recorder
	CmdType() string
	String() string
	Log()
}

// A LogCommand associates a converted command with the candidate it came
// from: when it was produced, which candidate (1-based) was converted, and
// how often that candidate's data section appeared in the capture set.
type LogCommand struct {
	Time  time.Time `xml:",attr"`
	Index int       `xml:",attr"`
	Count int       `xml:",attr"`
	Type  string    `xml:",attr"`
	Command
}

func (lc LogCommand) String() string {
	return fmt.Sprintf("{Time:%s Index:%d Count:%d %s:%s}",
		lc.Time.Format(TimeFormat), lc.Index, lc.Count, lc.CmdType(), lc.Command,
	)
}

func (lc LogCommand) StringCompact() string {
	return fmt.Sprintf("{Time:%s %s:%s}", lc.Time.Format(TimeFormat), lc.CmdType(), lc.Command)
}

func (lc LogCommand) Record() (r []string) {
	r = append(r, lc.Time.Format(time.RFC3339Nano))
	r = append(r, strconv.Itoa(lc.Index))
	r = append(r, strconv.Itoa(lc.Count))
	r = append(r, lc.Command.Record()...)
	return r
}
