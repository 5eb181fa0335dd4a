package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/op/go-logging"
)

type Level uint8

// The levels that can be passed to the SetLevel function.
const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

// Level names and the go-logging level each one maps to, indexed by Level.
var levels = [...]struct {
	name    string
	backend logging.Level
}{
	Debug:   {"debug", logging.DEBUG},
	Info:    {"info", logging.INFO},
	Notice:  {"notice", logging.NOTICE},
	Warning: {"warning", logging.WARNING},
	Error:   {"error", logging.ERROR},
}

// The logger format
var format = logging.MustStringFormatter(
	`%{color}[%{time:15:04:05.000}] [%{module}] [%{level}]%{color:reset} %{message}`,
)

var (
	mu      sync.Mutex
	level   = Notice
	backend logging.LeveledBackend
)

// The logger interface
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})

	Notice(v ...interface{})
	Noticef(format string, v ...interface{})

	Info(v ...interface{})
	Infof(format string, v ...interface{})

	Warning(v ...interface{})
	Warningf(format string, v ...interface{})

	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// Create a new named logger. Tracers and the renderer use their id as name
// so interleaved output from concurrent workers can be told apart.
func New(name string) Logger {
	return logging.MustGetLogger(name)
}

func (l Level) String() string {
	if int(l) < len(levels) {
		return levels[l].name
	}
	return fmt.Sprintf("level(%d)", l)
}

// Send log output to sink keeping the current verbosity.
func SetSink(sink io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	formatted := logging.NewBackendFormatter(logging.NewLogBackend(sink, "", 0), format)
	backend = logging.AddModuleLevel(formatted)
	backend.SetLevel(levels[level].backend, "")
	logging.SetBackend(backend)
}

// Set logger verbosity. Unknown levels are ignored.
func SetLevel(l Level) {
	if int(l) >= len(levels) {
		return
	}

	mu.Lock()
	defer mu.Unlock()

	level = l
	backend.SetLevel(levels[l].backend, "")
}

// Get the current verbosity.
func GetLevel() Level {
	mu.Lock()
	defer mu.Unlock()
	return level
}

// Parse a level name as accepted by the --log-level flag.
func ParseLevel(name string) (Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warn" {
		name = "warning"
	}
	for l, entry := range levels {
		if entry.name == name {
			return Level(l), nil
		}
	}
	return Notice, fmt.Errorf("log: unknown level %q", name)
}

func init() {
	SetSink(os.Stdout)
}
