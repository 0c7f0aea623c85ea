package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

type EventEmitter interface {
	Emit(event Event) error
}

type JSONEmitter struct {
	enc *json.Encoder
	mu  sync.Mutex
}

func NewJSONEmitter(w io.Writer) *JSONEmitter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONEmitter{enc: enc}
}

func (e *JSONEmitter) Emit(event Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enc.Encode(event)
}

type HumanEmitter struct {
	stdout  io.Writer
	stderr  io.Writer
	quiet   bool
	verbose bool
	warn    *color.Color
	err     *color.Color
}

func NewHumanEmitter(stdout, stderr io.Writer, quiet, verbose, colorize bool) *HumanEmitter {
	warn := color.New(color.FgYellow, color.Bold)
	errColor := color.New(color.FgRed, color.Bold)
	if colorize {
		warn.EnableColor()
		errColor.EnableColor()
	} else {
		warn.DisableColor()
		errColor.DisableColor()
	}
	return &HumanEmitter{
		stdout:  stdout,
		stderr:  stderr,
		quiet:   quiet,
		verbose: verbose,
		warn:    warn,
		err:     errColor,
	}
}

func (e *HumanEmitter) Emit(event Event) error {
	line := event.Message
	if line == "" {
		line = string(event.Event)
	}

	switch event.Level {
	case LevelError:
		_, err := fmt.Fprintln(e.stderr, e.err.Sprint("ERROR:"), line)
		return err
	case LevelWarn:
		if e.quiet {
			return nil
		}
		_, err := fmt.Fprintln(e.stderr, e.warn.Sprint("WARN:"), line)
		return err
	default:
		if e.quiet && !event.IsSummary() {
			return nil
		}
		if !e.verbose && (event.Event == EventFileStarted || event.Event == EventFileSkipped) {
			return nil
		}
		_, err := fmt.Fprintln(e.stdout, line)
		return err
	}
}

type MultiEmitter struct {
	emitters []EventEmitter
}

func NewMultiEmitter(emitters ...EventEmitter) *MultiEmitter {
	return &MultiEmitter{emitters: emitters}
}

func (e *MultiEmitter) Emit(event Event) error {
	for _, emitter := range e.emitters {
		if err := emitter.Emit(event); err != nil {
			return err
		}
	}
	return nil
}

// SupportsColor reports whether w is a terminal that can render ANSI colors.
func SupportsColor(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
