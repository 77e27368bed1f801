// Package led holds the output side of a run: the hardware strip drivers and
// the terminal simulations, all behind Sink.
package led

import (
	"fmt"
	"io"

	"github.com/coreman2200/funtimes-strips/internal/config"
	"github.com/coreman2200/funtimes-strips/model"
)

// Sink shows frames. A sink is picked once at startup and owned by the
// playback loop.
type Sink interface {
	// Display shows f at the given brightness (0-255).
	Display(f model.Frame, brightness uint8) error
	// Close clears and releases the output. Calling it again is a no-op.
	Close() error
}

// Annotator is implemented by sinks that print the status line themselves.
type Annotator interface {
	Annotate(status string)
}

// DriverError is any failure of the output device. Runs stop on the first one.
type DriverError struct {
	Op  string
	Err error
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("led %s: %v", e.Op, e.Err)
}

func (e *DriverError) Unwrap() error { return e.Err }

const (
	SimASCII = "ascii"
	SimANSI  = "ansi"
)

// Options select between simulation and hardware.
type Options struct {
	Test     bool
	SimStyle string    // SimASCII or SimANSI
	Out      io.Writer // simulation output
	TTY      bool      // Out is a terminal
	Width    int       // terminal columns, 0 when unknown
}

// Open returns the sink for a run.
func Open(strip config.Strip, opts Options) (Sink, error) {
	if opts.Test {
		if opts.SimStyle == SimANSI {
			return NewANSI(strip.LedCount), nil
		}
		return NewASCII(opts.Out, opts.TTY, opts.Width), nil
	}
	switch strip.Driver {
	case config.DriverPWM:
		return OpenPWM(strip)
	default:
		d, err := OpenSPI(strip)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
}
