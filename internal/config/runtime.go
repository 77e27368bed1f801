package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/coreman2200/funtimes-strips/internal/pattern"
)

const (
	DefaultBrightness = 255
	BrightnessStep    = 16
	DefaultInputPin   = 23
	DefaultAnalogPath = "/sys/bus/iio/devices/iio:device0/in_voltage0_raw"
	DefaultAnalogMax  = 4095
)

type InputMode string

const (
	InputOff     InputMode = "off"
	InputDigital InputMode = "digital"
	InputAnalog  InputMode = "analog"
)

func (m InputMode) Valid() bool {
	switch m {
	case InputOff, InputDigital, InputAnalog:
		return true
	}
	return false
}

// InputConfig describes the optional external signal wired to the Pi.
type InputConfig struct {
	Mode       InputMode
	Pin        int
	AnalogPath string
	AnalogMax  int
}

// RunOptions bound a run. Zero values mean unbounded / no delay.
type RunOptions struct {
	Frames     int
	Duration   time.Duration
	StartDelay time.Duration
}

// Runtime is the live state of a run. The playback loop owns the only
// mutable copy once a run starts.
type Runtime struct {
	Pattern       pattern.Pattern
	Speed         pattern.Speed
	Colors        pattern.Colors
	Brightness    uint8
	MaxBrightness uint8
	EmergencyOnly bool
	Input         InputConfig
	Run           RunOptions
	Test          bool

	panicked bool
}

func Defaults() Runtime {
	return Runtime{
		Pattern:       pattern.Chase,
		Speed:         pattern.Medium,
		Colors:        pattern.DefaultColors(),
		Brightness:    DefaultBrightness,
		MaxBrightness: DefaultBrightness,
		Input: InputConfig{
			Mode:       InputOff,
			Pin:        DefaultInputPin,
			AnalogPath: DefaultAnalogPath,
			AnalogMax:  DefaultAnalogMax,
		},
	}
}

// Emergency reports whether pattern selection is locked to SOS.
func (r *Runtime) Emergency() bool {
	return r.EmergencyOnly || r.panicked
}

// Panic switches to SOS for the rest of the run.
func (r *Runtime) Panic() {
	r.panicked = true
	r.Pattern = pattern.SOS
}

// Normalize enforces the invariants a run starts from.
func (r *Runtime) Normalize() {
	if r.Brightness > r.MaxBrightness {
		r.Brightness = r.MaxBrightness
	}
	if r.Input.AnalogMax < 1 {
		r.Input.AnalogMax = 1
	}
	switch {
	case r.Emergency():
		r.Pattern = pattern.SOS
	case r.Pattern == pattern.SOS:
		r.Pattern = pattern.Chase
	}
}

func (r *Runtime) Validate() error {
	switch {
	case !r.Pattern.Valid():
		return &Error{Field: "pattern", Err: fmt.Errorf("unknown pattern %d", r.Pattern)}
	case !r.Speed.Valid():
		return &Error{Field: "speed", Err: fmt.Errorf("unknown speed %d", r.Speed)}
	case !r.Colors.Chase.Valid():
		return &Error{Field: "chase_color", Err: fmt.Errorf("unknown chase color %d", r.Colors.Chase)}
	case !r.Colors.Random.Valid():
		return &Error{Field: "random_palette", Err: fmt.Errorf("unknown random palette %d", r.Colors.Random)}
	case !r.Colors.Bounce.Valid():
		return &Error{Field: "bounce_color", Err: fmt.Errorf("unknown bounce color %d", r.Colors.Bounce)}
	case !r.Input.Mode.Valid():
		return &Error{Field: "input.mode", Err: fmt.Errorf("unknown input mode %q", r.Input.Mode)}
	case r.Input.Pin < 0:
		return &Error{Field: "input.pin", Err: errors.New("must not be negative")}
	case r.Run.Frames < 0:
		return &Error{Field: "run.frames", Err: errors.New("must not be negative")}
	case r.Run.Duration < 0:
		return &Error{Field: "run.duration_seconds", Err: errors.New("must not be negative")}
	case r.Run.StartDelay < 0:
		return &Error{Field: "run.start_delay_seconds", Err: errors.New("must not be negative")}
	}
	return nil
}

func clampBrightness(v, hi int) uint8 {
	if v < 0 {
		return 0
	}
	if v > hi {
		return uint8(hi)
	}
	return uint8(v)
}

func (r *Runtime) SetBrightness(v int) {
	r.Brightness = clampBrightness(v, int(r.MaxBrightness))
}

func (r *Runtime) AdjustBrightness(delta int) {
	r.SetBrightness(int(r.Brightness) + delta)
}

// SelectPattern switches directly to p. Selecting SOS is a panic.
func (r *Runtime) SelectPattern(p pattern.Pattern) bool {
	if !p.Valid() {
		return false
	}
	if p == pattern.SOS {
		r.Panic()
		return true
	}
	if r.Emergency() || r.Pattern == p {
		return false
	}
	r.Pattern = p
	return true
}

func (r *Runtime) CyclePattern() bool {
	if r.Emergency() {
		return false
	}
	next := pattern.Cycle[0]
	for i, p := range pattern.Cycle {
		if p == r.Pattern {
			next = pattern.Cycle[(i+1)%len(pattern.Cycle)]
			break
		}
	}
	r.Pattern = next
	return true
}

func (r *Runtime) CycleSpeed() {
	r.Speed = r.Speed.Next()
}

// CycleColor advances the colour option of the current pattern. SOS colours
// are fixed.
func (r *Runtime) CycleColor() bool {
	switch r.Pattern {
	case pattern.Chase:
		r.Colors.Chase = r.Colors.Chase.Next()
	case pattern.Random:
		r.Colors.Random = r.Colors.Random.Next()
	case pattern.Bounce:
		r.Colors.Bounce = r.Colors.Bounce.Next()
	default:
		return false
	}
	return true
}

// ColorOption returns the id of the current pattern's colour option, 0 for SOS.
func (r *Runtime) ColorOption() int {
	switch r.Pattern {
	case pattern.Chase:
		return int(r.Colors.Chase)
	case pattern.Random:
		return int(r.Colors.Random)
	case pattern.Bounce:
		return int(r.Colors.Bounce)
	}
	return 0
}

// Status renders the one-line summary shown after every change. frame is
// only used to name the current SOS colour.
func (r *Runtime) Status(frame uint64) string {
	pct := 0
	if r.MaxBrightness > 0 {
		pct = int(r.Brightness) * 100 / int(r.MaxBrightness)
	}
	var detail string
	switch r.Pattern {
	case pattern.Chase:
		detail = "Color: " + r.Colors.Chase.String()
	case pattern.Random:
		detail = "Palette: " + r.Colors.Random.String()
	case pattern.Bounce:
		detail = "Color: " + r.Colors.Bounce.String()
	default:
		_, c := pattern.SOSStep(frame)
		detail = "Color: " + c.Name + " | Panic SOS"
	}
	return fmt.Sprintf("Pattern: %s | Speed: %s | Brightness: %d (%d%%) | %s",
		r.Pattern, r.Speed, r.Brightness, pct, detail)
}
