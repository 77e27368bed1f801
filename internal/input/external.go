package input

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/coreman2200/funtimes-strips/internal/config"
	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// External follows a Pi input and turns it into brightness. A digital pin
// switches between full and off; an analog reading scales linearly. A
// command is only produced when the brightness changes.
type External struct {
	read    func() (int, error)
	ceiling int
	scale   int // analog full-scale reading, 0 for digital
	last    int
	failed  bool
	log     zerolog.Logger
}

// NewExternal sets up the source described by cfg. ceiling is the run's
// maximum brightness. Mode off returns nil.
func NewExternal(cfg config.InputConfig, ceiling uint8, log zerolog.Logger) (*External, error) {
	switch cfg.Mode {
	case config.InputDigital:
		if _, err := host.Init(); err != nil {
			return nil, &Error{Device: "gpio", Err: err}
		}
		p := gpioreg.ByName(strconv.Itoa(cfg.Pin))
		if p == nil {
			return nil, &Error{Device: "gpio", Err: fmt.Errorf("no pin %d", cfg.Pin)}
		}
		return NewDigital(p, ceiling, log)
	case config.InputAnalog:
		return NewAnalog(cfg.AnalogPath, cfg.AnalogMax, ceiling, log), nil
	}
	return nil, nil
}

func NewDigital(p gpio.PinIn, ceiling uint8, log zerolog.Logger) (*External, error) {
	if err := p.In(gpio.PullDown, gpio.NoEdge); err != nil {
		return nil, &Error{Device: p.Name(), Err: err}
	}
	read := func() (int, error) {
		if p.Read() == gpio.High {
			return 1, nil
		}
		return 0, nil
	}
	return &External{read: read, ceiling: int(ceiling), last: -1, log: log.With().Str("pin", p.Name()).Logger()}, nil
}

// NewAnalog reads an integer from path (an IIO sysfs file) on every poll.
func NewAnalog(path string, fullScale int, ceiling uint8, log zerolog.Logger) *External {
	if fullScale < 1 {
		fullScale = 1
	}
	read := func() (int, error) {
		b, err := os.ReadFile(path)
		if err != nil {
			return 0, err
		}
		return strconv.Atoi(strings.TrimSpace(string(b)))
	}
	return &External{read: read, ceiling: int(ceiling), scale: fullScale, last: -1, log: log.With().Str("path", path).Logger()}
}

func (e *External) brightness(v int) int {
	if e.scale == 0 {
		if v > 0 {
			return e.ceiling
		}
		return 0
	}
	v = min(max(v, 0), e.scale)
	return v * e.ceiling / e.scale
}

func (e *External) Poll() (Command, bool) {
	v, err := e.read()
	if err != nil {
		if !e.failed {
			e.log.Warn().Err(err).Msg("external input read failed")
			e.failed = true
		}
		return Command{}, false
	}
	b := e.brightness(v)
	if b == e.last {
		return Command{}, false
	}
	e.last = b
	return Command{Kind: SetBrightness, Brightness: b}, true
}
