// Package player runs the frame loop: render, display, poll, apply, sleep.
package player

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/coreman2200/funtimes-strips/internal/config"
	"github.com/coreman2200/funtimes-strips/internal/input"
	"github.com/coreman2200/funtimes-strips/internal/led"
	"github.com/coreman2200/funtimes-strips/internal/pattern"
	"github.com/coreman2200/funtimes-strips/model"
	"github.com/rs/zerolog"
)

type State int32

const (
	Starting State = iota
	Running
	Stopping
	Stopped
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

const Shortcuts = `Runtime shortcuts:
  1 / 2 / 3   Switch pattern (1=Chase, 2=Random, 3=Bounce)
  4           Panic: Emergency SOS until quit
  p           Cycle pattern (Chase -> Random -> Bounce)
  s           Cycle speed (Slow -> Medium -> Fast)
  c           Cycle color option for current pattern
  + / -       Brightness up/down
  Ctrl+O      Print nohup command for current settings
  h           Show this shortcuts help again
  q           Quit
  Ctrl+C      Quit`

// Clock is the time source of the loop.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Snapshot describes one displayed frame.
type Snapshot struct {
	Index      uint64
	Frame      model.Frame // as rendered, before brightness
	Brightness uint8
	Status     string
	Tick       time.Duration // render + display time
}

// Observer is told about everything the loop does. Calls happen on the loop
// goroutine and must not block.
type Observer interface {
	Displayed(s Snapshot)
	DisplayFailed(err error)
	Applied(cmd input.Command)
}

// Player owns the runtime config, the frame index and the sink for the
// duration of a run.
type Player struct {
	Sink     led.Sink
	Input    input.Poller // nil: no input
	Clock    Clock
	Log      zerolog.Logger
	Status   io.Writer // status and help text when the sink can't annotate
	Observer Observer  // nil: none
	Launch   func(config.Runtime) string

	cfg    config.Runtime
	length int
	index  uint64
	frames int
	state  atomic.Int32
}

func New(cfg config.Runtime, length int, sink led.Sink) *Player {
	cfg.Normalize()
	return &Player{
		Sink:   sink,
		Clock:  realClock{},
		Log:    zerolog.Nop(),
		Status: os.Stdout,
		cfg:    cfg,
		length: length,
	}
}

func (p *Player) State() State {
	return State(p.state.Load())
}

// Config returns a copy of the current runtime config.
func (p *Player) Config() config.Runtime {
	return p.cfg
}

// Frames is the number of frames displayed so far.
func (p *Player) Frames() int {
	return p.frames
}

func (p *Player) setState(s State) {
	p.state.Store(int32(s))
	p.Log.Debug().Str("state", s.String()).Msg("player")
}

// Run plays until a frame or time limit is reached, Quit is pressed, ctx is
// done or the sink fails. The sink is closed exactly once on every path.
// Only display failures are returned.
func (p *Player) Run(ctx context.Context) error {
	p.setState(Starting)
	defer func() {
		p.setState(Stopping)
		if err := p.Sink.Close(); err != nil {
			p.Log.Warn().Err(err).Msg("closing output")
		}
		p.setState(Stopped)
	}()

	p.announce()
	if d := p.cfg.Run.StartDelay; d > 0 {
		p.Log.Info().Dur("delay", d).Msg("waiting before start")
		if !p.sleep(ctx, d) {
			return nil
		}
	}

	p.setState(Running)
	start := p.Clock.Now()
	for {
		tickStart := p.Clock.Now()
		f := pattern.Render(p.cfg.Pattern, p.index, p.cfg.Colors, p.length)
		if err := p.Sink.Display(f, p.cfg.Brightness); err != nil {
			p.Log.Error().Err(err).Uint64("frame", p.index).Msg("display failed")
			if p.Observer != nil {
				p.Observer.DisplayFailed(err)
			}
			return err
		}
		if p.Observer != nil {
			p.Observer.Displayed(Snapshot{
				Index:      p.index,
				Frame:      f,
				Brightness: p.cfg.Brightness,
				Status:     p.cfg.Status(p.index),
				Tick:       p.Clock.Now().Sub(tickStart),
			})
		}
		p.frames++
		p.index++

		if p.Input != nil {
			if cmd, ok := p.Input.Poll(); ok && p.apply(cmd) {
				p.Log.Info().Msg("quit requested")
				return nil
			}
		}

		switch {
		case p.cfg.Run.Frames > 0 && p.frames >= p.cfg.Run.Frames:
			p.Log.Info().Int("frames", p.frames).Msg("frame limit reached")
			return nil
		case p.cfg.Run.Duration > 0 && p.Clock.Now().Sub(start) >= p.cfg.Run.Duration:
			p.Log.Info().Dur("duration", p.cfg.Run.Duration).Msg("duration reached")
			return nil
		}
		if !p.sleep(ctx, pattern.Interval(p.cfg.Pattern, p.cfg.Speed)) {
			return nil
		}
	}
}

// sleep waits for d, reporting false when ctx ended first.
func (p *Player) sleep(ctx context.Context, d time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case <-ctx.Done():
		p.Log.Info().Msg("interrupted")
		return false
	case <-p.Clock.After(d):
		return true
	}
}

// apply changes the runtime config and reports whether cmd asks to stop.
func (p *Player) apply(cmd input.Command) (quit bool) {
	if p.Observer != nil {
		p.Observer.Applied(cmd)
	}
	prev := p.cfg.Pattern
	changed := true
	switch cmd.Kind {
	case input.Quit:
		return true
	case input.SelectPattern:
		changed = p.cfg.SelectPattern(cmd.Pattern)
	case input.Panic:
		changed = !p.cfg.Emergency()
		if changed {
			p.Log.Warn().Msg("panic: switching to emergency SOS")
		}
		p.cfg.Panic()
	case input.NextPattern:
		changed = p.cfg.CyclePattern()
	case input.NextSpeed:
		p.cfg.CycleSpeed()
	case input.NextColor:
		changed = p.cfg.CycleColor()
	case input.Brighter:
		p.cfg.AdjustBrightness(config.BrightnessStep)
	case input.Dimmer:
		p.cfg.AdjustBrightness(-config.BrightnessStep)
	case input.SetBrightness:
		before := p.cfg.Brightness
		p.cfg.SetBrightness(cmd.Brightness)
		changed = before != p.cfg.Brightness
	case input.Help:
		fmt.Fprintln(p.Status, Shortcuts)
	case input.ShowLaunch:
		changed = false
		if p.Launch != nil {
			fmt.Fprintf(p.Status, "nohup launch command:\n%s\n", p.Launch(p.cfg))
		}
	default:
		changed = false
	}

	if p.cfg.Pattern != prev {
		p.index = 0
	}
	if changed {
		p.announce()
	}
	return false
}

func (p *Player) announce() {
	status := p.cfg.Status(p.index)
	if a, ok := p.Sink.(led.Annotator); ok {
		a.Annotate(status)
		return
	}
	fmt.Fprintln(p.Status, status)
}
