// Package input turns keyboard presses and external Pi signals into
// Commands for the playback loop.
package input

import (
	"fmt"

	"github.com/coreman2200/funtimes-strips/internal/pattern"
)

type Kind int

const (
	None Kind = iota
	SelectPattern
	Panic
	NextPattern
	NextSpeed
	NextColor
	Brighter
	Dimmer
	Help
	Quit
	ShowLaunch
	SetBrightness
)

var kindNames = [...]string{
	None:          "none",
	SelectPattern: "select_pattern",
	Panic:         "panic",
	NextPattern:   "next_pattern",
	NextSpeed:     "next_speed",
	NextColor:     "next_color",
	Brighter:      "brighter",
	Dimmer:        "dimmer",
	Help:          "help",
	Quit:          "quit",
	ShowLaunch:    "show_launch",
	SetBrightness: "set_brightness",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Command is one request to change the running state.
type Command struct {
	Kind       Kind
	Pattern    pattern.Pattern // SelectPattern
	Brightness int             // SetBrightness
}

func (c Command) String() string {
	switch c.Kind {
	case SelectPattern:
		return fmt.Sprintf("%s(%d)", c.Kind, c.Pattern)
	case SetBrightness:
		return fmt.Sprintf("%s(%d)", c.Kind, c.Brightness)
	}
	return c.Kind.String()
}

// CtrlO asks for the detached launch line.
const CtrlO = 0x0f

// KeyCommand maps a single key press. Unknown keys report false.
func KeyCommand(key byte) (Command, bool) {
	switch key {
	case '1', '2', '3':
		return Command{Kind: SelectPattern, Pattern: pattern.Pattern(key - '0')}, true
	case '4':
		return Command{Kind: Panic}, true
	case 'p', 'P':
		return Command{Kind: NextPattern}, true
	case 's', 'S':
		return Command{Kind: NextSpeed}, true
	case 'c', 'C':
		return Command{Kind: NextColor}, true
	case '+', '=':
		return Command{Kind: Brighter}, true
	case '-', '_':
		return Command{Kind: Dimmer}, true
	case 'h', 'H', '?':
		return Command{Kind: Help}, true
	case 'q', 'Q':
		return Command{Kind: Quit}, true
	case CtrlO:
		return Command{Kind: ShowLaunch}, true
	}
	return Command{}, false
}

// Poller is asked for at most one command per tick. It must not block.
type Poller interface {
	Poll() (Command, bool)
}

// PollerFunc adapts a function to Poller.
type PollerFunc func() (Command, bool)

func (f PollerFunc) Poll() (Command, bool) { return f() }

type merged struct {
	sources []Poller
	pending []*Command
}

// Merge polls every source each tick and returns one command per tick.
// Earlier sources win. A command that loses is held and delivered on a
// later tick; a newer command from the same source replaces it.
func Merge(sources ...Poller) Poller {
	m := &merged{}
	for _, s := range sources {
		if s != nil {
			m.sources = append(m.sources, s)
		}
	}
	m.pending = make([]*Command, len(m.sources))
	return m
}

func (m *merged) Poll() (Command, bool) {
	for i, s := range m.sources {
		if c, ok := s.Poll(); ok {
			m.pending[i] = &c
		}
	}
	for i, c := range m.pending {
		if c != nil {
			m.pending[i] = nil
			return *c, true
		}
	}
	return Command{}, false
}
