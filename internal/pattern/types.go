package pattern

import (
	"fmt"
	"strconv"

	"github.com/coreman2200/funtimes-strips/model"
)

// Pattern identifies one of the closed set of animations. The numeric value
// doubles as the id used on the command line, in headless files and as the
// runtime shortcut key.
type Pattern int

const (
	Chase  Pattern = 1
	Random Pattern = 2
	Bounce Pattern = 3
	SOS    Pattern = 4
)

// Cycle is the order the 'p' shortcut walks through. SOS is only reachable
// through panic or emergency-only runs.
var Cycle = []Pattern{Chase, Random, Bounce}

var patternNames = map[Pattern]string{
	Chase:  "Chase",
	Random: "Random",
	Bounce: "Bounce",
	SOS:    "Emergency SOS",
}

func (p Pattern) Valid() bool {
	_, ok := patternNames[p]
	return ok
}

func (p Pattern) String() string {
	if n, ok := patternNames[p]; ok {
		return n
	}
	return "Pattern(" + strconv.Itoa(int(p)) + ")"
}

func (p Pattern) MarshalText() ([]byte, error) {
	return marshalID(int(p), p.Valid(), "pattern")
}

func (p *Pattern) UnmarshalText(b []byte) error {
	return unmarshalID(b, func(n int) bool { return Pattern(n).Valid() }, "pattern", (*int)(p))
}

// Speed is the ordered slow/medium/fast setting.
type Speed int

const (
	Slow   Speed = 1
	Medium Speed = 2
	Fast   Speed = 3
)

var Speeds = []Speed{Slow, Medium, Fast}

func (s Speed) Valid() bool {
	return s >= Slow && s <= Fast
}

func (s Speed) String() string {
	switch s {
	case Slow:
		return "Slow"
	case Medium:
		return "Medium"
	case Fast:
		return "Fast"
	}
	return "Speed(" + strconv.Itoa(int(s)) + ")"
}

func (s Speed) Next() Speed {
	return Speeds[(indexOf(int(s), len(Speeds))+1)%len(Speeds)]
}

func (s Speed) MarshalText() ([]byte, error) {
	return marshalID(int(s), s.Valid(), "speed")
}

func (s *Speed) UnmarshalText(b []byte) error {
	return unmarshalID(b, func(n int) bool { return Speed(n).Valid() }, "speed", (*int)(s))
}

// Option is a named colour choice. Rainbow options have no fixed colour.
type Option struct {
	Name    string
	Color   model.ColorVal
	Rainbow bool
}

// Palette choice for the Random pattern. An empty Colors slice means any RGB.
type PaletteOption struct {
	Name   string
	Colors []model.ColorVal
}

type ChaseColor int
type Palette int
type BounceColor int

var ChaseColors = []Option{
	{Name: "Orange", Color: model.RGB(255, 140, 0)},
	{Name: "Green", Color: model.RGB(0, 255, 0)},
	{Name: "Blue", Color: model.RGB(0, 0, 255)},
	{Name: "Rainbow", Rainbow: true},
}

var Palettes = []PaletteOption{
	{Name: "Any RGB"},
	{Name: "Warm", Colors: []model.ColorVal{model.RGB(255, 0, 0), model.RGB(255, 120, 0), model.RGB(255, 255, 0)}},
	{Name: "Cool", Colors: []model.ColorVal{model.RGB(0, 255, 255), model.RGB(0, 0, 255), model.RGB(180, 0, 255)}},
}

var BounceColors = []Option{
	{Name: "Blue", Color: model.RGB(0, 0, 255)},
	{Name: "Purple", Color: model.RGB(180, 0, 255)},
	{Name: "White", Color: model.RGB(255, 255, 255)},
	{Name: "Rainbow", Rainbow: true},
}

// EmergencyColors rotate once per full SOS pass.
var EmergencyColors = []Option{
	{Name: "Red", Color: model.RGB(255, 0, 0)},
	{Name: "Blue", Color: model.RGB(0, 0, 255)},
	{Name: "White", Color: model.RGB(255, 255, 255)},
}

func (c ChaseColor) Valid() bool      { return int(c) >= 1 && int(c) <= len(ChaseColors) }
func (c ChaseColor) Option() Option   { return ChaseColors[indexOf(int(c), len(ChaseColors))] }
func (c ChaseColor) String() string   { return c.Option().Name }
func (c ChaseColor) Next() ChaseColor { return ChaseColor(indexOf(int(c), len(ChaseColors))+1)%ChaseColor(len(ChaseColors)) + 1 }

func (c ChaseColor) MarshalText() ([]byte, error) {
	return marshalID(int(c), c.Valid(), "chase_color")
}

func (c *ChaseColor) UnmarshalText(b []byte) error {
	return unmarshalID(b, func(n int) bool { return ChaseColor(n).Valid() }, "chase_color", (*int)(c))
}

func (p Palette) Valid() bool           { return int(p) >= 1 && int(p) <= len(Palettes) }
func (p Palette) Option() PaletteOption { return Palettes[indexOf(int(p), len(Palettes))] }
func (p Palette) String() string        { return p.Option().Name }
func (p Palette) Next() Palette         { return Palette(indexOf(int(p), len(Palettes))+1)%Palette(len(Palettes)) + 1 }

func (p Palette) MarshalText() ([]byte, error) {
	return marshalID(int(p), p.Valid(), "random_palette")
}

func (p *Palette) UnmarshalText(b []byte) error {
	return unmarshalID(b, func(n int) bool { return Palette(n).Valid() }, "random_palette", (*int)(p))
}

func (c BounceColor) Valid() bool       { return int(c) >= 1 && int(c) <= len(BounceColors) }
func (c BounceColor) Option() Option    { return BounceColors[indexOf(int(c), len(BounceColors))] }
func (c BounceColor) String() string    { return c.Option().Name }
func (c BounceColor) Next() BounceColor { return BounceColor(indexOf(int(c), len(BounceColors))+1)%BounceColor(len(BounceColors)) + 1 }

func (c BounceColor) MarshalText() ([]byte, error) {
	return marshalID(int(c), c.Valid(), "bounce_color")
}

func (c *BounceColor) UnmarshalText(b []byte) error {
	return unmarshalID(b, func(n int) bool { return BounceColor(n).Valid() }, "bounce_color", (*int)(c))
}

// Colors holds the colour option of every pattern. Only the option of the
// active pattern is used when rendering.
type Colors struct {
	Chase  ChaseColor  `json:"chase_color"`
	Random Palette     `json:"random_palette"`
	Bounce BounceColor `json:"bounce_color"`
}

func DefaultColors() Colors {
	return Colors{Chase: 1, Random: 1, Bounce: 1}
}

// indexOf turns a 1-based id into a 0-based index, folding out-of-range
// values back into the set.
func indexOf(id, n int) int {
	if n == 0 {
		return 0
	}
	i := (id - 1) % n
	if i < 0 {
		i += n
	}
	return i
}

func marshalID(id int, valid bool, field string) ([]byte, error) {
	if !valid {
		return nil, fmt.Errorf("invalid %s %d", field, id)
	}
	return []byte(strconv.Itoa(id)), nil
}

func unmarshalID(b []byte, valid func(int) bool, field string, dst *int) error {
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return fmt.Errorf("invalid %s %q", field, b)
	}
	if !valid(n) {
		return fmt.Errorf("invalid %s %q", field, b)
	}
	*dst = n
	return nil
}
