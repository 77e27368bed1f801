// Package menu is the interactive setup shown when the program starts on a
// terminal without run flags.
package menu

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/coreman2200/funtimes-strips/internal/config"
	"github.com/coreman2200/funtimes-strips/internal/pattern"
)

// Prompter asks questions on out and reads one answer line each from in.
// Empty, unreadable or invalid answers take the default.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

func (p *Prompter) Println(a ...any) {
	fmt.Fprintln(p.out, a...)
}

func (p *Prompter) line(prompt string) string {
	fmt.Fprint(p.out, prompt)
	s, _ := p.in.ReadString('\n')
	return strings.TrimSpace(s)
}

func (p *Prompter) YesNo(q string, def bool) bool {
	suffix := "y/N"
	if def {
		suffix = "Y/n"
	}
	switch strings.ToLower(p.line(fmt.Sprintf("%s [%s]: ", q, suffix))) {
	case "":
		return def
	case "y", "yes", "1", "true":
		return true
	}
	return false
}

// Choice returns one of keys, or def.
func (p *Prompter) Choice(q, def string, keys ...string) string {
	v := p.line(fmt.Sprintf("%s (%s, default %s): ", q, strings.Join(keys, ", "), def))
	for _, k := range keys {
		if v == k {
			return v
		}
	}
	return def
}

// Int clamps a valid answer into [lo, hi].
func (p *Prompter) Int(q string, def, lo, hi int) int {
	v, err := strconv.Atoi(p.line(fmt.Sprintf("%s (default %d): ", q, def)))
	if err != nil {
		return def
	}
	return min(max(v, lo), hi)
}

func (p *Prompter) Seconds(q string, def time.Duration) time.Duration {
	v, err := strconv.ParseFloat(p.line(fmt.Sprintf("%s (default %g): ", q, def.Seconds())), 64)
	if err != nil {
		return def
	}
	return time.Duration(max(v, 0) * float64(time.Second))
}

func (p *Prompter) String(q, def string) string {
	if v := p.line(q); v != "" {
		return v
	}
	return def
}

// Setup builds a runtime config interactively. It reports whether the config
// came from a headless file and, if so, which one.
func Setup(p *Prompter, dir string) (config.Runtime, string, error) {
	if p.YesNo("Headless config mode (load JSON settings)?", false) {
		path, err := PickHeadless(p, dir)
		if err != nil {
			return config.Runtime{}, "", err
		}
		cfg, err := config.LoadHeadless(path)
		return cfg, path, err
	}
	return Manual(p), "", nil
}

// PickHeadless lists up to four headless files as a-d, with e for a custom
// path. The default file comes first when it exists.
func PickHeadless(p *Prompter, dir string) (string, error) {
	def := filepath.Join(dir, filepath.Base(config.HeadlessDefault))
	files, err := config.ListHeadless(dir, def)
	if err != nil {
		return "", err
	}
	if len(files) > 4 {
		files = files[:4]
	}
	letters := "abcd"
	p.Println("Select a headless JSON config:")
	for i, f := range files {
		p.Println(fmt.Sprintf("%c. %s", letters[i], filepath.Base(f)))
	}
	p.Println("e. Enter custom path")

	choice := strings.ToLower(p.line("Choose (a-e, default a): "))
	if choice == "" {
		choice = "a"
	}
	if choice == "e" {
		return p.String(fmt.Sprintf("Headless JSON path (default %s): ", def), def), nil
	}
	if i := strings.Index(letters, choice); len(choice) == 1 && i >= 0 && i < len(files) {
		return files[i], nil
	}
	return def, nil
}

func ids(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = strconv.Itoa(i + 1)
	}
	return out
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// Manual asks for every setting in turn.
func Manual(p *Prompter) config.Runtime {
	r := config.Defaults()
	p.Println("Select a pattern:")
	for _, pt := range []pattern.Pattern{pattern.Chase, pattern.Random, pattern.Bounce, pattern.SOS} {
		p.Println(fmt.Sprintf("%d. %s", pt, pt))
	}
	r.Pattern = pattern.Pattern(atoi(p.Choice("Enter pattern", "1", ids(4)...)))
	r.Speed = pattern.Speed(atoi(p.Choice("Enter speed (1=Slow, 2=Medium, 3=Fast)", "2", ids(3)...)))
	r.Colors.Chase = pattern.ChaseColor(atoi(p.Choice("Chase color (1=Orange, 2=Green, 3=Blue, 4=Rainbow)", "1", ids(len(pattern.ChaseColors))...)))
	r.Colors.Random = pattern.Palette(atoi(p.Choice("Random mode (1=Any RGB, 2=Warm, 3=Cool)", "1", ids(len(pattern.Palettes))...)))
	r.Colors.Bounce = pattern.BounceColor(atoi(p.Choice("Bounce color (1=Blue, 2=Purple, 3=White, 4=Rainbow)", "1", ids(len(pattern.BounceColors))...)))

	r.MaxBrightness = uint8(p.Int("Maximum brightness (0-255)", config.DefaultBrightness, 0, 255))
	r.SetBrightness(p.Int("Startup brightness (0-255)", int(r.MaxBrightness), 0, 255))

	r.Input.Mode = config.InputMode(p.Choice("Pi input mode", string(config.InputOff),
		string(config.InputOff), string(config.InputDigital), string(config.InputAnalog)))
	r.Input.Pin = p.Int("Digital GPIO BCM pin", config.DefaultInputPin, 0, 40)
	r.Input.AnalogPath = p.String("Analog input sysfs path (blank for default): ", config.DefaultAnalogPath)
	r.Input.AnalogMax = p.Int("Analog max value", config.DefaultAnalogMax, 1, 999999)

	r.EmergencyOnly = p.YesNo("Emergency-only mode (panic SOS only)?", false)
	r.Test = p.YesNo("Run in ASCII --test mode?", false)

	r.Run.Frames = p.Int("Timer: frames (0=continuous)", 0, 0, 10_000_000)
	r.Run.Duration = p.Seconds("Timer: duration seconds (0=disabled)", 0)
	r.Run.StartDelay = p.Seconds("Timer: start delay seconds", 0)

	r.Normalize()
	return r
}
