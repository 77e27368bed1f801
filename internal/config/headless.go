package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/coreman2200/funtimes-strips/internal/pattern"
)

const (
	HeadlessDir     = "headless"
	HeadlessDefault = "headless/headless_settings.json"
)

var errMissing = errors.New("required field missing")

type headlessInput struct {
	Mode       InputMode `json:"mode"`
	Pin        int       `json:"pin"`
	AnalogPath string    `json:"analog_path"`
	AnalogMax  int       `json:"analog_max"`
}

type headlessRun struct {
	Frames            int     `json:"frames"`
	DurationSeconds   float64 `json:"duration_seconds"`
	StartDelaySeconds float64 `json:"start_delay_seconds"`
}

// headlessFile is the on-disk layout of a headless settings file.
type headlessFile struct {
	Test          bool            `json:"test"`
	Pattern       pattern.Pattern `json:"pattern"`
	Speed         pattern.Speed   `json:"speed"`
	pattern.Colors
	Brightness    int           `json:"brightness"`
	MaxBrightness int           `json:"max_brightness"`
	EmergencyOnly bool          `json:"emergency_only"`
	Input         headlessInput `json:"input"`
	Run           headlessRun   `json:"run"`
}

func seconds(d time.Duration) float64 {
	return d.Seconds()
}

func fromSeconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// SaveHeadless writes r as a headless settings file, creating parent
// directories as needed.
func SaveHeadless(path string, r Runtime) error {
	f := headlessFile{
		Test:          r.Test,
		Pattern:       r.Pattern,
		Speed:         r.Speed,
		Colors:        r.Colors,
		Brightness:    int(r.Brightness),
		MaxBrightness: int(r.MaxBrightness),
		EmergencyOnly: r.EmergencyOnly,
		Input: headlessInput{
			Mode:       r.Input.Mode,
			Pin:        r.Input.Pin,
			AnalogPath: r.Input.AnalogPath,
			AnalogMax:  r.Input.AnalogMax,
		},
		Run: headlessRun{
			Frames:            r.Run.Frames,
			DurationSeconds:   seconds(r.Run.Duration),
			StartDelaySeconds: seconds(r.Run.StartDelay),
		},
	}
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return &Error{Source: path, Err: err}
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, append(b, '\n'), 0644)
}

// LoadHeadless reads a headless settings file. pattern and speed must be
// present; every other field falls back to Defaults. Any malformed value is
// reported as an *Error naming the field.
func LoadHeadless(path string) (Runtime, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Runtime{}, &Error{Source: path, Err: err}
	}
	return ParseHeadless(path, b)
}

func ParseHeadless(source string, b []byte) (Runtime, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return Runtime{}, &Error{Source: source, Err: err}
	}

	r := Defaults()
	fields := []struct {
		name     string
		dst      any
		required bool
	}{
		{"pattern", &r.Pattern, true},
		{"speed", &r.Speed, true},
		{"chase_color", &r.Colors.Chase, false},
		{"random_palette", &r.Colors.Random, false},
		{"bounce_color", &r.Colors.Bounce, false},
		{"emergency_only", &r.EmergencyOnly, false},
		{"test", &r.Test, false},
	}
	for _, f := range fields {
		if err := decodeField(raw, f.name, f.dst, f.required); err != nil {
			return Runtime{}, &Error{Source: source, Field: f.name, Err: err}
		}
	}

	ceiling := int(r.MaxBrightness)
	if err := decodeByte(raw, "max_brightness", &ceiling); err != nil {
		return Runtime{}, &Error{Source: source, Field: "max_brightness", Err: err}
	}
	r.MaxBrightness = uint8(ceiling)
	bright := ceiling
	if err := decodeByte(raw, "brightness", &bright); err != nil {
		return Runtime{}, &Error{Source: source, Field: "brightness", Err: err}
	}
	r.SetBrightness(bright)

	if msg, ok := raw["input"]; ok {
		in := headlessInput{Mode: r.Input.Mode, Pin: r.Input.Pin, AnalogPath: r.Input.AnalogPath, AnalogMax: r.Input.AnalogMax}
		if err := json.Unmarshal(msg, &in); err != nil {
			return Runtime{}, &Error{Source: source, Field: "input", Err: err}
		}
		r.Input = InputConfig{Mode: in.Mode, Pin: in.Pin, AnalogPath: in.AnalogPath, AnalogMax: in.AnalogMax}
	}
	if msg, ok := raw["run"]; ok {
		var run headlessRun
		if err := json.Unmarshal(msg, &run); err != nil {
			return Runtime{}, &Error{Source: source, Field: "run", Err: err}
		}
		r.Run = RunOptions{
			Frames:     run.Frames,
			Duration:   fromSeconds(run.DurationSeconds),
			StartDelay: fromSeconds(run.StartDelaySeconds),
		}
	}

	if err := r.Validate(); err != nil {
		var ce *Error
		if errors.As(err, &ce) {
			ce.Source = source
		}
		return Runtime{}, err
	}
	return r, nil
}

func decodeField(raw map[string]json.RawMessage, name string, dst any, required bool) error {
	msg, ok := raw[name]
	if !ok || string(msg) == "null" {
		if required {
			return errMissing
		}
		return nil
	}
	return json.Unmarshal(msg, dst)
}

func decodeByte(raw map[string]json.RawMessage, name string, dst *int) error {
	if err := decodeField(raw, name, dst, false); err != nil {
		return err
	}
	if *dst < 0 || *dst > 255 {
		return fmt.Errorf("%d out of range 0-255", *dst)
	}
	return nil
}

// ExportPath resolves where --export-headless writes. An empty name picks
// "<id>_<pattern>.json"; relative names land in dir and get a .json suffix
// when they have none.
func ExportPath(dir, name string, r Runtime) string {
	if name == "" {
		label := strings.ReplaceAll(strings.ToLower(r.Pattern.String()), " ", "_")
		return filepath.Join(dir, fmt.Sprintf("%d_%s.json", int(r.Pattern), label))
	}
	if filepath.Ext(name) == "" {
		name += ".json"
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// ListHeadless returns the headless files in dir, sorted, with the file
// named def first when present.
func ListHeadless(dir, def string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	defName := filepath.Base(def)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if filepath.Base(m) == defName {
			out = append([]string{m}, out...)
			continue
		}
		out = append(out, m)
	}
	return out, nil
}
