package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/coreman2200/funtimes-strips/internal/config"
	"github.com/coreman2200/funtimes-strips/internal/detach"
	"github.com/coreman2200/funtimes-strips/internal/led"
	"github.com/coreman2200/funtimes-strips/internal/pattern"
	"github.com/spf13/pflag"
)

type options struct {
	test           bool
	pattern        int
	speed          int
	chaseColor     int
	randomPalette  int
	bounceColor    int
	brightness     int
	maxBrightness  int
	frames         int
	duration       float64
	startDelay     float64
	inputMode      string
	inputPin       int
	analogPath     string
	analogMax      int
	emergencyOnly  bool
	headless       bool
	headlessConfig string
	exportHeadless string
	showShortcuts  bool
	detach         bool

	stripConfig string
	ledCount    int
	driver      string
	spiPort     string
	gpio        int
	simStyle    string
	monitorAddr string
	logLevel    string
}

// exportUnnamed is what a bare --export-headless parses to.
const exportUnnamed = "\x00"

func (o *options) register(fs *pflag.FlagSet) {
	d := config.Defaults()
	s := config.DefaultStrip()

	fs.BoolVar(&o.test, "test", false, "simulate the strip in the terminal instead of driving hardware")
	fs.IntVar(&o.pattern, "pattern", int(d.Pattern), "pattern: 1=Chase 2=Random 3=Bounce 4=SOS (needs --emergency-only)")
	fs.IntVar(&o.speed, "speed", int(d.Speed), "speed: 1=Slow 2=Medium 3=Fast")
	fs.IntVar(&o.chaseColor, "chase-color", int(d.Colors.Chase), "chase color: 1=Orange 2=Green 3=Blue 4=Rainbow")
	fs.IntVar(&o.randomPalette, "random-palette", int(d.Colors.Random), "random palette: 1=Any RGB 2=Warm 3=Cool")
	fs.IntVar(&o.bounceColor, "bounce-color", int(d.Colors.Bounce), "bounce color: 1=Blue 2=Purple 3=White 4=Rainbow")
	fs.IntVar(&o.brightness, "brightness", int(d.Brightness), "startup brightness 0-255")
	fs.IntVar(&o.maxBrightness, "max-brightness", int(d.MaxBrightness), "brightness ceiling 0-255")
	fs.IntVar(&o.frames, "frames", 0, "stop after N frames (0 = run until stopped)")
	fs.Float64Var(&o.duration, "duration-seconds", 0, "stop after S seconds (0 = run until stopped)")
	fs.Float64Var(&o.startDelay, "start-delay-seconds", 0, "wait S seconds before the first frame")
	fs.StringVar(&o.inputMode, "pi-input-mode", string(d.Input.Mode), "external brightness input: off, digital or analog")
	fs.IntVar(&o.inputPin, "pi-input-pin", d.Input.Pin, "BCM pin for digital input")
	fs.StringVar(&o.analogPath, "analog-path", d.Input.AnalogPath, "sysfs file for analog input")
	fs.IntVar(&o.analogMax, "analog-max", d.Input.AnalogMax, "analog reading that maps to full brightness")
	fs.BoolVar(&o.emergencyOnly, "emergency-only", false, "run SOS only and lock pattern changes")
	fs.BoolVar(&o.headless, "headless", false, "load settings from the headless JSON file")
	fs.StringVar(&o.headlessConfig, "headless-config", config.HeadlessDefault, "headless JSON file")
	fs.StringVar(&o.exportHeadless, "export-headless", "", "write the effective settings to headless/NAME.json and exit")
	fs.Lookup("export-headless").NoOptDefVal = exportUnnamed
	fs.BoolVar(&o.showShortcuts, "show-shortcuts", false, "print the runtime keyboard shortcuts and exit")
	fs.BoolVar(&o.detach, "detach", false, "relaunch in the background and exit")

	fs.StringVar(&o.stripConfig, "config", "strip.yaml", "strip hardware file (optional)")
	fs.IntVar(&o.ledCount, "led-count", s.LedCount, "number of pixels on the strip")
	fs.StringVar(&o.driver, "driver", s.Driver, "hardware driver: spi or pwm")
	fs.StringVar(&o.spiPort, "spi-port", s.SPIPort, "SPI port name (empty = first)")
	fs.IntVar(&o.gpio, "gpio", s.GPIO, "data pin for the pwm driver")
	fs.StringVar(&o.simStyle, "sim-style", led.SimASCII, "simulation style with --test: ascii or ansi")
	fs.StringVar(&o.monitorAddr, "monitor-addr", "", "serve /metrics, /ws and /health on this address")
	fs.StringVar(&o.logLevel, "log-level", "info", "log level: debug, info, warn or error")
}

// runFlags are the flags that describe a run. Setting any of them skips
// the interactive setup.
var runFlags = []string{
	"test", "pattern", "speed", "chase-color", "random-palette", "bounce-color",
	"brightness", "max-brightness", "frames", "duration-seconds", "start-delay-seconds",
	"pi-input-mode", "pi-input-pin", "analog-path", "analog-max", "emergency-only",
}

func hasRunFlags(fs *pflag.FlagSet) bool {
	for _, name := range runFlags {
		if fs.Changed(name) {
			return true
		}
	}
	return false
}

func flagError(name string, format string, a ...any) error {
	return &config.Error{Source: "flags", Field: name, Err: fmt.Errorf(format, a...)}
}

// fromFlags attributes a validation error with no file to the flags.
func fromFlags(err error) error {
	var ce *config.Error
	if errors.As(err, &ce) && ce.Source == "" {
		ce.Source = "flags"
	}
	return err
}

func byteFlag(name string, v int) (int, error) {
	if v < 0 || v > 255 {
		return 0, flagError(name, "%d out of range 0-255", v)
	}
	return v, nil
}

// overlay applies the explicitly set flags on top of base.
func (o *options) overlay(fs *pflag.FlagSet, base config.Runtime) (config.Runtime, error) {
	r := base
	set := fs.Changed

	if set("test") && o.test {
		r.Test = true
	}
	if set("pattern") {
		r.Pattern = pattern.Pattern(o.pattern)
	}
	if set("speed") {
		r.Speed = pattern.Speed(o.speed)
	}
	if set("chase-color") {
		r.Colors.Chase = pattern.ChaseColor(o.chaseColor)
	}
	if set("random-palette") {
		r.Colors.Random = pattern.Palette(o.randomPalette)
	}
	if set("bounce-color") {
		r.Colors.Bounce = pattern.BounceColor(o.bounceColor)
	}
	if set("max-brightness") {
		v, err := byteFlag("max-brightness", o.maxBrightness)
		if err != nil {
			return r, err
		}
		r.MaxBrightness = uint8(v)
	}
	if set("brightness") {
		v, err := byteFlag("brightness", o.brightness)
		if err != nil {
			return r, err
		}
		r.Brightness = uint8(v)
	}
	if set("pi-input-mode") {
		r.Input.Mode = config.InputMode(o.inputMode)
	}
	if set("pi-input-pin") {
		r.Input.Pin = o.inputPin
	}
	if set("analog-path") {
		r.Input.AnalogPath = o.analogPath
	}
	if set("analog-max") {
		if o.analogMax < 1 {
			return r, flagError("analog-max", "must be at least 1")
		}
		r.Input.AnalogMax = o.analogMax
	}
	if set("frames") {
		r.Run.Frames = o.frames
	}
	if set("duration-seconds") {
		r.Run.Duration = time.Duration(o.duration * float64(time.Second))
	}
	if set("start-delay-seconds") {
		r.Run.StartDelay = time.Duration(o.startDelay * float64(time.Second))
	}
	if o.emergencyOnly {
		r.EmergencyOnly = true
	}

	if err := r.Validate(); err != nil {
		return r, fromFlags(err)
	}
	r.Normalize()
	return r, nil
}

// runtimeConfig builds the effective runtime config from defaults, the
// headless file when --headless is given, and explicit flags, in that order.
func (o *options) runtimeConfig(fs *pflag.FlagSet) (config.Runtime, error) {
	base := config.Defaults()
	if o.headless {
		var err error
		if base, err = config.LoadHeadless(o.headlessConfig); err != nil {
			return base, err
		}
	}
	return o.overlay(fs, base)
}

// strip loads the strip file and applies the hardware flags over it. A
// missing file is only an error when --config was given explicitly.
func (o *options) strip(fs *pflag.FlagSet) (config.Strip, error) {
	s, err := config.LoadStrip(o.stripConfig)
	if err != nil {
		if fs.Changed("config") || !errors.Is(err, os.ErrNotExist) {
			return s, err
		}
		s = config.DefaultStrip()
	}
	if fs.Changed("led-count") {
		s.LedCount = o.ledCount
	}
	if fs.Changed("driver") {
		s.Driver = o.driver
	}
	if fs.Changed("spi-port") {
		s.SPIPort = o.spiPort
	}
	if fs.Changed("gpio") {
		s.GPIO = o.gpio
	}
	if err := s.Validate(); err != nil {
		return s, fromFlags(err)
	}
	switch o.simStyle {
	case led.SimASCII, led.SimANSI:
	default:
		return s, flagError("sim-style", "unknown style %q", o.simStyle)
	}
	return s, nil
}

// passFlags are carried over to a detached child as given. Everything else
// the child needs comes from the effective runtime config.
var passFlags = []string{"config", "led-count", "driver", "spi-port", "gpio", "sim-style", "monitor-addr", "log-level"}

// childArgs is the command line of a detached run of cfg.
func childArgs(fs *pflag.FlagSet, cfg config.Runtime) []string {
	args := detach.Args(cfg)
	for _, name := range passFlags {
		if f := fs.Lookup(name); f != nil && f.Changed {
			args = append(args, "--"+name, f.Value.String())
		}
	}
	return args
}
