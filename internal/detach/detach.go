// Package detach relaunches the program in the background and builds the
// equivalent shell line.
package detach

import (
	"strconv"
	"strings"

	"github.com/coreman2200/funtimes-strips/internal/config"
)

const (
	LogFile = "runtime_live.log"
	PidFile = "runtime_live.pid"
)

// Args returns the flags that reproduce r on the command line.
func Args(r config.Runtime) []string {
	args := []string{
		"--pattern", strconv.Itoa(int(r.Pattern)),
		"--speed", strconv.Itoa(int(r.Speed)),
		"--chase-color", strconv.Itoa(int(r.Colors.Chase)),
		"--random-palette", strconv.Itoa(int(r.Colors.Random)),
		"--bounce-color", strconv.Itoa(int(r.Colors.Bounce)),
		"--brightness", strconv.Itoa(int(r.Brightness)),
		"--max-brightness", strconv.Itoa(int(r.MaxBrightness)),
		"--pi-input-mode", string(r.Input.Mode),
		"--pi-input-pin", strconv.Itoa(r.Input.Pin),
		"--analog-path", r.Input.AnalogPath,
		"--analog-max", strconv.Itoa(r.Input.AnalogMax),
	}
	if r.Run.Frames > 0 {
		args = append(args, "--frames", strconv.Itoa(r.Run.Frames))
	}
	if r.Run.Duration > 0 {
		args = append(args, "--duration-seconds", strconv.FormatFloat(r.Run.Duration.Seconds(), 'g', -1, 64))
	}
	if r.Run.StartDelay > 0 {
		args = append(args, "--start-delay-seconds", strconv.FormatFloat(r.Run.StartDelay.Seconds(), 'g', -1, 64))
	}
	if r.EmergencyOnly {
		args = append(args, "--emergency-only")
	}
	if r.Test {
		args = append(args, "--test")
	}
	return args
}

// NohupLine is a shell command that starts exe with args in the background
// the same way Start does.
func NohupLine(exe string, args []string) string {
	parts := []string{"nohup", quote(exe)}
	for _, a := range args {
		parts = append(parts, quote(a))
	}
	parts = append(parts, ">", LogFile, "2>&1", "&", "echo", "$!", ">", PidFile)
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s != "" && strings.IndexFunc(s, func(r rune) bool {
		return !(r == '/' || r == '-' || r == '.' || r == '_' || r == ':' || r == '=' ||
			r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
	}) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
