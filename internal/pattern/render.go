package pattern

import (
	"math/rand"
	"time"

	"github.com/coreman2200/funtimes-strips/model"
)

// SOSSteps is the on/off sequence of one emergency pass: three short, three
// long, three short, then a pause.
var SOSSteps = []bool{
	true, false, true, false, true, false,
	true, true, true, false, true, true, true, false, true, true, true, false,
	true, false, true, false, true, false,
	false, false, false, false,
}

const EmergencyInterval = 120 * time.Millisecond

var intervals = map[Pattern][3]time.Duration{
	Chase:  {80 * time.Millisecond, 30 * time.Millisecond, 10 * time.Millisecond},
	Random: {300 * time.Millisecond, 120 * time.Millisecond, 50 * time.Millisecond},
	Bounce: {60 * time.Millisecond, 20 * time.Millisecond, 8 * time.Millisecond},
}

// Interval returns the sleep between two ticks for a pattern at a speed.
func Interval(p Pattern, s Speed) time.Duration {
	row, ok := intervals[p]
	if !ok {
		return EmergencyInterval
	}
	return row[indexOf(int(s), len(row))]
}

// Render produces the frame for a pattern at a frame index. Everything but
// Random is a pure function of its arguments; indices past a pattern's
// period wrap around.
func Render(p Pattern, frame uint64, colors Colors, length int) model.Frame {
	f := model.NewFrame(length)
	if length <= 0 {
		return f
	}
	switch p {
	case Chase:
		pos := int(frame % uint64(length))
		f[pos] = litColor(colors.Chase.Option(), pos, length)
	case Random:
		renderRandom(f, colors.Random.Option())
	case Bounce:
		pos := BouncePosition(frame, length)
		f[pos] = litColor(colors.Bounce.Option(), pos, length)
	default:
		on, c := SOSStep(frame)
		if on {
			f.Fill(c.Color)
		}
	}
	return f
}

// BouncePosition walks 0..length-1 and back, without repeating the ends.
func BouncePosition(frame uint64, length int) int {
	if length <= 1 {
		return 0
	}
	period := uint64(2 * (length - 1))
	p := int(frame % period)
	if p < length {
		return p
	}
	return int(period) - p
}

// SOSStep reports whether the strip is lit at a frame and with which
// emergency colour.
func SOSStep(frame uint64) (bool, Option) {
	n := uint64(len(SOSSteps))
	step := frame % n
	pass := (frame / n) % uint64(len(EmergencyColors))
	return SOSSteps[step], EmergencyColors[pass]
}

func litColor(o Option, pos, length int) model.ColorVal {
	if !o.Rainbow {
		return o.Color
	}
	return model.Wheel(uint8(pos * 256 / length))
}

func renderRandom(f model.Frame, o PaletteOption) {
	for i := range f {
		if len(o.Colors) == 0 {
			f[i] = model.RGB(uint8(rand.Intn(256)), uint8(rand.Intn(256)), uint8(rand.Intn(256)))
			continue
		}
		f[i] = o.Colors[rand.Intn(len(o.Colors))]
	}
}
