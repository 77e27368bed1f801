package pattern

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/coreman2200/funtimes-strips/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lit(f model.Frame) []int {
	var out []int
	for i, c := range f {
		if !c.IsOff() {
			out = append(out, i)
		}
	}
	return out
}

func allColors() []Colors {
	var out []Colors
	for c := 1; c <= len(ChaseColors); c++ {
		for p := 1; p <= len(Palettes); p++ {
			for b := 1; b <= len(BounceColors); b++ {
				out = append(out, Colors{Chase: ChaseColor(c), Random: Palette(p), Bounce: BounceColor(b)})
			}
		}
	}
	return out
}

func TestRenderLengthForAllPatterns(t *testing.T) {
	frames := []uint64{0, 1, 7, 27, 28, 83, 84, 1000, 1<<40 + 3, ^uint64(0)}
	for _, p := range []Pattern{Chase, Random, Bounce, SOS} {
		for _, c := range allColors() {
			for _, n := range []int{1, 2, 10, 120} {
				for _, fi := range frames {
					f := Render(p, fi, c, n)
					require.Len(t, f, n, "%s frame %d", p, fi)
				}
			}
		}
	}
}

func TestRenderEmptyStrip(t *testing.T) {
	for _, p := range []Pattern{Chase, Random, Bounce, SOS} {
		f := Render(p, 42, DefaultColors(), 0)
		assert.NotNil(t, f)
		assert.Len(t, f, 0)
	}
}

func TestChaseRainbowSinglePixelAndPeriodic(t *testing.T) {
	c := DefaultColors()
	c.Chase = 4

	f0 := Render(Chase, 0, c, 10)
	assert.Equal(t, []int{0}, lit(f0))
	assert.Equal(t, model.Wheel(0), f0[0])

	assert.Equal(t, f0, Render(Chase, 10, c, 10))
	assert.Equal(t, Render(Chase, 3, c, 10), Render(Chase, 13, c, 10))
	assert.Equal(t, []int{3}, lit(Render(Chase, 3, c, 10)))
}

func TestChaseFixedColor(t *testing.T) {
	f := Render(Chase, 5, Colors{Chase: 1, Random: 1, Bounce: 1}, 4)
	assert.Equal(t, []int{1}, lit(f))
	assert.Equal(t, model.RGB(255, 140, 0), f[1])
}

func TestBounceWalksBackAndForth(t *testing.T) {
	var got []int
	for i := uint64(0); i < 10; i++ {
		got = append(got, lit(Render(Bounce, i, DefaultColors(), 4))...)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 2, 1, 0, 1, 2, 3}, got)
	assert.Equal(t, 0, BouncePosition(99, 1))
}

func TestSOSIgnoresColorOption(t *testing.T) {
	for _, c := range allColors() {
		assert.Equal(t, Render(SOS, 0, DefaultColors(), 5), Render(SOS, 0, c, 5))
	}
}

func TestSOSSequence(t *testing.T) {
	on, c := SOSStep(0)
	assert.True(t, on)
	assert.Equal(t, "Red", c.Name)

	on, _ = SOSStep(1)
	assert.False(t, on)

	f := Render(SOS, 0, DefaultColors(), 3)
	assert.Equal(t, model.Frame{model.RGB(255, 0, 0), model.RGB(255, 0, 0), model.RGB(255, 0, 0)}, f)
	assert.Empty(t, lit(Render(SOS, 1, DefaultColors(), 3)))

	_, c = SOSStep(uint64(len(SOSSteps)))
	assert.Equal(t, "Blue", c.Name)
	_, c = SOSStep(uint64(2 * len(SOSSteps)))
	assert.Equal(t, "White", c.Name)

	period := uint64(len(SOSSteps) * len(EmergencyColors))
	for i := uint64(0); i < period; i++ {
		assert.Equal(t, Render(SOS, i, DefaultColors(), 2), Render(SOS, i+period, DefaultColors(), 2))
	}
}

func TestRandomPaletteStaysInPalette(t *testing.T) {
	c := DefaultColors()
	c.Random = 2
	warm := Palettes[1].Colors
	for i := uint64(0); i < 20; i++ {
		for _, px := range Render(Random, i, c, 30) {
			assert.Contains(t, warm, px)
		}
	}
}

func TestInterval(t *testing.T) {
	assert.Equal(t, 80*time.Millisecond, Interval(Chase, Slow))
	assert.Equal(t, 120*time.Millisecond, Interval(Random, Medium))
	assert.Equal(t, 8*time.Millisecond, Interval(Bounce, Fast))
	for _, s := range Speeds {
		assert.Equal(t, EmergencyInterval, Interval(SOS, s))
	}
	for _, p := range Cycle {
		assert.True(t, Interval(p, Slow) > Interval(p, Medium), "%s slow should be slower than medium", p)
		assert.True(t, Interval(p, Medium) > Interval(p, Fast), "%s medium should be slower than fast", p)
	}
}

func TestOptionCyclesWrap(t *testing.T) {
	for start := 1; start <= len(ChaseColors); start++ {
		c := ChaseColor(start)
		for i := 0; i < len(ChaseColors); i++ {
			c = c.Next()
		}
		assert.Equal(t, ChaseColor(start), c)
	}
	for start := 1; start <= len(Palettes); start++ {
		p := Palette(start)
		for i := 0; i < len(Palettes); i++ {
			p = p.Next()
		}
		assert.Equal(t, Palette(start), p)
	}
	for start := 1; start <= len(BounceColors); start++ {
		b := BounceColor(start)
		for i := 0; i < len(BounceColors); i++ {
			b = b.Next()
		}
		assert.Equal(t, BounceColor(start), b)
	}
	s := Fast
	for i := 0; i < len(Speeds); i++ {
		s = s.Next()
	}
	assert.Equal(t, Fast, s)
	assert.Equal(t, Slow, Fast.Next())
}

func TestIDsAsJSONStrings(t *testing.T) {
	b, err := json.Marshal(struct {
		P Pattern `json:"pattern"`
		S Speed   `json:"speed"`
		Colors
	}{Bounce, Fast, Colors{Chase: 4, Random: 3, Bounce: 2}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"pattern":"3","speed":"3","chase_color":"4","random_palette":"3","bounce_color":"2"}`, string(b))

	var p Pattern
	assert.Error(t, json.Unmarshal([]byte(`"9"`), &p))
	assert.Error(t, json.Unmarshal([]byte(`"x"`), &p))
	require.NoError(t, json.Unmarshal([]byte(`"4"`), &p))
	assert.Equal(t, SOS, p)
}
