package led

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coreman2200/funtimes-strips/internal/config"
	"github.com/coreman2200/funtimes-strips/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spitest"
	"periph.io/x/devices/v3/nrzled"
)

func testStrip(n int) config.Strip {
	s := config.DefaultStrip()
	s.LedCount = n
	return s
}

func TestSPIDisplayEncodesScaledFrame(t *testing.T) {
	var got, want bytes.Buffer
	sink, err := NewSPI(spitest.NewRecordRaw(&got), testStrip(3))
	require.NoError(t, err)
	assert.Equal(t, "nrzled{recordraw}", sink.String())

	ref, err := nrzled.NewSPI(spitest.NewRecordRaw(&want), &nrzled.Opts{NumPixels: 3, Channels: 3, Freq: 800 * physic.KiloHertz})
	require.NoError(t, err)
	require.NoError(t, ref.Halt())

	f := model.Frame{model.RGB(255, 0, 0), model.RGB(0, 200, 0), model.RGB(10, 20, 30)}
	require.NoError(t, sink.Display(f, 128))
	require.NoError(t, ref.Draw(ref.Bounds(), f.Scaled(128).Image(), image.Point{}))

	assert.NotEmpty(t, got.Bytes())
	assert.Equal(t, want.Bytes(), got.Bytes())
}

func TestSPIZeroBrightnessIsBlack(t *testing.T) {
	var lit, dark bytes.Buffer
	a, err := NewSPI(spitest.NewRecordRaw(&lit), testStrip(2))
	require.NoError(t, err)
	b, err := NewSPI(spitest.NewRecordRaw(&dark), testStrip(2))
	require.NoError(t, err)

	f := model.Frame{model.White, model.White}
	require.NoError(t, a.Display(f, 0))
	require.NoError(t, b.Display(model.NewFrame(2), 255))
	assert.Equal(t, dark.Bytes(), lit.Bytes())
}

func TestSPICloseClearsOnce(t *testing.T) {
	var buf bytes.Buffer
	sink, err := NewSPI(spitest.NewRecordRaw(&buf), testStrip(4))
	require.NoError(t, err)
	require.NoError(t, sink.Display(model.Frame{model.White, model.White, model.White, model.White}, 255))

	n := buf.Len()
	require.NoError(t, sink.Close())
	assert.Greater(t, buf.Len(), n, "close should blank the strip")

	n = buf.Len()
	require.NoError(t, sink.Close())
	assert.Equal(t, n, buf.Len())
}

type fakeDrawer struct {
	block  chan struct{}
	draws  int
	halted int
	err    error
}

func (f *fakeDrawer) String() string          { return "fake" }
func (f *fakeDrawer) Halt() error             { f.halted++; return nil }
func (f *fakeDrawer) ColorModel() color.Model { return color.NRGBAModel }
func (f *fakeDrawer) Bounds() image.Rectangle { return image.Rect(0, 0, 2, 1) }
func (f *fakeDrawer) Draw(image.Rectangle, image.Image, image.Point) error {
	if f.block != nil {
		<-f.block
	}
	f.draws++
	return f.err
}

type countCloser struct{ n atomic.Int32 }

func (c *countCloser) Close() error { c.n.Add(1); return nil }

func TestDrawerWrapsDeviceErrors(t *testing.T) {
	boom := errors.New("bus fault")
	d := NewDrawer(&fakeDrawer{err: boom}, nil, 2)
	err := d.Display(model.NewFrame(2), 255)
	var de *DriverError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "display", de.Op)
	assert.ErrorIs(t, err, boom)
}

func TestDrawerCloseIsBounded(t *testing.T) {
	dev := &fakeDrawer{block: make(chan struct{})}
	c := &countCloser{}
	d := NewDrawer(dev, c, 2)

	err := d.Close()
	assert.ErrorIs(t, err, errClearTimeout)
	assert.Zero(t, c.n.Load(), "port stays open while the clear is drawing")

	assert.NoError(t, d.Close())
	close(dev.block)
	require.Eventually(t, func() bool { return c.n.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.NoError(t, d.Close())
	assert.Equal(t, int32(1), c.n.Load())
}

func TestDrawerCloseHalts(t *testing.T) {
	dev := &fakeDrawer{}
	c := &countCloser{}
	d := NewDrawer(dev, c, 2)
	require.NoError(t, d.Close())
	assert.Equal(t, 1, dev.draws)
	assert.Equal(t, 1, dev.halted)
	assert.Equal(t, int32(1), c.n.Load())
}

func TestPixelChar(t *testing.T) {
	cases := map[model.ColorVal]byte{
		model.RGB(0, 0, 0):       '.',
		model.RGB(255, 255, 255): 'W',
		model.RGB(181, 181, 181): 'W',
		model.RGB(180, 180, 180): 'R',
		model.RGB(255, 140, 0):   'R',
		model.RGB(0, 255, 0):     'G',
		model.RGB(0, 10, 10):     'G',
		model.RGB(0, 0, 255):     'B',
		model.RGB(180, 0, 255):   'B',
	}
	for c, want := range cases {
		assert.Equal(t, string(want), string(PixelChar(c)), "%06x", c.Color())
	}
}

func TestASCIIPlainOutput(t *testing.T) {
	var out bytes.Buffer
	a := NewASCII(&out, false, 80)
	require.NoError(t, a.Display(model.Frame{model.Black, model.RGB(255, 0, 0), model.White}, 255))
	require.NoError(t, a.Display(model.Frame{model.RGB(0, 0, 255), model.Black, model.Black}, 10))
	a.Annotate("Pattern: Chase")
	require.NoError(t, a.Close())

	assert.Equal(t, "Frame 0001 | .RW\nFrame 0002 | B..\nPattern: Chase\n", out.String())
}

func TestASCIIRedrawsInPlace(t *testing.T) {
	var out bytes.Buffer
	a := NewASCII(&out, true, 22) // 20 columns
	a.Annotate("status")
	require.NoError(t, a.Display(model.NewFrame(30), 255))

	first := out.String()
	assert.NotRegexp(t, `\x1b\[\d+A`, first, "nothing to move over on the first draw")
	lines := strings.Split(strings.TrimSuffix(first, "\n"), "\n")
	// "Frame 0001 | " + 30 pixels wraps into three 20-column lines, then status
	require.Len(t, lines, 4)
	assert.Contains(t, lines[3], "status")

	out.Reset()
	require.NoError(t, a.Display(model.NewFrame(30), 255))
	assert.True(t, strings.HasPrefix(out.String(), "\x1b[4A\r"))
	assert.Contains(t, out.String(), "Frame 0002 | ")
}

func TestOpenSelectsSimulation(t *testing.T) {
	var out bytes.Buffer
	s, err := Open(testStrip(5), Options{Test: true, Out: &out})
	require.NoError(t, err)
	_, ok := s.(*ASCII)
	assert.True(t, ok)

	s, err = Open(testStrip(5), Options{Test: true, SimStyle: SimANSI})
	require.NoError(t, err)
	_, ok = s.(*Drawer)
	assert.True(t, ok)
}
