package model_test

import (
	"fmt"
	"strconv"
	"testing"

	. "github.com/coreman2200/funtimes-strips/model"
	"github.com/stretchr/testify/assert"
)

var TestRGBIsExpectedColor = []struct {
	R      uint8
	G      uint8
	B      uint8
	Expect uint32
}{
	{0x11, 0x22, 0x33, 0x112233},
	{0x2A, 0x44, 0x34, 0x2A4434},
	{0x3B, 0x88, 0x35, 0x3B8835},
	{0x4C, 0xAA, 0x36, 0x4CAA36},
	{0xFF, 0x00, 0xFF, 0xFF00FF},
}

var TestScaleIsExpectedColor = []struct {
	Start  uint32
	Scale  uint8
	Expect uint32
}{
	{0xFFFFFF, 255, 0xFFFFFF},
	{0xFFFFFF, 0, 0x000000},
	{0xFF8000, 128, 0x804000},
	{0x102030, 51, 0x030609},
}

func EntryBitRepresentation(c ColorVal) {
	fmt.Println("Color:" + strconv.FormatInt(int64(c.Color()), 2) + "(0x" + strconv.FormatInt(int64(c.Color()), 16) + ")")
	fmt.Println("Red:" + strconv.FormatInt(int64(c.GetR()), 2) + "(0x" + strconv.FormatInt(int64(c.GetR()), 16) + ")")
	fmt.Println("Green:" + strconv.FormatInt(int64(c.GetG()), 2) + "(0x" + strconv.FormatInt(int64(c.GetG()), 16) + ")")
	fmt.Println("Blue:" + strconv.FormatInt(int64(c.GetB()), 2) + "(0x" + strconv.FormatInt(int64(c.GetB()), 16) + ")")
}

func TestColorsRGB(t *testing.T) {
	for k, v := range TestRGBIsExpectedColor {
		t.Run("Given RGB"+strconv.FormatUint(uint64(k), 10), func(t *testing.T) {
			col := RGB(v.R, v.G, v.B)
			EntryBitRepresentation(col)
			assert.Equal(t, v.Expect, col.Color(), "should be same val")
			assert.Equal(t, v.R, col.GetR())
			assert.Equal(t, v.G, col.GetG())
			assert.Equal(t, v.B, col.GetB())
		})
	}
}

func TestColorsScale(t *testing.T) {
	for k, v := range TestScaleIsExpectedColor {
		t.Run("Given scale"+strconv.FormatUint(uint64(k), 10), func(t *testing.T) {
			col := NewColor(v.Start).Scale(v.Scale)
			assert.Equal(t, v.Expect, col.Color(), "should be same val")
		})
	}
}

func TestWheelEndpoints(t *testing.T) {
	assert.Equal(t, RGB(255, 0, 0), Wheel(0))
	assert.Equal(t, RGB(0, 255, 0), Wheel(85))
	assert.Equal(t, RGB(0, 0, 255), Wheel(170))
	for i := 0; i < 256; i++ {
		c := Wheel(uint8(i))
		assert.False(t, c.IsOff(), "wheel(%d) should never be black", i)
	}
}

func TestFrameImageAndBytes(t *testing.T) {
	f := Frame{RGB(1, 2, 3), RGB(4, 5, 6)}
	im := f.Image()
	assert.Equal(t, 2, im.Bounds().Dx())
	assert.Equal(t, 1, im.Bounds().Dy())
	px := im.NRGBAAt(1, 0)
	assert.Equal(t, uint8(4), px.R)
	assert.Equal(t, uint8(255), px.A)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, f.Bytes())
}

func TestFrameScaledLeavesSourceUntouched(t *testing.T) {
	f := NewFrame(3)
	f.Fill(White)
	s := f.Scaled(0)
	assert.Equal(t, White, f[0])
	assert.True(t, s[2].IsOff())
	assert.Len(t, NewFrame(-1), 0)
}
