package model

import (
	"image/color"
)

const (
	RED_OFFSET   uint8 = 0x10
	GREEN_OFFSET uint8 = 0x08
	BLUE_OFFSET  uint8 = 0x0
)

// ColorVal is a packed 0x00RRGGBB pixel colour, the layout the WS281x
// drivers expect in their LED buffers.
type ColorVal struct {
	val uint32
}

var (
	Black = RGB(0, 0, 0)
	White = RGB(255, 255, 255)
)

func NewColor(c uint32) ColorVal {
	return ColorVal{val: c & 0xFFFFFF}
}

func RGB(r, g, b uint8) ColorVal {
	c := ColorVal{}
	c.SetR(r)
	c.SetG(g)
	c.SetB(b)
	return c
}

func (c ColorVal) Color() uint32 {
	return c.val
}

func (c ColorVal) ToRGB() color.NRGBA {
	return color.NRGBA{R: c.GetR(), G: c.GetG(), B: c.GetB(), A: 255}
}

// Scale multiplies every channel by s/255.
func (c ColorVal) Scale(s uint8) ColorVal {
	if s == 255 {
		return c
	}
	f := func(v uint8) uint8 {
		return uint8(uint16(v) * uint16(s) / 255)
	}
	return RGB(f(c.GetR()), f(c.GetG()), f(c.GetB()))
}

func (c ColorVal) IsOff() bool {
	return c.val == 0
}

func setcolor(c uint32, n uint8, off uint8) uint32 {
	var val uint32 = uint32(n) << off
	var mask uint32 = 0xFF << off
	return (c & (^mask)) | val
}

func getcolor(c uint32, off uint8) uint8 {
	var mask uint32 = 0xFF << off
	return uint8((c & mask) >> off)
}

func (c *ColorVal) SetR(r uint8) {
	c.val = setcolor(c.val, r, RED_OFFSET)
}
func (c *ColorVal) SetG(g uint8) {
	c.val = setcolor(c.val, g, GREEN_OFFSET)
}
func (c *ColorVal) SetB(b uint8) {
	c.val = setcolor(c.val, b, BLUE_OFFSET)
}

func (c ColorVal) GetR() uint8 {
	return getcolor(c.val, RED_OFFSET)
}
func (c ColorVal) GetG() uint8 {
	return getcolor(c.val, GREEN_OFFSET)
}
func (c ColorVal) GetB() uint8 {
	return getcolor(c.val, BLUE_OFFSET)
}

// Wheel maps 0..255 onto a red -> green -> blue -> red hue circle.
func Wheel(position uint8) ColorVal {
	pos := 255 - int(position)
	switch {
	case pos < 85:
		return RGB(uint8(255-pos*3), 0, uint8(pos*3))
	case pos < 170:
		pos -= 85
		return RGB(0, uint8(pos*3), uint8(255-pos*3))
	default:
		pos -= 170
		return RGB(uint8(pos*3), uint8(255-pos*3), 0)
	}
}
