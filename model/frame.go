package model

import (
	"image"
)

// Frame is one snapshot of the strip, index 0 being the pixel nearest the
// data input.
type Frame []ColorVal

func NewFrame(n int) Frame {
	if n < 0 {
		n = 0
	}
	return make(Frame, n)
}

func (f Frame) Fill(c ColorVal) {
	for i := range f {
		f[i] = c
	}
}

// Scaled returns a copy of f with every pixel scaled by brightness/255.
func (f Frame) Scaled(brightness uint8) Frame {
	out := make(Frame, len(f))
	for i, c := range f {
		out[i] = c.Scale(brightness)
	}
	return out
}

// Image lays the frame out as an Nx1 image for display.Drawer devices.
func (f Frame) Image() *image.NRGBA {
	im := image.NewNRGBA(image.Rect(0, 0, len(f), 1))
	for x := 0; x < im.Rect.Max.X; x++ {
		im.SetNRGBA(x, 0, f[x].ToRGB())
	}
	return im
}

// Bytes packs the frame as R,G,B triplets.
func (f Frame) Bytes() []byte {
	buf := make([]byte, 0, len(f)*3)
	for _, c := range f {
		buf = append(buf, c.GetR(), c.GetG(), c.GetB())
	}
	return buf
}
