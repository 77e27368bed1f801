package led

import (
	"bufio"
	"fmt"
	"io"

	"github.com/coreman2200/funtimes-strips/model"
)

// ASCII prints one character per pixel. On a terminal the drawing is
// redrawn in place; otherwise every frame is a new line. Brightness only
// shows in the status line.
type ASCII struct {
	w      *bufio.Writer
	tty    bool
	width  int
	frame  int
	status string
	drawn  int // lines drawn by the last redraw
	closed bool
}

func NewASCII(w io.Writer, tty bool, columns int) *ASCII {
	if columns <= 0 {
		columns = 120
	}
	return &ASCII{w: bufio.NewWriter(w), tty: tty, width: max(20, columns-2)}
}

// PixelChar maps a colour to its simulation character.
func PixelChar(c model.ColorVal) byte {
	r, g, b := c.GetR(), c.GetG(), c.GetB()
	switch {
	case c.IsOff():
		return '.'
	case r > 180 && g > 180 && b > 180:
		return 'W'
	case r >= g && r >= b:
		return 'R'
	case g >= b:
		return 'G'
	}
	return 'B'
}

func (a *ASCII) Display(f model.Frame, brightness uint8) error {
	a.frame++
	pixels := make([]byte, len(f))
	for i, c := range f {
		pixels[i] = PixelChar(c)
	}
	prefix := fmt.Sprintf("Frame %04d | ", a.frame)

	if !a.tty {
		fmt.Fprintf(a.w, "%s%s\n", prefix, pixels)
		return a.flush()
	}
	a.redraw(prefix + string(pixels))
	return a.flush()
}

func (a *ASCII) redraw(line string) {
	lines := wrap(line, a.width)
	if a.drawn > 0 {
		fmt.Fprintf(a.w, "\x1b[%dA\r", a.drawn)
	}
	for _, l := range lines {
		fmt.Fprintf(a.w, "\x1b[2K\r%-*s\n", a.width, l)
	}
	fmt.Fprintf(a.w, "\x1b[2K\r%s\n", a.status)
	a.drawn = len(lines) + 1
}

// Annotate sets the status line printed under the drawing.
func (a *ASCII) Annotate(status string) {
	a.status = status
	if !a.tty {
		fmt.Fprintln(a.w, status)
		a.flush()
	}
}

func (a *ASCII) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	return a.flush()
}

func (a *ASCII) flush() error {
	if err := a.w.Flush(); err != nil {
		return &DriverError{Op: "display", Err: err}
	}
	return nil
}

// wrap splits s into lines of at most width bytes.
func wrap(s string, width int) []string {
	var out []string
	for len(s) > width {
		out = append(out, s[:width])
		s = s[width:]
	}
	return append(out, s)
}
