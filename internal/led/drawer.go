package led

import (
	"errors"
	"image"
	"io"
	"sync"
	"time"

	"github.com/coreman2200/funtimes-strips/model"
	"periph.io/x/conn/v3/display"
	"periph.io/x/extra/devices/screen"
)

// ClearTimeout bounds the final clear on Close.
const ClearTimeout = 500 * time.Millisecond

var errClearTimeout = errors.New("timed out clearing strip")

// Drawer adapts a periph display.Drawer (an nrzled strip or the console
// screen) to Sink.
type Drawer struct {
	dev    display.Drawer
	closer io.Closer
	length int

	once sync.Once
}

// NewDrawer wraps dev. closer, when not nil, is closed after the device is
// halted.
func NewDrawer(dev display.Drawer, closer io.Closer, length int) *Drawer {
	return &Drawer{dev: dev, closer: closer, length: length}
}

// NewANSI draws the strip as coloured blocks on the console.
func NewANSI(length int) *Drawer {
	return NewDrawer(screen.New(length), nil, length)
}

func (d *Drawer) String() string {
	return d.dev.String()
}

func (d *Drawer) Display(f model.Frame, brightness uint8) error {
	img := f.Scaled(brightness).Image()
	if err := d.dev.Draw(d.dev.Bounds(), img, image.Point{}); err != nil {
		return &DriverError{Op: "display", Err: err}
	}
	return nil
}

func (d *Drawer) clear() error {
	black := model.NewFrame(d.length).Image()
	if err := d.dev.Draw(d.dev.Bounds(), black, image.Point{}); err != nil {
		return err
	}
	return d.dev.Halt()
}

// Close blanks the strip, waiting at most ClearTimeout, then releases the
// port. If the clear is still running at the deadline the port is released
// once it returns, never underneath it.
func (d *Drawer) Close() error {
	var err error
	d.once.Do(func() {
		done := make(chan error, 1)
		go func() { done <- d.clear() }()
		select {
		case cerr := <-done:
			if cerr != nil {
				err = &DriverError{Op: "clear", Err: cerr}
			}
		case <-time.After(ClearTimeout):
			err = &DriverError{Op: "clear", Err: errClearTimeout}
			if d.closer != nil {
				go func() {
					<-done
					d.closer.Close()
				}()
			}
			return
		}
		if d.closer != nil {
			if cerr := d.closer.Close(); cerr != nil && err == nil {
				err = &DriverError{Op: "close", Err: cerr}
			}
		}
	})
	return err
}
