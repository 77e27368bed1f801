package led

import (
	"fmt"

	"github.com/coreman2200/funtimes-strips/internal/config"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"
)

// OpenSPI drives the strip from the SPI MOSI line through the nrzled encoder.
func OpenSPI(strip config.Strip) (*Drawer, error) {
	if _, err := host.Init(); err != nil {
		return nil, &DriverError{Op: "init", Err: err}
	}
	port, err := spireg.Open(strip.SPIPort)
	if err != nil {
		return nil, &DriverError{Op: "open", Err: fmt.Errorf("spi port %q: %w", strip.SPIPort, err)}
	}
	d, err := NewSPI(port, strip)
	if err != nil {
		port.Close()
		return nil, err
	}
	return d, nil
}

// NewSPI builds the sink on an already opened port. The port is closed by
// the sink's Close.
func NewSPI(port spi.PortCloser, strip config.Strip) (*Drawer, error) {
	opts := nrzled.Opts{
		NumPixels: strip.LedCount,
		Channels:  3,
		Freq:      physic.Frequency(strip.FreqKHz) * physic.KiloHertz,
	}
	dev, err := nrzled.NewSPI(port, &opts)
	if err != nil {
		return nil, &DriverError{Op: "open", Err: err}
	}
	if err := dev.Halt(); err != nil {
		return nil, &DriverError{Op: "halt", Err: err}
	}
	return NewDrawer(dev, port, strip.LedCount), nil
}
