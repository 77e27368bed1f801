//go:build !ws2811

package led

import (
	"errors"

	"github.com/coreman2200/funtimes-strips/internal/config"
)

// OpenPWM needs the rpi_ws281x C library; rebuild with -tags ws2811.
func OpenPWM(strip config.Strip) (Sink, error) {
	return nil, &DriverError{Op: "open", Err: errors.New("built without ws2811 support (rebuild with -tags ws2811)")}
}
