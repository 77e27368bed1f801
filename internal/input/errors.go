package input

import (
	"errors"
	"fmt"
)

var errNotTTY = errors.New("not a terminal")

// Error reports an input device that could not be set up. Runs continue
// without that device.
type Error struct {
	Device string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("input %s: %v", e.Device, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
