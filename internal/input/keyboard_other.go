//go:build !linux

package input

import (
	"errors"
	"os"

	"github.com/rs/zerolog"
)

type Keyboard struct{}

func OpenKeyboard(f *os.File, log zerolog.Logger) (*Keyboard, error) {
	return nil, &Error{Device: "keyboard", Err: errors.New("unsupported platform")}
}

func (k *Keyboard) Poll() (Command, bool) { return Command{}, false }
func (k *Keyboard) Close() error          { return nil }
