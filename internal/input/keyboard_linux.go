//go:build linux

package input

import (
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Keyboard reads single key presses from a terminal without waiting for
// Enter. Signals (Ctrl+C) keep working.
type Keyboard struct {
	fd     int
	old    *unix.Termios
	log    zerolog.Logger
	failed bool
}

func OpenKeyboard(f *os.File, log zerolog.Logger) (*Keyboard, error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil, &Error{Device: "keyboard", Err: errNotTTY}
	}
	old, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, &Error{Device: "keyboard", Err: err}
	}
	cbreak := *old
	cbreak.Lflag &^= unix.ICANON | unix.ECHO
	cbreak.Cc[unix.VMIN] = 1
	cbreak.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &cbreak); err != nil {
		return nil, &Error{Device: "keyboard", Err: err}
	}
	return &Keyboard{fd: fd, old: old, log: log}, nil
}

func (k *Keyboard) Poll() (Command, bool) {
	if k.old == nil {
		return Command{}, false
	}
	fds := []unix.PollFd{{Fd: int32(k.fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, 0)
	if err != nil || n == 0 || fds[0].Revents&unix.POLLIN == 0 {
		if err != nil && err != unix.EINTR {
			k.fail(err)
		}
		return Command{}, false
	}
	var buf [1]byte
	if _, err := unix.Read(k.fd, buf[:]); err != nil {
		k.fail(err)
		return Command{}, false
	}
	return KeyCommand(buf[0])
}

func (k *Keyboard) fail(err error) {
	if !k.failed {
		k.log.Warn().Err(err).Msg("keyboard read failed")
		k.failed = true
	}
}

// Close puts the terminal back the way it was found.
func (k *Keyboard) Close() error {
	if k.old == nil {
		return nil
	}
	err := unix.IoctlSetTermios(k.fd, unix.TCSETS, k.old)
	k.old = nil
	return err
}
