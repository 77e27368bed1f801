//go:build !unix

package detach

import "errors"

func Start(exe string, args []string) (int, error) {
	return 0, errors.New("detach is only supported on unix")
}
