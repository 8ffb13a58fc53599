//go:build !linux

package panel

import "errors"

// OpenGpiod is only available on Linux.
func OpenGpiod(chip string, buttonLines, ledLines []int) (Board, error) {
	return nil, errors.New("panel: gpiod backend requires linux")
}
