// internal/console/console.go
//
// Operator text interface: one folder number per line on a text stream
// (stdin or a serial console). Valid numbers select the sound folder,
// anything else is rejected with a message and changes nothing. Folder
// changes are only taken between games.

package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/simon/internal/game"
)

// Selector accepts a folder choice.
type Selector interface {
	SelectFolder(folder int) error
}

// Console reads selections from in and answers on out.
type Console struct {
	sel      Selector
	in       io.Reader
	out      io.Writer
	min, max int
}

// New builds a console for folders min..max.
func New(sel Selector, in io.Reader, out io.Writer, min, max int) *Console {
	return &Console{sel: sel, in: in, out: out, min: min, max: max}
}

// Run prints the prompt and serves lines until EOF or ctx ends.
// Reading is blocking, so cancellation is only noticed between lines.
func (c *Console) Run(ctx context.Context) error {
	fmt.Fprintf(c.out, "Enter folder number (%d-%d) to select sounds from:\n", c.min, c.max)
	sc := bufio.NewScanner(c.in)
	for sc.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Handle(sc.Text())
	}
	return sc.Err()
}

// Handle processes one input line.
func (c *Console) Handle(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	n, err := strconv.Atoi(line)
	if err == nil {
		err = c.sel.SelectFolder(n)
	}
	if errors.Is(err, game.ErrGameInProgress) {
		fmt.Fprintln(c.out, "Game in progress! Select a folder after the game.")
		return
	}
	if err != nil {
		if !errors.Is(err, game.ErrFolderOutOfRange) {
			log.Debug().Err(err).Str("input", line).Msg("console: bad input")
		}
		fmt.Fprintf(c.out, "Invalid folder! Enter a number between %d and %d.\n", c.min, c.max)
		return
	}
	fmt.Fprintf(c.out, "Selected folder: %d\n", n)
}
