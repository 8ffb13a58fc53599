// internal/dfplayer/player.go
//
// Player sends commands to the audio module over a write-only byte stream.
//
// Notes:
//   - Fire-and-forget: nothing is read back, so a disconnected or silent
//     module is not detected. Write errors from the link are returned.
//   - Each command is followed by a settle delay; the module drops frames
//     that arrive while it is still busy with the previous one.
//   - Safe for concurrent use (game loop and web server both send).

package dfplayer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/simon/internal/clock"
)

// MaxVolume is the loudest level the module accepts.
const MaxVolume = 30

// ErrVolumeRange is returned by SetVolume for levels outside 0..MaxVolume.
var ErrVolumeRange = errors.New("volume must be between 0 and 30")

// Settle holds the post-command delays.
type Settle struct {
	Play    time.Duration
	Folder  time.Duration
	Volume  time.Duration
	Default time.Duration
}

// DefaultSettle matches the timings the module needs in practice.
var DefaultSettle = Settle{
	Play:    500 * time.Millisecond,
	Folder:  500 * time.Millisecond,
	Volume:  2000 * time.Millisecond,
	Default: 200 * time.Millisecond,
}

// Player writes frames to the audio module.
//
// A command's settle delay is served under the same lock as its write, so
// a SetVolume issued during playback (e.g. from the web server) delays the
// next PlayFolder by up to Settle.Volume. The game step stretches by the
// same amount.
type Player struct {
	mu     sync.Mutex
	w      io.Writer
	clk    clock.Clock
	settle Settle
}

// New returns a Player writing to w.
func New(w io.Writer, clk clock.Clock, settle Settle) *Player {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Player{w: w, clk: clk, settle: settle}
}

// SendCommand encodes and writes one frame, then waits for the command's
// settle delay. The frame and the delay are held under one lock so
// concurrent callers cannot interleave.
func (p *Player) SendCommand(ctx context.Context, code, p1, p2 byte) error {
	f := Encode(code, p1, p2)

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.w.Write(f[:]); err != nil {
		return fmt.Errorf("dfplayer: write cmd 0x%02X: %w", code, err)
	}
	log.Debug().Hex("frame", f[:]).Msg("dfplayer: frame sent")
	return p.clk.Sleep(ctx, p.settleFor(code))
}

func (p *Player) settleFor(code byte) time.Duration {
	switch code {
	case CmdPlay:
		return p.settle.Play
	case CmdPlayFolder:
		return p.settle.Folder
	case CmdSetVolume:
		return p.settle.Volume
	}
	return p.settle.Default
}

// PlayFolder plays track from folder.
func (p *Player) PlayFolder(ctx context.Context, folder, track int) error {
	hi, lo := FolderTrackParams(folder, track)
	return p.SendCommand(ctx, CmdPlayFolder, hi, lo)
}

// SetVolume sets the output level (0..30).
func (p *Player) SetVolume(ctx context.Context, v int) error {
	if v < 0 || v > MaxVolume {
		return ErrVolumeRange
	}
	return p.SendCommand(ctx, CmdSetVolume, 0, byte(v))
}

// Play resumes playback.
func (p *Player) Play(ctx context.Context) error {
	return p.SendCommand(ctx, CmdPlay, 0, 1)
}
