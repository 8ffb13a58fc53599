package dfplayer

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/robalobadob/simon/internal/clock"
)

func TestPlayFolderWritesFrameAndSettles(t *testing.T) {
	var buf bytes.Buffer
	clk := &clock.Fake{}
	p := New(&buf, clk, DefaultSettle)

	if err := p.PlayFolder(context.Background(), 3, 2); err != nil {
		t.Fatalf("play folder: %v", err)
	}
	want := Encode(CmdPlayFolder, 48, 2)
	if !bytes.Equal(buf.Bytes(), want[:]) {
		t.Fatalf("want % X, got % X", want, buf.Bytes())
	}
	if s := clk.Sleeps(); len(s) != 1 || s[0] != 500*time.Millisecond {
		t.Fatalf("expected one 500ms settle, got %v", s)
	}
}

func TestSetVolumeSettlesLonger(t *testing.T) {
	var buf bytes.Buffer
	clk := &clock.Fake{}
	p := New(&buf, clk, DefaultSettle)

	if err := p.SetVolume(context.Background(), 20); err != nil {
		t.Fatalf("set volume: %v", err)
	}
	want := Encode(CmdSetVolume, 0, 20)
	if !bytes.Equal(buf.Bytes(), want[:]) {
		t.Fatalf("want % X, got % X", want, buf.Bytes())
	}
	if s := clk.Sleeps(); len(s) != 1 || s[0] != 2*time.Second {
		t.Fatalf("expected one 2s settle, got %v", s)
	}
}

func TestSetVolumeRejectsOutOfRange(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, &clock.Fake{}, DefaultSettle)
	for _, v := range []int{-1, 31} {
		if err := p.SetVolume(context.Background(), v); !errors.Is(err, ErrVolumeRange) {
			t.Fatalf("volume %d: expected ErrVolumeRange, got %v", v, err)
		}
	}
	if buf.Len() != 0 {
		t.Fatalf("nothing should be written, got % X", buf.Bytes())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("unplugged") }

func TestWriteErrorIsReturned(t *testing.T) {
	clk := &clock.Fake{}
	p := New(failingWriter{}, clk, DefaultSettle)
	if err := p.Play(context.Background()); err == nil {
		t.Fatal("expected write error")
	}
	if len(clk.Sleeps()) != 0 {
		t.Fatal("no settle delay after a failed write")
	}
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (l *lockedBuffer) Write(b []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(b)
}

func (l *lockedBuffer) Bytes() []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]byte(nil), l.buf.Bytes()...)
}

func TestVolumeSettleHoldsBackPlayback(t *testing.T) {
	var link lockedBuffer
	settling := make(chan struct{})
	release := make(chan struct{})
	clk := &clock.Fake{OnSleep: func(d time.Duration) {
		if d == DefaultSettle.Volume {
			close(settling)
			<-release
		}
	}}
	p := New(&link, clk, DefaultSettle)
	ctx := context.Background()

	volDone := make(chan error, 1)
	go func() { volDone <- p.SetVolume(ctx, 10) }()
	<-settling

	playDone := make(chan error, 1)
	go func() { playDone <- p.PlayFolder(ctx, 1, 1) }()

	select {
	case <-playDone:
		t.Fatal("playback frame sent while the volume command was settling")
	case <-time.After(20 * time.Millisecond):
	}
	if n := len(link.Bytes()); n != FrameSize {
		t.Fatalf("expected only the volume frame on the link, got %d bytes", n)
	}

	close(release)
	if err := <-volDone; err != nil {
		t.Fatalf("set volume: %v", err)
	}
	if err := <-playDone; err != nil {
		t.Fatalf("play folder: %v", err)
	}
	got := link.Bytes()
	want := Encode(CmdPlayFolder, 16, 1)
	if len(got) != 2*FrameSize || !bytes.Equal(got[FrameSize:], want[:]) {
		t.Fatalf("second frame: want % X, got % X", want, got)
	}
}
