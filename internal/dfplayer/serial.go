// internal/dfplayer/serial.go
//
// Serial link to the audio module (9600 baud, 8N1).

package dfplayer

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
)

// DefaultBaud is the module's fixed line rate.
const DefaultBaud = 9600

// OpenSerial opens the named serial device for writing frames.
func OpenSerial(name string, baud int) (io.WriteCloser, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", name, err)
	}
	log.Info().Str("device", name).Int("baud", baud).Msg("dfplayer: serial port opened")
	return p, nil
}

// LogLink is a stand-in link that only logs frames. Used when no module
// is attached (AUDIO_PORT unset).
type LogLink struct{}

func (LogLink) Write(b []byte) (int, error) {
	log.Info().Hex("frame", b).Msg("dfplayer: simulated frame")
	return len(b), nil
}

func (LogLink) Close() error { return nil }
