// internal/dfplayer/frame.go
//
// Wire format of the serial audio module.
//
// Every command is a fixed 10-byte frame:
//
//	[0x7E][0xFF][0x06][CMD][ACK][P1][P2][CK_HI][CK_LO][0xEF]
//
// The checksum is the 16-bit two's-complement negation of
// VERSION+LENGTH+CMD+ACK+P1+P2. The module rejects any other arithmetic,
// so this file is the one place the sum is computed.

package dfplayer

const (
	StartByte   byte = 0x7E
	VersionByte byte = 0xFF
	LengthByte  byte = 0x06
	EndByte     byte = 0xEF
	NoAck       byte = 0x00 // module sends no reply frame

	FrameSize = 10
)

// Command codes used by the panel.
const (
	CmdPlay       byte = 0x0D
	CmdSetVolume  byte = 0x06
	CmdPlayFolder byte = 0x14
)

// Frame is one encoded command.
type Frame [FrameSize]byte

// Checksum returns -(VERSION+LENGTH+code+ACK+p1+p2) truncated to 16 bits.
func Checksum(code, p1, p2 byte) uint16 {
	sum := uint16(VersionByte) + uint16(LengthByte) + uint16(code) +
		uint16(NoAck) + uint16(p1) + uint16(p2)
	return -sum
}

// Encode builds the frame for code with parameters p1 (high) and p2 (low).
func Encode(code, p1, p2 byte) Frame {
	ck := Checksum(code, p1, p2)
	return Frame{
		StartByte, VersionByte, LengthByte, code, NoAck,
		p1, p2, byte(ck >> 8), byte(ck), EndByte,
	}
}

// FolderTrackParams packs a folder and a track number into the two
// parameter bytes of CmdPlayFolder: the folder fills the high nibble of
// the upper byte and the track's upper bits the low nibble.
//
//	upper = folder*16 + track/256
//	lower = track%256
//
// Plain division and modulo are used so out-of-range inputs truncate the
// same way the module's reference firmware does.
func FolderTrackParams(folder, track int) (upper, lower byte) {
	return byte(folder*16 + track/256), byte(track % 256)
}
