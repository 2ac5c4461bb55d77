package relay

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/mevdschee/qsbulk/packet"
)

// OpRawStatement carries a length-prefixed SQL statement to be buffered verbatim
const OpRawStatement uint16 = 0x0001

// MaxFrameSize bounds the payload of a single frame
const MaxFrameSize = 16 << 20

// ErrFrameTooLarge is returned for frames whose payload exceeds MaxFrameSize
var ErrFrameTooLarge = errors.New("relay frame too large")

// frame header: uint16 opcode, uint32 payload length, little-endian
const headerSize = 6

// ReadFrame reads one packet envelope from r
func ReadFrame(r io.Reader) (*packet.ServerPacket, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	opcode := binary.LittleEndian.Uint16(header[0:2])
	size := binary.LittleEndian.Uint32(header[2:6])
	if size > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return packet.New(opcode, payload), nil
}
