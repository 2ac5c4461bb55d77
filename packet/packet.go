package packet

import (
	"encoding/binary"
	"errors"
)

// ErrShortPacket is returned when a read runs past the end of the payload
var ErrShortPacket = errors.New("packet payload too short")

// ServerPacket is the generic binary envelope exchanged between server processes.
// Reads consume the payload sequentially from the current read position.
type ServerPacket struct {
	Opcode  uint16
	Payload []byte
	pos     int
}

// New creates a packet for the given opcode and payload
func New(opcode uint16, payload []byte) *ServerPacket {
	return &ServerPacket{
		Opcode:  opcode,
		Payload: payload,
	}
}

// Remaining returns the number of unread payload bytes
func (p *ServerPacket) Remaining() int {
	return len(p.Payload) - p.pos
}

// ReadUint32 reads a little-endian uint32
func (p *ServerPacket) ReadUint32() (uint32, error) {
	if p.Remaining() < 4 {
		return 0, ErrShortPacket
	}
	v := binary.LittleEndian.Uint32(p.Payload[p.pos:])
	p.pos += 4
	return v, nil
}

// ReadBytes reads exactly n bytes into a new slice
func (p *ServerPacket) ReadBytes(n int) ([]byte, error) {
	if n < 0 || p.Remaining() < n {
		return nil, ErrShortPacket
	}
	b := make([]byte, n)
	copy(b, p.Payload[p.pos:p.pos+n])
	p.pos += n
	return b, nil
}

// ReadLengthPrefixedString reads a uint32 length followed by that many bytes.
// The string is never truncated: a length past the payload end is an error.
func (p *ServerPacket) ReadLengthPrefixedString() (string, error) {
	start := p.pos
	n, err := p.ReadUint32()
	if err != nil {
		return "", err
	}
	b, err := p.ReadBytes(int(n))
	if err != nil {
		p.pos = start
		return "", err
	}
	return string(b), nil
}
