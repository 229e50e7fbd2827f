package packet

import (
	"fmt"
	"net/netip"
)

const (
	IPv4MinHeaderSize = 20
	IPv6HeaderSize    = 40

	ProtocolICMP   = 1
	ProtocolICMPv6 = 58
)

// IPv6Header is the fixed IPv6 header. Extension headers are not handled.
type IPv6Header struct {
	TrafficClass  uint8
	FlowLabel     uint32
	PayloadLength uint16
	NextHeader    uint8
	HopLimit      uint8
	Src           netip.Addr
	Dst           netip.Addr
}

func ParseIPv6Header(c *Cursor) (IPv6Header, error) {
	b, err := c.ReadBytes(IPv6HeaderSize)
	if err != nil {
		return IPv6Header{}, parseError(TruncatedHeader, "IPv6 header too small")
	}
	if b[0]>>4 != 6 {
		return IPv6Header{}, fmt.Errorf("not an IPv6 header: version %d", b[0]>>4)
	}
	h := IPv6Header{
		TrafficClass:  b[0]<<4 | b[1]>>4,
		FlowLabel:     uint32(b[1]&0x0f)<<16 | uint32(b[2])<<8 | uint32(b[3]),
		PayloadLength: uint16(b[4])<<8 | uint16(b[5]),
		NextHeader:    b[6],
		HopLimit:      b[7],
		Src:           netip.AddrFrom16([16]byte(b[8:24])),
		Dst:           netip.AddrFrom16([16]byte(b[24:40])),
	}
	return h, nil
}

func (h IPv6Header) Serialize(c *Cursor) error {
	if c.Len() < IPv6HeaderSize {
		return ErrBufferFull
	}
	src, dst := h.Src.As16(), h.Dst.As16()
	c.WriteU8(0x60 | h.TrafficClass>>4)
	c.WriteU8(h.TrafficClass<<4 | uint8(h.FlowLabel>>16)&0x0f)
	c.WriteBE16(uint16(h.FlowLabel))
	c.WriteBE16(h.PayloadLength)
	c.WriteU8(h.NextHeader)
	c.WriteU8(h.HopLimit)
	c.Push(src[:])
	return c.Push(dst[:])
}

// PseudoHeaderPartialChecksum returns the unfolded sum of the upper-layer
// pseudo-header (source, destination, payload length, next header).
func (h IPv6Header) PseudoHeaderPartialChecksum() uint32 {
	src, dst := h.Src.As16(), h.Dst.As16()
	sum := checksumAddition(src[:]) + checksumAddition(dst[:])
	sum += uint32(h.PayloadLength)
	sum += uint32(h.NextHeader)
	return sum
}

// IPv4Header is an IPv4 header without options.
type IPv4Header struct {
	TOS         uint8
	TotalLength uint16
	ID          uint16
	TTL         uint8
	Protocol    uint8
	Src         netip.Addr
	Dst         netip.Addr
}

func (h IPv4Header) PayloadLength() int {
	return int(h.TotalLength) - IPv4MinHeaderSize
}

// Serialize writes the header with the don't-fragment bit set and a freshly
// computed header checksum.
func (h IPv4Header) Serialize(c *Cursor) error {
	if c.Len() < IPv4MinHeaderSize {
		return ErrBufferFull
	}
	var b [IPv4MinHeaderSize]byte
	w := NewCursor(b[:])
	src, dst := h.Src.As4(), h.Dst.As4()
	w.WriteU8(0x45)
	w.WriteU8(h.TOS)
	w.WriteBE16(h.TotalLength)
	w.WriteBE16(h.ID)
	w.WriteBE16(0x4000)
	w.WriteU8(h.TTL)
	w.WriteU8(h.Protocol)
	w.WriteBE16(0)
	w.Push(src[:])
	w.Push(dst[:])
	csum := Checksum(b[:], 0)
	b[10], b[11] = byte(csum>>8), byte(csum)
	return c.Push(b[:])
}
