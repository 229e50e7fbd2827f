// Package packet parses and builds ICMP and ICMPv6 headers, folds their
// checksums and walks the option chain of IPv6 Neighbor Discovery messages.
package packet

import (
	"fmt"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// ICMPHeaderSize is the size of the type/code/checksum prefix shared by
// ICMPv4 and ICMPv6 messages.
const ICMPHeaderSize = 4

// ICMPHeader is the common ICMP/ICMPv6 header. The checksum is whatever was
// on the wire; use ComputeChecksumV4/V6 to derive the expected value.
type ICMPHeader struct {
	Type     uint8
	Code     uint8
	Checksum uint16
}

func ParseICMPHeader(c *Cursor) (ICMPHeader, error) {
	b, err := c.ReadBytes(ICMPHeaderSize)
	if err != nil {
		return ICMPHeader{}, parseError(TruncatedHeader, "ICMP header too small")
	}
	return ICMPHeader{
		Type:     b[0],
		Code:     b[1],
		Checksum: uint16(b[2])<<8 | uint16(b[3]),
	}, nil
}

func (h ICMPHeader) Serialize(c *Cursor) error {
	if c.Len() < ICMPHeaderSize {
		return ErrBufferFull
	}
	c.WriteU8(h.Type)
	c.WriteU8(h.Code)
	return c.WriteBE16(h.Checksum)
}

// ComputeChecksumV6 returns the ICMPv6 checksum over the IPv6 pseudo-header,
// this header with a zero checksum field, and the first
// ipv6PayloadLength-ICMPHeaderSize bytes of body.
func (h ICMPHeader) ComputeChecksumV6(pseudo uint32, body Cursor, ipv6PayloadLength int) (uint16, error) {
	if ipv6PayloadLength < ICMPHeaderSize {
		return 0, parseError(TruncatedBody, "IPv6 payload length %d is smaller than the ICMPv6 header", ipv6PayloadLength)
	}
	sum := pseudo + h.typeCodeWord()
	return FinalizeChecksum(body, ipv6PayloadLength-ICMPHeaderSize, sum)
}

// ComputeChecksumV4 is ComputeChecksumV6 without a pseudo-header; payloadLength
// counts only the body following the ICMP header.
func (h ICMPHeader) ComputeChecksumV4(body Cursor, payloadLength int) (uint16, error) {
	return FinalizeChecksum(body, payloadLength, h.typeCodeWord())
}

func (h ICMPHeader) typeCodeWord() uint32 {
	return uint32(h.Type)<<8 | uint32(h.Code)
}

// TypeV6 interprets the type as an ICMPv6 message type.
func (h ICMPHeader) TypeV6() ipv6.ICMPType { return ipv6.ICMPType(h.Type) }

// TypeV4 interprets the type as an ICMPv4 message type.
func (h ICMPHeader) TypeV4() ipv4.ICMPType { return ipv4.ICMPType(h.Type) }

func (h ICMPHeader) String() string {
	return fmt.Sprintf("type=%d code=%d csum=%#04x", h.Type, h.Code, h.Checksum)
}
