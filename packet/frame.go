package packet

import (
	"fmt"
	"net"
)

const (
	EthernetHeaderSize = 14
	VLANTagSize        = 4
	// FrameHeaderSize is what BuildFrameHeaderV4/V6 write ahead of the IP
	// header: an Ethernet header carrying one 802.1Q tag.
	FrameHeaderSize = EthernetHeaderSize + VLANTagSize

	EtherTypeIPv4 = 0x0800
	EtherTypeVLAN = 0x8100
	EtherTypeIPv6 = 0x86dd
)

// TotalFrameLengthV4 is the size of a tagged Ethernet frame carrying an
// ICMPv4 message with a payloadLength byte body.
func TotalFrameLengthV4(payloadLength uint32) uint32 {
	return payloadLength + IPv4MinHeaderSize + ICMPHeaderSize + FrameHeaderSize
}

// TotalFrameLengthV6 is the size of a tagged Ethernet frame carrying an
// ICMPv6 message with a payloadLength byte body.
func TotalFrameLengthV6(payloadLength uint32) uint32 {
	return payloadLength + IPv6HeaderSize + ICMPHeaderSize + FrameHeaderSize
}

// BuildFrameHeaderV4 writes the tagged Ethernet header and ip. The ICMP
// header and body are left for the caller. It panics if ip does not carry
// ICMP or its length disagrees with payloadLength; those are caller bugs.
func BuildFrameHeaderV4(c *Cursor, dst, src net.HardwareAddr, vlan uint16, ip IPv4Header, payloadLength int) error {
	if ip.Protocol != ProtocolICMP {
		panic(fmt.Sprintf("BuildFrameHeaderV4: IP protocol %d is not ICMP", ip.Protocol))
	}
	if ip.PayloadLength() != ICMPHeaderSize+payloadLength {
		panic(fmt.Sprintf("BuildFrameHeaderV4: IP payload length %d, want %d", ip.PayloadLength(), ICMPHeaderSize+payloadLength))
	}
	if err := writeTaggedEthernet(c, dst, src, vlan, EtherTypeIPv4); err != nil {
		return err
	}
	return ip.Serialize(c)
}

// BuildFrameHeaderV6 writes the tagged Ethernet header and ip. It panics if
// ip does not carry ICMPv6 or its payload length is not ICMPHeaderSize+payloadLength.
func BuildFrameHeaderV6(c *Cursor, dst, src net.HardwareAddr, vlan uint16, ip IPv6Header, payloadLength int) error {
	if ip.NextHeader != ProtocolICMPv6 {
		panic(fmt.Sprintf("BuildFrameHeaderV6: next header %d is not ICMPv6", ip.NextHeader))
	}
	if int(ip.PayloadLength) != ICMPHeaderSize+payloadLength {
		panic(fmt.Sprintf("BuildFrameHeaderV6: IPv6 payload length %d, want %d", ip.PayloadLength, ICMPHeaderSize+payloadLength))
	}
	if err := writeTaggedEthernet(c, dst, src, vlan, EtherTypeIPv6); err != nil {
		return err
	}
	return ip.Serialize(c)
}

func writeTaggedEthernet(c *Cursor, dst, src net.HardwareAddr, vlan uint16, etherType uint16) error {
	if len(dst) != 6 || len(src) != 6 {
		panic(fmt.Sprintf("frame header: bad MAC length dst=%d src=%d", len(dst), len(src)))
	}
	if c.Len() < FrameHeaderSize {
		return ErrBufferFull
	}
	c.Push(dst)
	c.Push(src)
	c.WriteBE16(EtherTypeVLAN)
	c.WriteBE16(vlan)
	return c.WriteBE16(etherType)
}
