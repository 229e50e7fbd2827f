package watch

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"time"

	"ndpwatch/packet"
)

// ErrChecksum is returned by DecodeFrame when the ICMPv6 checksum does not verify.
var ErrChecksum = errors.New("ICMPv6 checksum mismatch")

var (
	errShortEthernet = errors.New("frame too short for Ethernet header")
	errShortVLAN     = errors.New("frame too short for 802.1Q tag")
)

// Report is a decoded NDP message as seen on an interface.
type Report struct {
	Interface string
	VLAN      uint16 // zero when the frame was untagged
	SrcMAC    net.HardwareAddr
	Src       netip.Addr
	Dst       netip.Addr
	HopLimit  uint8
	Header    packet.ICMPHeader
	// Options is only populated for message types that carry NDP options.
	Options packet.NDPOptions

	// Frame and Time are filled in by the listener for captures.
	Frame []byte
	Time  time.Time
}

func (r *Report) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("type", r.Header.TypeV6().String()),
		slog.Any("vlan", r.VLAN),
		slog.Any("source MAC", macValue{r.SrcMAC}),
		slog.String("source IP", r.Src.String()),
		slog.String("destination IP", r.Dst.String()),
		slog.Any("hop limit", r.HopLimit),
		slog.Any("options", r.Options),
	)
}

// DecodeFrame parses an Ethernet frame (optionally 802.1Q tagged) carrying
// IPv6 and ICMPv6, verifies the ICMPv6 checksum and, for NDP messages, walks
// the option chain. Trailing Ethernet padding is ignored. Option-level
// problems are logged to logger and do not fail the decode.
func DecodeFrame(frame []byte, logger *slog.Logger) (*Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := packet.NewCursor(frame)
	if err := c.Skip(6); err != nil {
		return nil, errShortEthernet
	}
	srcMac, err := c.ReadBytes(6)
	if err != nil {
		return nil, errShortEthernet
	}
	r := &Report{SrcMAC: net.HardwareAddr(append([]byte(nil), srcMac...))}

	etherType, err := c.ReadBE16()
	if err != nil {
		return nil, errShortEthernet
	}
	if etherType == packet.EtherTypeVLAN {
		tci, err := c.ReadBE16()
		if err != nil {
			return nil, errShortVLAN
		}
		r.VLAN = tci & 0x0fff
		if etherType, err = c.ReadBE16(); err != nil {
			return nil, errShortVLAN
		}
	}
	if etherType != packet.EtherTypeIPv6 {
		return nil, fmt.Errorf("ethertype %#04x is not IPv6", etherType)
	}

	ip, err := packet.ParseIPv6Header(c)
	if err != nil {
		return nil, err
	}
	if ip.NextHeader != packet.ProtocolICMPv6 {
		return nil, fmt.Errorf("next header %d is not ICMPv6", ip.NextHeader)
	}
	r.Src, r.Dst, r.HopLimit = ip.Src, ip.Dst, ip.HopLimit

	msg, err := c.Sub(int(ip.PayloadLength))
	if err != nil {
		return nil, fmt.Errorf("IPv6 payload length %d exceeds the %d bytes captured", ip.PayloadLength, c.Len())
	}
	if r.Header, err = packet.ParseICMPHeader(msg); err != nil {
		return nil, err
	}
	csum, err := r.Header.ComputeChecksumV6(ip.PseudoHeaderPartialChecksum(), *msg, int(ip.PayloadLength))
	if err != nil {
		return nil, err
	}
	if csum != r.Header.Checksum {
		return nil, fmt.Errorf("%w: got %#04x, want %#04x", ErrChecksum, r.Header.Checksum, csum)
	}

	offset, ok := packet.NDPOptionsOffset(r.Header.TypeV6())
	if !ok {
		return r, nil
	}
	if err := msg.Skip(offset); err != nil {
		return nil, fmt.Errorf("%v message shorter than its %d byte body", r.Header.TypeV6(), offset)
	}
	r.Options = packet.ParseNDPOptions(msg, logger.With("source IP", r.Src.String()))
	return r, nil
}
