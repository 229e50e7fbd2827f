package watch

import (
	"fmt"
	"log/slog"
	"net"
	"net/netip"

	"golang.org/x/net/ipv6"
	"golang.org/x/sys/unix"

	"ndpwatch/packet"
)

var (
	allRoutersMulticastIPv6 = netip.MustParseAddr("ff02::2")
	allRoutersMulticastMac  = net.HardwareAddr{0x33, 0x33, 0x00, 0x00, 0x00, 0x02}
)

// BuildRouterSolicitation returns a complete 802.1Q tagged Ethernet frame
// carrying a Router Solicitation from src to ff02::2. A Source Link-Layer
// Address option is included unless src is the unspecified address
// (RFC 4861 section 4.1).
func BuildRouterSolicitation(src netip.Addr, mac net.HardwareAddr, vlan uint16) ([]byte, error) {
	if !src.Is6() || src.Is4In6() {
		return nil, fmt.Errorf("source %v is not an IPv6 address", src)
	}
	if len(mac) != 6 {
		return nil, fmt.Errorf("malformed MAC %v", mac)
	}

	body := make([]byte, 4) // Reserved
	if !src.IsUnspecified() {
		body = append(body, byte(packet.NDPOptionSourceLinkLayerAddress), 1)
		body = append(body, mac...)
	}

	ip := packet.IPv6Header{
		PayloadLength: uint16(packet.ICMPHeaderSize + len(body)),
		NextHeader:    packet.ProtocolICMPv6,
		HopLimit:      255,
		Src:           src,
		Dst:           allRoutersMulticastIPv6,
	}
	frame := make([]byte, packet.TotalFrameLengthV6(uint32(len(body))))
	c := packet.NewCursor(frame)
	if err := packet.BuildFrameHeaderV6(c, allRoutersMulticastMac, mac, vlan, ip, len(body)); err != nil {
		return nil, err
	}

	hdr := packet.ICMPHeader{Type: uint8(ipv6.ICMPTypeRouterSolicitation)}
	csum, err := hdr.ComputeChecksumV6(ip.PseudoHeaderPartialChecksum(), *packet.NewCursor(body), int(ip.PayloadLength))
	if err != nil {
		return nil, err
	}
	hdr.Checksum = csum
	if err := hdr.Serialize(c); err != nil {
		return nil, err
	}
	if err := c.Push(body); err != nil {
		return nil, err
	}
	return frame, nil
}

// SendRouterSolicitation sends one tagged Router Solicitation out of iface,
// sourced from its link-local address. iface should be the untagged parent
// of the VLAN, since the frame already carries its 802.1Q tag.
func SendRouterSolicitation(iface string, vlan uint16) error {
	niface, err := net.InterfaceByName(iface)
	if err != nil {
		return err
	}
	src := linkLocalAddr(niface)
	frame, err := BuildRouterSolicitation(src, niface.HardwareAddr, vlan)
	if err != nil {
		return err
	}

	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return err
	}
	defer func(fd int) {
		_ = unix.Close(fd)
	}(fd)

	addr := &unix.SockaddrLinklayer{
		Protocol: htons16(unix.ETH_P_8021Q),
		Ifindex:  niface.Index,
		Halen:    6,
	}
	copy(addr.Addr[:], allRoutersMulticastMac)
	slog.Debug("Sending packet", "type", ipv6.ICMPTypeRouterSolicitation, "source IP", src.String(), "vlan", vlan, "interface", iface)
	return unix.Sendto(fd, frame, 0, addr)
}

// linkLocalAddr returns the first link-local unicast address on iface, or
// the unspecified address if it has none.
func linkLocalAddr(iface *net.Interface) netip.Addr {
	addrs, err := iface.Addrs()
	if err != nil {
		return netip.IPv6Unspecified()
	}
	for _, a := range addrs {
		n, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		ip, ok := netip.AddrFromSlice(n.IP)
		if !ok {
			continue
		}
		ip = ip.Unmap()
		if ip.Is6() && ip.IsLinkLocalUnicast() {
			return ip.WithZone("")
		}
	}
	return netip.IPv6Unspecified()
}
