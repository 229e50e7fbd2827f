package packet

import (
	"errors"
	"net"
	"net/netip"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

var (
	testDstMac = net.HardwareAddr{0x33, 0x33, 0x00, 0x00, 0x00, 0x01}
	testSrcMac = net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
)

func TestTotalFrameLength(t *testing.T) {
	if got, want := TotalFrameLengthV4(100), uint32(100+20+4+18); got != want {
		t.Errorf("TotalFrameLengthV4(100) = %d, want %d", got, want)
	}
	if got, want := TotalFrameLengthV6(100), uint32(100+40+4+18); got != want {
		t.Errorf("TotalFrameLengthV6(100) = %d, want %d", got, want)
	}
}

// buildV6 writes a complete tagged ICMPv6 frame through the construction
// helpers and returns it with the number of bytes BuildFrameHeaderV6 wrote.
func buildV6(t *testing.T, body []byte) ([]byte, int) {
	t.Helper()
	ip := IPv6Header{
		PayloadLength: uint16(ICMPHeaderSize + len(body)),
		NextHeader:    ProtocolICMPv6,
		HopLimit:      255,
		Src:           netip.MustParseAddr("fe80::a8bb:ccff:fedd:eeff"),
		Dst:           netip.MustParseAddr("ff02::1"),
	}
	frame := make([]byte, TotalFrameLengthV6(uint32(len(body))))
	c := NewCursor(frame)
	if err := BuildFrameHeaderV6(c, testDstMac, testSrcMac, 100, ip, len(body)); err != nil {
		t.Fatal(err)
	}
	headerLen := c.Offset()

	hdr := ICMPHeader{Type: 128}
	csum, err := hdr.ComputeChecksumV6(ip.PseudoHeaderPartialChecksum(), *NewCursor(body), int(ip.PayloadLength))
	if err != nil {
		t.Fatal(err)
	}
	hdr.Checksum = csum
	if err := hdr.Serialize(c); err != nil {
		t.Fatal(err)
	}
	if err := c.Push(body); err != nil {
		t.Fatal(err)
	}
	if c.Len() != 0 {
		t.Fatalf("%d bytes left unused in a frame sized by TotalFrameLengthV6", c.Len())
	}
	return frame, headerLen
}

func TestBuildFrameHeaderV6(t *testing.T) {
	body := []byte{0x00, 0x01, 0x00, 0x02, 'p', 'i', 'n', 'g', '!'}
	frame, headerLen := buildV6(t, body)
	if headerLen != FrameHeaderSize+IPv6HeaderSize {
		t.Errorf("frame header is %d bytes, want %d", headerLen, FrameHeaderSize+IPv6HeaderSize)
	}

	p := gopacket.NewPacket(frame, layers.LayerTypeEthernet, gopacket.Default)
	if p.ErrorLayer() != nil {
		t.Fatal("Failed to decode packet:", p.ErrorLayer().Error())
	}
	eth := p.Layer(layers.LayerTypeEthernet).(*layers.Ethernet)
	if eth.SrcMAC.String() != testSrcMac.String() || eth.DstMAC.String() != testDstMac.String() {
		t.Errorf("MACs %v -> %v", eth.SrcMAC, eth.DstMAC)
	}
	if eth.EthernetType != layers.EthernetTypeDot1Q {
		t.Errorf("outer ethertype %v", eth.EthernetType)
	}
	dot1q := p.Layer(layers.LayerTypeDot1Q).(*layers.Dot1Q)
	if dot1q.VLANIdentifier != 100 || dot1q.Type != layers.EthernetTypeIPv6 {
		t.Errorf("vlan %d inner ethertype %v", dot1q.VLANIdentifier, dot1q.Type)
	}
	ip6 := p.Layer(layers.LayerTypeIPv6).(*layers.IPv6)
	if ip6.NextHeader != layers.IPProtocolICMPv6 || int(ip6.Length) != ICMPHeaderSize+len(body) || ip6.HopLimit != 255 {
		t.Errorf("ipv6 next=%v len=%d hop=%d", ip6.NextHeader, ip6.Length, ip6.HopLimit)
	}
	icmp6 := p.Layer(layers.LayerTypeICMPv6).(*layers.ICMPv6)
	if icmp6.TypeCode.Type() != layers.ICMPv6TypeEchoRequest {
		t.Errorf("icmpv6 type %v", icmp6.TypeCode)
	}

	// The pseudo-header plus the whole ICMPv6 message must fold to 0xffff.
	ip := IPv6Header{
		PayloadLength: ip6.Length,
		NextHeader:    uint8(ip6.NextHeader),
		Src:           netip.MustParseAddr(ip6.SrcIP.String()),
		Dst:           netip.MustParseAddr(ip6.DstIP.String()),
	}
	if got := Checksum(frame[headerLen:], ip.PseudoHeaderPartialChecksum()); got != 0 {
		t.Errorf("checksum does not verify, residue %#04x", got)
	}
}

func TestBuildFrameHeaderV4(t *testing.T) {
	body := []byte("abcdefgh")
	ip := IPv4Header{
		TotalLength: uint16(IPv4MinHeaderSize + ICMPHeaderSize + len(body)),
		ID:          1,
		TTL:         64,
		Protocol:    ProtocolICMP,
		Src:         netip.MustParseAddr("10.0.0.1"),
		Dst:         netip.MustParseAddr("10.0.0.2"),
	}
	frame := make([]byte, TotalFrameLengthV4(uint32(len(body))))
	c := NewCursor(frame)
	if err := BuildFrameHeaderV4(c, testDstMac, testSrcMac, 7, ip, len(body)); err != nil {
		t.Fatal(err)
	}
	if c.Offset() != FrameHeaderSize+IPv4MinHeaderSize {
		t.Errorf("frame header is %d bytes", c.Offset())
	}
	hdr := ICMPHeader{Type: 8}
	csum, err := hdr.ComputeChecksumV4(*NewCursor(body), len(body))
	if err != nil {
		t.Fatal(err)
	}
	hdr.Checksum = csum
	hdr.Serialize(c)
	c.Push(body)
	if c.Len() != 0 {
		t.Fatalf("%d bytes left unused", c.Len())
	}

	p := gopacket.NewPacket(frame, layers.LayerTypeEthernet, gopacket.Default)
	dot1q, ok := p.Layer(layers.LayerTypeDot1Q).(*layers.Dot1Q)
	if !ok || dot1q.VLANIdentifier != 7 || dot1q.Type != layers.EthernetTypeIPv4 {
		t.Fatalf("bad 802.1Q layer: %v", p)
	}
	ip4, ok := p.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
	if !ok {
		t.Fatalf("no IPv4 layer: %v", p)
	}
	if ip4.Protocol != layers.IPProtocolICMPv4 || ip4.TTL != 64 || ip4.Length != ip.TotalLength {
		t.Errorf("ipv4 proto=%v ttl=%d len=%d", ip4.Protocol, ip4.TTL, ip4.Length)
	}
	if got := Checksum(frame[FrameHeaderSize:FrameHeaderSize+IPv4MinHeaderSize], 0); got != 0 {
		t.Errorf("IPv4 header checksum does not verify, residue %#04x", got)
	}
	if got := Checksum(frame[FrameHeaderSize+IPv4MinHeaderSize:], 0); got != 0 {
		t.Errorf("ICMP checksum does not verify, residue %#04x", got)
	}
}

func TestBuildFrameHeaderInvariants(t *testing.T) {
	good := IPv6Header{PayloadLength: ICMPHeaderSize + 8, NextHeader: ProtocolICMPv6}
	tests := []struct {
		name string
		fn   func()
	}{
		{"v6 next header", func() {
			ip := good
			ip.NextHeader = 17
			BuildFrameHeaderV6(NewCursor(make([]byte, 128)), testDstMac, testSrcMac, 1, ip, 8)
		}},
		{"v6 payload length", func() {
			BuildFrameHeaderV6(NewCursor(make([]byte, 128)), testDstMac, testSrcMac, 1, good, 9)
		}},
		{"v4 protocol", func() {
			ip := IPv4Header{TotalLength: 32, Protocol: 6}
			BuildFrameHeaderV4(NewCursor(make([]byte, 128)), testDstMac, testSrcMac, 1, ip, 8)
		}},
		{"v4 total length", func() {
			ip := IPv4Header{TotalLength: 33, Protocol: ProtocolICMP}
			BuildFrameHeaderV4(NewCursor(make([]byte, 128)), testDstMac, testSrcMac, 1, ip, 8)
		}},
		{"short mac", func() {
			BuildFrameHeaderV6(NewCursor(make([]byte, 128)), testDstMac[:5], testSrcMac, 1, good, 8)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.fn()
		})
	}
}

func TestBuildFrameHeaderBufferFull(t *testing.T) {
	ip := IPv6Header{PayloadLength: ICMPHeaderSize, NextHeader: ProtocolICMPv6}
	for _, n := range []int{0, FrameHeaderSize - 1, FrameHeaderSize + IPv6HeaderSize - 1} {
		err := BuildFrameHeaderV6(NewCursor(make([]byte, n)), testDstMac, testSrcMac, 1, ip, 0)
		if !errors.Is(err, ErrBufferFull) {
			t.Errorf("%d byte buffer: got %v, want ErrBufferFull", n, err)
		}
	}
}

func TestParseIPv6Header(t *testing.T) {
	want := IPv6Header{
		TrafficClass:  0xb8,
		FlowLabel:     0xabcde,
		PayloadLength: 24,
		NextHeader:    ProtocolICMPv6,
		HopLimit:      255,
		Src:           netip.MustParseAddr("2001:db8::1"),
		Dst:           netip.MustParseAddr("ff02::1"),
	}
	b := make([]byte, IPv6HeaderSize)
	if err := want.Serialize(NewCursor(b)); err != nil {
		t.Fatal(err)
	}
	got, err := ParseIPv6Header(NewCursor(b))
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	if _, err := ParseIPv6Header(NewCursor(b[:39])); !errors.Is(err, ErrTruncatedHeader) {
		t.Errorf("short header: got %v", err)
	}
	b[0] = 0x45
	if _, err := ParseIPv6Header(NewCursor(b)); err == nil {
		t.Error("accepted version 4 header")
	}
}
