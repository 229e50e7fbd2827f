package packet

import (
	"fmt"
	"log/slog"
	"net"

	"golang.org/x/net/ipv6"
)

// NDPOptionType is the type octet of an NDP option (RFC 4861 section 4.6).
// Values without a named constant are kept as their raw code.
type NDPOptionType uint8

const (
	NDPOptionSourceLinkLayerAddress NDPOptionType = 1
	NDPOptionTargetLinkLayerAddress NDPOptionType = 2
	NDPOptionPrefixInformation      NDPOptionType = 3
	NDPOptionRedirectedHeader       NDPOptionType = 4
	NDPOptionMTU                    NDPOptionType = 5
)

// Known reports whether t is one of the named option types.
func (t NDPOptionType) Known() bool {
	return t >= NDPOptionSourceLinkLayerAddress && t <= NDPOptionMTU
}

func (t NDPOptionType) String() string {
	switch t {
	case NDPOptionSourceLinkLayerAddress:
		return "SourceLinkLayerAddress"
	case NDPOptionTargetLinkLayerAddress:
		return "TargetLinkLayerAddress"
	case NDPOptionPrefixInformation:
		return "PrefixInformation"
	case NDPOptionRedirectedHeader:
		return "RedirectedHeader"
	case NDPOptionMTU:
		return "MTU"
	default:
		return fmt.Sprintf("Unrecognized(%d)", uint8(t))
	}
}

const (
	ndpOptionHeaderSize = 2
	// Option lengths are counted in units of 8 octets, type and length included.
	ndpLengthUnit = 8

	ndpMTUValueSize = 6
	macSize         = 6
)

type NDPOptionHeader struct {
	Type   NDPOptionType
	Length uint8
}

// ValueLength is the number of bytes following the type and length octets.
func (h NDPOptionHeader) ValueLength() int {
	return int(h.Length)*ndpLengthUnit - ndpOptionHeaderSize
}

func ParseNDPOptionHeader(c *Cursor) (NDPOptionHeader, error) {
	b, err := c.ReadBytes(ndpOptionHeaderSize)
	if err != nil {
		return NDPOptionHeader{}, parseError(TruncatedOption, "NDP option is not present")
	}
	return NDPOptionHeader{Type: NDPOptionType(b[0]), Length: b[1]}, nil
}

// DecodeMTUOption decodes the value of an MTU option: two reserved octets
// that must be zero followed by the MTU.
func DecodeMTUOption(c *Cursor) (uint32, error) {
	if c.Len() < ndpMTUValueSize {
		return 0, parseError(TruncatedOption, "NDP MTU option is too small")
	}
	reserved, _ := c.ReadBE16()
	if reserved != 0 {
		return 0, parseError(MalformedOption, "NDP MTU option has non-zero reserved field %#04x", reserved)
	}
	return c.ReadBE32()
}

func DecodeSourceLinkLayerAddressOption(c *Cursor) (net.HardwareAddr, error) {
	b, err := c.ReadBytes(macSize)
	if err != nil {
		return nil, parseError(TruncatedOption, "NDP source link-layer address option is too small")
	}
	return net.HardwareAddr(append([]byte(nil), b...)), nil
}

// NDPOptions holds the options the control plane consumes. When an option
// occurs more than once the last occurrence wins.
type NDPOptions struct {
	MTU    uint32
	HasMTU bool
	// SourceLinkLayerAddress is nil when the option was absent.
	SourceLinkLayerAddress net.HardwareAddr
}

func (o NDPOptions) LogValue() slog.Value {
	var attrs []slog.Attr
	if o.HasMTU {
		attrs = append(attrs, slog.Any("mtu", o.MTU))
	}
	if o.SourceLinkLayerAddress != nil {
		attrs = append(attrs, slog.String("sllao", o.SourceLinkLayerAddress.String()))
	}
	return slog.GroupValue(attrs...)
}

// ParseNDPOptions walks the option chain in c in wire order. It never fails:
// on a truncated or malformed option the walk stops and whatever was decoded
// so far is returned, with the reason logged to logger. Options that are not
// decoded are skipped using their declared length. A nil logger logs to
// slog.Default().
func ParseNDPOptions(c *Cursor, logger *slog.Logger) NDPOptions {
	if logger == nil {
		logger = slog.Default()
	}
	var options NDPOptions
	for c.Len() > 0 {
		if err := parseNDPOption(c, &options, logger); err != nil {
			logger.Warn("Stopped parsing NDP options", "error", err, "offset", c.Offset())
			break
		}
	}
	return options
}

func parseNDPOption(c *Cursor, options *NDPOptions, logger *slog.Logger) error {
	hdr, err := ParseNDPOptionHeader(c)
	if err != nil {
		return err
	}
	if hdr.Length == 0 {
		return parseError(MalformedOption, "NDP %v option has zero length", hdr.Type)
	}
	value, err := c.Sub(hdr.ValueLength())
	if err != nil {
		return parseError(TruncatedOption, "NDP %v option declares %d bytes, %d remain",
			hdr.Type, hdr.ValueLength(), c.Len())
	}

	switch hdr.Type {
	case NDPOptionMTU:
		mtu, err := DecodeMTUOption(value)
		if err != nil {
			return err
		}
		options.MTU, options.HasMTU = mtu, true
	case NDPOptionSourceLinkLayerAddress:
		mac, err := DecodeSourceLinkLayerAddressOption(value)
		if err != nil {
			return err
		}
		options.SourceLinkLayerAddress = mac
	case NDPOptionRedirectedHeader, NDPOptionPrefixInformation, NDPOptionTargetLinkLayerAddress:
		logger.Info("Ignoring NDP option", "type", hdr.Type, "length", hdr.Length)
	default:
		logger.Info("Ignoring unknown NDP option", "type", hdr.Type, "length", hdr.Length)
	}
	return nil
}

// NDPOptionsOffset returns the size of the fixed message body that sits
// between the ICMPv6 header and the option chain for each NDP message type.
// ok is false for types that carry no NDP options.
func NDPOptionsOffset(t ipv6.ICMPType) (offset int, ok bool) {
	switch t {
	case ipv6.ICMPTypeRouterSolicitation:
		return 4, true
	case ipv6.ICMPTypeRouterAdvertisement:
		return 12, true
	case ipv6.ICMPTypeNeighborSolicitation, ipv6.ICMPTypeNeighborAdvertisement:
		return 20, true
	case ipv6.ICMPTypeRedirect:
		return 36, true
	}
	return 0, false
}
