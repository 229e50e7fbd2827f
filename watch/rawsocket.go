package watch

import (
	"golang.org/x/net/bpf"
	"golang.org/x/net/ipv6"
	"golang.org/x/sys/unix"
)

// bpfFilter represents a classic BPF filter program that can be applied to a socket
type bpfFilter []bpf.Instruction

// ApplyTo applies the current filter onto the provided file descriptor
func (filter bpfFilter) ApplyTo(fd int) (err error) {
	var assembled []bpf.RawInstruction
	if assembled, err = bpf.Assemble(filter); err != nil {
		return err
	}

	insns := make([]unix.SockFilter, len(assembled))
	for i, ins := range assembled {
		insns[i] = unix.SockFilter{Code: ins.Op, Jt: ins.Jt, Jf: ins.Jf, K: ins.K}
	}
	program := unix.SockFprog{
		Len:    uint16(len(insns)),
		Filter: &insns[0],
	}
	return unix.SetsockoptSockFprog(fd, unix.SOL_SOCKET, unix.SO_ATTACH_FILTER, &program)
}

// ndpFilter admits untagged IPv6 frames whose next header is ICMPv6 and
// whose ICMPv6 type is one of the five NDP messages (133-137).
var ndpFilter = bpfFilter{
	// Load "EtherType" field from the ethernet header.
	bpf.LoadAbsolute{Off: 12, Size: 2},
	// Jump to the drop packet instruction if EtherType is not IPv6.
	bpf.JumpIf{Cond: bpf.JumpNotEqual, Val: 0x86dd, SkipTrue: 6},
	// Load "Next Header" field from IPV6 header.
	bpf.LoadAbsolute{Off: 20, Size: 1},
	// Jump to the drop packet instruction if Next Header is not ICMPv6.
	bpf.JumpIf{Cond: bpf.JumpNotEqual, Val: 0x3a, SkipTrue: 4},
	// Load "Type" field from ICMPv6 header.
	bpf.LoadAbsolute{Off: 54, Size: 1},
	// Drop anything below Router Solicitation or above Redirect.
	bpf.JumpIf{Cond: bpf.JumpLessThan, Val: uint32(ipv6.ICMPTypeRouterSolicitation), SkipTrue: 2},
	bpf.JumpIf{Cond: bpf.JumpGreaterThan, Val: uint32(ipv6.ICMPTypeRedirect), SkipTrue: 1},
	// Verdict is: send up to maxFrameSize bytes of the packet to userspace.
	bpf.RetConstant{Val: maxFrameSize},
	// Verdict is: "ignore packet."
	bpf.RetConstant{Val: 0},
}

// setAllMulti toggles IFF_ALLMULTI so that Router Solicitations sent to
// ff02::2 reach a host that has not joined the all-routers group.
func setAllMulti(iface string, enable bool) error {
	ifr, err := unix.NewIfreq(iface)
	if err != nil {
		return err
	}
	fd, err := unix.Socket(unix.AF_INET6, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return err
	}
	defer unix.Close(fd)
	if err := unix.IoctlIfreq(fd, unix.SIOCGIFFLAGS, ifr); err != nil {
		return err
	}
	flags := ifr.Uint16()
	if enable {
		flags |= uint16(unix.IFF_ALLMULTI)
	} else {
		flags &^= uint16(unix.IFF_ALLMULTI)
	}
	ifr.SetUint16(flags)
	return unix.IoctlIfreq(fd, unix.SIOCSIFFLAGS, ifr)
}

// Htons Convert a uint16 to network byte order (big endian)
func htons(v uint16) int      { return int(htons16(v)) }
func htons16(v uint16) uint16 { return (v << 8) | (v >> 8) }
