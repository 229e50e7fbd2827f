package watch

import (
	"errors"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

const maxFrameSize = 4096

func listen(iface string, allMulti bool, reports chan<- *Report, stopWG *sync.WaitGroup, stopChan chan struct{}) {
	defer stopWG.Done()

	niface, err := net.InterfaceByName(iface)
	if err != nil {
		ShowFatalError(err.Error())
	}

	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW|unix.SOCK_CLOEXEC, htons(unix.ETH_P_IPV6))
	if err != nil {
		ShowFatalError("Failed setting up listener on interface", iface)
	}

	slog.Debug("Obtained fd", "fd", fd)
	err = unix.Bind(fd, &unix.SockaddrLinklayer{
		Protocol: htons16(unix.ETH_P_IPV6),
		Ifindex:  niface.Index,
	})
	if err != nil {
		ShowFatalError(err.Error())
	}
	slog.Debug("Bound to interface", "fd", fd, "interface", iface)

	if allMulti {
		if err := setAllMulti(iface, true); err != nil {
			slog.Warn("Failed enabling all-multicast", "interface", iface, "error", err)
		} else {
			defer func() {
				if err := setAllMulti(iface, false); err != nil {
					slog.Warn("Failed disabling all-multicast", "interface", iface, "error", err)
				}
			}()
		}
	}

	if err := ndpFilter.ApplyTo(fd); err != nil {
		ShowFatalError(err.Error())
	}

	err = unix.SetNonblock(fd, true)
	if err != nil {
		slog.Warn("Failed setting nonblock", "fd", fd)
	}

	fdN := os.NewFile(uintptr(fd), "")
	go func() {
		<-stopChan
		_ = fdN.Close()
	}()

	logger := slog.Default().With("interface", iface)
	buf := make([]byte, maxFrameSize)
	for {
		numRead, err := fdN.Read(buf)
		if err != nil {
			if errors.Is(err, os.ErrClosed) {
				return
			}
			ShowFatalError(err.Error())
		}

		pLogger := logger.With("packet", hexValue{buf[:numRead]})

		if numRead >= 12 && net.HardwareAddr(buf[6:12]).String() == niface.HardwareAddr.String() {
			pLogger.Debug("Dropping packet from ourselves")
			continue
		}

		report, err := DecodeFrame(buf[:numRead], pLogger)
		if err != nil {
			pLogger.Debug("Dropping packet", "error", err)
			continue
		}
		report.Interface = iface
		report.Frame = append([]byte(nil), buf[:numRead]...)
		report.Time = time.Now()
		pLogger.Debug("Got packet", "report", report)

		select {
		case reports <- report:
		case <-stopChan:
			return
		}
	}
}
