package core

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"ndpwatch/modules"
	"ndpwatch/watch"
)

func init() {
	commands := []modules.Command{{
		CommandText:        "watch",
		Description:        "watch <interface> <optional \"allmulti\" to also see router solicitations> <optional \"pcap <file>\" to record matched frames>",
		BlockTerminate:     true,
		CommandLineEnabled: true,
		ConfigEnabled:      true,
	}, {
		CommandText:        "solicit",
		Description:        "solicit <interface> <optional VLAN id, default 0> - send one tagged router solicitation",
		BlockTerminate:     false,
		CommandLineEnabled: true,
		ConfigEnabled:      true,
	}, {
		CommandText:        "modules",
		Description:        "modules available - list available modules",
		BlockTerminate:     false,
		CommandLineEnabled: true,
		ConfigEnabled:      false,
	}}
	modules.RegisterModule("Core", commands, initCallback, completeCallback, shutdownCallback)
}

type configWatch struct {
	Iface    string
	AllMulti bool
	Pcap     string
	instance *watch.WatcherObj
	capture  *watch.Capture
}

type configSolicit struct {
	Iface string
	VLAN  uint16
}

var allWatchers []*configWatch
var allSolicits []*configSolicit

func initCallback(callback modules.CallbackInfo) {
	var err error
	switch callback.Command.CommandText {
	case "watch":
		var obj *configWatch
		if callback.CallbackType == modules.CommandLine {
			obj, err = parseWatchArgs(callback.Arguments)
		} else {
			obj, err = parseWatchConfig(callback.Arguments)
		}
		if err == nil {
			allWatchers = append(allWatchers, obj)
		}
	case "solicit":
		var obj *configSolicit
		if callback.CallbackType == modules.CommandLine {
			obj, err = parseSolicitArgs(callback.Arguments)
		} else {
			obj, err = parseSolicitConfig(callback.Arguments)
		}
		if err == nil {
			allSolicits = append(allSolicits, obj)
		}
	case "modules":
		if modules.ModuleList != nil {
			fmt.Print("Available Modules: ")
			for i := range modules.ModuleList {
				fmt.Print((*modules.ModuleList[i]).Name + " ")
			}
			fmt.Println()
		}
	}
	if err != nil {
		watch.ShowFatalError(callback.Command.CommandText+":", err.Error())
	}
}

func parseWatchArgs(args []string) (*configWatch, error) {
	usage := fmt.Errorf("usage: watch <interface> [allmulti] [pcap <file>]")
	if len(args) < 1 {
		return nil, usage
	}
	obj := &configWatch{Iface: args[0]}
	for i := 1; i < len(args); i++ {
		switch {
		case args[i] == "allmulti":
			obj.AllMulti = true
		case args[i] == "pcap" && i+1 < len(args):
			i++
			obj.Pcap = args[i]
		default:
			return nil, usage
		}
	}
	return obj, nil
}

func parseSolicitArgs(args []string) (*configSolicit, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, fmt.Errorf("usage: solicit <interface> [vlan]")
	}
	obj := &configSolicit{Iface: args[0]}
	if len(args) == 2 {
		vlan, err := parseVLAN(args[1])
		if err != nil {
			return nil, err
		}
		obj.VLAN = vlan
	}
	return obj, nil
}

func parseWatchConfig(lines []string) (*configWatch, error) {
	obj := &configWatch{}
	for _, n := range lines {
		n = strings.TrimSpace(n)
		if strings.HasPrefix(n, "iface") {
			obj.Iface = strings.TrimSpace(strings.TrimPrefix(n, "iface"))
		}
		if strings.HasPrefix(n, "allmulti") {
			obj.AllMulti = strings.TrimSpace(strings.TrimPrefix(n, "allmulti")) == "on"
		}
		if strings.HasPrefix(n, "pcap") {
			obj.Pcap = strings.TrimSpace(strings.TrimPrefix(n, "pcap"))
		}
	}
	if obj.Iface == "" {
		return nil, fmt.Errorf("watch block without iface")
	}
	return obj, nil
}

func parseSolicitConfig(lines []string) (*configSolicit, error) {
	obj := &configSolicit{}
	for _, n := range lines {
		n = strings.TrimSpace(n)
		if strings.HasPrefix(n, "iface") {
			obj.Iface = strings.TrimSpace(strings.TrimPrefix(n, "iface"))
		}
		if strings.HasPrefix(n, "vlan") {
			vlan, err := parseVLAN(strings.TrimSpace(strings.TrimPrefix(n, "vlan")))
			if err != nil {
				return nil, err
			}
			obj.VLAN = vlan
		}
	}
	if obj.Iface == "" {
		return nil, fmt.Errorf("solicit block without iface")
	}
	return obj, nil
}

func parseVLAN(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil || v > 4094 {
		return 0, fmt.Errorf("invalid VLAN id %q", s)
	}
	return uint16(v), nil
}

func completeCallback() {
	for _, n := range allWatchers {
		var onReport func(*watch.Report)
		if n.Pcap != "" {
			c, err := watch.NewCaptureFile(n.Pcap)
			if err != nil {
				watch.ShowFatalError("watch:", err.Error())
			}
			n.capture = c
			onReport = func(r *watch.Report) {
				if err := c.Write(r); err != nil {
					slog.Warn("Failed writing capture", "file", n.Pcap, "error", err)
				}
			}
		}
		o := watch.NewWatcher(n.Iface, n.AllMulti, onReport)
		n.instance = o
		o.Start()
	}

	var g errgroup.Group
	for _, n := range allSolicits {
		g.Go(func() error {
			if err := watch.SendRouterSolicitation(n.Iface, n.VLAN); err != nil {
				return fmt.Errorf("sending router solicitation on %s: %w", n.Iface, err)
			}
			slog.Info("Sent router solicitation", "interface", n.Iface, "vlan", n.VLAN)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Println("Error:", err)
	}
}

func shutdownCallback() {
	for _, n := range allWatchers {
		if n.instance != nil {
			n.instance.Stop()
		}
		if n.capture != nil {
			if err := n.capture.Close(); err != nil {
				slog.Warn("Failed closing capture", "file", n.Pcap, "error", err)
			}
		}
	}
}
