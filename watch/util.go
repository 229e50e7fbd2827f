package watch

import (
	"fmt"
	"log/slog"
	"net"
	"os"
)

func EnableDebugLog() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug, AddSource: true})))
}

type hexValue struct {
	arg []byte
}

func (v hexValue) LogValue() slog.Value {
	return slog.StringValue(fmt.Sprintf("%X", v.arg))
}

type macValue struct {
	arg net.HardwareAddr
}

func (v macValue) LogValue() slog.Value {
	if len(v.arg) != 6 {
		return slog.StringValue(fmt.Sprintf("%X", []byte(v.arg)))
	}
	return slog.StringValue(v.arg.String())
}

func isValidNetworkInterface(iface string) bool {
	if iface == "" {
		return false
	}
	if _, err := net.InterfaceByName(iface); err != nil {
		return false
	}
	return true
}

func checkIsValidNetworkInterfaceFatal(iface ...string) {
	for i := range iface {
		if !isValidNetworkInterface(iface[i]) {
			ShowFatalError(fmt.Sprintf("No such network interface \"%s\"", iface[i]))
		}
	}
}

// ShowFatalError prints the given message and terminates the process.
func ShowFatalError(error ...string) {
	fmt.Printf("Error: ")
	for _, err := range error {
		fmt.Printf("%s ", err)
	}
	fmt.Println()
	fmt.Println("Exiting due to error")
	os.Exit(1)
}
