package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ndpwatch/modules"
	_ "ndpwatch/modules/core"
	"ndpwatch/watch"
)

func main() {
	args := make([]string, 0, len(os.Args))
	for _, a := range os.Args[1:] {
		if a == "-debug" {
			watch.EnableDebugLog()
			continue
		}
		args = append(args, a)
	}

	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	var blocking bool
	if args[0] == "config" {
		if len(args) != 2 {
			printUsage()
			os.Exit(1)
		}
		blocking = readConfig(args[1])
	} else {
		var found bool
		blocking, found = modules.ExecuteInit(args[0], modules.CommandLine, args[1:])
		if !found {
			printUsage()
			os.Exit(1)
		}
	}

	modules.ExecuteComplete()

	if blocking {
		waitForSignal()
	}
	modules.ShutdownAll()
}

func printUsage() {
	fmt.Println("More options and additional documentation in the example config file")
	fmt.Println("Usage:")
	fmt.Println("ndpwatch config <path to file>")
	fmt.Print(modules.Usage())
	fmt.Println("Add -debug anywhere on the command line for verbose logging")
}

func waitForSignal() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	fmt.Println("Exit")
}
