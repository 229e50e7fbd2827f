package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"ndpwatch/modules"
	"ndpwatch/watch"
)

type configBlock struct {
	command string
	lines   []string
}

type configFile struct {
	debug  bool
	blocks []configBlock
}

// readConfig dispatches every block of the config file at dest to its module
// and reports whether any of them keeps the process running.
func readConfig(dest string) bool {
	file, err := os.Open(dest)
	if err != nil {
		watch.ShowFatalError(err.Error())
	}
	defer file.Close()

	cfg, err := parseConfig(file)
	if err != nil {
		watch.ShowFatalError("config:", err.Error())
	}
	if cfg.debug {
		watch.EnableDebugLog()
	}

	blocking := false
	for _, b := range cfg.blocks {
		block, found := modules.ExecuteInit(b.command, modules.Config, b.lines)
		if !found {
			watch.ShowFatalError("config:", fmt.Sprintf("unknown block \"%s\"", b.command))
		}
		blocking = blocking || block
	}
	return blocking
}

func parseConfig(r io.Reader) (*configFile, error) {
	cfg := &configFile{}
	scanner := bufio.NewScanner(r)
	var current *configBlock
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if current != nil {
			if strings.HasPrefix(line, "}") {
				cfg.blocks = append(cfg.blocks, *current)
				current = nil
				continue
			}
			current.lines = append(current.lines, line)
			continue
		}
		if strings.HasPrefix(line, "debug") {
			cfg.debug = strings.TrimSpace(strings.TrimPrefix(line, "debug")) == "on"
			continue
		}
		if !strings.HasSuffix(line, "{") {
			return nil, fmt.Errorf("line %d: expected \"<command> {\", got %q", lineNo, line)
		}
		current = &configBlock{command: strings.TrimSpace(strings.TrimSuffix(line, "{"))}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if current != nil {
		return nil, fmt.Errorf("block %q is not closed", current.command)
	}
	return cfg, nil
}
