package modules

import "strings"

var ModuleList []*Module

type Module struct {
	Name             string
	Commands         []Command
	InitCallback     func(CallbackInfo)
	CompleteCallback func()
	ShutdownCallback func()
}

type CallbackType int

const (
	CommandLine CallbackType = 0
	Config      CallbackType = 1
)

type Command struct {
	CommandText string
	Description string
	// BlockTerminate keeps the process running until interrupted once the command has been started.
	BlockTerminate     bool
	CommandLineEnabled bool
	ConfigEnabled      bool
}

type CallbackInfo struct {
	CallbackType CallbackType
	Command      Command
	// Arguments are the os.Args following the command, or the lines between the curly braces of a config block.
	Arguments []string
}

func RegisterModule(name string, commands []Command, initCallback func(CallbackInfo), completeCallback func(), shutdownCallback func()) {
	ModuleList = append(ModuleList, &Module{
		Name:             name,
		Commands:         commands,
		InitCallback:     initCallback,
		CompleteCallback: completeCallback,
		ShutdownCallback: shutdownCallback,
	})
}

// GetCommand finds the module owning target that is enabled for the given callback type.
func GetCommand(target string, scope CallbackType) (*Module, Command, bool) {
	for i := range ModuleList {
		for _, command := range ModuleList[i].Commands {
			if command.CommandText != target {
				continue
			}
			if (scope == CommandLine && command.CommandLineEnabled) || (scope == Config && command.ConfigEnabled) {
				return ModuleList[i], command, true
			}
		}
	}
	return nil, Command{}, false
}

// ExecuteInit dispatches a command to its module. It returns false when no module handles it.
func ExecuteInit(target string, scope CallbackType, arguments []string) (blocking bool, found bool) {
	module, command, ok := GetCommand(target, scope)
	if !ok {
		return false, false
	}
	module.InitCallback(CallbackInfo{
		CallbackType: scope,
		Command:      command,
		Arguments:    arguments,
	})
	return command.BlockTerminate, true
}

func ExecuteComplete() {
	for i := range ModuleList {
		ModuleList[i].CompleteCallback()
	}
}

func ShutdownAll() {
	for i := range ModuleList {
		ModuleList[i].ShutdownCallback()
	}
}

// Usage lists every command line command with its description.
func Usage() string {
	var b strings.Builder
	for i := range ModuleList {
		for _, command := range ModuleList[i].Commands {
			if !command.CommandLineEnabled {
				continue
			}
			b.WriteString("ndpwatch ")
			b.WriteString(command.Description)
			b.WriteString("\n")
		}
	}
	return b.String()
}
