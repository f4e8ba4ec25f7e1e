// Package commands parses slash commands and dispatches them against the
// lifecycle controller and the session state.
package commands

import (
	"fmt"
	"strings"

	"github.com/charliek/devcli/internal/domain"
)

// Name identifies a command
type Name string

const (
	Start   Name = "start"
	Stop    Name = "stop"
	Restart Name = "restart"
	Logs    Name = "logs"
	Status  Name = "status"
	Clear   Name = "clear"
	Help    Name = "help"
	Exit    Name = "exit"
)

// ArgKind is what a command's single argument may be
type ArgKind int

const (
	ArgNone   ArgKind = iota
	ArgTarget         // service id or group name
	ArgView           // service id, all, off or clear
)

// Definition describes one command for parsing, help and completion
type Definition struct {
	Name    Name
	Arg     ArgKind
	Usage   string
	Summary string
	// RequiresExec commands run with the terminal released because they
	// spawn or signal processes
	RequiresExec bool
}

var definitions = []Definition{
	{Name: Start, Arg: ArgTarget, Usage: "/start <id|group>", Summary: "Start a service or group", RequiresExec: true},
	{Name: Stop, Arg: ArgTarget, Usage: "/stop <id|group>", Summary: "Stop a service or group", RequiresExec: true},
	{Name: Restart, Arg: ArgTarget, Usage: "/restart <id|group>", Summary: "Stop then start", RequiresExec: true},
	{Name: Logs, Arg: ArgView, Usage: "/logs <id|all|off|clear>", Summary: "Change the log view"},
	{Name: Status, Usage: "/status", Summary: "Show service state"},
	{Name: Clear, Usage: "/clear", Summary: "Clear logs and the status line"},
	{Name: Help, Usage: "/help", Summary: "List commands"},
	{Name: Exit, Usage: "/exit", Summary: "Stop managed services and quit"},
}

var aliases = map[string]Name{
	"quit": Exit,
	"q":    Exit,
	"?":    Help,
}

// Definitions returns every command in help order
func Definitions() []Definition {
	return definitions
}

// Lookup finds a command by name or alias
func Lookup(name string) (Definition, bool) {
	if alias, ok := aliases[name]; ok {
		name = string(alias)
	}
	for _, s := range definitions {
		if string(s.Name) == name {
			return s, true
		}
	}
	return Definition{}, false
}

// Command is a parsed input line
type Command struct {
	Definition Definition
	Args       []string
	Raw        string
}

// Name returns the resolved command name
func (c Command) Name() Name {
	return c.Definition.Name
}

// Arg returns the first argument or ""
func (c Command) Arg() string {
	if len(c.Args) == 0 {
		return ""
	}
	return c.Args[0]
}

// Parse reads "/name args...". The leading slash is optional so one-shot
// verbs parse the same way.
func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	fields := strings.Fields(strings.TrimPrefix(raw, "/"))
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty input", domain.ErrUnknownCommand)
	}
	def, ok := Lookup(strings.ToLower(fields[0]))
	if !ok {
		return Command{}, fmt.Errorf("%w: /%s", domain.ErrUnknownCommand, fields[0])
	}
	return Command{Definition: def, Args: fields[1:], Raw: raw}, nil
}

// HelpText lists every command with its usage
func HelpText() string {
	var b strings.Builder
	for i, s := range definitions {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%-26s %s", s.Usage, s.Summary)
	}
	return b.String()
}
