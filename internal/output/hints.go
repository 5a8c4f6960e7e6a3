package output

import (
	"fmt"
	"strings"
)

// CommandHints maps command names to related commands users might want to run next
var CommandHints = map[string][]string{
	"login":              {"whoami", "repos"},
	"logout":             {"login"},
	"whoami":             {"session check", "repos"},
	"session refresh":    {"whoami"},
	"token set":          {"repos"},
	"token clear":        {"token set", "login"},
	"repos":              {"import --repo <owner/name>", "report --preset <preset>"},
	"import":             {"report --preset <preset>"},
	"presets":            {"report --preset <preset>"},
	"report":             {"achievement create"},
	"achievement create": {"report --preset <preset>"},
}

// PrintHints prints "See also" hints for a command. No-op in quiet mode or if command has no hints.
func (p *Printer) PrintHints(command string) {
	if p.quiet {
		return
	}
	hints, ok := CommandHints[command]
	if !ok || len(hints) == 0 {
		return
	}

	cmds := make([]string, len(hints))
	for i, h := range hints {
		cmds[i] = "bragctl " + h
	}
	fmt.Fprintf(p.out, "\nSee also: %s\n", strings.Join(cmds, ", "))
}
