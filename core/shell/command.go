package shell

import (
	"fmt"
	"strings"
)

// Redir names the file a command stream is rerouted to or from. Append
// only applies to output streams.
type Redir struct {
	Target string
	Append bool
}

// Command is one pipeline stage: a program invocation plus optional
// per-stream redirections. Argv is never empty for a command that
// reaches execution. The `&>` operator materializes as Stdout and
// Stderr pointing at the same target.
type Command struct {
	Argv   []string
	Stdin  *Redir
	Stdout *Redir
	Stderr *Redir
}

// Pipeline is an ordered, non-empty sequence of commands linked stdout
// to stdin, run as a single foreground or background unit.
type Pipeline struct {
	Commands   []*Command
	Background bool
}

// String renders the stage in a compact debug form.
func (c *Command) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%q", c.Argv)
	if c.Stdin != nil {
		fmt.Fprintf(&b, " <%s", c.Stdin.Target)
	}
	if c.Stdout != nil {
		fmt.Fprintf(&b, " %s%s", outOp(c.Stdout), c.Stdout.Target)
	}
	if c.Stderr != nil {
		fmt.Fprintf(&b, " 2%s%s", outOp(c.Stderr), c.Stderr.Target)
	}
	return b.String()
}

func outOp(r *Redir) string {
	if r.Append {
		return ">>"
	}
	return ">"
}

// String renders the whole pipeline in a compact debug form.
func (p *Pipeline) String() string {
	parts := make([]string, 0, len(p.Commands))
	for _, c := range p.Commands {
		parts = append(parts, c.String())
	}
	out := strings.Join(parts, " | ")
	if p.Background {
		out += " &"
	}
	return out
}
