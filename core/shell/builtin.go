package shell

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pborman/getopt/v2"
	"mvdan.cc/sh/v3/syntax"
)

// AllBuiltins holds every registered shell builtin.
var AllBuiltins = make(map[string]Builtin)

// Builtin is a command that runs inside the interpreter process because
// it mutates interpreter-owned state: the working directory, the
// environment, the alias table, or the interpreter's lifetime.
type Builtin interface {
	Main(s *Shell, args []string) int
}

type BuiltinFunc func(s *Shell, args []string) int

func (f BuiltinFunc) Main(s *Shell, args []string) int {
	return f(s, args)
}

var _ Builtin = (BuiltinFunc)(nil)

// Cd is the cd shell builtin. Without an argument it changes to $HOME.
func Cd(s *Shell, args []string) int {
	switch len(args) {
	case 1:
		args = append(args, s.Env.Getenv(EnvHome))
		fallthrough
	case 2:
		if err := os.Chdir(args[1]); err != nil {
			fmt.Fprintf(s.stderr, "%s: %v\n", args[0], err)
			return 1
		}
		if wd, err := os.Getwd(); err == nil {
			_ = s.Env.Setenv(EnvPWD, wd)
		}
	default:
		fmt.Fprintf(s.stderr, "%s: too many arguments\n", args[0])
		return 1
	}
	return 0
}

// Pwd prints the interpreter's working directory.
func Pwd(s *Shell, args []string) int {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(s.stderr, "%s: %v\n", args[0], err)
		return 1
	}
	fmt.Fprintln(s.stdout, wd)
	return 0
}

// Exit quits the shell. Without an argument the exit code is the last
// pipeline's status. A bad argument complains and leaves the shell
// running.
func Exit(s *Shell, args []string) int {
	code := s.lastStatus
	switch {
	case len(args) > 2:
		fmt.Fprintf(s.stderr, "%s: too many arguments\n", args[0])
		return 1
	case len(args) == 2:
		n, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintf(s.stderr, "%s: %s: numeric argument required\n", args[0], args[1])
			return 2
		}
		code = n
	}

	s.Quit = true
	s.exitCode = int(uint8(code))
	return s.exitCode
}

// Export sets or touches environment variables. Without arguments it
// lists the environment, sorted.
func Export(s *Shell, args []string) int {
	if len(args) == 1 {
		entries := s.Env.Environ()
		sort.Strings(entries)
		for _, entry := range entries {
			fmt.Fprintln(s.stdout, entry)
		}
		return 0
	}

	ret := 0
	for _, arg := range args[1:] {
		name, value, hasValue := strings.Cut(arg, "=")
		if !syntax.ValidName(name) {
			fmt.Fprintf(s.stderr, "%s: `%s': not a valid identifier\n", args[0], arg)
			ret = 1
			continue
		}
		if hasValue {
			_ = s.Env.Setenv(name, value)
		} else if _, ok := s.Env.LookupEnv(name); !ok {
			// Bare names define the variable as empty if unset.
			_ = s.Env.Setenv(name, "")
		}
	}
	return ret
}

// Unset removes environment variables.
func Unset(s *Shell, args []string) int {
	ret := 0
	for _, name := range args[1:] {
		if !syntax.ValidName(name) {
			fmt.Fprintf(s.stderr, "%s: `%s': not a valid identifier\n", args[0], name)
			ret = 1
			continue
		}
		_ = s.Env.Unsetenv(name)
	}
	return ret
}

// Alias defines or prints aliases. Without arguments it lists every
// definition, sorted by name.
func Alias(s *Shell, args []string) int {
	if len(args) == 1 {
		for _, name := range s.Aliases.Names() {
			fmt.Fprintf(s.stdout, "alias %s=%s\n", name, quoteWord(s.Aliases[name]))
		}
		return 0
	}

	ret := 0
	for _, arg := range args[1:] {
		name, value, hasValue := strings.Cut(arg, "=")
		if hasValue {
			s.Aliases[name] = value
			continue
		}
		if value, ok := s.Aliases[name]; ok {
			fmt.Fprintf(s.stdout, "alias %s=%s\n", name, quoteWord(value))
		} else {
			fmt.Fprintf(s.stderr, "%s: %s: not found\n", args[0], name)
			ret = 1
		}
	}
	return ret
}

// quoteWord renders value so it survives re-lexing.
func quoteWord(value string) string {
	quoted, err := syntax.Quote(value, syntax.LangPOSIX)
	if err != nil {
		// Contains bytes no quoting can represent; show it raw.
		return value
	}
	return quoted
}

// Unalias removes alias definitions; -a removes all of them.
func Unalias(s *Shell, args []string) int {
	opts := getopt.New()
	all := opts.Bool('a', "remove all alias definitions")

	if err := opts.Getopt(args, nil); err != nil {
		fmt.Fprintln(s.stderr, err)
		fmt.Fprintf(s.stderr, "usage: %s [-a] name [name ...]\n", args[0])
		return 2
	}

	if *all {
		for name := range s.Aliases {
			delete(s.Aliases, name)
		}
		return 0
	}

	rest := opts.Args()
	if len(rest) == 0 {
		fmt.Fprintf(s.stderr, "usage: %s [-a] name [name ...]\n", args[0])
		return 2
	}

	ret := 0
	for _, name := range rest {
		if _, ok := s.Aliases[name]; !ok {
			fmt.Fprintf(s.stderr, "%s: %s: not found\n", args[0], name)
			ret = 1
			continue
		}
		delete(s.Aliases, name)
	}
	return ret
}

// History prints the persisted history list, numbered from 1, or clears
// it with -c.
func History(s *Shell, args []string) int {
	opts := getopt.New()
	clear := opts.Bool('c', "clear the history by deleting all entries")
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(args, nil); err != nil || *helpOpt {
		w := s.stderr
		if err != nil {
			fmt.Fprintln(w, err)
		}
		fmt.Fprintln(w, "Display or manipulate the history list.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Options:")
		opts.PrintOptions(w)
		if err != nil {
			return 1
		}
		return 0
	}

	if *clear {
		if err := s.clearHistory(); err != nil {
			fmt.Fprintf(s.stderr, "%s: %v\n", args[0], err)
			return 1
		}
		return 0
	}

	lines, err := s.historyLines()
	if err != nil {
		fmt.Fprintf(s.stderr, "%s: %v\n", args[0], err)
		return 1
	}
	for i, line := range lines {
		fmt.Fprintf(s.stdout, "% 5d  %s\n", i+1, line)
	}
	return 0
}

// Source reads a file and executes its lines through the same driver
// loop, sharing all interpreter state with the caller.
func Source(s *Shell, args []string) int {
	if len(args) < 2 {
		fmt.Fprintf(s.stderr, "%s: filename argument required\n", args[0])
		return 2
	}

	fd, err := s.fs.Open(args[1])
	if err != nil {
		fmt.Fprintf(s.stderr, "%s: %s: %v\n", args[0], args[1], err)
		return 1
	}
	defer fd.Close()

	return s.RunScript(fd)
}

func init() {
	AllBuiltins["cd"] = BuiltinFunc(Cd)
	AllBuiltins["pwd"] = BuiltinFunc(Pwd)
	AllBuiltins["exit"] = BuiltinFunc(Exit)
	AllBuiltins["export"] = BuiltinFunc(Export)
	AllBuiltins["unset"] = BuiltinFunc(Unset)
	AllBuiltins["alias"] = BuiltinFunc(Alias)
	AllBuiltins["unalias"] = BuiltinFunc(Unalias)
	AllBuiltins["history"] = BuiltinFunc(History)
	AllBuiltins["source"] = BuiltinFunc(Source)
	AllBuiltins["."] = BuiltinFunc(Source)
}
