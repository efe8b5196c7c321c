package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/user"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/afero"

	"github.com/mish-shell/mish/core/config"
	"github.com/mish-shell/mish/core/logger"
)

const (
	EnvHome     = "HOME"
	EnvPWD      = "PWD"
	EnvPath     = "PATH"
	EnvPrompt   = "PS1"
	EnvHostname = "HOSTNAME"
	EnvUser     = "USER"
	EnvHistFile = "HISTFILE"
	EnvHistSize = "HISTSIZE"
	EnvViMode   = "SHELL_VI_MODE"

	DefaultPrompt      = `\u@\h:\w\$ `
	DefaultHistoryFile = `~/.mish_history`
)

// Shell is the interpreter context: environment, aliases, jobs, and the
// streams every component reads and writes. One Shell serves one
// session. Builtins mutate it in place and source reenters the driver
// loop with the same pointer, so their effects stay visible to the
// caller.
type Shell struct {
	Env      Environ
	Aliases  AliasTable
	Jobs     *JobTable
	Readline *readline.Instance
	Log      *logger.SessionLogger

	fs     afero.Fs
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	fg     *foregroundSet
	router *signalRouter

	promptTemplate string
	colorPrompt    bool
	historyFile    string
	historySize    int
	viMode         bool

	lastStatus int
	exitCode   int
	closed     bool

	// Quit is set by the exit builtin; the driver loops check it between
	// lines so teardown runs deterministically.
	Quit bool
}

// Options configures a Shell. Zero values fall back to the host
// process's streams, environment, and filesystem.
type Options struct {
	Config *config.Config
	Env    Environ
	FS     afero.Fs
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Log    *logger.SessionLogger
}

// New constructs an interpreter context and installs its interrupt
// handler. Callers must Close the shell to release the handler.
func New(opts Options) *Shell {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	s := &Shell{
		Env:     opts.Env,
		Aliases: make(AliasTable),
		Jobs:    NewJobTable(),
		Log:     opts.Log,
		fs:      opts.FS,
		stdin:   opts.Stdin,
		stdout:  opts.Stdout,
		stderr:  opts.Stderr,
		fg:      newForegroundSet(),
	}
	if s.Env == nil {
		s.Env = NewOSEnv()
	}
	if s.Log == nil {
		s.Log = logger.Discard().Sessionless()
	}
	if s.fs == nil {
		s.fs = afero.NewOsFs()
	}
	if s.stdin == nil {
		s.stdin = os.Stdin
	}
	if s.stdout == nil {
		s.stdout = os.Stdout
	}
	if s.stderr == nil {
		s.stderr = os.Stderr
	}

	s.initEnv()
	s.applyConfig(cfg)

	s.router = newSignalRouter(s.fg, s.stderr, s.Log)
	s.router.install()

	return s
}

// initEnv fills environment gaps a login shell would normally provide.
// Existing values are never overwritten.
func (s *Shell) initEnv() {
	if _, ok := s.Env.LookupEnv(EnvPath); !ok {
		_ = s.Env.Setenv(EnvPath, "/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin")
	}
	if _, ok := s.Env.LookupEnv(EnvUser); !ok {
		if u, err := user.Current(); err == nil {
			_ = s.Env.Setenv(EnvUser, u.Username)
		}
	}
	if _, ok := s.Env.LookupEnv(EnvHostname); !ok {
		if host, err := os.Hostname(); err == nil {
			_ = s.Env.Setenv(EnvHostname, host)
		}
	}
	if wd, err := os.Getwd(); err == nil {
		_ = s.Env.Setenv(EnvPWD, wd)
	}
}

// applyConfig folds the startup configuration into the shell.
// Environment variables always win over configured values.
func (s *Shell) applyConfig(cfg *config.Config) {
	s.promptTemplate = cfg.Prompt
	if s.promptTemplate == "" {
		s.promptTemplate = DefaultPrompt
	}
	s.colorPrompt = cfg.ColorPrompt

	for name, value := range cfg.Aliases {
		s.Aliases[name] = value
	}
	for name, value := range cfg.Export {
		if _, ok := s.Env.LookupEnv(name); !ok {
			_ = s.Env.Setenv(name, value)
		}
	}

	s.historyFile = s.Env.Getenv(EnvHistFile)
	if s.historyFile == "" {
		s.historyFile = cfg.HistoryFile
	}
	if s.historyFile == "" {
		s.historyFile = DefaultHistoryFile
	}
	s.historyFile = s.expandWord(s.historyFile)

	s.historySize = cfg.HistorySize
	if v := s.Env.Getenv(EnvHistSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			s.historySize = n
		}
	}

	s.viMode = cfg.ViMode
	if v := s.Env.Getenv(EnvViMode); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			s.viMode = b
		}
	}
}

// RunLine lexes, parses, and executes one input line and returns its
// exit status. Blank lines and comment lines are no-ops.
func (s *Shell) RunLine(line string) int {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return s.lastStatus
	}

	words, background, err := s.Lex(trimmed)
	if err != nil {
		return s.reportParseError(trimmed, err)
	}
	if len(words) == 0 {
		return s.lastStatus
	}
	pipeline, err := Parse(words, background)
	if err != nil {
		return s.reportParseError(trimmed, err)
	}

	status := s.Run(pipeline)
	s.lastStatus = status
	s.Log.Record(&logger.CommandRun{Line: trimmed, Status: status})
	return status
}

// reportParseError prints the failure and abandons the line. Subsequent
// lines keep running.
func (s *Shell) reportParseError(line string, err error) int {
	fmt.Fprintf(s.stderr, "mish: %v\n", err)
	s.Log.Record(&logger.ParseFailed{Line: line, Error: err.Error()})
	s.lastStatus = 2
	return s.lastStatus
}

// RunScript feeds every line of r through the driver loop, stopping
// early when the exit builtin fires. It returns the last line's status.
func (s *Shell) RunScript(r io.Reader) int {
	scanner := bufio.NewScanner(r)
	for !s.Quit && scanner.Scan() {
		s.RunLine(scanner.Text())
	}
	return s.lastStatus
}

// RunString executes a literal command string, which may span several
// lines.
func (s *Shell) RunString(commands string) int {
	return s.RunScript(strings.NewReader(commands))
}

// RunInteractive reads and executes lines from the terminal until
// end-of-input or the exit builtin, persisting history as it goes.
func (s *Shell) RunInteractive() int {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.Prompt(),
		HistoryFile:     s.historyFile,
		HistoryLimit:    s.historySize,
		VimMode:         s.viMode,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(s.stderr, "mish: %v\n", err)
		return 1
	}
	s.Readline = rl
	defer func() {
		rl.Close()
		s.Readline = nil
	}()

	for !s.Quit {
		rl.SetPrompt(s.Prompt())
		line, err := rl.Readline()

		switch {
		case err == io.EOF:
			return s.ExitStatus() // Input closed, quit.

		case err == readline.ErrInterrupt:
			// Interrupt abandons the line.
			continue

		case err != nil:
			log.Printf("Error readline: %v", err)
			continue

		case len(line) == 0:
			continue // empty line

		default:
			s.RunLine(line)
		}
	}
	return s.ExitStatus()
}

// ExitStatus is the code the interpreter process should exit with: the
// exit builtin's code when it fired, otherwise the last pipeline's
// status.
func (s *Shell) ExitStatus() int {
	if s.Quit {
		return s.exitCode
	}
	return s.lastStatus
}

// Close releases the interrupt handler and records the session end.
// Closing twice is a no-op.
func (s *Shell) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	s.router.uninstall()
	s.Log.Record(&logger.SessionEnded{ExitCode: s.ExitStatus()})
	return nil
}

// historyLines reads the persisted history store.
func (s *Shell) historyLines() ([]string, error) {
	data, err := afero.ReadFile(s.fs, s.historyFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil, nil
	}
	return lines, nil
}

// clearHistory truncates the persisted history store. Lines already
// loaded into the interactive editor remain until the session ends.
func (s *Shell) clearHistory() error {
	fd, err := s.fs.OpenFile(s.historyFile, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	return fd.Close()
}
