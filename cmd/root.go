package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mish-shell/mish/core/config"
	"github.com/mish-shell/mish/core/logger"
	"github.com/mish-shell/mish/core/shell"
)

var (
	cfgPath     string
	noRC        bool
	commandFlag string
	stdinFlag   bool

	exitCode int
)

func loadConfig() (*config.Config, error) {
	if noRC {
		return config.Default(), nil
	}
	return config.Load(afero.NewOsFs(), cfgPath)
}

// rootCmd represents the base command when called without any
// subcommands: it runs the interpreter itself.
var rootCmd = &cobra.Command{
	Use:   "mish [script]",
	Short: "A small interactive command interpreter",
	Long: `mish is a small command interpreter: it reads lines, expands and
parses them into pipelines, runs external programs with redirections
and background jobs, and keeps a handful of builtins in-process.

Without arguments it starts an interactive session when standard input
is a terminal, and otherwise reads standard input as a script.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		exitCode = runShell(cfg, args)
		return nil
	},
}

// runShell picks the line source from the invocation and drives one
// interpreter session over it.
func runShell(cfg *config.Config, args []string) int {
	eventLog := logger.Discard()
	if cfg.LogFile != "" {
		fd, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			log.Printf("Could not open event log: %v", err)
		} else {
			defer fd.Close()
			eventLog = logger.NewJsonLinesLogRecorder(fd)
		}
	}

	s := shell.New(shell.Options{
		Config: cfg,
		Log:    eventLog.NewSession(),
	})
	defer s.Close()

	switch {
	case commandFlag != "":
		s.Log.Record(&logger.SessionStarted{Mode: "command"})
		s.RunString(commandFlag)

	case stdinFlag || (len(args) == 1 && args[0] == "-"):
		s.Log.Record(&logger.SessionStarted{Mode: "stdin"})
		s.RunScript(os.Stdin)

	case len(args) == 1:
		s.Log.Record(&logger.SessionStarted{Mode: "script"})
		fd, err := os.Open(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "mish: %v\n", err)
			return 127
		}
		defer fd.Close()
		s.RunScript(fd)

	case isatty.IsTerminal(os.Stdin.Fd()):
		s.Log.Record(&logger.SessionStarted{Mode: "interactive"})
		s.RunInteractive()

	default:
		s.Log.Record(&logger.SessionStarted{Mode: "stdin"})
		s.RunScript(os.Stdin)
	}

	return s.ExitStatus()
}

// Execute runs the root command and reports the code the process should
// exit with. This is called by main.main().
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return exitCode
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default is config.yaml under the user config dir)")
	rootCmd.Flags().BoolVar(&noRC, "norc", false, "skip the startup configuration file")
	rootCmd.Flags().StringVarP(&commandFlag, "command", "c", "", "run this command string and exit")
	rootCmd.Flags().BoolVarP(&stdinFlag, "stdin", "s", false, "read the script from standard input")
}
