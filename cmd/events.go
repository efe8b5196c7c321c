package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/mish-shell/mish/core/logger"
)

var reportLogPath string

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Explore the session event log",
}

var reportCommand = &cobra.Command{
	Use:   "report",
	Short: "Summarize the event log",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		path := reportLogPath
		if path == "" {
			path = cfg.LogFile
		}
		if path == "" {
			return errors.New("no event log to read: set log_file in the configuration or pass --file")
		}

		fd, err := os.Open(path)
		if err != nil {
			return err
		}
		defer fd.Close()

		report := logger.NewReport()
		if err := logger.ReadJSONLinesLog(fd, report.Update); err != nil {
			return err
		}

		out, err := yaml.Marshal(report)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(reportCommand)

	reportCommand.Flags().StringVar(&reportLogPath, "file", "", "event log to read (default: the configured log_file)")
}
