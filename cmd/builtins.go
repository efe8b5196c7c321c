package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mish-shell/mish/core/shell"
)

var builtinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "Show the commands the interpreter runs in-process",
	RunE: func(cmd *cobra.Command, args []string) error {
		var names []string
		for name := range shell.AllBuiltins {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(builtinsCmd)
}
