// Package cmd implements the calmlint CLI commands.
package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root calmlint command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "calmlint",
		Short:         "calmlint - semantic validation for CALM architecture documents",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE:          rootRunE,
	}
	root.PersistentFlags().String("config", "", "config file (default: nearest .calmlint.yaml)")
	root.AddCommand(NewValidateCmd(fileValidateIO{}))
	root.AddCommand(NewLookupCmd(fileLookupIO{}))
	root.AddCommand(NewWatchCmd(fileWatchIO{}))
	return root
}

func rootRunE(cmd *cobra.Command, _ []string) error {
	return cmd.Help()
}
