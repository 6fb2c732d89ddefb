package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entrhq/uiharness/pkg/config"
)

func (a *app) lookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <keyword>",
		Short: "Print the file path registered for an upload keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := config.LoadFilePaths(a.filePathsFile)
			if err != nil {
				return withCode(ExitConfigError, err)
			}
			path, err := files.Lookup(args[0])
			if err != nil {
				return withCode(ExitUsageError, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
