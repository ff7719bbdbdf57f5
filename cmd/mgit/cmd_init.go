package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KisukeMaybe/Git-Clone/pkg/repo"
	"github.com/spf13/cobra"
)

func newInitCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Create an empty repository or reinitialize an existing one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			abs, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			if err := os.MkdirAll(abs, 0o755); err != nil {
				return fmt.Errorf("create directory: %w", err)
			}

			r, err := repo.Init(abs, repo.WithLogger(state.log()))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "initialized repository in %s\n", r.GitDir+string(filepath.Separator))
			return nil
		},
	}
}
