package main

import (
	"fmt"
	"path/filepath"

	"github.com/KisukeMaybe/Git-Clone/pkg/remote"
	"github.com/spf13/cobra"
)

func newCloneCmd(state *cliState) *cobra.Command {
	var gitPath string

	cmd := &cobra.Command{
		Use:   "clone <remote-url> <directory>",
		Short: "Clone a repository using the git client",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest, err := filepath.Abs(args[1])
			if err != nil {
				return fmt.Errorf("resolve destination: %w", err)
			}
			cloner := remote.NewGitCloner(state.log())
			cloner.GitPath = gitPath
			cloner.Stderr = cmd.ErrOrStderr()
			return cloneInto(cmd, cloner, args[0], dest)
		},
	}

	cmd.Flags().StringVar(&gitPath, "git", "", "path to the git executable (default: git on PATH)")
	return cmd
}

func cloneInto(cmd *cobra.Command, cloner remote.Cloner, url, dest string) error {
	if err := cloner.Clone(cmd.Context(), url, dest); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "cloned %s into %s\n", url, dest)
	return nil
}
