package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWriteTreeCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "write-tree",
		Short: "Store the working directory as tree objects and print the root address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := state.openRepo()
			if err != nil {
				return err
			}
			h, err := r.WriteTree()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
}
