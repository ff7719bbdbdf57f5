package main

import (
	"fmt"

	"github.com/KisukeMaybe/Git-Clone/pkg/object"
	"github.com/KisukeMaybe/Git-Clone/pkg/sshsig"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh"
)

func newVerifyCommitCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "verify-commit <commit>",
		Short: "Check the SSH signature of a commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := object.ParseHash(args[0])
			if err != nil {
				return err
			}
			r, err := state.openRepo()
			if err != nil {
				return err
			}
			data, err := r.Store.ReadAs(h, object.TypeCommit)
			if err != nil {
				return err
			}
			c, err := object.UnmarshalCommit(data)
			if err != nil {
				return fmt.Errorf("commit %s: %w", h, err)
			}
			if c.Signature == "" {
				return fmt.Errorf("commit %s is not signed", h)
			}
			// The signature covers the stored bytes minus gpgsig, which may
			// include headers written by other tools.
			pub, err := sshsig.Verify([]byte(c.Signature), object.StripCommitSignature(data), sshsig.GitNamespace)
			if err != nil {
				return fmt.Errorf("commit %s: %w", h, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "good signature for %s with %s key %s\n", h, pub.Type(), ssh.FingerprintSHA256(pub))
			return nil
		},
	}
}
