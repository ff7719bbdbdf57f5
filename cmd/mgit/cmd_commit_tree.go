package main

import (
	"fmt"
	"strings"

	"github.com/KisukeMaybe/Git-Clone/pkg/object"
	"github.com/KisukeMaybe/Git-Clone/pkg/repo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCommitTreeCmd(state *cliState) *cobra.Command {
	var parent string
	var messages []string
	var sign bool
	var signKey string
	var updateHead bool

	cmd := &cobra.Command{
		Use:   "commit-tree <tree> [-p <parent>] -m <message>",
		Short: "Create a commit object for a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(messages) == 0 {
				return fmt.Errorf("commit message is required (-m)")
			}
			tree, err := object.ParseHash(args[0])
			if err != nil {
				return err
			}
			r, err := state.openRepo()
			if err != nil {
				return err
			}
			if err := expectKind(r, tree, object.TypeTree); err != nil {
				return err
			}

			req := repo.CommitRequest{
				Tree:    tree,
				Message: strings.Join(messages, "\n\n"),
			}
			if parent != "" {
				p, err := object.ParseHash(parent)
				if err != nil {
					return fmt.Errorf("parent: %w", err)
				}
				if err := expectKind(r, p, object.TypeCommit); err != nil {
					return err
				}
				req.Parent = &p
			}
			if sign || signKey != "" {
				signer, keyPath, err := newSSHCommitSigner(signKey)
				if err != nil {
					return err
				}
				state.log().Debug("signing commit", zap.String("key", keyPath))
				req.Signer = signer
			}

			h, err := r.WriteCommit(req)
			if err != nil {
				return err
			}
			if updateHead {
				if err := r.UpdateHead(h); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}

	cmd.Flags().StringVarP(&parent, "parent", "p", "", "parent commit (omit for a root commit)")
	cmd.Flags().StringArrayVarP(&messages, "message", "m", nil, "commit message; repeated flags become separate paragraphs")
	cmd.Flags().BoolVarP(&sign, "gpg-sign", "S", false, "sign the commit with an SSH key")
	cmd.Flags().StringVar(&signKey, "sign-key", "", "SSH private key for signing (default: ~/.ssh/id_ed25519, id_ecdsa, id_rsa)")
	cmd.Flags().BoolVar(&updateHead, "update-head", false, "point the current branch at the new commit")
	return cmd
}

func expectKind(r *repo.Repo, h object.Hash, want object.ObjectType) error {
	typ, _, err := r.Store.Stat(h)
	if err != nil {
		return err
	}
	if typ != want {
		return fmt.Errorf("%w: %s is a %s, not a %s", object.ErrWrongObjectKind, h, typ, want)
	}
	return nil
}
