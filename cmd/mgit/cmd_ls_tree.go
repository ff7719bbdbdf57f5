package main

import (
	"github.com/KisukeMaybe/Git-Clone/pkg/object"
	"github.com/KisukeMaybe/Git-Clone/pkg/repo"
	"github.com/spf13/cobra"
)

func newLsTreeCmd(state *cliState) *cobra.Command {
	var nameOnly bool
	var recursive bool

	cmd := &cobra.Command{
		Use:   "ls-tree [--name-only] [-r] <tree-ish>",
		Short: "List the entries of a tree object",
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
			tree, err := peelToTree(r, h)
			if err != nil {
				return err
			}

			var entries []object.TreeEntry
			if recursive {
				files, err := r.FlattenTree(tree)
				if err != nil {
					return err
				}
				entries = make([]object.TreeEntry, 0, len(files))
				for _, f := range files {
					entries = append(entries, object.TreeEntry{Mode: f.Mode, Name: f.Path, Hash: f.Hash})
				}
			} else {
				entries, err = r.ListTree(tree)
				if err != nil {
					return err
				}
			}
			return writeTreeEntries(cmd.OutOrStdout(), entries, nameOnly)
		},
	}

	cmd.Flags().BoolVar(&nameOnly, "name-only", false, "list only entry names")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "recurse into subtrees, printing full paths")
	return cmd
}

// peelToTree returns h itself for a tree and the root tree for a commit.
func peelToTree(r *repo.Repo, h object.Hash) (object.Hash, error) {
	typ, _, err := r.Store.Stat(h)
	if err != nil {
		return object.ZeroHash, err
	}
	if typ != object.TypeCommit {
		return h, nil
	}
	c, err := r.ReadCommit(h)
	if err != nil {
		return object.ZeroHash, err
	}
	return c.TreeHash, nil
}
