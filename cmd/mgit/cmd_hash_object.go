package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/KisukeMaybe/Git-Clone/pkg/object"
	"github.com/KisukeMaybe/Git-Clone/pkg/repo"
	"github.com/spf13/cobra"
)

var errNothingToHash = errors.New("hash-object: no input given (pass files or --stdin)")

func newHashObjectCmd(state *cliState) *cobra.Command {
	var write bool
	var stdin bool

	cmd := &cobra.Command{
		Use:   "hash-object [-w] [--stdin] [file...]",
		Short: "Compute blob addresses and optionally store the blobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !stdin && len(args) == 0 {
				return errNothingToHash
			}

			var r *repo.Repo
			if write {
				var err error
				r, err = state.openRepo()
				if err != nil {
					return err
				}
			}
			hash := func(data []byte) (object.Hash, error) {
				if r == nil {
					return object.HashObject(object.TypeBlob, data), nil
				}
				return r.HashAndStoreBlob(data)
			}

			out := cmd.OutOrStdout()
			if stdin {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				h, err := hash(data)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, h)
			}
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				h, err := hash(data)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, h)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the blobs into the object store")
	cmd.Flags().BoolVar(&stdin, "stdin", false, "read the object from standard input")
	return cmd
}
