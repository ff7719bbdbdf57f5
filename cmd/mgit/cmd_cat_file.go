package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/KisukeMaybe/Git-Clone/pkg/object"
	"github.com/spf13/cobra"
)

func newCatFileCmd(state *cliState) *cobra.Command {
	var pretty, showType, showSize bool

	cmd := &cobra.Command{
		Use:   "cat-file (-p | -t | -s) <object>",
		Short: "Print the content, type or size of a stored object",
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
			out := cmd.OutOrStdout()

			switch {
			case showType:
				typ, _, err := r.Store.Stat(h)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, typ)
			case showSize:
				_, size, err := r.Store.Stat(h)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, size)
			case pretty:
				typ, data, err := r.ReadObject(h)
				if err != nil {
					return err
				}
				if typ == object.TypeTree {
					tree, err := object.UnmarshalTree(data)
					if err != nil {
						return err
					}
					return writeTreeEntries(out, tree.Entries, false)
				}
				_, err = out.Write(data)
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "pretty-print the object content")
	cmd.Flags().BoolVarP(&showType, "type", "t", false, "print the object type")
	cmd.Flags().BoolVarP(&showSize, "size", "s", false, "print the payload size in bytes")
	cmd.MarkFlagsMutuallyExclusive("pretty", "type", "size")
	cmd.MarkFlagsOneRequired("pretty", "type", "size")
	return cmd
}

// writeTreeEntries prints entries in `ls-tree` layout:
// "<mode> <type> <hash>\t<name>", or names only.
func writeTreeEntries(w io.Writer, entries []object.TreeEntry, nameOnly bool) error {
	var sb strings.Builder
	for _, e := range entries {
		if nameOnly {
			sb.WriteString(e.Name)
			sb.WriteByte('\n')
			continue
		}
		fmt.Fprintf(&sb, "%s %s %s\t%s\n", padMode(e.Mode), entryType(e), e.Hash, e.Name)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func padMode(mode string) string {
	if len(mode) >= 6 {
		return mode
	}
	return strings.Repeat("0", 6-len(mode)) + mode
}

func entryType(e object.TreeEntry) object.ObjectType {
	if e.IsDir() {
		return object.TypeTree
	}
	return object.TypeBlob
}
