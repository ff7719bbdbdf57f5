package main

import (
	"fmt"
	"os"

	"github.com/KisukeMaybe/Git-Clone/pkg/logutil"
	"github.com/KisukeMaybe/Git-Clone/pkg/repo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "0.1.0-dev"

// cliState is shared by every subcommand of one invocation.
type cliState struct {
	logLevel  string
	logFormat string
	logger    *zap.Logger
}

func (s *cliState) log() *zap.Logger {
	if s.logger == nil {
		return zap.NewNop()
	}
	return s.logger
}

func (s *cliState) openRepo() (*repo.Repo, error) {
	return repo.Open(".", repo.WithLogger(s.log()))
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	state := &cliState{}
	root := &cobra.Command{
		Use:           "mgit",
		Short:         "A minimal content-addressed version control store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logutil.NewLogger(cmd.ErrOrStderr(), state.logLevel, state.logFormat)
			if err != nil {
				return err
			}
			state.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if state.logger != nil {
				_ = state.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&state.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&state.logFormat, "log-format", "color", "log format: text, color or json")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(state))
	root.AddCommand(newCatFileCmd(state))
	root.AddCommand(newHashObjectCmd(state))
	root.AddCommand(newLsTreeCmd(state))
	root.AddCommand(newWriteTreeCmd(state))
	root.AddCommand(newCommitTreeCmd(state))
	root.AddCommand(newVerifyCommitCmd(state))
	root.AddCommand(newCloneCmd(state))
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mgit %s\n", version)
		},
	}
}
