// Package remote copies repositories from other hosts. Transfer is delegated
// to an external git client; this package only checks that the result is a
// usable object store.
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrCloneIncomplete reports a clone that returned success but did not leave
// a store layout behind.
var ErrCloneIncomplete = errors.New("clone incomplete")

// DefaultTimeout bounds a single clone.
const DefaultTimeout = 5 * time.Minute

// Cloner copies the repository at url into dest.
type Cloner interface {
	Clone(ctx context.Context, url, dest string) error
}

// GitCloner clones by running the git executable.
type GitCloner struct {
	// GitPath is the git binary. Empty means "git" looked up on PATH.
	GitPath string
	// Stdout and Stderr receive git's progress output. Nil discards it;
	// stderr is still captured for error messages.
	Stdout io.Writer
	Stderr io.Writer
	// Timeout bounds the clone. Zero means DefaultTimeout.
	Timeout time.Duration

	logger *zap.Logger
}

// NewGitCloner returns a GitCloner that logs to logger.
func NewGitCloner(logger *zap.Logger) *GitCloner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GitCloner{logger: logger}
}

// Clone runs `git clone url dest` and verifies dest holds a store.
func (c *GitCloner) Clone(ctx context.Context, url, dest string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return errors.New("clone: url is required")
	}
	if strings.TrimSpace(dest) == "" {
		return errors.New("clone: destination is required")
	}
	if strings.HasPrefix(url, "-") {
		return fmt.Errorf("clone: invalid url %q", url)
	}
	if err := checkDestination(dest); err != nil {
		return err
	}

	logger := c.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	gitPath := c.GitPath
	if gitPath == "" {
		gitPath = "git"
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	logger.Debug("clone start", zap.String("url", url), zap.String("dest", dest))

	var stderr bytes.Buffer
	cmd := exec.CommandContext(cctx, gitPath, "clone", "--", url, dest)
	cmd.Stdout = c.Stdout
	if c.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, c.Stderr)
	} else {
		cmd.Stderr = &stderr
	}
	if err := cmd.Run(); err != nil {
		return newGitCommandError(fmt.Errorf("clone %s: %w", url, err), &stderr)
	}

	if err := verifyStore(dest); err != nil {
		return err
	}
	logger.Debug("clone done",
		zap.String("url", url),
		zap.String("dest", dest),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// checkDestination rejects a dest that exists and is not an empty directory.
func checkDestination(dest string) error {
	entries, err := os.ReadDir(dest)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("clone: destination %s: %w", dest, err)
	}
	if len(entries) > 0 {
		return fmt.Errorf("clone: destination %s already exists and is not empty", dest)
	}
	return nil
}

// verifyStore checks the layout a successful clone must leave in dest.
func verifyStore(dest string) error {
	gitDir := filepath.Join(dest, ".git")
	for _, p := range []string{filepath.Join(gitDir, "HEAD"), filepath.Join(gitDir, "objects")} {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrCloneIncomplete, dest, err)
		}
	}
	return nil
}

func newGitCommandError(err error, stderr *bytes.Buffer) error {
	msg := strings.TrimSpace(stderr.String())
	if msg == "" {
		return err
	}
	return fmt.Errorf("%w\n%s", err, msg)
}
