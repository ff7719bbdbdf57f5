package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultHead is the HEAD content written by Init.
const DefaultHead = "ref: refs/heads/main\n"

// Init creates the store layout at path: .git/objects/, .git/refs/ and a
// HEAD pointing at refs/heads/main. Init is idempotent: existing
// directories are kept and an existing HEAD is left untouched.
func Init(path string, opts ...Option) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("init: abs path: %w", err)
	}
	gitDir := filepath.Join(abs, GitDirName)

	dirs := []string{
		filepath.Join(gitDir, "objects"),
		filepath.Join(gitDir, "refs"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	headPath := filepath.Join(gitDir, "HEAD")
	f, err := os.OpenFile(headPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	switch {
	case err == nil:
		_, werr := f.WriteString(DefaultHead)
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			return nil, fmt.Errorf("init: write HEAD: %w", werr)
		}
	case errors.Is(err, fs.ErrExist):
	default:
		return nil, fmt.Errorf("init: write HEAD: %w", err)
	}

	cfg, err := readConfigFile(configPath(gitDir))
	if err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	return newRepo(abs, gitDir, cfg, opts), nil
}

// Open opens the repository whose .git/ directory is at path or the
// nearest ancestor of path. It fails with ErrNotRepository if there is none.
func Open(path string, opts ...Option) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}
	root, ok := findRoot(abs)
	if !ok {
		return nil, fmt.Errorf("open %s: %w (or any parent up to /)", abs, ErrNotRepository)
	}
	gitDir := filepath.Join(root, GitDirName)
	cfg, err := readConfigFile(configPath(gitDir))
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	return newRepo(root, gitDir, cfg, opts), nil
}

// findRoot walks from dir toward the filesystem root and returns the first
// directory holding a .git/ subdirectory.
func findRoot(dir string) (string, bool) {
	for {
		if info, err := os.Stat(filepath.Join(dir, GitDirName)); err == nil && info.IsDir() {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
