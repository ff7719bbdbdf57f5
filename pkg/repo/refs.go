package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KisukeMaybe/Git-Clone/pkg/object"
	"go.uber.org/multierr"
)

const symbolicRefPrefix = "ref: "

// Head returns the ref HEAD points at, such as "refs/heads/main", or the
// hex hash stored in a detached HEAD.
func (r *Repo) Head() (string, error) {
	data, err := os.ReadFile(r.headPath())
	if err != nil {
		return "", fmt.Errorf("head: %w", err)
	}
	content := strings.TrimSpace(string(data))
	if target, ok := strings.CutPrefix(content, symbolicRefPrefix); ok {
		return strings.TrimSpace(target), nil
	}
	return content, nil
}

// ResolveRef returns the hash a ref names. "HEAD" follows the symbolic
// pointer, names under refs/ are read as-is and bare names are looked up
// under refs/heads/. A branch with no commits yet fails to resolve.
func (r *Repo) ResolveRef(name string) (object.Hash, error) {
	if name == "HEAD" {
		head, err := r.Head()
		if err != nil {
			return object.ZeroHash, err
		}
		if !strings.HasPrefix(head, "refs/") {
			return object.ParseHash(head)
		}
		name = head
	}
	if !strings.HasPrefix(name, "refs/") {
		name = "refs/heads/" + name
	}

	data, err := os.ReadFile(r.refPath(name))
	if err != nil {
		return object.ZeroHash, fmt.Errorf("resolve ref %q: %w", name, err)
	}
	h, err := object.ParseHash(strings.TrimSpace(string(data)))
	if err != nil {
		return object.ZeroHash, fmt.Errorf("resolve ref %q: %w", name, err)
	}
	return h, nil
}

// UpdateRef points name, which must start with refs/, at h.
func (r *Repo) UpdateRef(name string, h object.Hash) error {
	if !strings.HasPrefix(name, "refs/") {
		return fmt.Errorf("update ref %q: name must start with refs/", name)
	}
	path := r.refPath(name)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("update ref %q: %w", name, err)
	}
	if err := writeFileAtomic(dir, path, []byte(h.String()+"\n")); err != nil {
		return fmt.Errorf("update ref %q: %w", name, err)
	}
	return nil
}

// UpdateHead moves the branch HEAD points at to h, creating the branch if
// it has no commits yet. A detached HEAD is overwritten with h.
func (r *Repo) UpdateHead(h object.Hash) error {
	head, err := r.Head()
	if err != nil {
		return err
	}
	if strings.HasPrefix(head, "refs/") {
		return r.UpdateRef(head, h)
	}
	if err := writeFileAtomic(r.GitDir, r.headPath(), []byte(h.String()+"\n")); err != nil {
		return fmt.Errorf("update HEAD: %w", err)
	}
	return nil
}

func (r *Repo) headPath() string {
	return filepath.Join(r.GitDir, "HEAD")
}

func (r *Repo) refPath(name string) string {
	return filepath.Join(r.GitDir, filepath.FromSlash(name))
}

// writeFileAtomic writes data to a temp file in dir and renames it over
// dest, so readers never see a partial file.
func writeFileAtomic(dir, dest string, data []byte) (retErr error) {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if retErr != nil {
			retErr = multierr.Append(retErr, ignoreNotExist(os.Remove(tmpName)))
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return multierr.Append(err, tmp.Close())
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, dest)
}

func ignoreNotExist(err error) error {
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
