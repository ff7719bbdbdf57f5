package repo

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/KisukeMaybe/Git-Clone/pkg/logutil"
	"github.com/KisukeMaybe/Git-Clone/pkg/object"
	"go.uber.org/zap"
)

// TreeFileEntry represents a single non-directory entry in a flattened tree.
type TreeFileEntry struct {
	Path string
	Mode string
	Hash object.Hash
}

// WriteTree snapshots the working directory into the store and returns the
// root tree hash.
func (r *Repo) WriteTree() (object.Hash, error) {
	return r.BuildTree(r.RootDir)
}

// BuildTree recursively converts dir into blob and tree objects, bottom-up,
// and returns the hash of the tree for dir itself.
//
// Children are sorted by name before encoding, so the result depends only
// on names and contents, never on directory listing order. Directories
// named .git are skipped at every level. Regular files become blobs,
// symlinks become blobs holding the link target, and any other file type
// fails the build with ErrUnsupportedFile. Any failure aborts the whole
// build; no partial tree is written for the failing directory or its
// ancestors.
func (r *Repo) BuildTree(dir string) (h object.Hash, retErr error) {
	defer logutil.DeferWithError(r.logger, "build tree", &retErr, zap.String("dir", dir))()

	info, err := os.Stat(dir)
	if err != nil {
		return object.ZeroHash, fmt.Errorf("build tree: %w: %w", object.ErrStoreIO, err)
	}
	if !info.IsDir() {
		return object.ZeroHash, fmt.Errorf("build tree: %s is not a directory", dir)
	}
	return r.buildTreeDir(dir)
}

// buildTreeDir builds a TreeObj for the given directory and writes it to
// the store. It returns the tree's hash.
func (r *Repo) buildTreeDir(dir string) (object.Hash, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return object.ZeroHash, fmt.Errorf("build tree %s: %w: %w", dir, object.ErrStoreIO, err)
	}

	entries := make([]object.TreeEntry, 0, len(dirents))
	for _, d := range dirents {
		name := d.Name()
		if name == GitDirName {
			continue
		}
		entry, err := r.buildEntry(filepath.Join(dir, name), name)
		if err != nil {
			return object.ZeroHash, err
		}
		entries = append(entries, entry)
	}
	object.SortTreeEntries(entries)

	h, err := r.Store.WriteTree(&object.TreeObj{Entries: entries})
	if err != nil {
		return object.ZeroHash, fmt.Errorf("write tree %s: %w", dir, err)
	}
	r.logger.Debug("tree written", zap.String("dir", dir), zap.Stringer("hash", h), zap.Int("entries", len(entries)))
	return h, nil
}

func (r *Repo) buildEntry(full, name string) (object.TreeEntry, error) {
	info, err := os.Lstat(full)
	if err != nil {
		return object.TreeEntry{}, fmt.Errorf("build tree: %w: %w", object.ErrStoreIO, err)
	}
	mode, err := treeModeFor(full, info.Mode())
	if err != nil {
		return object.TreeEntry{}, fmt.Errorf("build tree: %w", err)
	}

	var h object.Hash
	switch mode {
	case object.TreeModeDir:
		h, err = r.buildTreeDir(full)
		if err != nil {
			return object.TreeEntry{}, err
		}
	case object.TreeModeSymlink:
		target, err := os.Readlink(full)
		if err != nil {
			return object.TreeEntry{}, fmt.Errorf("build tree: %w: %w", object.ErrStoreIO, err)
		}
		h, err = r.Store.Write(object.TypeBlob, []byte(filepath.ToSlash(target)))
		if err != nil {
			return object.TreeEntry{}, fmt.Errorf("write blob %s: %w", full, err)
		}
	default:
		data, err := os.ReadFile(full)
		if err != nil {
			return object.TreeEntry{}, fmt.Errorf("build tree: %w: %w", object.ErrStoreIO, err)
		}
		h, err = r.Store.Write(object.TypeBlob, data)
		if err != nil {
			return object.TreeEntry{}, fmt.Errorf("write blob %s: %w", full, err)
		}
	}
	return object.TreeEntry{Mode: mode, Name: name, Hash: h}, nil
}

// FlattenTree walks a tree object recursively, returning all non-directory
// entries with their full paths (using forward slashes) in tree order.
func (r *Repo) FlattenTree(h object.Hash) ([]TreeFileEntry, error) {
	return r.flattenTreeRec(h, "")
}

func (r *Repo) flattenTreeRec(h object.Hash, prefix string) ([]TreeFileEntry, error) {
	treeObj, err := r.Store.ReadTree(h)
	if err != nil {
		return nil, fmt.Errorf("flatten tree: read %s: %w", h, err)
	}

	var result []TreeFileEntry
	for _, entry := range treeObj.Entries {
		fullPath := entry.Name
		if prefix != "" {
			fullPath = path.Join(prefix, entry.Name)
		}

		if entry.IsDir() {
			sub, err := r.flattenTreeRec(entry.Hash, fullPath)
			if err != nil {
				return nil, err
			}
			result = append(result, sub...)
		} else {
			result = append(result, TreeFileEntry{
				Path: fullPath,
				Mode: entry.Mode,
				Hash: entry.Hash,
			})
		}
	}
	return result, nil
}
