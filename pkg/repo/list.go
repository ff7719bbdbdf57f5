package repo

import (
	"fmt"

	"github.com/KisukeMaybe/Git-Clone/pkg/object"
)

// ReadObject returns an object's type and payload.
func (r *Repo) ReadObject(h object.Hash) (object.ObjectType, []byte, error) {
	return r.Store.Read(h)
}

// CatObject returns the raw payload of an object of any type.
func (r *Repo) CatObject(h object.Hash) ([]byte, error) {
	_, data, err := r.Store.Read(h)
	return data, err
}

// HashAndStoreBlob stores data as a blob and returns its hash.
func (r *Repo) HashAndStoreBlob(data []byte) (object.Hash, error) {
	return r.Store.Write(object.TypeBlob, data)
}

// ListTree returns a tree's entries in stored order. It fails with
// object.ErrWrongObjectKind if h names a blob or commit.
func (r *Repo) ListTree(h object.Hash) ([]object.TreeEntry, error) {
	tr, err := r.Store.ReadTree(h)
	if err != nil {
		return nil, fmt.Errorf("list tree: %w", err)
	}
	return tr.Entries, nil
}

// ListTreeNames returns entry names of a tree in stored order.
func (r *Repo) ListTreeNames(h object.Hash) ([]string, error) {
	entries, err := r.ListTree(h)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names, nil
}
