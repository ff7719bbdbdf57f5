package object

import (
	"fmt"
	"time"
)

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
)

func (t ObjectType) String() string { return string(t) }

// ParseObjectType maps a header type name to an ObjectType.
func ParseObjectType(name string) (ObjectType, error) {
	switch ObjectType(name) {
	case TypeBlob, TypeTree, TypeCommit:
		return ObjectType(name), nil
	default:
		return "", fmt.Errorf("%w: unknown object type %q", ErrCorruptObject, name)
	}
}

const (
	// Tree mode constants, Git's canonical mode strings.
	TreeModeDir        = "40000"
	TreeModeFile       = "100644"
	// TreeModeExecutable appears in trees written by other tools; the
	// directory builder never produces it.
	TreeModeExecutable = "100755"
	TreeModeSymlink    = "120000"
)

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// TreeEntry is one entry in a tree object.
type TreeEntry struct {
	Mode string
	Name string
	Hash Hash
}

// IsDir reports whether the entry refers to a subtree.
func (e TreeEntry) IsDir() bool {
	return e.Mode == TreeModeDir
}

// TreeObj holds tree entries in encoding order.
type TreeObj struct {
	Entries []TreeEntry
}

// Signature is an author or committer identity with a timestamp.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// CommitObj represents a commit pointing to a tree with metadata.
type CommitObj struct {
	TreeHash  Hash
	Parents   []Hash
	Author    Signature
	Committer Signature
	// ExtraHeaders holds headers this package does not interpret, such as
	// encoding or mergetag, in stored order.
	ExtraHeaders []ExtraHeader
	Signature    string // armored gpgsig payload, optional
	Message      string
}

// ExtraHeader is an uninterpreted commit header. Multi-line values are
// joined with "\n".
type ExtraHeader struct {
	Key   string
	Value string
}
