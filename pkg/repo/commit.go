package repo

import (
	"errors"
	"fmt"

	"github.com/KisukeMaybe/Git-Clone/pkg/object"
	"go.uber.org/zap"
)

// CommitSigner signs canonical commit payload bytes and returns an armored
// signature to be persisted in CommitObj.Signature.
type CommitSigner func(payload []byte) (string, error)

var (
	// ErrMissingTree is returned when a commit request has no tree.
	ErrMissingTree = errors.New("commit: tree hash is required")
	// ErrTooManyParents is returned for merge commits, which this store
	// does not create.
	ErrTooManyParents = errors.New("commit: at most one parent is supported")
)

// CommitRequest describes a commit to write. Zero-valued signature times
// are filled with the current time; zero-valued identities come from the
// repository config.
type CommitRequest struct {
	Tree      object.Hash
	Parent    *object.Hash // nil for a root commit
	Message   string
	Author    object.Signature
	Committer object.Signature
	Signer    CommitSigner
}

// WriteCommit renders a commit object and stores it. It does not move any
// ref; see UpdateHead.
func (r *Repo) WriteCommit(req CommitRequest) (object.Hash, error) {
	if req.Tree.IsZero() {
		return object.ZeroHash, ErrMissingTree
	}

	now := r.now()
	author := req.Author
	if author.Name == "" && author.Email == "" {
		author = r.Config.AuthorAt(now)
	}
	if author.When.IsZero() {
		author.When = now
	}
	committer := req.Committer
	if committer.Name == "" && committer.Email == "" {
		committer = r.Config.CommitterAt(author.When)
	}
	if committer.When.IsZero() {
		committer.When = author.When
	}

	commitObj := &object.CommitObj{
		TreeHash:  req.Tree,
		Author:    author,
		Committer: committer,
		Message:   req.Message,
	}
	if req.Parent != nil {
		commitObj.Parents = []object.Hash{*req.Parent}
	}

	if req.Signer != nil {
		signature, err := req.Signer(object.CommitSigningPayload(commitObj))
		if err != nil {
			return object.ZeroHash, fmt.Errorf("commit: sign commit: %w", err)
		}
		commitObj.Signature = signature
	}

	h, err := r.Store.WriteCommit(commitObj)
	if err != nil {
		return object.ZeroHash, fmt.Errorf("commit: write commit: %w", err)
	}
	r.logger.Debug("commit written", zap.Stringer("hash", h), zap.Stringer("tree", req.Tree), zap.Bool("signed", req.Signer != nil))
	return h, nil
}

// WriteCommitWithParents is WriteCommit for callers holding a parent list,
// such as a parsed commit. More than one parent fails with
// ErrTooManyParents.
func (r *Repo) WriteCommitWithParents(req CommitRequest, parents []object.Hash) (object.Hash, error) {
	switch len(parents) {
	case 0:
		req.Parent = nil
	case 1:
		p := parents[0]
		req.Parent = &p
	default:
		return object.ZeroHash, ErrTooManyParents
	}
	return r.WriteCommit(req)
}

// ReadCommit reads and parses a commit object.
func (r *Repo) ReadCommit(h object.Hash) (*object.CommitObj, error) {
	return r.Store.ReadCommit(h)
}
