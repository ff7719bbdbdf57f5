package repo

import (
	"errors"
	"time"

	"github.com/KisukeMaybe/Git-Clone/pkg/object"
	"go.uber.org/zap"
)

// GitDirName is the store's metadata directory inside a repository root.
// The tree builder never descends into it.
const GitDirName = ".git"

var (
	// ErrNotRepository is returned by Open when no .git/ directory is found.
	ErrNotRepository = errors.New("not a repository")
	// ErrUnsupportedFile is returned by the tree builder for device files,
	// sockets and named pipes.
	ErrUnsupportedFile = errors.New("unsupported file type")
)

// Repo represents an opened repository.
type Repo struct {
	RootDir string        // working directory root
	GitDir  string        // .git/ directory
	Store   *object.Store // content-addressed object store
	Config  *Config

	logger *zap.Logger
	now    func() time.Time
}

type options struct {
	logger    *zap.Logger
	storeOpts []object.StoreOption
}

// Option configures Init and Open.
type Option func(*options)

// WithLogger sets the logger shared by the repository and its store.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithStoreOptions appends object store options. They are applied after
// the options derived from the repository config, so they take precedence.
func WithStoreOptions(opts ...object.StoreOption) Option {
	return func(o *options) {
		o.storeOpts = append(o.storeOpts, opts...)
	}
}

func newRepo(root, gitDir string, cfg *Config, opts []Option) *Repo {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	storeOpts := []object.StoreOption{
		object.WithLogger(o.logger),
		object.WithCompressionLevel(cfg.Core.Compression),
		object.WithCacheSize(cfg.Core.CacheSize),
	}
	storeOpts = append(storeOpts, o.storeOpts...)
	return &Repo{
		RootDir: root,
		GitDir:  gitDir,
		Store:   object.NewStore(gitDir, storeOpts...),
		Config:  cfg,
		logger:  o.logger,
		now:     time.Now,
	}
}
