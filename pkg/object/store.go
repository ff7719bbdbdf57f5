package object

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zlib"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Store is a content-addressed object store with a 2-character fan-out
// directory layout: objects/ab/cdef0123...
type Store struct {
	root   string
	level  int
	cache  *lru.Cache[Hash, cachedObject]
	logger *zap.Logger
}

type cachedObject struct {
	objType ObjectType
	data    []byte
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for debug tracing of writes and reads.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCompressionLevel sets the zlib level used for new objects.
func WithCompressionLevel(level int) StoreOption {
	return func(s *Store) {
		s.level = level
	}
}

// WithCacheSize keeps up to n decoded objects in memory. Objects are
// immutable so cached reads never go stale. n <= 0 disables the cache.
func WithCacheSize(n int) StoreOption {
	return func(s *Store) {
		if n <= 0 {
			s.cache = nil
			return
		}
		// lru.New only fails for non-positive sizes.
		s.cache, _ = lru.New[Hash, cachedObject](n)
	}
}

// NewStore creates a Store rooted at the given directory. The objects/
// subdirectory is created lazily on first write.
func NewStore(root string, opts ...StoreOption) *Store {
	s := &Store{
		root:   root,
		level:  zlib.DefaultCompression,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the directory that holds objects/.
func (s *Store) Root() string {
	return s.root
}

// ObjectPath returns the filesystem path for a given hash.
func (s *Store) ObjectPath(h Hash) string {
	hex := h.String()
	return filepath.Join(s.root, "objects", hex[:2], hex[2:])
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	_, err := os.Stat(s.ObjectPath(h))
	return err == nil
}

// Write stores an object and returns its content hash. The on-disk format
// is zlib("type len\0content"). An object that already exists is left
// untouched and its hash returned. New objects are written to a temp file
// and renamed into place, so concurrent writers of the same address only
// ever expose complete, identical files.
func (s *Store) Write(objType ObjectType, data []byte) (Hash, error) {
	raw := Envelope(objType, data)
	h := Digest(raw)

	if s.Has(h) {
		s.logger.Debug("object exists", zap.Stringer("hash", h), zap.Stringer("type", objType))
		return h, nil
	}

	compressed, err := CompressLevel(raw, s.level)
	if err != nil {
		return ZeroHash, fmt.Errorf("object write %s: %w", h, err)
	}

	dir := filepath.Dir(s.ObjectPath(h))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ZeroHash, fmt.Errorf("object write mkdir: %w: %w", ErrStoreIO, err)
	}
	if err := s.writeFileAtomic(dir, s.ObjectPath(h), compressed); err != nil {
		return ZeroHash, fmt.Errorf("object write %s: %w: %w", h, ErrStoreIO, err)
	}

	s.logger.Debug(
		"object write",
		zap.Stringer("hash", h),
		zap.Stringer("type", objType),
		zap.Int("size", len(data)),
		zap.Int("compressed", len(compressed)),
	)
	return h, nil
}

func (s *Store) writeFileAtomic(dir, dest string, data []byte) (retErr error) {
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
	if err := os.Chmod(tmpName, 0o444); err != nil {
		return err
	}
	return os.Rename(tmpName, dest)
}

func ignoreNotExist(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// readRaw returns the decompressed envelope for h.
func (s *Store) readRaw(h Hash) ([]byte, error) {
	compressed, err := os.ReadFile(s.ObjectPath(h))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("object read %s: %w", h, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("object read %s: %w: %w", h, ErrStoreIO, err)
	}
	raw, err := Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("object read %s: %w", h, err)
	}
	return raw, nil
}

// parseEnvelope splits "type len\0content" and checks the declared length.
func parseEnvelope(raw []byte) (ObjectType, []byte, error) {
	nulIdx := bytes.IndexByte(raw, 0)
	if nulIdx < 0 {
		return "", nil, fmt.Errorf("%w: invalid format (no NUL)", ErrCorruptObject)
	}
	objType, length, err := parseHeader(raw[:nulIdx])
	if err != nil {
		return "", nil, err
	}
	content := raw[nulIdx+1:]
	if len(content) != length {
		return "", nil, fmt.Errorf("%w: length mismatch (header=%d, actual=%d)", ErrCorruptObject, length, len(content))
	}
	return objType, content, nil
}

// parseHeader parses "type len" without the trailing NUL. The length must
// be canonical decimal: no sign and no leading zeros.
func parseHeader(header []byte) (ObjectType, int, error) {
	spIdx := bytes.IndexByte(header, ' ')
	if spIdx < 0 {
		return "", 0, fmt.Errorf("%w: invalid header %q", ErrCorruptObject, header)
	}
	objType, err := ParseObjectType(string(header[:spIdx]))
	if err != nil {
		return "", 0, err
	}
	lenField := string(header[spIdx+1:])
	length, err := strconv.Atoi(lenField)
	if err != nil || length < 0 || strconv.Itoa(length) != lenField {
		return "", 0, fmt.Errorf("%w: invalid length %q", ErrCorruptObject, lenField)
	}
	return objType, length, nil
}

// Read retrieves an object by hash, returning its type and raw content.
func (s *Store) Read(h Hash) (ObjectType, []byte, error) {
	if s.cache != nil {
		if obj, ok := s.cache.Get(h); ok {
			return obj.objType, bytes.Clone(obj.data), nil
		}
	}

	raw, err := s.readRaw(h)
	if err != nil {
		return "", nil, err
	}
	objType, content, err := parseEnvelope(raw)
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: %w", h, err)
	}

	if s.cache != nil {
		s.cache.Add(h, cachedObject{objType: objType, data: bytes.Clone(content)})
	}
	return objType, content, nil
}

// maxHeaderLen bounds the "type len\0" prefix: longest type name, a space,
// a 64-bit decimal length and the NUL.
const maxHeaderLen = 32

// Stat returns an object's type and declared payload size. Only the
// envelope header is inflated.
func (s *Store) Stat(h Hash) (ObjectType, int, error) {
	if s.cache != nil {
		if obj, ok := s.cache.Get(h); ok {
			return obj.objType, len(obj.data), nil
		}
	}

	f, err := os.Open(s.ObjectPath(h))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", 0, fmt.Errorf("object stat %s: %w", h, ErrObjectNotFound)
		}
		return "", 0, fmt.Errorf("object stat %s: %w: %w", h, ErrStoreIO, err)
	}
	defer f.Close()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return "", 0, fmt.Errorf("object stat %s: %w: %v", h, ErrCorruptStream, err)
	}
	defer zr.Close()

	header, err := bufio.NewReaderSize(zr, maxHeaderLen).ReadSlice(0)
	if err != nil {
		if errors.Is(err, bufio.ErrBufferFull) || errors.Is(err, io.EOF) {
			return "", 0, fmt.Errorf("object stat %s: %w: header not terminated", h, ErrCorruptObject)
		}
		return "", 0, fmt.Errorf("object stat %s: %w: %v", h, ErrCorruptStream, err)
	}
	objType, size, err := parseHeader(header[:len(header)-1])
	if err != nil {
		return "", 0, fmt.Errorf("object stat %s: %w", h, err)
	}
	return objType, size, nil
}

// ReadAs reads an object and fails with ErrWrongObjectKind unless it has
// the wanted type.
func (s *Store) ReadAs(h Hash, want ObjectType) ([]byte, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != want {
		return nil, fmt.Errorf("object %s: %w: got %q, want %q", h, ErrWrongObjectKind, objType, want)
	}
	return data, nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// WriteBlob serializes and stores a Blob.
func (s *Store) WriteBlob(b *Blob) (Hash, error) {
	return s.Write(TypeBlob, b.Data)
}

// ReadBlob reads a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	data, err := s.ReadAs(h, TypeBlob)
	if err != nil {
		return nil, err
	}
	return &Blob{Data: data}, nil
}

// WriteTree serializes and stores a TreeObj. Entries are written in the
// order given.
func (s *Store) WriteTree(tr *TreeObj) (Hash, error) {
	return s.Write(TypeTree, MarshalTree(tr))
}

// ReadTree reads and deserializes a TreeObj.
func (s *Store) ReadTree(h Hash) (*TreeObj, error) {
	data, err := s.ReadAs(h, TypeTree)
	if err != nil {
		return nil, err
	}
	tr, err := UnmarshalTree(data)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", h, err)
	}
	return tr, nil
}

// WriteCommit serializes and stores a CommitObj.
func (s *Store) WriteCommit(c *CommitObj) (Hash, error) {
	return s.Write(TypeCommit, MarshalCommit(c))
}

// ReadCommit reads and deserializes a CommitObj.
func (s *Store) ReadCommit(h Hash) (*CommitObj, error) {
	data, err := s.ReadAs(h, TypeCommit)
	if err != nil {
		return nil, err
	}
	c, err := UnmarshalCommit(data)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", h, err)
	}
	return c, nil
}
