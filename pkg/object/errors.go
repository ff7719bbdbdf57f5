package object

import "errors"

var (
	// ErrObjectNotFound is returned when no object exists at an address.
	ErrObjectNotFound = errors.New("object not found")
	// ErrCorruptObject covers malformed envelopes and length mismatches.
	ErrCorruptObject = errors.New("corrupt object")
	// ErrCorruptTree covers truncated or malformed tree records.
	ErrCorruptTree = errors.New("corrupt tree")
	// ErrCorruptStream is returned when compressed bytes cannot be inflated.
	ErrCorruptStream = errors.New("corrupt compressed stream")
	// ErrWrongObjectKind is returned when a read finds an unexpected type.
	ErrWrongObjectKind = errors.New("wrong object kind")
	// ErrMalformedAddress is returned for addresses that are not 40 hex chars.
	ErrMalformedAddress = errors.New("malformed address")
	// ErrStoreIO wraps filesystem failures (permissions, disk full, ...).
	ErrStoreIO = errors.New("object store I/O")
)
