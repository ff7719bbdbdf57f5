package object

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// HashSize is the length in bytes of a raw object address.
const HashSize = sha1.Size

// HexSize is the length of the hex form of an object address.
const HexSize = HashSize * 2

// Hash is a raw 20-byte SHA-1 object address. The zero value never names a
// real object.
type Hash [HashSize]byte

// ZeroHash is the all-zero address.
var ZeroHash Hash

// NewHash copies a raw 20-byte digest into a Hash.
func NewHash(raw []byte) (Hash, error) {
	var h Hash
	if len(raw) != HashSize {
		return h, fmt.Errorf("%w: raw length %d, want %d", ErrMalformedAddress, len(raw), HashSize)
	}
	copy(h[:], raw)
	return h, nil
}

// ParseHash decodes a 40-character hex address. Uppercase hex digits are
// accepted; String always renders lowercase.
func ParseHash(s string) (Hash, error) {
	var h Hash
	if len(s) != HexSize {
		return h, fmt.Errorf("%w: %q has length %d, want %d", ErrMalformedAddress, s, len(s), HexSize)
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return ZeroHash, fmt.Errorf("%w: %q: %v", ErrMalformedAddress, s, err)
	}
	return h, nil
}

// MustParseHash is ParseHash for constants; it panics on malformed input.
func MustParseHash(s string) Hash {
	h, err := ParseHash(s)
	if err != nil {
		panic(err)
	}
	return h
}

// String returns the 40-character lowercase hex form.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether h is the zero address.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// Digest computes the raw SHA-1 digest of data.
func Digest(data []byte) Hash {
	return Hash(sha1.Sum(data))
}

// envelopeHeader renders the canonical "type len\0" prefix.
func envelopeHeader(objType ObjectType, size int) []byte {
	var b strings.Builder
	b.Grow(len(objType) + 12)
	b.WriteString(string(objType))
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(size))
	b.WriteByte(0)
	return []byte(b.String())
}

// Envelope returns the canonical uncompressed encoding "type len\0content".
func Envelope(objType ObjectType, data []byte) []byte {
	header := envelopeHeader(objType, len(data))
	raw := make([]byte, 0, len(header)+len(data))
	raw = append(raw, header...)
	return append(raw, data...)
}

// HashObject computes the address of an object without storing it. The
// digest covers the uncompressed envelope, never the compressed bytes.
func HashObject(objType ObjectType, data []byte) Hash {
	h := sha1.New()
	h.Write(envelopeHeader(objType, len(data)))
	h.Write(data)
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}
