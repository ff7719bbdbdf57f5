package object

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// TreeObj
// ---------------------------------------------------------------------------

// MarshalTree serializes a TreeObj in Git's binary tree layout. Each entry
// is written as
//
//	<mode> <name>\0<20 raw hash bytes>
//
// in the order given. Callers sort with SortTreeEntries first; MarshalTree
// never reorders, so an unsorted input produces an unsorted encoding.
func MarshalTree(tr *TreeObj) []byte {
	size := 0
	for _, e := range tr.Entries {
		size += len(e.Mode) + len(e.Name) + 2 + HashSize
	}
	buf := make([]byte, 0, size)
	for _, e := range tr.Entries {
		buf = append(buf, e.Mode...)
		buf = append(buf, ' ')
		buf = append(buf, e.Name...)
		buf = append(buf, 0)
		buf = append(buf, e.Hash[:]...)
	}
	return buf
}

// UnmarshalTree parses a binary tree payload, preserving on-disk order.
func UnmarshalTree(data []byte) (*TreeObj, error) {
	tr := &TreeObj{}
	for off := 0; off < len(data); {
		sp := bytes.IndexByte(data[off:], ' ')
		if sp < 0 {
			return nil, fmt.Errorf("%w: missing mode separator at offset %d", ErrCorruptTree, off)
		}
		if sp == 0 {
			return nil, fmt.Errorf("%w: empty mode at offset %d", ErrCorruptTree, off)
		}
		mode := string(data[off : off+sp])
		off += sp + 1

		nul := bytes.IndexByte(data[off:], 0)
		if nul < 0 {
			return nil, fmt.Errorf("%w: missing name terminator at offset %d", ErrCorruptTree, off)
		}
		if nul == 0 {
			return nil, fmt.Errorf("%w: empty name at offset %d", ErrCorruptTree, off)
		}
		name := string(data[off : off+nul])
		off += nul + 1

		if len(data)-off < HashSize {
			return nil, fmt.Errorf("%w: entry %q: %d bytes left for hash, want %d", ErrCorruptTree, name, len(data)-off, HashSize)
		}
		var h Hash
		copy(h[:], data[off:off+HashSize])
		off += HashSize

		tr.Entries = append(tr.Entries, TreeEntry{Mode: mode, Name: name, Hash: h})
	}
	return tr, nil
}

// SortTreeEntries orders entries by name, byte-wise.
func SortTreeEntries(entries []TreeEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
}

// ---------------------------------------------------------------------------
// Signature
// ---------------------------------------------------------------------------

// String renders "Name <email> <unix-seconds> <±hhmm>".
func (s Signature) String() string {
	return fmt.Sprintf("%s <%s> %d %s", s.Name, s.Email, s.When.Unix(), s.When.Format("-0700"))
}

// ParseSignature parses the value of an author or committer header.
func ParseSignature(line string) (Signature, error) {
	open := strings.LastIndexByte(line, '<')
	closing := strings.LastIndexByte(line, '>')
	if open < 0 || closing < open {
		return Signature{}, fmt.Errorf("parse signature %q: missing <email>", line)
	}
	sig := Signature{
		Name:  strings.TrimSuffix(line[:open], " "),
		Email: line[open+1 : closing],
	}

	fields := strings.Fields(line[closing+1:])
	if len(fields) != 2 {
		return Signature{}, fmt.Errorf("parse signature %q: want timestamp and timezone", line)
	}
	secs, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Signature{}, fmt.Errorf("parse signature %q: bad timestamp: %w", line, err)
	}
	loc, err := parseTimezone(fields[1])
	if err != nil {
		return Signature{}, fmt.Errorf("parse signature %q: %w", line, err)
	}
	sig.When = time.Unix(secs, 0).In(loc)
	return sig, nil
}

func parseTimezone(tz string) (*time.Location, error) {
	if len(tz) != 5 || (tz[0] != '+' && tz[0] != '-') {
		return nil, fmt.Errorf("bad timezone %q", tz)
	}
	hours, err := strconv.Atoi(tz[1:3])
	if err != nil {
		return nil, fmt.Errorf("bad timezone %q", tz)
	}
	minutes, err := strconv.Atoi(tz[3:5])
	if err != nil {
		return nil, fmt.Errorf("bad timezone %q", tz)
	}
	offset := hours*3600 + minutes*60
	if tz[0] == '-' {
		offset = -offset
	}
	return time.FixedZone("", offset), nil
}

// ---------------------------------------------------------------------------
// CommitObj
// ---------------------------------------------------------------------------

// MarshalCommit serializes a CommitObj in Git's commit layout:
//
//	tree H
//	parent H       (zero or more)
//	author A
//	committer C
//	<extra headers>
//	gpgsig S       (optional)
//
//	message
//
// Multi-line header values continue on lines prefixed by a single space.
// The message is always newline-terminated.
func MarshalCommit(c *CommitObj) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", c.TreeHash)
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", p)
	}
	fmt.Fprintf(&buf, "author %s\n", c.Author)
	fmt.Fprintf(&buf, "committer %s\n", c.Committer)
	for _, eh := range c.ExtraHeaders {
		writeCommitHeader(&buf, eh.Key, eh.Value)
	}
	if sig := strings.TrimRight(c.Signature, "\n"); sig != "" {
		writeCommitHeader(&buf, signatureHeader, sig)
	}
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	if !strings.HasSuffix(c.Message, "\n") {
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

const signatureHeader = "gpgsig"

func writeCommitHeader(buf *bytes.Buffer, key, value string) {
	buf.WriteString(key)
	buf.WriteByte(' ')
	buf.WriteString(strings.ReplaceAll(value, "\n", "\n "))
	buf.WriteByte('\n')
}

// UnmarshalCommit parses a CommitObj from its serialized form.
func UnmarshalCommit(data []byte) (*CommitObj, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("%w: commit: missing header/message separator", ErrCorruptObject)
	}
	header := string(data[:idx])
	c := &CommitObj{Message: string(data[idx+2:])}

	var sawTree bool
	lines := strings.Split(header, "\n")
	for i := 0; i < len(lines); i++ {
		key, val, ok := strings.Cut(lines[i], " ")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: commit: malformed header line %q", ErrCorruptObject, lines[i])
		}
		for i+1 < len(lines) && strings.HasPrefix(lines[i+1], " ") {
			i++
			val += "\n" + lines[i][1:]
		}
		switch key {
		case "tree":
			h, err := ParseHash(val)
			if err != nil {
				return nil, fmt.Errorf("%w: commit tree: %w", ErrCorruptObject, err)
			}
			c.TreeHash = h
			sawTree = true
		case "parent":
			h, err := ParseHash(val)
			if err != nil {
				return nil, fmt.Errorf("%w: commit parent: %w", ErrCorruptObject, err)
			}
			c.Parents = append(c.Parents, h)
		case "author", "committer":
			sig, err := ParseSignature(val)
			if err != nil {
				return nil, fmt.Errorf("%w: commit %s: %w", ErrCorruptObject, key, err)
			}
			if key == "author" {
				c.Author = sig
			} else {
				c.Committer = sig
			}
		case signatureHeader:
			c.Signature = val + "\n"
		default:
			c.ExtraHeaders = append(c.ExtraHeaders, ExtraHeader{Key: key, Value: val})
		}
	}
	if !sawTree {
		return nil, fmt.Errorf("%w: commit: missing tree header", ErrCorruptObject)
	}
	return c, nil
}

// CommitSigningPayload returns the canonical bytes that are signed for a
// commit. The payload excludes the signature header itself.
func CommitSigningPayload(c *CommitObj) []byte {
	if c == nil {
		return nil
	}
	copyCommit := *c
	copyCommit.Signature = ""
	return MarshalCommit(&copyCommit)
}

// StripCommitSignature returns stored commit bytes with the gpgsig header
// and its continuation lines removed. Everything else, including header
// order, is kept byte for byte, so the result is what the signer signed.
func StripCommitSignature(data []byte) []byte {
	end := bytes.Index(data, []byte("\n\n"))
	if end < 0 {
		return bytes.Clone(data)
	}
	out := make([]byte, 0, len(data))
	inSig := false
	for off := 0; off <= end; {
		next := bytes.IndexByte(data[off:], '\n') + off + 1
		line := data[off:next]
		switch {
		case bytes.HasPrefix(line, []byte(signatureHeader+" ")):
			inSig = true
		case inSig && bytes.HasPrefix(line, []byte(" ")):
		default:
			inSig = false
			out = append(out, line...)
		}
		off = next
	}
	return append(out, data[end+1:]...)
}
