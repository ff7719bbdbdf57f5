package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/spf13/cobra"
)

type fakeCloner struct {
	url, dest string
	err       error
}

func (f *fakeCloner) Clone(_ context.Context, url, dest string) error {
	f.url, f.dest = url, dest
	return f.err
}

func TestCloneInto(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	var out bytes.Buffer
	cmd.SetOut(&out)

	fc := &fakeCloner{}
	if err := cloneInto(cmd, fc, "https://example.com/r.git", "/tmp/r"); err != nil {
		t.Fatalf("cloneInto: %v", err)
	}
	if fc.url != "https://example.com/r.git" || fc.dest != "/tmp/r" {
		t.Fatalf("cloner got (%q, %q)", fc.url, fc.dest)
	}
	if out.String() != "cloned https://example.com/r.git into /tmp/r\n" {
		t.Fatalf("output = %q", out.String())
	}

	boom := errors.New("boom")
	if err := cloneInto(cmd, &fakeCloner{err: boom}, "u", "d"); !errors.Is(err, boom) {
		t.Fatalf("cloneInto err = %v, want boom", err)
	}
}

func TestCloneCmd_RequiresTwoArgs(t *testing.T) {
	if _, err := runMgit(t, nil, "clone", "https://example.com/r.git"); err == nil {
		t.Fatal("clone with one argument should fail")
	}
}
