package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runMgit(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	if stdin != nil {
		root.SetIn(stdin)
	}
	root.SetArgs(append([]string{"--log-format", "text"}, args...))
	err := root.Execute()
	return out.String(), err
}

func chdirForTest(t *testing.T, dir string) func() {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir(%s): %v", dir, err)
	}
	return func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("restore cwd %s: %v", wd, err)
		}
	}
}

func writeCmdFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll(%s): %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
}

// initCmdRepo creates a repository in a temp dir and changes into it.
func initCmdRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	restore := chdirForTest(t, dir)
	t.Cleanup(restore)
	if out, err := runMgit(t, nil, "init"); err != nil {
		t.Fatalf("init: %v\noutput:\n%s", err, out)
	}
	return dir
}

func TestVersionCmd(t *testing.T) {
	out, err := runMgit(t, nil, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if out != "mgit "+version+"\n" {
		t.Fatalf("version output = %q", out)
	}
}

func TestRootCmd_InvalidLogLevel(t *testing.T) {
	if _, err := runMgit(t, nil, "--log-level", "loud", "version"); err == nil {
		t.Fatal("invalid --log-level should fail")
	}
}

func TestInitCmd(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "repo")
	out, err := runMgit(t, nil, "init", target)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out, filepath.Join(target, ".git")) {
		t.Fatalf("init output = %q, want to mention %s", out, filepath.Join(target, ".git"))
	}
	for _, p := range []string{"HEAD", "objects", "refs"} {
		if _, err := os.Stat(filepath.Join(target, ".git", p)); err != nil {
			t.Fatalf("Stat(.git/%s): %v", p, err)
		}
	}
	if _, err := runMgit(t, nil, "init", target); err != nil {
		t.Fatalf("second init: %v", err)
	}
}

func TestCommandsOutsideRepository(t *testing.T) {
	restore := chdirForTest(t, t.TempDir())
	defer restore()
	if _, err := runMgit(t, nil, "write-tree"); err == nil {
		t.Fatal("write-tree outside a repository should fail")
	}
}
