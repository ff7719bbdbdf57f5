package remote

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestGitCloner_RejectsBadArguments(t *testing.T) {
	c := NewGitCloner(nil)
	nonEmpty := t.TempDir()
	if err := os.WriteFile(filepath.Join(nonEmpty, "f"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tests := []struct {
		name string
		url  string
		dest string
	}{
		{name: "empty url", url: "  ", dest: filepath.Join(t.TempDir(), "d")},
		{name: "empty dest", url: "https://example.com/r.git", dest: ""},
		{name: "option-like url", url: "--upload-pack=evil", dest: filepath.Join(t.TempDir(), "d")},
		{name: "non-empty dest", url: "https://example.com/r.git", dest: nonEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.Clone(context.Background(), tt.url, tt.dest); err == nil {
				t.Fatal("Clone should fail")
			}
		})
	}
}

func TestGitCloner_MissingBinary(t *testing.T) {
	c := NewGitCloner(nil)
	c.GitPath = filepath.Join(t.TempDir(), "no-such-git")
	err := c.Clone(context.Background(), "https://example.com/r.git", filepath.Join(t.TempDir(), "d"))
	if err == nil {
		t.Fatal("Clone with missing git binary should fail")
	}
}

func TestVerifyStore(t *testing.T) {
	dir := t.TempDir()
	if err := verifyStore(dir); !errors.Is(err, ErrCloneIncomplete) {
		t.Fatalf("verifyStore(empty) err = %v, want ErrCloneIncomplete", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, ".git", "objects"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := verifyStore(dir); !errors.Is(err, ErrCloneIncomplete) {
		t.Fatalf("verifyStore(no HEAD) err = %v, want ErrCloneIncomplete", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".git", "HEAD"), []byte("ref: refs/heads/main\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := verifyStore(dir); err != nil {
		t.Fatalf("verifyStore: %v", err)
	}
}

func TestGitCloner_LocalRepository(t *testing.T) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		t.Skip("git not found on PATH")
	}
	src := t.TempDir()
	runGit(t, gitPath, src, "init", "-q")
	if err := os.WriteFile(filepath.Join(src, "a.txt"), []byte("hi\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	runGit(t, gitPath, src, "add", "a.txt")
	runGit(t, gitPath, src, "-c", "user.name=T", "-c", "user.email=t@example.com", "commit", "-q", "-m", "init")

	dest := filepath.Join(t.TempDir(), "clone")
	c := NewGitCloner(nil)
	c.GitPath = gitPath
	if err := c.Clone(context.Background(), src, dest); err != nil {
		t.Fatalf("Clone: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dest, "a.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "hi\n" {
		t.Fatalf("cloned a.txt = %q", data)
	}
}

func TestGitCloner_CommandFailureIncludesStderr(t *testing.T) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		t.Skip("git not found on PATH")
	}
	c := NewGitCloner(nil)
	c.GitPath = gitPath
	missing := filepath.Join(t.TempDir(), "missing-repo")
	err = c.Clone(context.Background(), missing, filepath.Join(t.TempDir(), "d"))
	if err == nil {
		t.Fatal("Clone of missing repository should fail")
	}
	if !strings.Contains(err.Error(), "clone "+missing) {
		t.Fatalf("error %q lacks url context", err)
	}
}

func runGit(t *testing.T, gitPath, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command(gitPath, append([]string{"-C", dir}, args...)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
	}
}
