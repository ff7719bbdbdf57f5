package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KisukeMaybe/Git-Clone/pkg/repo"
	"github.com/KisukeMaybe/Git-Clone/pkg/sshsig"
	"golang.org/x/crypto/ssh"
)

// defaultSigningKeys are tried in order under ~/.ssh when no key is given.
var defaultSigningKeys = []string{"id_ed25519", "id_ecdsa", "id_rsa"}

// newSSHCommitSigner loads an unencrypted OpenSSH private key and returns
// a commit signer producing SSHSIG armor in the git namespace, along with
// the key path it used.
func newSSHCommitSigner(keyPath string) (repo.CommitSigner, string, error) {
	path, err := resolveSigningKeyPath(keyPath)
	if err != nil {
		return nil, "", err
	}
	signer, err := loadSSHSigner(path)
	if err != nil {
		return nil, "", err
	}
	return func(payload []byte) (string, error) {
		armored, err := sshsig.Sign(signer, sshsig.GitNamespace, payload)
		return string(armored), err
	}, path, nil
}

func loadSSHSigner(path string) (ssh.Signer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read signing key %q: %w", path, err)
	}
	signer, err := ssh.ParsePrivateKey(raw)
	var missing *ssh.PassphraseMissingError
	switch {
	case errors.As(err, &missing):
		return nil, fmt.Errorf("signing key %q is passphrase protected; use an unencrypted key", path)
	case err != nil:
		return nil, fmt.Errorf("parse signing key %q: %w", path, err)
	}
	return signer, nil
}

// resolveSigningKeyPath expands a leading ~/ in path, or picks the first
// default key present in ~/.ssh when path is empty.
func resolveSigningKeyPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	home, homeErr := os.UserHomeDir()
	if path == "" {
		if homeErr != nil {
			return "", fmt.Errorf("resolve home dir: %w", homeErr)
		}
		for _, name := range defaultSigningKeys {
			candidate := filepath.Join(home, ".ssh", name)
			if st, err := os.Stat(candidate); err == nil && st.Mode().IsRegular() {
				return candidate, nil
			}
		}
		return "", fmt.Errorf("no default SSH private key found in ~/.ssh (%s)", strings.Join(defaultSigningKeys, ", "))
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if homeErr != nil {
			return "", fmt.Errorf("resolve home dir: %w", homeErr)
		}
		path = filepath.Join(home, rest)
	}
	return filepath.Abs(path)
}
