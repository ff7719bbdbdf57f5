package sshsig

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/ssh"
)

func newEd25519Signer(t *testing.T) ssh.Signer {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatalf("NewSignerFromKey: %v", err)
	}
	return signer
}

func TestSignVerify_Ed25519(t *testing.T) {
	signer := newEd25519Signer(t)
	msg := []byte("tree 4b825dc642cb6eb9a060e54bf8d69288fbee4904\n\nmsg\n")

	armored, err := Sign(signer, GitNamespace, msg)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	text := string(armored)
	if !strings.HasPrefix(text, armorBegin+"\n") || !strings.HasSuffix(text, armorEnd+"\n") {
		t.Fatalf("armor = %q", text)
	}
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if len(line) > armorWidth && !strings.HasPrefix(line, "-----") {
			t.Fatalf("armor line longer than %d: %q", armorWidth, line)
		}
	}

	pub, err := Verify(armored, msg, GitNamespace)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !bytes.Equal(pub.Marshal(), signer.PublicKey().Marshal()) {
		t.Fatal("Verify returned a different public key")
	}
}

func TestSignVerify_RSA(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	signer, err := ssh.NewSignerFromKey(key)
	if err != nil {
		t.Fatalf("NewSignerFromKey: %v", err)
	}
	armored, err := Sign(signer, GitNamespace, []byte("payload"))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := Verify(armored, []byte("payload"), GitNamespace); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerify_Rejects(t *testing.T) {
	signer := newEd25519Signer(t)
	msg := []byte("payload")
	armored, err := Sign(signer, GitNamespace, msg)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	tests := []struct {
		name      string
		armored   []byte
		message   []byte
		namespace string
	}{
		{name: "tampered message", armored: armored, message: []byte("payload!"), namespace: GitNamespace},
		{name: "wrong namespace", armored: armored, message: msg, namespace: "file"},
		{name: "no armor", armored: []byte("abc"), message: msg, namespace: GitNamespace},
		{name: "bad base64", armored: []byte(armorBegin + "\n!!!\n" + armorEnd + "\n"), message: msg, namespace: GitNamespace},
		{name: "bad preamble", armored: armor([]byte("NOTSIG....")), message: msg, namespace: GitNamespace},
		{name: "truncated", armored: armor([]byte(magic + "\x00\x00")), message: msg, namespace: GitNamespace},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Verify(tt.armored, tt.message, tt.namespace); !errors.Is(err, ErrInvalidSignature) {
				t.Fatalf("Verify err = %v, want ErrInvalidSignature", err)
			}
		})
	}
}

func TestSign_RequiresNamespace(t *testing.T) {
	if _, err := Sign(newEd25519Signer(t), "", []byte("x")); err == nil {
		t.Fatal("Sign with empty namespace should fail")
	}
	if _, err := Sign(nil, GitNamespace, []byte("x")); err == nil {
		t.Fatal("Sign with nil signer should fail")
	}
}
