// Package sshsig creates and checks OpenSSH "SSHSIG" detached signatures,
// the format `ssh-keygen -Y sign` produces and git stores in gpgsig headers.
package sshsig

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"errors"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/ssh"
)

// GitNamespace is the namespace git uses for commit and tag signatures.
const GitNamespace = "git"

const (
	magic       = "SSHSIG"
	version     = 1
	armorBegin  = "-----BEGIN SSH SIGNATURE-----"
	armorEnd    = "-----END SSH SIGNATURE-----"
	armorWidth  = 70
	defaultHash = "sha512"
)

// ErrInvalidSignature is returned for signatures that cannot be decoded or
// do not verify.
var ErrInvalidSignature = errors.New("invalid ssh signature")

// envelope is the signature blob after the magic preamble.
type envelope struct {
	Version       uint32
	PublicKey     []byte
	Namespace     string
	Reserved      string
	HashAlgorithm string
	Signature     []byte
}

// signedData is the blob the key actually signs, after the magic preamble.
type signedData struct {
	Namespace     string
	Reserved      string
	HashAlgorithm string
	Hash          []byte
}

// Sign signs message under namespace and returns the armored signature.
// RSA keys sign with rsa-sha2-512.
func Sign(signer ssh.Signer, namespace string, message []byte) ([]byte, error) {
	if signer == nil {
		return nil, errors.New("sshsig: nil signer")
	}
	if namespace == "" {
		return nil, errors.New("sshsig: namespace is required")
	}
	data, err := messageBlob(namespace, defaultHash, message)
	if err != nil {
		return nil, err
	}

	var sig *ssh.Signature
	if as, ok := signer.(ssh.AlgorithmSigner); ok && signer.PublicKey().Type() == ssh.KeyAlgoRSA {
		sig, err = as.SignWithAlgorithm(rand.Reader, data, ssh.KeyAlgoRSASHA512)
	} else {
		sig, err = signer.Sign(rand.Reader, data)
	}
	if err != nil {
		return nil, fmt.Errorf("sshsig: sign: %w", err)
	}

	blob := append([]byte(magic), ssh.Marshal(envelope{
		Version:       version,
		PublicKey:     signer.PublicKey().Marshal(),
		Namespace:     namespace,
		HashAlgorithm: defaultHash,
		Signature:     ssh.Marshal(sig),
	})...)
	return armor(blob), nil
}

// Verify checks an armored signature over message and returns the signing
// public key. The caller decides whether that key is trusted.
func Verify(armored, message []byte, namespace string) (ssh.PublicKey, error) {
	blob, err := dearmor(armored)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(blob, []byte(magic)) {
		return nil, fmt.Errorf("%w: missing %s preamble", ErrInvalidSignature, magic)
	}
	var env envelope
	if err := ssh.Unmarshal(blob[len(magic):], &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	if env.Version != version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidSignature, env.Version)
	}
	if env.Namespace != namespace {
		return nil, fmt.Errorf("%w: namespace %q, want %q", ErrInvalidSignature, env.Namespace, namespace)
	}
	pub, err := ssh.ParsePublicKey(env.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: public key: %w", ErrInvalidSignature, err)
	}
	var sig ssh.Signature
	if err := ssh.Unmarshal(env.Signature, &sig); err != nil {
		return nil, fmt.Errorf("%w: signature: %w", ErrInvalidSignature, err)
	}
	data, err := messageBlob(env.Namespace, env.HashAlgorithm, message)
	if err != nil {
		return nil, err
	}
	if err := pub.Verify(data, &sig); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	return pub, nil
}

func messageBlob(namespace, hashAlg string, message []byte) ([]byte, error) {
	var h hash.Hash
	switch hashAlg {
	case "sha512":
		h = sha512.New()
	case "sha256":
		h = sha256.New()
	default:
		return nil, fmt.Errorf("%w: unsupported hash %q", ErrInvalidSignature, hashAlg)
	}
	h.Write(message)
	return append([]byte(magic), ssh.Marshal(signedData{
		Namespace:     namespace,
		HashAlgorithm: hashAlg,
		Hash:          h.Sum(nil),
	})...), nil
}

func armor(blob []byte) []byte {
	enc := base64.StdEncoding.EncodeToString(blob)
	var buf bytes.Buffer
	buf.WriteString(armorBegin)
	buf.WriteByte('\n')
	for len(enc) > armorWidth {
		buf.WriteString(enc[:armorWidth])
		buf.WriteByte('\n')
		enc = enc[armorWidth:]
	}
	buf.WriteString(enc)
	buf.WriteByte('\n')
	buf.WriteString(armorEnd)
	buf.WriteByte('\n')
	return buf.Bytes()
}

func dearmor(armored []byte) ([]byte, error) {
	text := strings.TrimSpace(string(armored))
	if !strings.HasPrefix(text, armorBegin) || !strings.HasSuffix(text, armorEnd) {
		return nil, fmt.Errorf("%w: missing armor", ErrInvalidSignature)
	}
	body := strings.TrimSuffix(strings.TrimPrefix(text, armorBegin), armorEnd)
	body = strings.Join(strings.Fields(body), "")
	blob, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	return blob, nil
}
