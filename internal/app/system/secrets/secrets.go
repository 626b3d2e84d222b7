// Package secrets encrypts tenant credentials (SMS gateway API keys) at rest.
//
// The key is SHA-256 of the server master secret. Each encryption uses a
// fresh random 12-byte IV with AES-256-GCM, so a wrong key or any tampered
// byte fails authentication instead of producing corrupted plaintext.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
)

const (
	ivSize  = 12
	tagSize = 16
)

var (
	// ErrNoMasterSecret is returned by New when the master secret is empty.
	ErrNoMasterSecret = errors.New("secrets: master secret is empty")
	// ErrMalformed is returned when a sealed value has the wrong shape.
	ErrMalformed = errors.New("secrets: malformed sealed value")
	// ErrAuthFailed is returned when the tag does not verify (wrong key or tampering).
	ErrAuthFailed = errors.New("secrets: authentication failed")
)

// Sealed is the three-part form of an encrypted value.
type Sealed struct {
	Ciphertext []byte
	IV         []byte
	Tag        []byte
}

// Cipher is safe for concurrent use.
type Cipher struct {
	aead cipher.AEAD
	rand io.Reader
}

// New derives the encryption key from masterSecret.
func New(masterSecret string) (*Cipher, error) {
	if masterSecret == "" {
		return nil, ErrNoMasterSecret
	}
	key := sha256.Sum256([]byte(masterSecret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("secrets: init block cipher: %w", err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return nil, fmt.Errorf("secrets: init gcm: %w", err)
	}
	return &Cipher{aead: aead, rand: rand.Reader}, nil
}

// Encrypt seals plaintext under a fresh IV.
func (c *Cipher) Encrypt(plaintext string) (Sealed, error) {
	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(c.rand, iv); err != nil {
		return Sealed{}, fmt.Errorf("secrets: read iv: %w", err)
	}
	out := c.aead.Seal(nil, iv, []byte(plaintext), nil)
	n := len(out) - tagSize
	return Sealed{
		Ciphertext: out[:n],
		IV:         iv,
		Tag:        out[n:],
	}, nil
}

// Decrypt verifies the tag and returns the plaintext.
func (c *Cipher) Decrypt(s Sealed) (string, error) {
	if len(s.IV) != ivSize || len(s.Tag) != tagSize {
		return "", ErrMalformed
	}
	buf := make([]byte, 0, len(s.Ciphertext)+tagSize)
	buf = append(buf, s.Ciphertext...)
	buf = append(buf, s.Tag...)
	pt, err := c.aead.Open(nil, s.IV, buf, nil)
	if err != nil {
		return "", ErrAuthFailed
	}
	return string(pt), nil
}

// Seal encrypts plaintext into a single blob laid out as IV || ciphertext || tag.
func (c *Cipher) Seal(plaintext string) ([]byte, error) {
	s, err := c.Encrypt(plaintext)
	if err != nil {
		return nil, err
	}
	return s.Bytes(), nil
}

// Open decrypts a blob produced by Seal.
func (c *Cipher) Open(blob []byte) (string, error) {
	s, err := Split(blob)
	if err != nil {
		return "", err
	}
	return c.Decrypt(s)
}

// Bytes packs s as IV || ciphertext || tag.
func (s Sealed) Bytes() []byte {
	out := make([]byte, 0, len(s.IV)+len(s.Ciphertext)+len(s.Tag))
	out = append(out, s.IV...)
	out = append(out, s.Ciphertext...)
	return append(out, s.Tag...)
}

// Split unpacks a sealed blob into its three parts.
func Split(blob []byte) (Sealed, error) {
	if len(blob) < ivSize+tagSize {
		return Sealed{}, ErrMalformed
	}
	return Sealed{
		IV:         blob[:ivSize],
		Ciphertext: blob[ivSize : len(blob)-tagSize],
		Tag:        blob[len(blob)-tagSize:],
	}, nil
}
