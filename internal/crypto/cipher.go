package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/medpass-app/medpass/internal/common"
)

const (
	// NonceSize is the GCM nonce length in bytes.
	NonceSize = 12
	// TagSize is the GCM authentication tag length in bytes.
	TagSize = 16
)

// fallbackPassphrase seeds the development key when ENC_KEY is unset.
// NOT safe for production data; config validation warns when it is in use.
const fallbackPassphrase = "medpass-dev-key"

// Cipher encrypts record payloads at rest with AES-256-GCM.
//
// The sealed blob layout is nonce || tag || ciphertext, with the nonce at
// bytes [0:12] and the tag at [12:28]. A fresh random nonce is drawn per
// Seal, so sealing the same payload twice never yields the same blob.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher builds a Cipher from a 32-byte key. The key is injected rather
// than read from ambient state so tests can isolate their own keys.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// ParseKeyHex decodes a 64-hex-character key.
func ParseKeyHex(keyHex string) ([]byte, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("decode key hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

// FallbackKey derives the deterministic development key.
func FallbackKey() []byte {
	sum := sha256.Sum256([]byte(fallbackPassphrase))
	return sum[:]
}

// Seal serializes v as JSON and encrypts it under a fresh nonce.
func (c *Cipher) Seal(v any) ([]byte, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	// GCM appends the tag after the ciphertext; the stored layout wants it
	// between nonce and ciphertext, so split and reorder.
	sealed := c.aead.Seal(nil, nonce, plaintext, nil)
	ct, tag := sealed[:len(sealed)-TagSize], sealed[len(sealed)-TagSize:]

	blob := make([]byte, 0, NonceSize+TagSize+len(ct))
	blob = append(blob, nonce...)
	blob = append(blob, tag...)
	blob = append(blob, ct...)
	return blob, nil
}

// Open decrypts a sealed blob into v. Any tampering, truncation, or key
// mismatch fails with common.ErrDecrypt; partial plaintext is never returned.
func (c *Cipher) Open(blob []byte, v any) error {
	raw, err := c.OpenRaw(blob)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

// OpenRaw decrypts a sealed blob and returns the plaintext JSON.
func (c *Cipher) OpenRaw(blob []byte) (json.RawMessage, error) {
	if len(blob) < NonceSize+TagSize {
		return nil, fmt.Errorf("%w: blob too short", common.ErrDecrypt)
	}
	nonce := blob[:NonceSize]
	tag := blob[NonceSize : NonceSize+TagSize]
	ct := blob[NonceSize+TagSize:]

	sealed := make([]byte, 0, len(ct)+TagSize)
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)

	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecrypt, err)
	}
	return plaintext, nil
}
