package crypto

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medpass-app/medpass/internal/common"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestNewCipher_KeyLength(t *testing.T) {
	_, err := NewCipher(make([]byte, 16))
	assert.Error(t, err)

	_, err = NewCipher(make([]byte, 32))
	assert.NoError(t, err)
}

func TestSealOpen_RoundTrip(t *testing.T) {
	c, err := NewCipher(testKey(t))
	require.NoError(t, err)

	payload := map[string]any{
		"file_name":   "report.pdf",
		"record_type": "Report",
		"fields": map[string]string{
			"diagnosis": "Hypertension",
			"rawText":   "Diagnosis: Hypertension",
		},
	}

	blob, err := c.Seal(payload)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, c.Open(blob, &got))
	assert.Equal(t, "report.pdf", got["file_name"])
	assert.Equal(t, "Report", got["record_type"])
	fields, ok := got["fields"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Hypertension", fields["diagnosis"])
}

func TestSeal_NonceUniqueness(t *testing.T) {
	c, err := NewCipher(testKey(t))
	require.NoError(t, err)

	payload := map[string]string{"summary": "same plaintext"}
	a, err := c.Seal(payload)
	require.NoError(t, err)
	b, err := c.Seal(payload)
	require.NoError(t, err)

	assert.False(t, bytes.Equal(a, b), "two seals of the same payload must differ")
	assert.False(t, bytes.Equal(a[:NonceSize], b[:NonceSize]), "nonces must differ")
}

func TestOpen_TamperDetection(t *testing.T) {
	c, err := NewCipher(testKey(t))
	require.NoError(t, err)

	blob, err := c.Seal(map[string]string{"k": "v"})
	require.NoError(t, err)

	// Flipping any single byte must break the tag check.
	for i := range blob {
		mutated := bytes.Clone(blob)
		mutated[i] ^= 0x01

		var out map[string]string
		err := c.Open(mutated, &out)
		assert.Error(t, err, "byte %d", i)
		assert.True(t, errors.Is(err, common.ErrDecrypt), "byte %d", i)
	}
}

func TestOpen_WrongKey(t *testing.T) {
	a, err := NewCipher(testKey(t))
	require.NoError(t, err)
	b, err := NewCipher(testKey(t))
	require.NoError(t, err)

	blob, err := a.Seal(map[string]string{"k": "v"})
	require.NoError(t, err)

	var out map[string]string
	err = b.Open(blob, &out)
	assert.True(t, errors.Is(err, common.ErrDecrypt))
}

func TestOpen_TruncatedBlob(t *testing.T) {
	c, err := NewCipher(testKey(t))
	require.NoError(t, err)

	var out any
	err = c.Open(make([]byte, NonceSize+TagSize-1), &out)
	assert.True(t, errors.Is(err, common.ErrDecrypt))
}

func TestBlobLayout(t *testing.T) {
	c, err := NewCipher(testKey(t))
	require.NoError(t, err)

	blob, err := c.Seal(map[string]string{"k": "v"})
	require.NoError(t, err)

	// nonce(12) || tag(16) || ciphertext; the payload here is non-empty so
	// the blob must be strictly longer than the fixed prefix.
	assert.Greater(t, len(blob), NonceSize+TagSize)
}

func TestParseKeyHex(t *testing.T) {
	_, err := ParseKeyHex("not-hex")
	assert.Error(t, err)

	_, err = ParseKeyHex("abcd")
	assert.Error(t, err)

	key, err := ParseKeyHex("000102030405060708090a0b0c0d0e0f000102030405060708090a0b0c0d0e0f")
	require.NoError(t, err)
	assert.Len(t, key, 32)
}

func TestFallbackKey_Deterministic(t *testing.T) {
	assert.Equal(t, FallbackKey(), FallbackKey())
	assert.Len(t, FallbackKey(), 32)
}
