package entity

import "time"

// Record is the persisted form of a health record. Data holds the
// EncryptedBlob (nonce || tag || ciphertext); the plaintext Payload is only
// reconstructed on read. Stored blobs are never mutated in place.
type Record struct {
	ID        string
	OwnerID   string
	CreatedAt time.Time
	Data      []byte
}
