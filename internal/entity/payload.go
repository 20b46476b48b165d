package entity

import "github.com/medpass-app/medpass/internal/fields"

// Payload is the plaintext JSON structure sealed into a Record.
type Payload struct {
	ID         string        `json:"id"`
	UserID     string        `json:"user_id"`
	FileName   string        `json:"file_name"`
	FileURL    *string       `json:"file_url"`
	RecordType string        `json:"record_type"`
	Summary    string        `json:"summary"`
	UploadedAt string        `json:"uploaded_at"`
	Fields     fields.Fields `json:"fields"`
}
