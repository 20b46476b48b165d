package entity

import (
	"encoding/json"
	"time"
)

// Prediction is a stored risk-assessment run: the caller's input and the
// rule-table result, both kept as raw JSON.
type Prediction struct {
	ID        string
	OwnerID   string
	CreatedAt time.Time
	Input     json.RawMessage
	Result    json.RawMessage
}

// ChatMessage is one turn of the assistant conversation.
type ChatMessage struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	Role      string    `json:"role"` // "user" | "assistant"
	Message   string    `json:"message"`
	Language  string    `json:"language"`
}

// SummaryRecord is a stored AI medical summary.
type SummaryRecord struct {
	ID        string
	OwnerID   string
	CreatedAt time.Time
	Summary   json.RawMessage
}
