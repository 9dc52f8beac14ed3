package models

import (
	"encoding/json"
	"time"
)

// ChatMessage is one exchange with the assistant. Messages are append-only:
// never mutated after creation, cleared only in bulk.
type ChatMessage struct {
	ID            string
	UserText      string
	AIResponse    string
	ActionType    string
	ActionPayload json.RawMessage
	Timestamp     time.Time
}
