package domain

import "time"

// MessageKind selects how a status message is presented.
type MessageKind string

const (
	MessageSuccess MessageKind = "success"
	MessageError   MessageKind = "error"
)

// Valid reports whether k is a known kind.
func (k MessageKind) Valid() bool {
	return k == MessageSuccess || k == MessageError
}

// StatusMessage is a transient notification. A newer message supersedes
// it immediately; otherwise it disappears once ExpiresAt passes.
type StatusMessage struct {
	ID        string      `json:"id"`
	Text      string      `json:"text"`
	Kind      MessageKind `json:"kind"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Expired reports whether the message should no longer be shown at now.
func (m StatusMessage) Expired(now time.Time) bool {
	return !now.Before(m.ExpiresAt)
}
