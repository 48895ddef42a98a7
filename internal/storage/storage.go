package storage

import "time"

// Event is one recorded exchange: the user's input, how it was
// classified and what the assistant answered. Events are appended in
// chronological order.
type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	UserID     int64     `json:"user_id"`
	Input      string    `json:"input"`
	Categories []string  `json:"categories,omitempty"`
	Response   string    `json:"response"`
}

// Recorder abstracts persistence of interaction events. Implementations
// must be safe for concurrent use; the router writes through it on a
// best-effort basis only.
type Recorder interface {
	AppendInteraction(event Event) error
	LoadInteractions() ([]Event, error)
}
