package models

// SessionCompleted is the event published when a session's verdict has been
// produced and stored.
type SessionCompleted struct {
	EventType string `json:"eventType"`
	EventID   string `json:"eventId"`
	SessionID int64  `json:"sessionId"`
	Mode      string `json:"mode"`
	Timestamp int64  `json:"timestamp"`
}
