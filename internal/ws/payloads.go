package ws

// Envelope is the single frame shape pushed to watchers.
type Envelope struct {
	Type      string `json:"type"`
	SessionID int64  `json:"session_id"`
	Payload   any    `json:"payload,omitempty"`
}
