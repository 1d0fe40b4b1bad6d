package models

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// SessionUpdatedEvent is pushed over the user's channel whenever a chat
// exchange completes.
type SessionUpdatedEvent struct {
	SessionID string `json:"session_id"`
	Title     string `json:"title"`
}

// SyncCompletedEvent reports a finished chapter sync.
type SyncCompletedEvent struct {
	Chapters int    `json:"chapters"`
	Error    string `json:"error,omitempty"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
