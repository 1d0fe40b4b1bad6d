package models

import (
	"time"
)

// Message roles within a chat session.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultSessionTitle is the placeholder a session carries until the first
// user message rewrites it.
const DefaultSessionTitle = "New Chat"

// ChatMessage is a single message in a session. The ID is assigned client-side
// when the message is created; the timestamp comes from the local clock and is
// informational; ordering is by insertion.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // "user" | "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatSession is a titled conversation thread belonging to one user. The ID is
// assigned by the document store on creation.
type ChatSession struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	UserID    string        `json:"user_id"`
}

// LastMessage returns a preview string for session lists.
func (s *ChatSession) LastMessage() string {
	if len(s.Messages) == 0 {
		return ""
	}
	last := s.Messages[len(s.Messages)-1]
	if last.Role == RoleUser {
		return last.Content
	}
	return "GitaAI: " + last.Content
}

// SessionInfo is the message-less view of a session used in list responses.
type SessionInfo struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"message_count"`
	LastMessage  string    `json:"last_message"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Info projects a session into its list form.
func (s *ChatSession) Info() SessionInfo {
	return SessionInfo{
		ID:           s.ID,
		Title:        s.Title,
		MessageCount: len(s.Messages),
		LastMessage:  s.LastMessage(),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

type CreateSessionRequest struct {
	Title string `json:"title"`
}

type UpdateTitleRequest struct {
	Title string `json:"title"`
}

type SelectSessionRequest struct {
	SessionID *string `json:"session_id"`
}

// SendMessageRequest is the payload for posting a message to a session.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// SendMessageResponse carries both sides of the exchange back to the client.
type SendMessageResponse struct {
	UserMessage      ChatMessage `json:"user_message"`
	AssistantMessage ChatMessage `json:"assistant_message"`
	Session          SessionInfo `json:"session"`
}
