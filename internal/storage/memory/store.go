package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pkaushik-02002/BagavatgitaAI/internal/models"
)

// Store is an in-memory document store used by tests. It implements the same
// contract as the Firestore adapter: server-assigned session ids, sessions
// listed by owner in updated_at-descending order, messages per session in
// timestamp-ascending (insertion) order.
//
// FailNext injects a one-shot error for a named operation so callers can
// exercise remote-failure paths.
type Store struct {
	mu       sync.Mutex
	nextID   int
	sessions map[string]*models.ChatSession
	messages map[string][]models.ChatMessage
	failures map[string]error
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*models.ChatSession),
		messages: make(map[string][]models.ChatMessage),
		failures: make(map[string]error),
	}
}

// FailNext makes the next call to the named operation (e.g. "AppendMessage")
// return err.
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *Store) takeFailure(op string) error {
	if err, ok := s.failures[op]; ok {
		delete(s.failures, op)
		return err
	}
	return nil
}

func (s *Store) CreateSession(_ context.Context, session *models.ChatSession) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure("CreateSession"); err != nil {
		return "", err
	}

	s.nextID++
	id := fmt.Sprintf("session-%d", s.nextID)

	stored := *session
	stored.ID = id
	stored.Messages = nil
	s.sessions[id] = &stored
	return id, nil
}

func (s *Store) UpdateSessionMeta(_ context.Context, id, title string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure("UpdateSessionMeta"); err != nil {
		return err
	}

	sess, ok := s.sessions[id]
	if !ok {
		return errors.New("session not found")
	}
	sess.Title = title
	sess.UpdatedAt = updatedAt
	return nil
}

func (s *Store) UpdateSessionTitle(_ context.Context, id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure("UpdateSessionTitle"); err != nil {
		return err
	}

	sess, ok := s.sessions[id]
	if !ok {
		return errors.New("session not found")
	}
	sess.Title = title
	return nil
}

func (s *Store) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure("DeleteSession"); err != nil {
		return err
	}

	delete(s.sessions, id)
	delete(s.messages, id)
	return nil
}

func (s *Store) ListSessionsByUser(_ context.Context, userID string) ([]*models.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure("ListSessionsByUser"); err != nil {
		return nil, err
	}

	var out []*models.ChatSession
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			cp := *sess
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (s *Store) AppendMessage(_ context.Context, sessionID string, msg models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure("AppendMessage"); err != nil {
		return err
	}

	if _, ok := s.sessions[sessionID]; !ok {
		return errors.New("session not found")
	}
	s.messages[sessionID] = append(s.messages[sessionID], msg)
	return nil
}

func (s *Store) ListMessages(_ context.Context, sessionID string) ([]models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure("ListMessages"); err != nil {
		return nil, err
	}

	msgs := s.messages[sessionID]
	out := make([]models.ChatMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}
