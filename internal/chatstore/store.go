package chatstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkaushik-02002/BagavatgitaAI/internal/models"
)

var (
	ErrNotAuthenticated = errors.New("user not authenticated")
	ErrSessionNotFound  = errors.New("session not found")
)

// titleLimit is how many characters of the first user message become the
// session title.
const titleLimit = 30

// DocumentStore is the remote persistence collaborator. Sessions live in a
// collection with server-assigned ids; messages live in a per-session
// subcollection. ListSessionsByUser returns sessions ordered by updated_at
// descending without their messages; ListMessages returns them ordered by
// timestamp ascending.
type DocumentStore interface {
	CreateSession(ctx context.Context, session *models.ChatSession) (string, error)
	UpdateSessionMeta(ctx context.Context, id, title string, updatedAt time.Time) error
	UpdateSessionTitle(ctx context.Context, id, title string) error
	DeleteSession(ctx context.Context, id string) error
	ListSessionsByUser(ctx context.Context, userID string) ([]*models.ChatSession, error)
	AppendMessage(ctx context.Context, sessionID string, msg models.ChatMessage) error
	ListMessages(ctx context.Context, sessionID string) ([]models.ChatMessage, error)
}

// Store holds one user's chat sessions: an in-memory mirror of the document
// store that the UI reads synchronously, with every mutation written through
// remote-first. Local state only changes after the remote write acknowledges,
// so a failed call leaves the mirror untouched.
//
// Mutations against the same session id serialize on a per-session lock; the
// store-wide fields are guarded by mu. Construct one Store per user (see
// Manager); there is no package-level instance.
type Store struct {
	docs DocumentStore
	snap SnapshotStore // optional; persists current ids across restarts

	now   func() time.Time
	newID func() string

	mu               sync.Mutex
	sessionLocks     map[string]*sync.Mutex
	sessions         []*models.ChatSession
	currentSessionID string
	currentUserID    string
	loading          bool
	lastErr          error
}

// Option configures a Store.
type Option func(*Store)

// WithSnapshot attaches a snapshot store for the current-session/current-user
// ids. Saves are best-effort and asynchronous.
func WithSnapshot(snap SnapshotStore) Option {
	return func(s *Store) { s.snap = snap }
}

// WithClock overrides the message/session timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides client-side message id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

func New(docs DocumentStore, opts ...Option) *Store {
	s := &Store{
		docs:         docs,
		now:          time.Now,
		newID:        func() string { return uuid.NewString() },
		sessionLocks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession allocates a new session remotely (the document store assigns
// the id), then inserts it at the head of the local mirror and makes it
// current. Not optimistic: the id does not exist until the remote create
// acknowledges. Returns the new session id.
func (s *Store) CreateSession(ctx context.Context, title string) (string, error) {
	if title == "" {
		title = models.DefaultSessionTitle
	}

	s.begin()

	s.mu.Lock()
	userID := s.currentUserID
	s.mu.Unlock()
	if userID == "" {
		s.finish(ErrNotAuthenticated)
		return "", ErrNotAuthenticated
	}

	now := s.now()
	session := &models.ChatSession{
		Title:     title,
		Messages:  []models.ChatMessage{},
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    userID,
	}

	id, err := s.docs.CreateSession(ctx, session)
	if err != nil {
		err = fmt.Errorf("creating session: %w", err)
		s.finish(err)
		return "", err
	}
	session.ID = id

	s.mu.Lock()
	s.sessions = append([]*models.ChatSession{session}, s.sessions...)
	s.currentSessionID = id
	s.mu.Unlock()
	s.saveSnapshot()

	s.finish(nil)
	return id, nil
}

// DeleteSession removes the session remotely, then from the mirror. When the
// deleted session was current, the pointer falls back to the first remaining
// session, or to none. The mirror is untouched if the remote delete fails.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	lock := s.lockSession(id)
	defer lock.Unlock()

	s.begin()

	s.mu.Lock()
	known := s.findLocked(id) != nil
	s.mu.Unlock()
	if !known {
		s.finish(ErrSessionNotFound)
		return ErrSessionNotFound
	}

	if err := s.docs.DeleteSession(ctx, id); err != nil {
		err = fmt.Errorf("deleting session: %w", err)
		s.finish(err)
		return err
	}

	s.mu.Lock()
	kept := s.sessions[:0:0]
	for _, sess := range s.sessions {
		if sess.ID != id {
			kept = append(kept, sess)
		}
	}
	s.sessions = kept
	if s.currentSessionID == id {
		if len(kept) > 0 {
			s.currentSessionID = kept[0].ID
		} else {
			s.currentSessionID = ""
		}
	}
	s.mu.Unlock()
	s.saveSnapshot()

	s.finish(nil)
	return nil
}

// AddMessage appends a message to a session. The message gets a client-side
// id and timestamp, is persisted to the session's subcollection, then the
// session's updated_at (and, for the first user message on a default-titled
// session, the derived title) is written, all before the mirror changes.
// If the meta update fails after the message write succeeded, the message is
// durable remotely but the session meta stays stale until the next
// FetchUserSessions; the mirror is not mutated in that case.
func (s *Store) AddMessage(ctx context.Context, sessionID, role, content string) (*models.ChatMessage, error) {
	lock := s.lockSession(sessionID)
	defer lock.Unlock()

	s.begin()

	s.mu.Lock()
	sess := s.findLocked(sessionID)
	var wasDefault bool
	if sess != nil {
		wasDefault = sess.Title == models.DefaultSessionTitle
	}
	s.mu.Unlock()
	if sess == nil {
		s.finish(ErrSessionNotFound)
		return nil, ErrSessionNotFound
	}

	msg := models.ChatMessage{
		ID:        s.newID(),
		Role:      role,
		Content:   content,
		Timestamp: s.now(),
	}

	if err := s.docs.AppendMessage(ctx, sessionID, msg); err != nil {
		err = fmt.Errorf("appending message: %w", err)
		s.finish(err)
		return nil, err
	}

	title := sess.Title
	if wasDefault && role == models.RoleUser {
		title = deriveTitle(content)
	}
	updatedAt := s.now()

	if err := s.docs.UpdateSessionMeta(ctx, sessionID, title, updatedAt); err != nil {
		err = fmt.Errorf("updating session meta: %w", err)
		s.finish(err)
		return nil, err
	}

	s.mu.Lock()
	if sess := s.findLocked(sessionID); sess != nil {
		// Replace, don't mutate: readers may hold the old slice.
		msgs := make([]models.ChatMessage, len(sess.Messages), len(sess.Messages)+1)
		copy(msgs, sess.Messages)
		sess.Messages = append(msgs, msg)
		sess.Title = title
		sess.UpdatedAt = updatedAt
	}
	s.mu.Unlock()

	s.finish(nil)
	return &msg, nil
}

// SetCurrentSessionID points the store at a session. Pure local change; the
// id is not validated against the mirror, so a dangling reference simply
// makes CurrentSession return nil. Empty string clears the pointer.
func (s *Store) SetCurrentSessionID(id string) {
	s.mu.Lock()
	s.currentSessionID = id
	s.mu.Unlock()
	s.saveSnapshot()
}

// SetCurrentUserID switches the owner scoping all session operations.
// Switching to a different owner discards the mirrored sessions synchronously;
// the new owner's sessions appear on the next FetchUserSessions.
func (s *Store) SetCurrentUserID(id string) {
	s.mu.Lock()
	if id != s.currentUserID {
		s.sessions = nil
		s.currentSessionID = ""
	}
	s.currentUserID = id
	s.mu.Unlock()
	s.saveSnapshot()
}

// CurrentSession returns a copy of the session the store currently points at,
// or nil when unset or dangling. No remote access.
func (s *Store) CurrentSession() *models.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentSessionID == "" {
		return nil
	}
	sess := s.findLocked(s.currentSessionID)
	if sess == nil {
		return nil
	}
	out := *sess
	return &out
}

// UpdateSessionTitle renames a session, remote-first.
func (s *Store) UpdateSessionTitle(ctx context.Context, id, title string) error {
	lock := s.lockSession(id)
	defer lock.Unlock()

	s.begin()

	s.mu.Lock()
	known := s.findLocked(id) != nil
	s.mu.Unlock()
	if !known {
		s.finish(ErrSessionNotFound)
		return ErrSessionNotFound
	}

	if err := s.docs.UpdateSessionTitle(ctx, id, title); err != nil {
		err = fmt.Errorf("updating session title: %w", err)
		s.finish(err)
		return err
	}

	s.mu.Lock()
	if sess := s.findLocked(id); sess != nil {
		sess.Title = title
	}
	s.mu.Unlock()

	s.finish(nil)
	return nil
}

// FetchUserSessions reloads the mirror from the document store: all sessions
// owned by the current user ordered by updated_at descending, each with its
// messages ordered by timestamp ascending. This is a destructive refresh:
// it replaces the whole mirror and is the only path that reconciles local
// state with the remote source of truth. The current pointer moves to the
// first fetched session, or to none.
func (s *Store) FetchUserSessions(ctx context.Context) error {
	s.begin()

	s.mu.Lock()
	userID := s.currentUserID
	s.mu.Unlock()
	if userID == "" {
		s.finish(ErrNotAuthenticated)
		return ErrNotAuthenticated
	}

	sessions, err := s.docs.ListSessionsByUser(ctx, userID)
	if err != nil {
		err = fmt.Errorf("listing sessions: %w", err)
		s.finish(err)
		return err
	}

	for _, sess := range sessions {
		msgs, err := s.docs.ListMessages(ctx, sess.ID)
		if err != nil {
			err = fmt.Errorf("listing messages for session %s: %w", sess.ID, err)
			s.finish(err)
			return err
		}
		if msgs == nil {
			msgs = []models.ChatMessage{}
		}
		sess.Messages = msgs
	}

	s.mu.Lock()
	s.sessions = sessions
	if len(sessions) > 0 {
		s.currentSessionID = sessions[0].ID
	} else {
		s.currentSessionID = ""
	}
	s.mu.Unlock()
	s.saveSnapshot()

	s.finish(nil)
	return nil
}

// SessionMessages returns the message sequence of a mirrored session, or an
// empty slice when the id is unknown. Never errors.
func (s *Store) SessionMessages(sessionID string) []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.findLocked(sessionID)
	if sess == nil {
		return []models.ChatMessage{}
	}
	return sess.Messages
}

// Sessions returns a copy of the mirrored session list in local order.
func (s *Store) Sessions() []*models.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.ChatSession, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// Session returns a copy of the mirrored session with the given id, or nil.
func (s *Store) Session(id string) *models.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.findLocked(id)
	if sess == nil {
		return nil
	}
	out := *sess
	return &out
}

func (s *Store) CurrentSessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentSessionID
}

func (s *Store) CurrentUserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentUserID
}

// IsLoading reports whether a remote operation is in flight.
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the error recorded by the last operation, or nil after a
// successful one.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Store) begin() {
	s.mu.Lock()
	s.loading = true
	s.lastErr = nil
	s.mu.Unlock()
}

func (s *Store) finish(err error) {
	s.mu.Lock()
	s.loading = false
	s.lastErr = err
	s.mu.Unlock()
}

// findLocked returns the mirrored session with the given id. Caller holds mu.
func (s *Store) findLocked(id string) *models.ChatSession {
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}

// lockSession acquires the per-session mutation lock, creating it on first
// use. Locks are never removed; a user's session count stays small.
func (s *Store) lockSession(id string) *sync.Mutex {
	s.mu.Lock()
	lock, ok := s.sessionLocks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.sessionLocks[id] = lock
	}
	s.mu.Unlock()
	lock.Lock()
	return lock
}

func (s *Store) saveSnapshot() {
	if s.snap == nil {
		return
	}
	s.mu.Lock()
	snap := Snapshot{
		CurrentSessionID: s.currentSessionID,
		CurrentUserID:    s.currentUserID,
	}
	s.mu.Unlock()
	go s.snap.Save(context.Background(), snap)
}

// Restore applies a previously saved snapshot. Only the current ids survive a
// restart; sessions must be re-fetched from the document store.
func (s *Store) Restore(ctx context.Context) error {
	if s.snap == nil {
		return nil
	}
	snap, err := s.snap.Load(ctx)
	if err != nil {
		return err
	}
	if snap == nil {
		return nil
	}
	s.mu.Lock()
	if s.currentUserID == "" {
		s.currentUserID = snap.CurrentUserID
	}
	// A snapshot taken for a different owner must not leak its session id.
	if snap.CurrentUserID == s.currentUserID {
		s.currentSessionID = snap.CurrentSessionID
	}
	s.mu.Unlock()
	return nil
}

func deriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) > titleLimit {
		return string(runes[:titleLimit]) + "..."
	}
	return content
}
