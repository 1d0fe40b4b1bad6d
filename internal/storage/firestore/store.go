package firestore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pkaushik-02002/BagavatgitaAI/internal/models"
)

// Store is the Firestore-backed document store. Chat sessions live in the
// chatSessions collection with a messages subcollection per session; verses
// and the chapter mirror live in their own collections.
type Store struct {
	client *firestore.Client
}

func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) sessionsCol() *firestore.CollectionRef {
	return s.client.Collection("chatSessions")
}

func (s *Store) sessionDoc(id string) *firestore.DocumentRef {
	return s.sessionsCol().Doc(id)
}

func (s *Store) messagesCol(sessionID string) *firestore.CollectionRef {
	return s.sessionDoc(sessionID).Collection("messages")
}

func (s *Store) versesCol() *firestore.CollectionRef {
	return s.client.Collection("verses")
}

func (s *Store) chaptersCol() *firestore.CollectionRef {
	return s.client.Collection("chapters")
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type sessionDoc struct {
	UserID    string    `firestore:"userId"`
	Title     string    `firestore:"title"`
	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

type messageDoc struct {
	MessageID string    `firestore:"messageId"`
	Role      string    `firestore:"role"`
	Content   string    `firestore:"content"`
	Timestamp time.Time `firestore:"timestamp"`
}

type verseDoc struct {
	Chapter         int    `firestore:"chapter"`
	Verse           int    `firestore:"verse"`
	Sanskrit        string `firestore:"sanskrit"`
	Transliteration string `firestore:"transliteration"`
	Translation     string `firestore:"translation"`
	SearchableText  string `firestore:"searchableText"`
}

type chapterDoc struct {
	ChapterNumber  int    `firestore:"chapter_number"`
	Name           string `firestore:"name"`
	NameTranslated string `firestore:"name_translated"`
	NameMeaning    string `firestore:"name_meaning"`
	ChapterSummary string `firestore:"chapter_summary"`
	VersesCount    int    `firestore:"verses_count"`
}

// Documents come back from a collaborator we don't control; validate the
// shape instead of mirroring whatever arrived.

func (d *sessionDoc) validate(id string) error {
	if d.UserID == "" {
		return fmt.Errorf("session %s: missing userId", id)
	}
	return nil
}

func (d *messageDoc) validate(id string) error {
	if d.Role != models.RoleUser && d.Role != models.RoleAssistant {
		return fmt.Errorf("message %s: unknown role %q", id, d.Role)
	}
	return nil
}

// ─────────────────────────────────────────
// chatstore.DocumentStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateSession(ctx context.Context, session *models.ChatSession) (string, error) {
	doc := sessionDoc{
		UserID:    session.UserID,
		Title:     session.Title,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}

	ref, _, err := s.sessionsCol().Add(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("firestore CreateSession: %w", err)
	}
	return ref.ID, nil
}

func (s *Store) UpdateSessionMeta(ctx context.Context, id, title string, updatedAt time.Time) error {
	_, err := s.sessionDoc(id).Update(ctx, []firestore.Update{
		{Path: "title", Value: title},
		{Path: "updatedAt", Value: updatedAt},
	})
	if err != nil {
		return fmt.Errorf("firestore UpdateSessionMeta: %w", err)
	}
	return nil
}

func (s *Store) UpdateSessionTitle(ctx context.Context, id, title string) error {
	_, err := s.sessionDoc(id).Update(ctx, []firestore.Update{
		{Path: "title", Value: title},
	})
	if err != nil {
		return fmt.Errorf("firestore UpdateSessionTitle: %w", err)
	}
	return nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	// Messages are a subcollection; deleting the parent leaves them orphaned
	// in Firestore, so delete them first.
	iter := s.messagesCol(id).Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("firestore DeleteSession messages: %w", err)
		}
		if _, err := snap.Ref.Delete(ctx); err != nil {
			return fmt.Errorf("firestore DeleteSession message %s: %w", snap.Ref.ID, err)
		}
	}

	if _, err := s.sessionDoc(id).Delete(ctx); err != nil {
		return fmt.Errorf("firestore DeleteSession: %w", err)
	}
	return nil
}

func (s *Store) ListSessionsByUser(ctx context.Context, userID string) ([]*models.ChatSession, error) {
	q := s.sessionsCol().
		Where("userId", "==", userID).
		OrderBy("updatedAt", firestore.Desc)

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*models.ChatSession
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore ListSessionsByUser: %w", err)
		}

		var doc sessionDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode sessionDoc %s: %w", snap.Ref.ID, err)
		}
		if err := doc.validate(snap.Ref.ID); err != nil {
			return nil, err
		}

		out = append(out, &models.ChatSession{
			ID:        snap.Ref.ID,
			Title:     doc.Title,
			CreatedAt: doc.CreatedAt,
			UpdatedAt: doc.UpdatedAt,
			UserID:    doc.UserID,
		})
	}
	return out, nil
}

func (s *Store) AppendMessage(ctx context.Context, sessionID string, msg models.ChatMessage) error {
	// Point read first: appending to a missing session would silently create
	// an orphan subcollection.
	if _, err := s.sessionDoc(sessionID).Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("firestore AppendMessage: session %s not found", sessionID)
		}
		return fmt.Errorf("firestore AppendMessage: %w", err)
	}

	doc := messageDoc{
		MessageID: msg.ID,
		Role:      msg.Role,
		Content:   msg.Content,
		Timestamp: msg.Timestamp,
	}

	if _, err := s.messagesCol(sessionID).Doc(msg.ID).Create(ctx, doc); err != nil {
		return fmt.Errorf("firestore AppendMessage: %w", err)
	}
	return nil
}

func (s *Store) ListMessages(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	q := s.messagesCol(sessionID).OrderBy("timestamp", firestore.Asc)

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []models.ChatMessage
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore ListMessages: %w", err)
		}

		var doc messageDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode messageDoc %s: %w", snap.Ref.ID, err)
		}
		if err := doc.validate(snap.Ref.ID); err != nil {
			return nil, err
		}

		out = append(out, models.ChatMessage{
			ID:        snap.Ref.ID,
			Role:      doc.Role,
			Content:   doc.Content,
			Timestamp: doc.Timestamp,
		})
	}
	return out, nil
}

// ─────────────────────────────────────────
// Verses
// ─────────────────────────────────────────

func (s *Store) ListVerses(ctx context.Context) ([]models.Verse, error) {
	q := s.versesCol().OrderBy("chapter", firestore.Asc).OrderBy("verse", firestore.Asc)

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []models.Verse
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore ListVerses: %w", err)
		}

		var doc verseDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode verseDoc %s: %w", snap.Ref.ID, err)
		}

		out = append(out, verseFromDoc(snap.Ref.ID, doc))
	}
	return out, nil
}

// SearchVerses runs a prefix match on the lowercased searchable text, the
// standard Firestore range-bound trick.
func (s *Store) SearchVerses(ctx context.Context, query string, limit int) ([]models.Verse, error) {
	term := strings.ToLower(query)
	q := s.versesCol().
		Where("searchableText", ">=", term).
		Where("searchableText", "<=", term+"\uf8ff").
		Limit(limit)

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []models.Verse
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore SearchVerses: %w", err)
		}

		var doc verseDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode verseDoc %s: %w", snap.Ref.ID, err)
		}

		out = append(out, verseFromDoc(snap.Ref.ID, doc))
	}
	return out, nil
}

func verseFromDoc(id string, doc verseDoc) models.Verse {
	return models.Verse{
		ID:              id,
		Chapter:         doc.Chapter,
		Verse:           doc.Verse,
		Sanskrit:        doc.Sanskrit,
		Transliteration: doc.Transliteration,
		Translation:     doc.Translation,
		SearchableText:  doc.SearchableText,
	}
}

// ─────────────────────────────────────────
// Chapter mirror
// ─────────────────────────────────────────

// UpsertChapter writes a chapter keyed by its number so repeated syncs stay
// idempotent.
func (s *Store) UpsertChapter(ctx context.Context, ch models.Chapter) error {
	doc := chapterDoc{
		ChapterNumber:  ch.ChapterNumber,
		Name:           ch.Name,
		NameTranslated: ch.NameTranslated,
		NameMeaning:    ch.NameMeaning,
		ChapterSummary: ch.ChapterSummary,
		VersesCount:    ch.VersesCount,
	}

	id := fmt.Sprintf("chapter-%d", ch.ChapterNumber)
	if _, err := s.chaptersCol().Doc(id).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore UpsertChapter: %w", err)
	}
	return nil
}

func (s *Store) ListChapters(ctx context.Context) ([]models.Chapter, error) {
	q := s.chaptersCol().OrderBy("chapter_number", firestore.Asc)

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []models.Chapter
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore ListChapters: %w", err)
		}

		var doc chapterDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode chapterDoc %s: %w", snap.Ref.ID, err)
		}

		out = append(out, models.Chapter{
			ID:             snap.Ref.ID,
			ChapterNumber:  doc.ChapterNumber,
			Name:           doc.Name,
			NameTranslated: doc.NameTranslated,
			NameMeaning:    doc.NameMeaning,
			ChapterSummary: doc.ChapterSummary,
			VersesCount:    doc.VersesCount,
		})
	}
	return out, nil
}
