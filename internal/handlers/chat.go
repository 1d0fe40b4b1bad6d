package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pkaushik-02002/BagavatgitaAI/internal/chatstore"
	"github.com/pkaushik-02002/BagavatgitaAI/internal/gita"
	"github.com/pkaushik-02002/BagavatgitaAI/internal/middleware"
	"github.com/pkaushik-02002/BagavatgitaAI/internal/models"
	"github.com/pkaushik-02002/BagavatgitaAI/internal/services"
)

// chapterSource lists chapter summaries for prompt context. Served by the
// Firestore mirror, with the live chapter API as fallback.
type chapterSource interface {
	ListChapters(ctx context.Context) ([]models.Chapter, error)
}

type ChatHandler struct {
	sessions      *chatstore.Manager
	geminiService *services.GeminiService
	chapters      chapterSource
	gitaClient    *gita.Client
	extract       *services.FileExtractService
	redis         *redis.Client
	storagePath   string
}

func NewChatHandler(sessions *chatstore.Manager, geminiService *services.GeminiService, chapters chapterSource, gitaClient *gita.Client, extract *services.FileExtractService, redisClient *redis.Client, storagePath string) *ChatHandler {
	return &ChatHandler{
		sessions:      sessions,
		geminiService: geminiService,
		chapters:      chapters,
		gitaClient:    gitaClient,
		extract:       extract,
		redis:         redisClient,
		storagePath:   storagePath,
	}
}

func (h *ChatHandler) store(r *http.Request) *chatstore.Store {
	userID := middleware.GetUserID(r.Context())
	return h.sessions.ForUser(r.Context(), userID.String())
}

func (h *ChatHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	store := h.store(r)
	if err := store.FetchUserSessions(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load sessions", r))
		return
	}

	sessions := store.Sessions()
	infos := make([]models.SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, s.Info())
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions":           infos,
		"current_session_id": store.CurrentSessionID(),
	})
}

func (h *ChatHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
			return
		}
	}

	store := h.store(r)
	id, err := store.CreateSession(r.Context(), req.Title)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create session", r))
		return
	}

	writeJSON(w, http.StatusCreated, store.Session(id).Info())
}

func (h *ChatHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	store := h.store(r)
	if err := store.DeleteSession(r.Context(), id); err != nil {
		if err == chatstore.ErrSessionNotFound {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete session", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":            "Session deleted",
		"current_session_id": store.CurrentSessionID(),
	})
}

func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	store := h.store(r)
	if store.Session(id) == nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"messages": store.SessionMessages(id),
	})
}

func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Message content is required", r))
		return
	}

	store := h.store(r)

	// History is the conversation before this message.
	history := store.SessionMessages(id)

	userMsg, err := store.AddMessage(r.Context(), id, models.RoleUser, req.Content)
	if err != nil {
		if err == chatstore.ErrSessionNotFound {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to save message", r))
		return
	}

	gitaContext := h.gitaContext(r.Context())

	reply, err := h.geminiService.Chat(r.Context(), gitaContext, req.Content, history)
	if err != nil {
		// The user message is already persisted; the client can retry.
		writeJSON(w, http.StatusInternalServerError, errorResp("AI_ERROR", "Failed to get AI response", r))
		return
	}

	assistantMsg, err := store.AddMessage(r.Context(), id, models.RoleAssistant, reply)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to save AI response", r))
		return
	}

	session := store.Session(id)
	h.publishSessionUpdate(r.Context(), middleware.GetUserID(r.Context()), session)

	writeJSON(w, http.StatusOK, models.SendMessageResponse{
		UserMessage:      *userMsg,
		AssistantMessage: *assistantMsg,
		Session:          session.Info(),
	})
}

func (h *ChatHandler) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.UpdateTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Title is required", r))
		return
	}

	store := h.store(r)
	if err := store.UpdateSessionTitle(r.Context(), id, req.Title); err != nil {
		if err == chatstore.ErrSessionNotFound {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to update title", r))
		return
	}

	writeJSON(w, http.StatusOK, store.Session(id).Info())
}

func (h *ChatHandler) SetCurrentSession(w http.ResponseWriter, r *http.Request) {
	var req models.SelectSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	store := h.store(r)
	if req.SessionID == nil {
		store.SetCurrentSessionID("")
	} else {
		store.SetCurrentSessionID(*req.SessionID)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"current_session_id": store.CurrentSessionID(),
	})
}

func (h *ChatHandler) GetCurrentSession(w http.ResponseWriter, r *http.Request) {
	store := h.store(r)

	current := store.CurrentSession()
	if current == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"session": nil})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session":  current.Info(),
		"messages": store.SessionMessages(current.ID),
	})
}

const maxAttachmentSize = 20 * 1024 * 1024 // 20MB

// ExtractAttachment accepts a pdf/docx/txt upload and returns its text as an
// attachment block the client prepends to the next chat message.
func (h *ChatHandler) ExtractAttachment(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > maxAttachmentSize {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", "File size exceeds 20MB limit", r))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxAttachmentSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "No file provided", r))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".pdf", ".docx", ".txt":
	default:
		writeJSON(w, http.StatusUnsupportedMediaType, errorResp("UNSUPPORTED_FORMAT", "Only pdf, docx and txt attachments are supported", r))
		return
	}

	// Stage the upload so the extractors can work from a path.
	tmpPath := filepath.Join(h.storagePath, uuid.New().String()+ext)
	dst, err := os.Create(tmpPath)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to store attachment", r))
		return
	}
	defer os.Remove(tmpPath)

	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to store attachment", r))
		return
	}
	dst.Close()

	text, err := h.extract.ExtractTextFromPath(tmpPath)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResp("EXTRACTION_FAILED", "Could not extract text from file", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"filename": header.Filename,
		"summary":  h.extract.AttachmentSummary(header.Filename, text),
	})
}

// gitaContext assembles the chapter summaries injected into the system
// prompt. The mirror is preferred; a cold mirror falls back to the live API.
func (h *ChatHandler) gitaContext(ctx context.Context) string {
	if h.chapters != nil {
		if chapters, err := h.chapters.ListChapters(ctx); err == nil && len(chapters) > 0 {
			return gita.ContextSummary(chapters)
		}
	}
	if h.gitaClient != nil {
		if chapters, err := h.gitaClient.ListChapters(ctx); err == nil {
			return gita.ContextSummary(chapters)
		}
	}
	return ""
}

func (h *ChatHandler) publishSessionUpdate(ctx context.Context, userID uuid.UUID, session *models.ChatSession) {
	if h.redis == nil || session == nil {
		return
	}
	msg := models.WSMessage{
		Type: "session_updated",
		Payload: models.SessionUpdatedEvent{
			SessionID: session.ID,
			Title:     session.Title,
		},
	}
	data, _ := json.Marshal(msg)
	h.redis.Publish(ctx, "user_updates:"+userID.String(), string(data))
}
