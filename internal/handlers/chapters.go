package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/pkaushik-02002/BagavatgitaAI/internal/gita"
	"github.com/pkaushik-02002/BagavatgitaAI/internal/middleware"
)

type ChaptersHandler struct {
	chapters   chapterSource
	gitaClient *gita.Client
	redis      *redis.Client
}

func NewChaptersHandler(chapters chapterSource, gitaClient *gita.Client, redisClient *redis.Client) *ChaptersHandler {
	return &ChaptersHandler{chapters: chapters, gitaClient: gitaClient, redis: redisClient}
}

func (h *ChaptersHandler) List(w http.ResponseWriter, r *http.Request) {
	// Mirror first; live API when the mirror has not been synced yet.
	if h.chapters != nil {
		if chapters, err := h.chapters.ListChapters(r.Context()); err == nil && len(chapters) > 0 {
			writeJSON(w, http.StatusOK, map[string]interface{}{"chapters": chapters})
			return
		}
	}

	chapters, err := h.gitaClient.ListChapters(r.Context())
	if err != nil {
		if err == gita.ErrRateLimited {
			writeJSON(w, http.StatusTooManyRequests, errorResp("RATE_LIMITED", "Chapter API rate limit exceeded", r))
			return
		}
		writeJSON(w, http.StatusBadGateway, errorResp("UPSTREAM_ERROR", "Failed to fetch chapters", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"chapters": chapters})
}

func (h *ChaptersHandler) Get(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number < 1 || number > 18 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Chapter number must be between 1 and 18", r))
		return
	}

	if h.chapters != nil {
		if chapters, cerr := h.chapters.ListChapters(r.Context()); cerr == nil {
			for _, ch := range chapters {
				if ch.ChapterNumber == number {
					writeJSON(w, http.StatusOK, ch)
					return
				}
			}
		}
	}

	chapter, err := h.gitaClient.GetChapter(r.Context(), number)
	if err != nil {
		if err == gita.ErrRateLimited {
			writeJSON(w, http.StatusTooManyRequests, errorResp("RATE_LIMITED", "Chapter API rate limit exceeded", r))
			return
		}
		writeJSON(w, http.StatusBadGateway, errorResp("UPSTREAM_ERROR", "Failed to fetch chapter", r))
		return
	}

	writeJSON(w, http.StatusOK, chapter)
}

// TriggerSync enqueues a chapter sync job for the worker pool.
func (h *ChaptersHandler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	if h.redis == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResp("INTERNAL_ERROR", "Sync queue unavailable", r))
		return
	}

	job, _ := json.Marshal(map[string]interface{}{
		"user_id": middleware.GetUserID(r.Context()).String(),
	})
	if err := h.redis.LPush(r.Context(), "queue:chapter-sync", string(job)).Err(); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to enqueue sync", r))
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"message": "Chapter sync queued"})
}
