package gita

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pkaushik-02002/BagavatgitaAI/internal/models"
)

const (
	cacheTTL = time.Hour
	// Minimum spacing between upstream requests; the free RapidAPI tier
	// throttles aggressively.
	requestSpacing = time.Second
)

// ErrRateLimited is returned when the upstream API rejects with 429.
var ErrRateLimited = fmt.Errorf("chapter API rate limit exceeded")

// Client talks to the bhagavad-gita3 RapidAPI. Responses are cached in redis
// for an hour and upstream requests are spaced at least a second apart.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	host    string
	cache   *redis.Client

	mu          sync.Mutex
	lastRequest time.Time
}

func NewClient(apiKey, host string, cache *redis.Client) *Client {
	return &Client{
		http:    &http.Client{Timeout: 15 * time.Second},
		baseURL: "https://" + host,
		apiKey:  apiKey,
		host:    host,
		cache:   cache,
	}
}

// ListChapters fetches all 18 chapters.
func (c *Client) ListChapters(ctx context.Context) ([]models.Chapter, error) {
	var chapters []models.Chapter
	err := c.cached(ctx, "gita:chapters", &chapters, func() (interface{}, error) {
		var out []models.Chapter
		if err := c.get(ctx, "/v2/chapters/?skip=0&limit=18", &out); err != nil {
			return nil, err
		}
		return out, nil
	})
	return chapters, err
}

// GetChapter fetches a single chapter by number (1-18).
func (c *Client) GetChapter(ctx context.Context, number int) (*models.Chapter, error) {
	if number < 1 || number > 18 {
		return nil, fmt.Errorf("chapter number must be between 1 and 18, got %d", number)
	}

	var chapter models.Chapter
	key := fmt.Sprintf("gita:chapter:%d", number)
	err := c.cached(ctx, key, &chapter, func() (interface{}, error) {
		var out models.Chapter
		if err := c.get(ctx, fmt.Sprintf("/v2/chapters/%d/", number), &out); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return &chapter, nil
}

// ContextSummary renders chapter summaries into the text block the chat
// prompt uses as scriptural context.
func ContextSummary(chapters []models.Chapter) string {
	var parts []string
	for _, ch := range chapters {
		parts = append(parts, fmt.Sprintf("Chapter %d: %s - %s", ch.ChapterNumber, ch.Name, ch.ChapterSummary))
	}
	return strings.Join(parts, "\n\n")
}

// cached reads the key from redis, falling back to fetch and writing the
// result back. A nil cache client degrades to fetch-every-time.
func (c *Client) cached(ctx context.Context, key string, dest interface{}, fetch func() (interface{}, error)) error {
	if c.cache != nil {
		data, err := c.cache.Get(ctx, key).Bytes()
		if err == nil {
			if json.Unmarshal(data, dest) == nil {
				return nil
			}
			// Unreadable cache entry; fall through to refetch.
		}
	}

	fresh, err := fetch()
	if err != nil {
		return err
	}

	data, err := json.Marshal(fresh)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return err
	}

	if c.cache != nil {
		c.cache.Set(ctx, key, data, cacheTTL)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, dest interface{}) error {
	c.throttle(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.host)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("chapter API request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode == http.StatusForbidden:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("chapter API access forbidden (check RapidAPI subscription): %s", body)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("chapter API returned %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decoding chapter API response: %w", err)
	}
	return nil
}

// throttle waits until requestSpacing has passed since the last upstream
// call, or the context is cancelled.
func (c *Client) throttle(ctx context.Context) {
	c.mu.Lock()
	wait := requestSpacing - time.Since(c.lastRequest)
	c.lastRequest = time.Now().Add(wait)
	c.mu.Unlock()

	if wait <= 0 {
		return
	}
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
