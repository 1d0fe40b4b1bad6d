package worker

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pkaushik-02002/BagavatgitaAI/internal/gita"
	"github.com/pkaushik-02002/BagavatgitaAI/internal/models"
)

const syncQueue = "queue:chapter-sync"

// chapterSink receives synced chapters. Served by the Firestore store.
type chapterSink interface {
	UpsertChapter(ctx context.Context, ch models.Chapter) error
}

// SyncJob is the queue payload. UserID is set when an admin triggered the
// sync and wants a completion event on their channel.
type SyncJob struct {
	UserID     string `json:"user_id,omitempty"`
	RetryCount int    `json:"retry_count"`
}

// Pool runs chapter-sync workers. Jobs arrive on a Redis list, either from
// the admin endpoint or from the periodic ticker.
type Pool struct {
	redis        *redis.Client
	gitaClient   *gita.Client
	sink         chapterSink
	workerCount  int
	syncInterval time.Duration
	stopChan     chan struct{}
}

func NewPool(redisClient *redis.Client, gitaClient *gita.Client, sink chapterSink, workerCount int, syncInterval time.Duration) *Pool {
	return &Pool{
		redis:        redisClient,
		gitaClient:   gitaClient,
		sink:         sink,
		workerCount:  workerCount,
		syncInterval: syncInterval,
		stopChan:     make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}
	go p.scheduler()

	log.Printf("Started %d chapter-sync workers (interval %s)", p.workerCount, p.syncInterval)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

// scheduler enqueues a sync on startup and then every interval, so the
// chapter mirror stays fresh without operator action.
func (p *Pool) scheduler() {
	p.Enqueue(context.Background(), SyncJob{})

	ticker := time.NewTicker(p.syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.Enqueue(context.Background(), SyncJob{})
		}
	}
}

func (p *Pool) Enqueue(ctx context.Context, job SyncJob) {
	data, _ := json.Marshal(job)
	if err := p.redis.LPush(ctx, syncQueue, string(data)).Err(); err != nil {
		log.Printf("Failed to enqueue chapter sync: %v", err)
	}
}

func (p *Pool) worker(id int) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Chapter-sync worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		result, err := p.redis.BLPop(ctx, 30*time.Second, syncQueue).Result()
		if err != nil {
			continue // Timeout or error, retry
		}
		if len(result) < 2 {
			continue
		}

		var job SyncJob
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Worker %d: failed to parse sync job: %v", id, err)
			continue
		}

		// Only one sync runs at a time across the pool.
		locked, err := p.redis.SetNX(ctx, "sync_lock:chapters", "1", 10*time.Minute).Result()
		if err != nil || !locked {
			continue
		}

		count, syncErr := p.syncChapters(ctx)
		if syncErr != nil {
			p.handleFailure(ctx, &job, syncErr)
		} else {
			log.Printf("Worker %d: synced %d chapters", id, count)
			p.notify(ctx, job.UserID, models.SyncCompletedEvent{Chapters: count})
		}

		p.redis.Del(ctx, "sync_lock:chapters")
	}
}

func (p *Pool) syncChapters(ctx context.Context) (int, error) {
	chapters, err := p.gitaClient.ListChapters(ctx)
	if err != nil {
		return 0, err
	}

	for _, ch := range chapters {
		if err := p.sink.UpsertChapter(ctx, ch); err != nil {
			return 0, err
		}
	}
	return len(chapters), nil
}

func (p *Pool) handleFailure(ctx context.Context, job *SyncJob, err error) {
	job.RetryCount++

	if job.RetryCount < 3 {
		log.Printf("Chapter sync failed (attempt %d): %v, retrying", job.RetryCount, err)

		data, _ := json.Marshal(job)
		backoff := time.Duration(1<<uint(job.RetryCount)) * time.Second
		time.AfterFunc(backoff, func() {
			p.redis.LPush(context.Background(), syncQueue, string(data))
		})
		return
	}

	log.Printf("Chapter sync failed permanently: %v", err)
	p.notify(ctx, job.UserID, models.SyncCompletedEvent{Error: err.Error()})
}

// notify pushes a completion event to the triggering admin, if any.
func (p *Pool) notify(ctx context.Context, userID string, event models.SyncCompletedEvent) {
	if userID == "" {
		return
	}
	data, _ := json.Marshal(models.WSMessage{Type: "sync_completed", Payload: event})
	p.redis.Publish(ctx, "user_updates:"+userID, string(data))
}
