package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// DefaultSettleDelay is how long a path must be quiet before it is ingested.
const DefaultSettleDelay = 2 * time.Second

// IngestOutcome reports one queued ingest.
type IngestOutcome struct {
	Path   string
	Result *domain.UploadResult
	Err    error
}

// IngestQueue collects file paths and ingests each one once it has
// stopped changing. Repeated events for a path reset its delay, so an
// editor writing a file in several steps produces one ingest.
type IngestQueue struct {
	ingest  driving.IngestService
	settle  time.Duration
	onDone  func(IngestOutcome)
	nowFunc func() time.Time

	mu      sync.Mutex
	pending map[string]time.Time
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewIngestQueue creates a queue. A non-positive settle selects
// DefaultSettleDelay. onDone may be nil.
func NewIngestQueue(ingest driving.IngestService, settle time.Duration, onDone func(IngestOutcome)) *IngestQueue {
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	return &IngestQueue{
		ingest:  ingest,
		settle:  settle,
		onDone:  onDone,
		nowFunc: time.Now,
		pending: make(map[string]time.Time),
	}
}

// Enqueue schedules path for ingestion. Paths with an unsupported
// extension are ignored.
func (q *IngestQueue) Enqueue(path string) bool {
	if _, err := domain.FileKindForPath(path); err != nil {
		return false
	}
	q.mu.Lock()
	q.pending[path] = q.nowFunc()
	q.mu.Unlock()
	return true
}

// Pending returns the number of paths waiting to settle.
func (q *IngestQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Start runs the queue loop. It blocks until Stop is called or ctx is
// done, then waits for in-flight ingests to finish.
func (q *IngestQueue) Start(ctx context.Context) error {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return nil
	}
	q.running = true
	q.stopCh = make(chan struct{})
	stop := q.stopCh
	q.mu.Unlock()

	defer q.wg.Wait()

	ticker := time.NewTicker(max(q.settle/4, 10*time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		case <-ticker.C:
			q.flush(ctx)
		}
	}
}

// Stop ends the loop started by Start.
func (q *IngestQueue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.running {
		return
	}
	q.running = false
	close(q.stopCh)
}

// flush ingests every path that has settled. Paths are ingested one at
// a time because builds for one file_id are serialised anyway.
func (q *IngestQueue) flush(ctx context.Context) {
	now := q.nowFunc()

	q.mu.Lock()
	var due []string
	for path, seen := range q.pending {
		if now.Sub(seen) >= q.settle {
			due = append(due, path)
			delete(q.pending, path)
		}
	}
	q.mu.Unlock()

	if len(due) == 0 {
		return
	}

	q.wg.Add(1)
	defer q.wg.Done()
	for _, path := range due {
		result, err := q.ingest.Ingest(ctx, path)
		if err != nil {
			logger.Warn("Ingest %s failed: %v", path, err)
		} else {
			logger.Info("Ingested %s as %s", path, result.FileID)
		}
		if q.onDone != nil {
			q.onDone(IngestOutcome{Path: path, Result: result, Err: err})
		}
	}
}
