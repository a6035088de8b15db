package persist

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// batchWriter is the storage side of a CharacterUpdater.
type batchWriter interface {
	BatchUpdate(ctx context.Context, updates []CharacterUpdate) error
}

// CharacterUpdater writes character batches on a background goroutine so the
// game loop never waits on the database. Failures are logged here and
// nowhere else.
type CharacterUpdater struct {
	repo    batchWriter
	timeout time.Duration
	log     *zap.Logger

	mu     sync.RWMutex // guards closed and sends on ch
	ch     chan []CharacterUpdate
	closed bool
	wg     sync.WaitGroup

	pending atomic.Int64
	failed  atomic.Int64
}

func NewCharacterUpdater(repo batchWriter, queue int, timeout time.Duration, log *zap.Logger) *CharacterUpdater {
	if queue <= 0 {
		queue = 64
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	u := &CharacterUpdater{
		repo:    repo,
		timeout: timeout,
		log:     log,
		ch:      make(chan []CharacterUpdate, queue),
	}
	u.wg.Add(1)
	go func() {
		defer u.wg.Done()
		u.loop()
	}()
	return u
}

// BatchUpdate queues a batch. A full queue drops the batch with an error
// log; the next scheduled save carries the same characters again.
func (u *CharacterUpdater) BatchUpdate(updates []CharacterUpdate) {
	if len(updates) == 0 {
		return
	}
	u.mu.RLock()
	defer u.mu.RUnlock()
	if u.closed {
		return
	}
	u.pending.Add(1)
	select {
	case u.ch <- updates:
	default:
		u.pending.Add(-1)
		u.failed.Add(1)
		u.log.Error("character update queue full, batch dropped", zap.Int("characters", len(updates)))
	}
}

// Pending is the number of queued batches not yet written.
func (u *CharacterUpdater) Pending() int64 { return u.pending.Load() }

// Failed counts batches that were dropped or failed to write.
func (u *CharacterUpdater) Failed() int64 { return u.failed.Load() }

// Close stops accepting batches and waits until the queue is written.
func (u *CharacterUpdater) Close() {
	u.mu.Lock()
	if !u.closed {
		u.closed = true
		close(u.ch)
	}
	u.mu.Unlock()
	u.wg.Wait()
}

func (u *CharacterUpdater) loop() {
	for batch := range u.ch {
		u.write(batch)
		u.pending.Add(-1)
	}
}

func (u *CharacterUpdater) write(batch []CharacterUpdate) {
	ctx, cancel := context.WithTimeout(context.Background(), u.timeout)
	defer cancel()
	start := time.Now()
	if err := u.repo.BatchUpdate(ctx, batch); err != nil {
		u.failed.Add(1)
		u.log.Error("character batch update failed",
			zap.Int("characters", len(batch)),
			zap.Error(err),
		)
		return
	}
	u.log.Debug("characters saved",
		zap.Int("characters", len(batch)),
		zap.Duration("took", time.Since(start)),
	)
}
