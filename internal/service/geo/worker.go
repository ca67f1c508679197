package geo

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/heartmarshall/pricewatch-backend/internal/domain"
)

type enricher interface {
	EnrichAndSync(ctx context.Context, name string) (*domain.StoreLocation, error)
}

// Worker geocodes establishments in the background, one at a time.
type Worker struct {
	enricher enricher
	queue    chan string
	timeout  time.Duration
	log      *slog.Logger
}

// NewWorker creates a Worker with a queue of queueSize names. Each task runs
// under its own timeout.
func NewWorker(log *slog.Logger, enricher enricher, queueSize int, timeout time.Duration) *Worker {
	if queueSize <= 0 {
		queueSize = 100
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Worker{
		enricher: enricher,
		queue:    make(chan string, queueSize),
		timeout:  timeout,
		log:      log.With("component", "geo_worker"),
	}
}

// Enqueue schedules name for geocoding. It never blocks and reports false
// when the queue is full.
func (w *Worker) Enqueue(name string) bool {
	select {
	case w.queue <- name:
		return true
	default:
		return false
	}
}

// Run processes queued names until ctx is cancelled. Names still queued at
// that point are dropped.
func (w *Worker) Run(ctx context.Context) error {
	w.log.InfoContext(ctx, "geo worker started", slog.Int("capacity", cap(w.queue)))
	for {
		select {
		case <-ctx.Done():
			w.log.InfoContext(ctx, "geo worker stopped", slog.Int("dropped", len(w.queue)))
			return nil
		case name := <-w.queue:
			if err := w.process(ctx, name); err != nil {
				w.log.ErrorContext(ctx, "geocoding task failed",
					slog.String("store", name),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

func (w *Worker) process(ctx context.Context, name string) (err error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()

	_, err = w.enricher.EnrichAndSync(ctx, name)
	return err
}
