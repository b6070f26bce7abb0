package persist

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/thraizz/initiative-tracker/internal/storage"
	"github.com/thraizz/initiative-tracker/internal/tracker"
)

type subscription struct {
	bus    *tracker.EventBus
	handle int
}

// Writer saves snapshots in the background. Only the latest pending snapshot
// is written; failures are logged and dropped.
type Writer struct {
	kv      storage.Store
	keys    Keys
	timeout time.Duration
	logger  *zap.Logger

	mu       sync.Mutex
	pending  *tracker.State
	closed   bool
	attached []subscription

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

// NewWriter starts the write loop. timeout bounds each Save; zero means no
// bound.
func NewWriter(kv storage.Store, keys Keys, timeout time.Duration, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Writer{
		kv:      kv,
		keys:    keys,
		timeout: timeout,
		logger:  logger,
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

// Attach subscribes the writer to every event the tracker publishes. Close
// drops the subscription.
func (w *Writer) Attach(tr *tracker.Tracker) {
	bus := tr.Events()
	handle := bus.Subscribe(func(tracker.Event) {
		w.Enqueue(tr.Snapshot())
	})
	w.mu.Lock()
	w.attached = append(w.attached, subscription{bus: bus, handle: handle})
	w.mu.Unlock()
}

// Enqueue replaces the pending snapshot. It never blocks on storage.
func (w *Writer) Enqueue(s tracker.State) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.pending = &s
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Close detaches from every tracker, writes the pending snapshot, if any,
// and stops the loop.
func (w *Writer) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	attached := w.attached
	w.attached = nil
	w.mu.Unlock()

	for _, sub := range attached {
		sub.bus.Unsubscribe(sub.handle)
	}

	close(w.stop)
	<-w.done
}

func (w *Writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.flush()
		case <-w.stop:
			w.flush()
			return
		}
	}
}

func (w *Writer) flush() {
	w.mu.Lock()
	s := w.pending
	w.pending = nil
	w.mu.Unlock()
	if s == nil {
		return
	}

	ctx := context.Background()
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}
	if err := Save(ctx, w.kv, w.keys, *s); err != nil {
		w.logger.Warn("failed to persist tracker state", zap.Error(err))
		return
	}
	w.logger.Debug("tracker state persisted",
		zap.Int("roster", len(s.Roster)),
		zap.Int("graveyard", len(s.Graveyard)),
		zap.Int("round", s.Round),
	)
}
