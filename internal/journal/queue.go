package journal

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jwebster45206/adventure-console/pkg/chat"
)

const (
	// DefaultQueueSize is how many messages may wait for the writer.
	DefaultQueueSize = 256

	// DefaultWriteTimeout bounds each write to the underlying journal.
	DefaultWriteTimeout = 2 * time.Second
)

var (
	ErrQueueFull   = errors.New("journal queue is full")
	ErrQueueClosed = errors.New("journal queue is closed")
)

type entry struct {
	sessionID string
	msg       chat.Message
}

// Queue hands messages to a single background writer, so Record never waits
// on the underlying journal. Messages reach it in the order they were recorded.
type Queue struct {
	next    Journal
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.RWMutex
	closed  bool
	entries chan entry
	done    chan struct{}
}

// Ensure Queue implements Journal interface
var _ Journal = (*Queue)(nil)

// NewQueue starts the writer for next. A size below one uses DefaultQueueSize.
func NewQueue(next Journal, logger *slog.Logger, size int) *Queue {
	if size < 1 {
		size = DefaultQueueSize
	}
	q := &Queue{
		next:    next,
		logger:  logger,
		timeout: DefaultWriteTimeout,
		entries: make(chan entry, size),
		done:    make(chan struct{}),
	}
	go q.run()
	return q
}

// Record enqueues msg. It fails instead of waiting when the queue is full.
func (q *Queue) Record(_ context.Context, sessionID string, msg chat.Message) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.entries <- entry{sessionID: sessionID, msg: msg}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *Queue) run() {
	defer close(q.done)

	for e := range q.entries {
		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		if err := q.next.Record(ctx, e.sessionID, e.msg); err != nil {
			q.logger.Warn("Failed to record journal entry",
				"session_id", e.sessionID,
				"message_id", e.msg.ID,
				"error", err)
		}
		cancel()
	}
}

// Close writes out everything already queued, then closes the underlying journal.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.entries)
	q.mu.Unlock()

	<-q.done
	return q.next.Close()
}
