// Package journal records session transcripts for inspection outside the
// console. Entries are write-only: nothing is ever read back into a session.
package journal

import (
	"context"

	"github.com/jwebster45206/adventure-console/pkg/chat"
)

// Journal receives every message committed to a session's conversation log.
type Journal interface {
	Record(ctx context.Context, sessionID string, msg chat.Message) error
	Close() error
}

// Nop discards everything. It is used when no Redis URL is configured.
type Nop struct{}

var _ Journal = Nop{}

func (Nop) Record(ctx context.Context, sessionID string, msg chat.Message) error { return nil }

func (Nop) Close() error { return nil }
