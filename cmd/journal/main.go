package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/adventure-console/internal/config"
	"github.com/jwebster45206/adventure-console/internal/journal"
	"github.com/jwebster45206/adventure-console/internal/logger"
	"github.com/jwebster45206/adventure-console/pkg/chat"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <session-id>\n", os.Args[0])
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if cfg.RedisURL == "" {
		fmt.Fprintln(os.Stderr, "REDIS_URL is not set; no transcripts are journaled")
		os.Exit(1)
	}

	log := logger.Setup(cfg, os.Stderr)
	rj := journal.NewRedisJournal(cfg.RedisURL, cfg.JournalTTL, log)
	defer func() {
		_ = rj.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := run(ctx, rj, os.Args[1], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

type transcriptReader interface {
	Entries(ctx context.Context, sessionID string) ([]chat.Message, error)
}

// run prints the journaled transcript of one session.
func run(ctx context.Context, r transcriptReader, sessionID string, w io.Writer) error {
	sessionID = strings.TrimSpace(sessionID)
	if _, err := uuid.Parse(sessionID); err != nil {
		return fmt.Errorf("invalid session id %q: %w", sessionID, err)
	}

	msgs, err := r.Entries(ctx, sessionID)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return fmt.Errorf("no transcript found for session %s (it may have expired)", sessionID)
	}

	for _, msg := range msgs {
		fmt.Fprintf(w, "[%s] %s: %s\n", msg.Timestamp.Format(time.TimeOnly), speaker(msg.Role), msg.Content)
		if msg.Snapshot != nil {
			cs := msg.Snapshot
			fmt.Fprintf(w, "    phase=%s hp=%d/%d level=%d xp=%d location=%q\n",
				cs.Phase, cs.HP, cs.MaxHP, cs.Level, cs.XP, cs.Location)
		}
		if len(msg.Suggestions) > 0 {
			fmt.Fprintf(w, "    options: %s\n", strings.Join(msg.Suggestions, " | "))
		}
	}
	return nil
}

func speaker(role string) string {
	switch role {
	case chat.ChatRoleAgent:
		return "Narrator"
	case chat.ChatRoleUser:
		return "You"
	default:
		return "System"
	}
}
