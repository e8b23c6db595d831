package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/adventure-console/internal/journal"
	"github.com/jwebster45206/adventure-console/pkg/chat"
	"github.com/jwebster45206/adventure-console/pkg/narrative"
	"github.com/jwebster45206/adventure-console/pkg/state"
)

// Controller is the single owner of a running session. Every mutation happens
// under its mutex; service calls happen outside it, between a Begin* call and
// Apply.
type Controller struct {
	svc     narrative.Service
	logger  *slog.Logger
	journal journal.Journal
	now     func() time.Time

	mu          sync.Mutex
	id          string
	generation  uint64
	state       state.CharacterState
	log         *chat.Log
	suggestions chat.Suggestions
	inFlight    bool
	started     bool
	stuck       bool
}

// Option configures a Controller.
type Option func(*Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithJournal records every committed message to j. Writes happen on a
// background goroutine; call Close to flush them.
func WithJournal(j journal.Journal) Option {
	return func(c *Controller) {
		c.journal = j
	}
}

// WithClock overrides the message timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// New creates a controller for an unstarted session.
func New(svc narrative.Service, opts ...Option) *Controller {
	c := &Controller{
		svc:         svc,
		logger:      slog.Default(),
		journal:     journal.Nop{},
		now:         time.Now,
		id:          uuid.NewString(),
		state:       state.Default(),
		log:         chat.NewLog(),
		suggestions: chat.Suggestions{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if _, ok := c.journal.(journal.Nop); !ok {
		c.journal = journal.NewQueue(c.journal, c.logger, journal.DefaultQueueSize)
	}
	return c
}

// Close flushes pending journal writes and closes the journal.
func (c *Controller) Close() error {
	return c.journal.Close()
}

// BeginStart admits the opening call of a session. It does nothing while a
// call is outstanding or once the session has started.
func (c *Controller) BeginStart() (Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.beginStartLocked()
}

func (c *Controller) beginStartLocked() (Request, bool) {
	if c.started || c.inFlight {
		return Request{}, false
	}
	c.started = true
	c.inFlight = true
	c.stuck = false

	c.logger.Info("Starting session", "session_id", c.id, "generation", c.generation)
	return Request{Kind: KindStart, Generation: c.generation}, true
}

// BeginAction admits a player action. Blank text, an outstanding call or an
// unstarted session make it a no-op. Text that the current phase does not
// accept adds a notice to the log instead of contacting the service.
func (c *Controller) BeginAction(text string) (Request, bool) {
	action := strings.TrimSpace(text)
	if action == "" {
		return Request{}, false
	}

	c.mu.Lock()
	if c.inFlight || !c.started {
		c.mu.Unlock()
		return Request{}, false
	}

	if err := state.Admit(c.state.Phase, c.suggestions, action); err != nil {
		notice := ChooseOptionNotice
		if errors.Is(err, state.ErrNoOptions) {
			notice = NoOptionsNotice
			c.stuck = true
			c.logger.Warn("Action rejected: no options offered in a closed-choice phase",
				"session_id", c.id, "phase", c.state.Phase)
		} else {
			c.logger.Debug("Action rejected", "session_id", c.id, "phase", c.state.Phase, "error", err)
		}
		msg := c.log.Append(chat.ChatRoleSystem, notice, c.now(), chat.AsEphemeral())
		id := c.id
		c.mu.Unlock()

		c.record(id, msg)
		return Request{}, false
	}

	msg := c.log.Append(chat.ChatRoleUser, action, c.now())
	c.suggestions = chat.Suggestions{}
	c.inFlight = true
	req := Request{Kind: KindAction, Generation: c.generation, Action: action}
	id := c.id
	c.mu.Unlock()

	c.record(id, msg)
	return req, true
}

// BeginRestart abandons the current session and admits the opening call of a
// new one. Results of calls issued before the restart are ignored by Apply.
func (c *Controller) BeginRestart() Request {
	c.mu.Lock()
	defer c.mu.Unlock()

	previous := c.id
	c.generation++
	c.id = uuid.NewString()
	c.log.Reset()
	c.suggestions = chat.Suggestions{}
	c.state = state.Default()
	c.inFlight = false
	c.started = false
	c.stuck = false

	c.logger.Info("Restarting session", "previous_session_id", previous, "session_id", c.id)

	req, _ := c.beginStartLocked()
	return req
}

// Dispatch performs the service call for req. It holds no lock and may run on
// any goroutine. A response without a usable state counts as a failure.
func (c *Controller) Dispatch(ctx context.Context, req Request) Result {
	var (
		resp *narrative.Response
		err  error
	)
	switch req.Kind {
	case KindStart:
		resp, err = c.svc.StartNewGame(ctx)
	case KindAction:
		resp, err = c.svc.SendAction(ctx, req.Action)
	default:
		err = fmt.Errorf("unknown request kind %d", req.Kind)
	}

	if err == nil {
		if verr := resp.Validate(); verr != nil {
			err = verr
			resp = nil
		}
	}
	if err != nil {
		return Result{Request: req, Err: fmt.Errorf("%s request failed: %w", req.Kind, err)}
	}
	return Result{Request: req, Response: resp}
}

// Apply merges a dispatched result into the session. It reports false when
// the result belongs to an earlier generation and was discarded.
func (c *Controller) Apply(res Result) bool {
	c.mu.Lock()
	if res.Request.Generation != c.generation || !c.inFlight {
		c.logger.Debug("Discarding stale result",
			"kind", res.Request.Kind,
			"result_generation", res.Request.Generation,
			"generation", c.generation)
		c.mu.Unlock()
		return false
	}

	var msg chat.Message
	switch {
	case res.Err != nil:
		msg = c.applyFailureLocked(res)
	default:
		msg = c.applyResponseLocked(res)
	}
	c.inFlight = false
	id := c.id
	c.mu.Unlock()

	c.record(id, msg)
	return true
}

func (c *Controller) applyFailureLocked(res Result) chat.Message {
	if res.Request.Kind == KindStart {
		c.logger.Error("Failed to start game", "session_id", c.id, "error", res.Err)
		c.log.Reset()
		c.state = state.Default()
		c.suggestions = chat.Suggestions{}
		return c.log.Append(chat.ChatRoleSystem, StartFailedNotice, c.now())
	}

	c.logger.Error("Failed to get response", "session_id", c.id, "action", res.Request.Action, "error", res.Err)
	return c.log.Append(chat.ChatRoleSystem, ConnectionLostNotice, c.now())
}

func (c *Controller) applyResponseLocked(res Result) chat.Message {
	next, clamped := res.Response.State.Normalize()
	if clamped {
		c.logger.Debug("Clamped out-of-range vitals",
			"session_id", c.id,
			"hp", res.Response.State.HP,
			"max_hp", res.Response.State.MaxHP,
			"xp", res.Response.State.XP)
	}

	suggestions := chat.Suggestions(res.Response.SuggestedActions).Clone()
	if suggestions == nil {
		suggestions = chat.Suggestions{}
	}

	if res.Request.Kind == KindStart {
		c.log.Reset()
	}
	msg := c.log.Append(chat.ChatRoleAgent, res.Response.Narrative, c.now(),
		chat.WithSnapshot(next),
		chat.WithSuggestions(suggestions))

	c.state = next
	c.suggestions = suggestions
	c.stuck = state.IsStuck(next.Phase, suggestions)
	if c.stuck {
		c.logger.Warn("Closed-choice phase arrived without options",
			"session_id", c.id, "phase", next.Phase)
	}

	c.logger.Debug("Applied narrative response",
		"session_id", c.id,
		"kind", res.Request.Kind,
		"phase", next.Phase,
		"suggestions", len(suggestions),
		"game_over", next.Over())
	return msg
}

// Start begins the session and waits for the opening response.
func (c *Controller) Start(ctx context.Context) bool {
	req, ok := c.BeginStart()
	if !ok {
		return false
	}
	return c.Apply(c.Dispatch(ctx, req))
}

// Send submits a player action and waits for the response. It reports
// whether the service was contacted and its result applied.
func (c *Controller) Send(ctx context.Context, text string) bool {
	req, ok := c.BeginAction(text)
	if !ok {
		return false
	}
	return c.Apply(c.Dispatch(ctx, req))
}

// Restart discards the session and waits for a new opening response.
func (c *Controller) Restart(ctx context.Context) bool {
	return c.Apply(c.Dispatch(ctx, c.BeginRestart()))
}

// Snapshot returns a copy of the session.
func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Session{
		ID:          c.id,
		Generation:  c.generation,
		State:       c.state.Clone(),
		Messages:    c.log.Messages(),
		Suggestions: c.suggestions.Clone(),
		InFlight:    c.inFlight,
		Started:     c.started,
		Stuck:       c.stuck,
	}
}

// Phase returns the current phase.
func (c *Controller) Phase() state.Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Phase
}

// record queues msg for the journal. It never waits on the journal itself;
// failures are logged only.
func (c *Controller) record(sessionID string, msg chat.Message) {
	if err := c.journal.Record(context.Background(), sessionID, msg); err != nil {
		c.logger.Warn("Failed to record journal entry", "session_id", sessionID, "message_id", msg.ID, "error", err)
	}
}
