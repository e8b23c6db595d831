package narrative

import (
	"context"
	"sync"

	"github.com/jwebster45206/adventure-console/pkg/state"
)

// MockService is a mock implementation of Service for testing
type MockService struct {
	StartNewGameFunc func(ctx context.Context) (*Response, error)
	SendActionFunc   func(ctx context.Context, action string) (*Response, error)

	// Track calls for testing
	StartNewGameCalls int
	SendActionCalls   []string

	mu sync.Mutex // protects all fields above
}

// NewMockService creates a new mock narrative service
func NewMockService() *MockService {
	return &MockService{
		SendActionCalls: make([]string, 0),
	}
}

// StartNewGame mocks starting a game
func (m *MockService) StartNewGame(ctx context.Context) (*Response, error) {
	m.mu.Lock()
	m.StartNewGameCalls++
	fn := m.StartNewGameFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}

	// Default behavior - opening scene
	cs := state.Default()
	cs.Phase = state.PhaseGenderSelection
	return &Response{
		Narrative:        "Mock opening",
		State:            &cs,
		SuggestedActions: []string{"Male", "Female"},
	}, nil
}

// SendAction mocks advancing the game
func (m *MockService) SendAction(ctx context.Context, action string) (*Response, error) {
	m.mu.Lock()
	m.SendActionCalls = append(m.SendActionCalls, action)
	fn := m.SendActionFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, action)
	}

	// Default behavior - free play
	cs := state.Default()
	cs.Phase = state.PhaseGameLoop
	return &Response{
		Narrative:        "Mock response",
		State:            &cs,
		SuggestedActions: []string{},
	}, nil
}

// SetStartError sets up the mock to fail StartNewGame
func (m *MockService) SetStartError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartNewGameFunc = func(ctx context.Context) (*Response, error) {
		return nil, err
	}
}

// SetSendActionError sets up the mock to fail SendAction
func (m *MockService) SetSendActionError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendActionFunc = func(ctx context.Context, action string) (*Response, error) {
		return nil, err
	}
}

// SetStartResponse sets up the mock to return resp from StartNewGame
func (m *MockService) SetStartResponse(resp *Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartNewGameFunc = func(ctx context.Context) (*Response, error) {
		return resp, nil
	}
}

// SetSendActionResponse sets up the mock to return resp from SendAction
func (m *MockService) SetSendActionResponse(resp *Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendActionFunc = func(ctx context.Context, action string) (*Response, error) {
		return resp, nil
	}
}

// GetCalls returns a copy of the call tracking data in a thread-safe way
func (m *MockService) GetCalls() (int, []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	actions := make([]string, len(m.SendActionCalls))
	copy(actions, m.SendActionCalls)
	return m.StartNewGameCalls, actions
}

// Reset clears all call tracking
func (m *MockService) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartNewGameCalls = 0
	m.SendActionCalls = make([]string, 0)
}
