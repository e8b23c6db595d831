package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jwebster45206/adventure-console/pkg/state"
)

// ErrMalformedResponse is returned when a narrative response is missing
// required parts or cannot be decoded.
var ErrMalformedResponse = errors.New("malformed narrative response")

// Service is the narrative generator the session controller talks to.
// Both calls may fail; a failure carries nothing beyond the error itself.
type Service interface {
	// StartNewGame begins a new adventure.
	StartNewGame(ctx context.Context) (*Response, error)

	// SendAction advances the adventure with the player's action.
	SendAction(ctx context.Context, action string) (*Response, error)
}

// Response is what the narrative service returns for every turn.
type Response struct {
	Narrative        string                `json:"narrative"`
	State            *state.CharacterState `json:"state"`
	SuggestedActions []string              `json:"suggestedActions"`
}

// Validate checks that the response carries a usable state.
func (r *Response) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: empty response", ErrMalformedResponse)
	}
	if r.State == nil {
		return fmt.Errorf("%w: missing state", ErrMalformedResponse)
	}
	if err := r.State.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}

// Parse decodes a model completion into a Response. Models sometimes wrap
// JSON in a ```json fence or add a sentence before it, so the outermost
// object is extracted first.
func Parse(raw string) (*Response, error) {
	body := extractJSONObject(raw)
	if body == "" {
		return nil, fmt.Errorf("%w: no JSON object in completion", ErrMalformedResponse)
	}

	var resp Response
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if err := resp.Validate(); err != nil {
		return nil, err
	}
	if resp.SuggestedActions == nil {
		resp.SuggestedActions = []string{}
	}
	return &resp, nil
}

func extractJSONObject(raw string) string {
	s := strings.TrimSpace(raw)
	if after, ok := strings.CutPrefix(s, "```"); ok {
		s = strings.TrimPrefix(after, "json")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
