package provider

import (
	"context"
	"fmt"
	"sync"
)

// Scripted is a Provider that replays canned responses in order. It backs
// tests and the scenario harness, where the pipeline must run without a
// live reasoning service.
type Scripted struct {
	mu        sync.Mutex
	responses []string
	next      int
	prompts   []string
	failWith  error
}

// NewScripted builds a Scripted provider that answers each Query with the
// next response in order.
func NewScripted(responses ...string) *Scripted {
	return &Scripted{responses: responses}
}

// NewFailing builds a Scripted provider whose every Query returns err.
func NewFailing(err error) *Scripted {
	return &Scripted{failWith: err}
}

// Name implements Provider.
func (s *Scripted) Name() string { return "scripted" }

// Query implements Provider.
func (s *Scripted) Query(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prompts = append(s.prompts, prompt)
	if s.failWith != nil {
		return "", s.failWith
	}
	if s.next >= len(s.responses) {
		return "", fmt.Errorf("scripted provider exhausted after %d responses", len(s.responses))
	}
	out := s.responses[s.next]
	s.next++
	return out, nil
}

// Prompts returns a copy of every prompt received so far.
func (s *Scripted) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}
