package runner

import (
	"context"
	"fmt"
	"sync"
)

// StubRunner is a Runner for tests: it records every invocation and replies
// with canned results keyed by program name.
type StubRunner struct {
	mu        sync.Mutex
	Calls     []Command
	responses map[string]stubResponse
}

type stubResponse struct {
	result *Result
	err    error
}

// NewStubRunner creates an empty stub.
func NewStubRunner() *StubRunner {
	return &StubRunner{responses: make(map[string]stubResponse)}
}

// Respond registers the result returned for invocations of program.
func (s *StubRunner) Respond(program string, result *Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[program] = stubResponse{result: result, err: err}
}

// Run records the invocation and replies with the canned response.
func (s *StubRunner) Run(_ context.Context, cmd Command) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, cmd)

	resp, ok := s.responses[cmd.Program]
	if !ok {
		return nil, fmt.Errorf("stub runner: no response registered for %q", cmd.Program)
	}
	if resp.result == nil {
		return &Result{}, resp.err
	}
	return resp.result, resp.err
}
