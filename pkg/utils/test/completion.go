package testutils

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrMockCompletion is returned by MockCompletion when configured to fail.
var ErrMockCompletion = errors.New("mock completion failure")

// MockCompletion is a test completion provider. Replies are matched by
// prompt substring so one mock can serve filter extraction, analysis and
// answers in the same test.
type MockCompletion struct {
	mu sync.Mutex

	// Replies maps a prompt substring to the reply returned for it.
	Replies map[string]string

	// Default is returned when no entry in Replies matches.
	Default string

	// FailOn causes Complete to fail for prompts containing this substring.
	FailOn string

	// FailAll causes every Complete call to fail.
	FailAll bool

	// Prompts records every prompt received, in order.
	Prompts []string
}

func NewMockCompletion() *MockCompletion {
	return &MockCompletion{
		Replies: make(map[string]string),
	}
}

// On registers reply for prompts containing substr.
func (m *MockCompletion) On(substr, reply string) *MockCompletion {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Replies[substr] = reply
	return m
}

func (m *MockCompletion) Complete(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prompts = append(m.Prompts, prompt)

	if m.FailAll || (m.FailOn != "" && strings.Contains(prompt, m.FailOn)) {
		return "", ErrMockCompletion
	}

	for substr, reply := range m.Replies {
		if strings.Contains(prompt, substr) {
			return reply, nil
		}
	}
	return m.Default, nil
}

// PromptCount returns the number of prompts received so far.
func (m *MockCompletion) PromptCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}

func (m *MockCompletion) Close() error {
	return nil
}
