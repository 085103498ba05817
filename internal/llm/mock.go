package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Mock provides deterministic local replies when no model is reachable.
// Tests script it with queued replies and inspect the recorded requests.
type Mock struct {
	mu    sync.Mutex
	queue []string
	reqs  []Request
	fail  error
}

func NewMock(replies ...string) *Mock {
	return &Mock{queue: append([]string(nil), replies...)}
}

// FailWith makes every subsequent call return err.
func (m *Mock) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

// Enqueue appends scripted replies consumed in order before the default.
func (m *Mock) Enqueue(replies ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, replies...)
}

// Requests returns a copy of every request seen so far.
func (m *Mock) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.reqs))
	copy(out, m.reqs)
	return out
}

func (m *Mock) Complete(ctx context.Context, req Request) (Response, error) {
	select {
	case <-ctx.Done():
		return Response{}, ctx.Err()
	default:
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.reqs = append(m.reqs, req)

	if m.fail != nil {
		return Response{}, m.fail
	}
	if len(m.queue) > 0 {
		text := m.queue[0]
		m.queue = m.queue[1:]
		return Response{Text: text, Model: "mock"}, nil
	}
	return Response{Text: buildMockReply(req), Model: "mock"}, nil
}

func buildMockReply(req Request) string {
	var question string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == RoleUser {
			question = strings.TrimSpace(req.Messages[i].Text)
			break
		}
	}
	if question == "" {
		return "Step up to the ball and tell me what you're working on."
	}
	return fmt.Sprintf("Offline tip: slow your backswing and hold your finish. You asked: %s", question)
}
