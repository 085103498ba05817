package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestNewAutoFallsBackToMockWithoutKey(t *testing.T) {
	c, err := New(Config{Mode: "auto", Model: "gpt-4o-mini"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := c.(*Mock); !ok {
		t.Fatalf("New() = %T, want *Mock", c)
	}
}

func TestNewOpenAIModeRequiresKey(t *testing.T) {
	if _, err := New(Config{Mode: "openai", Model: "gpt-4o-mini"}); err == nil {
		t.Fatalf("New() accepted openai mode without a key")
	}
}

func TestNewRejectsUnknownMode(t *testing.T) {
	if _, err := New(Config{Mode: "carrier-pigeon"}); err == nil {
		t.Fatalf("New() accepted unknown mode")
	}
}

func TestMockConsumesQueueThenDefaults(t *testing.T) {
	m := NewMock("first reply", "second reply")

	req := Request{Messages: []Message{{Role: RoleUser, Text: "how do I fix my slice?"}}}
	resp, err := m.Complete(context.Background(), req)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Text != "first reply" {
		t.Fatalf("resp.Text = %q, want first reply", resp.Text)
	}

	if resp, _ = m.Complete(context.Background(), req); resp.Text != "second reply" {
		t.Fatalf("resp.Text = %q, want second reply", resp.Text)
	}

	resp, err = m.Complete(context.Background(), req)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if !strings.Contains(resp.Text, "how do I fix my slice?") {
		t.Fatalf("default reply should echo the question, got %q", resp.Text)
	}

	if got := len(m.Requests()); got != 3 {
		t.Fatalf("recorded requests = %d, want 3", got)
	}
}

func TestMockFailWith(t *testing.T) {
	m := NewMock()
	m.FailWith(ErrUnavailable)

	_, err := m.Complete(context.Background(), Request{})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
}

func TestMockHonorsCanceledContext(t *testing.T) {
	m := NewMock("never delivered")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.Complete(ctx, Request{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}
