package apikey

import (
	"context"
	"testing"
)

const (
	projectOne = "11111111-1111-1111-1111-111111111111"
	projectTwo = "22222222-2222-2222-2222-222222222222"
)

func newTestStore() *Store {
	return New([]Entry{
		{ProjectID: projectOne, Key: "sk-agent-one"},
		{ProjectID: projectOne, Key: "sk-agent-one-b"},
		{ProjectID: projectTwo, Key: "sk-agent-two"},
	})
}

func TestValidateKey_Match(t *testing.T) {
	s := newTestStore()

	valid, err := s.ValidateKey(context.Background(), projectOne, "sk-agent-one")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !valid {
		t.Error("expected key to validate")
	}
}

func TestValidateKey_SecondKeyForProject(t *testing.T) {
	s := newTestStore()

	valid, err := s.ValidateKey(context.Background(), projectOne, "sk-agent-one-b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !valid {
		t.Error("expected second provisioned key to validate")
	}
}

func TestValidateKey_WrongKey(t *testing.T) {
	s := newTestStore()

	valid, err := s.ValidateKey(context.Background(), projectOne, "sk-wrong")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if valid {
		t.Error("expected key to be rejected")
	}
}

func TestValidateKey_KeyScopedToOtherProject(t *testing.T) {
	// A key valid for one project must not open another.
	s := newTestStore()

	valid, err := s.ValidateKey(context.Background(), projectTwo, "sk-agent-one")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if valid {
		t.Error("key for project one must not validate for project two")
	}
}

func TestValidateKey_UnknownProject(t *testing.T) {
	s := newTestStore()

	valid, err := s.ValidateKey(context.Background(), "33333333-3333-3333-3333-333333333333", "sk-agent-one")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if valid {
		t.Error("unknown project must reject every key")
	}
}

func TestValidateKey_EmptyStore(t *testing.T) {
	s := New(nil)

	valid, err := s.ValidateKey(context.Background(), projectOne, "sk-agent-one")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if valid {
		t.Error("empty store must reject every key")
	}
}
