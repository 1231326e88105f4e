package memory

import (
	"context"
	"testing"

	"github.com/mcpgate/mcpgate/pkg/storage"
)

const testProjectID = "11111111-1111-1111-1111-111111111111"

func TestWithTenantScope_BindsTenant(t *testing.T) {
	s := NewScoper()

	scoped, release, err := s.WithTenantScope(context.Background(), testProjectID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer release()

	if got := storage.GetTenant(scoped); got != testProjectID {
		t.Errorf("tenant = %q, want %q", got, testProjectID)
	}
}

func TestWithTenantScope_ParentUntouched(t *testing.T) {
	s := NewScoper()

	parent := context.Background()
	_, release, err := s.WithTenantScope(parent, testProjectID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	release()

	if got := storage.GetTenant(parent); got != "" {
		t.Errorf("parent context tenant = %q, want empty", got)
	}
}
