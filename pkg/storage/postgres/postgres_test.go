package postgres

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	pgmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mcpgate/mcpgate/pkg/storage"
)

const (
	testProjectID  = "11111111-1111-1111-1111-111111111111"
	otherProjectID = "22222222-2222-2222-2222-222222222222"
)

func init() {
	// Configure testcontainers to use podman when no Docker host is set.
	if os.Getenv("DOCKER_HOST") == "" {
		out, err := exec.Command("podman", "machine", "inspect", "--format", "{{.ConnectionInfo.PodmanSocket.Path}}").Output()
		if err == nil {
			sock := strings.TrimSpace(string(out))
			if sock != "" {
				os.Setenv("DOCKER_HOST", "unix://"+sock)
			}
		}
	}
	// Ryuk needs privileged mode with podman.
	if os.Getenv("TESTCONTAINERS_RYUK_CONTAINER_PRIVILEGED") == "" {
		os.Setenv("TESTCONTAINERS_RYUK_CONTAINER_PRIVILEGED", "true")
	}
}

// setupTestDB starts a PostgreSQL container and returns a connected,
// migrated Store. Tests are skipped when no container runtime is available.
func setupTestDB(t *testing.T) *Store {
	t.Helper()

	if os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("SKIP_INTEGRATION=true, skipping PostgreSQL integration tests")
	}

	ctx := context.Background()

	container, err := pgmodule.Run(ctx,
		"postgres:16-alpine",
		pgmodule.WithDatabase("mcpgate_test"),
		pgmodule.WithUsername("test"),
		pgmodule.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("skipping: could not start PostgreSQL container: %v", err)
	}

	t.Cleanup(func() {
		container.Terminate(context.Background())
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("getting connection string: %v", err)
	}

	store, err := New(ctx, Config{
		DSN:            connStr,
		MigrateOnStart: true,
	})
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(store.Close)

	return store
}

func TestWithTenantScope_BindsAndReleases(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	scoped, release, err := store.WithTenantScope(ctx, testProjectID)
	if err != nil {
		t.Fatalf("acquiring scope: %v", err)
	}

	if got := storage.GetTenant(scoped); got != testProjectID {
		t.Errorf("tenant = %q, want %q", got, testProjectID)
	}

	// The pinned connection must see the bound setting.
	conn, ok := scoped.Value(scopedConnKey{}).(*pgxpool.Conn)
	if !ok {
		t.Fatal("scoped context carries no pinned connection")
	}
	var bound string
	if err := conn.QueryRow(ctx, "SELECT current_setting('app.project_id', true)").Scan(&bound); err != nil {
		t.Fatalf("reading bound setting: %v", err)
	}
	if bound != testProjectID {
		t.Errorf("app.project_id = %q, want %q", bound, testProjectID)
	}

	release()

	// After release the pool must still be usable.
	if err := store.pool.Ping(ctx); err != nil {
		t.Errorf("pool unusable after release: %v", err)
	}
}

func TestValidateKey_Roundtrip(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	if err := store.StoreAgentKey(ctx, testProjectID, "sk-agent-db", "ci"); err != nil {
		t.Fatalf("storing key: %v", err)
	}

	scoped, release, err := store.WithTenantScope(ctx, testProjectID)
	if err != nil {
		t.Fatalf("acquiring scope: %v", err)
	}
	defer release()

	valid, err := store.ValidateKey(scoped, testProjectID, "sk-agent-db")
	if err != nil {
		t.Fatalf("validating key: %v", err)
	}
	if !valid {
		t.Error("expected provisioned key to validate")
	}

	valid, err = store.ValidateKey(scoped, testProjectID, "sk-wrong")
	if err != nil {
		t.Fatalf("validating wrong key: %v", err)
	}
	if valid {
		t.Error("expected wrong key to be rejected")
	}
}

func TestValidateKey_RequiresMatchingScope(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	// Unscoped context: rejected.
	if _, err := store.ValidateKey(ctx, testProjectID, "sk-agent-db"); !errors.Is(err, storage.ErrScopeMismatch) {
		t.Errorf("err = %v, want ErrScopeMismatch for unscoped context", err)
	}

	// Scope for a different project: rejected.
	scoped, release, err := store.WithTenantScope(ctx, otherProjectID)
	if err != nil {
		t.Fatalf("acquiring scope: %v", err)
	}
	defer release()

	if _, err := store.ValidateKey(scoped, testProjectID, "sk-agent-db"); !errors.Is(err, storage.ErrScopeMismatch) {
		t.Errorf("err = %v, want ErrScopeMismatch for mismatched scope", err)
	}
}

func TestRecordAuthFailure_Persisted(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	store.RecordAuthFailure(testProjectID, "agent", "Invalid API key", "203.0.113.7:4411")

	// The insert runs in the background; poll briefly.
	deadline := time.Now().Add(5 * time.Second)
	for {
		var count int
		err := store.pool.QueryRow(ctx,
			"SELECT count(*) FROM auth_audit WHERE project_id = $1 AND reason = $2",
			testProjectID, "Invalid API key",
		).Scan(&count)
		if err != nil {
			t.Fatalf("counting audit rows: %v", err)
		}
		if count == 1 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("audit row not written, count = %d", count)
		}
		time.Sleep(50 * time.Millisecond)
	}
}
