// README: Quota tests (lazy reset and allowance boundary); DB-backed cases need TRIPINTAKE_TEST_DSN.
package quota

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	remaining int
	month     string
}

// memStore mirrors the SQL in Store.
type memStore struct {
	mu   sync.Mutex
	rows map[string]row
}

func (m *memStore) Use(_ context.Context, uid, month string, allowance int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[uid]
	if !ok || (r.month >= month && r.remaining <= 0) {
		return ErrExhausted
	}
	if r.month != month {
		r.remaining = allowance
	}
	m.rows[uid] = row{remaining: r.remaining - 1, month: month}
	return nil
}

func (m *memStore) Ensure(_ context.Context, uid, month string, allowance int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[uid]; !ok {
		m.rows[uid] = row{remaining: allowance, month: month}
	}
	return nil
}

func (m *memStore) Remaining(_ context.Context, uid, month string, allowance int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[uid]
	if !ok || r.month < month {
		return allowance, nil
	}
	return r.remaining, nil
}

func fixedClock(y int, m time.Month) func() time.Time {
	return func() time.Time { return time.Date(y, m, 15, 12, 0, 0, 0, time.UTC) }
}

func TestUse_NewUserIsInitialised(t *testing.T) {
	svc := newService(&memStore{rows: map[string]row{}}, 3, fixedClock(2026, time.March))
	ctx := context.Background()

	require.NoError(t, svc.Use(ctx, "u1"))
	left, err := svc.Remaining(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, left)
}

func TestUse_ExhaustedWithinMonth(t *testing.T) {
	svc := newService(&memStore{rows: map[string]row{}}, 2, fixedClock(2026, time.March))
	ctx := context.Background()

	require.NoError(t, svc.Use(ctx, "u1"))
	require.NoError(t, svc.Use(ctx, "u1"))
	assert.ErrorIs(t, svc.Use(ctx, "u1"), ErrExhausted)
}

func TestUse_CrossMonthReset(t *testing.T) {
	store := &memStore{rows: map[string]row{"u1": {remaining: 0, month: "2026-02"}}}
	svc := newService(store, 5, fixedClock(2026, time.March))
	ctx := context.Background()

	require.NoError(t, svc.Use(ctx, "u1"))
	left, err := svc.Remaining(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, left)
}

func TestNewService_DefaultAllowance(t *testing.T) {
	svc := newService(&memStore{rows: map[string]row{}}, 0, fixedClock(2026, time.March))
	assert.Equal(t, DefaultMonthly, svc.allowance)
}

// setupTestService creates a real postgres-backed Service for integration tests.
// It skips the test when TRIPINTAKE_TEST_DSN is not set.
func setupTestService(t *testing.T, allowance int) (*Service, *pgxpool.Pool) {
	t.Helper()

	dsn := os.Getenv("TRIPINTAKE_TEST_DSN")
	if dsn == "" {
		t.Skip("TRIPINTAKE_TEST_DSN not set; skipping DB-backed tests")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := applyMigrations(ctx, db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := db.Exec(ctx, "TRUNCATE TABLE parse_quota"); err != nil {
		t.Fatalf("truncate parse_quota: %v", err)
	}
	return NewService(NewStore(db), allowance), db
}

// TestStore_CrossMonthReset verifies that a user with nothing left from a
// previous month is reset and the parse succeeds.
func TestStore_CrossMonthReset(t *testing.T) {
	svc, db := setupTestService(t, 10)
	ctx := context.Background()

	if _, err := db.Exec(ctx, "INSERT INTO parse_quota VALUES ('user_reset', 0, '2000-01')"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := svc.Use(ctx, "user_reset"); err != nil {
		t.Fatalf("Use after cross-month reset: %v", err)
	}

	var remaining int
	if err := db.QueryRow(ctx, "SELECT remaining FROM parse_quota WHERE uid = 'user_reset'").Scan(&remaining); err != nil {
		t.Fatalf("query: %v", err)
	}
	if remaining != 9 {
		t.Fatalf("expected 9 remaining, got %d", remaining)
	}
}

// TestStore_Exhausted verifies that a user with nothing left this month is blocked.
func TestStore_Exhausted(t *testing.T) {
	svc, db := setupTestService(t, 10)
	ctx := context.Background()

	if _, err := db.Exec(ctx, "INSERT INTO parse_quota (uid, remaining, month) VALUES ('user_zero', 0, TO_CHAR(NOW() AT TIME ZONE 'UTC', 'YYYY-MM'))"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := svc.Use(ctx, "user_zero"); err != ErrExhausted {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
}

func applyMigrations(ctx context.Context, db *pgxpool.Pool) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	for _, name := range []string{"0002_parse_quota.sql"} {
		content, err := os.ReadFile(filepath.Join(root, "migrations", name))
		if err != nil {
			return err
		}
		for _, stmt := range splitSQL(stripSQLComments(string(content))) {
			if _, err := db.Exec(ctx, stmt); err != nil {
				return err
			}
		}
	}
	return nil
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for i := 0; i < 6; i++ {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

func stripSQLComments(input string) string {
	var b strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		b.WriteString(scanner.Text())
		b.WriteString("\n")
	}
	return b.String()
}

func splitSQL(input string) []string {
	parts := strings.Split(input, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if stmt := strings.TrimSpace(p); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
