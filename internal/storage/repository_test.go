package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"subtrack/internal/core"
	applog "subtrack/internal/log"
	"subtrack/internal/ports"
	"subtrack/internal/ports/porttest"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "test.db"), applog.Nop())
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepositoryContract(t *testing.T) {
	porttest.RunStoreSuite(t, func(t *testing.T) ports.Store {
		return newTestRepository(t)
	})
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")

	first, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	second, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("second RunMigrations() error = %v", err)
	}
	if first != second || first == 0 {
		t.Errorf("versions = %d then %d, want equal and non-zero", first, second)
	}
}

func TestPingAfterClose(t *testing.T) {
	repo := newTestRepository(t)
	if err := repo.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	repo.Close()
	if err := repo.Ping(context.Background()); !errors.Is(err, core.ErrStoreUnavailable) {
		t.Errorf("Ping() after close error = %v, want ErrStoreUnavailable", err)
	}
}

func TestLikePattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Netflix", "%netflix%"},
		{"  gym ", "%gym%"},
		{"100%", `%100\%%`},
		{"a_b", `%a\_b%`},
		{`back\slash`, `%back\\slash%`},
	}
	for _, tt := range tests {
		if got := likePattern(tt.in); got != tt.want {
			t.Errorf("likePattern(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
