package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TestUserRepository_Integration connects to a real PostgreSQL via DATABASE_URL
// and verifies principal creation, role aggregation and the create-if-absent
// fallback against the live schema.
func TestUserRepository_Integration(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL is empty; set it to a live PostgreSQL to run integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect pool: %v", err)
	}
	defer pool.Close()

	if !tableExists(ctx, t, pool, "app_user") || !tableExists(ctx, t, pool, "role") || !tableExists(ctx, t, pool, "user_role") {
		t.Skip("database schema missing; apply migrations/001_init.sql first")
	}

	repo := NewRepository(pool)
	username := fmt.Sprintf("itest+%d@example.com", time.Now().UnixNano())

	user, err := repo.Create(ctx, CreateUserParams{Username: username, PasswordHash: "itest-hash"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() {
		ctx2, cancel2 := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel2()
		pool.Exec(ctx2, `DELETE FROM app_user WHERE id = $1`, user.ID)
	})

	// A fresh principal has no roles and no provider link.
	loaded, err := repo.GetByUsername(ctx, username)
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if loaded.ID != user.ID {
		t.Fatalf("expected user %d, got %d", user.ID, loaded.ID)
	}
	if len(loaded.Roles) != 0 {
		t.Fatalf("expected empty role set, got %v", loaded.Roles)
	}
	if loaded.ProviderID != nil {
		t.Fatalf("expected no provider link, got %v", *loaded.ProviderID)
	}

	// Duplicate insert maps the uniqueness violation to the sentinel.
	if _, err := repo.Create(ctx, CreateUserParams{Username: username, PasswordHash: "other"}); !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}

	// Create-if-absent resolves to the existing row without inserting.
	existing, created, err := repo.CreateIfAbsent(ctx, CreateUserParams{Username: username, PasswordHash: "other"})
	if err != nil {
		t.Fatalf("create if absent: %v", err)
	}
	if created {
		t.Fatal("expected created=false for existing username")
	}
	if existing.ID != user.ID || existing.PasswordHash != "itest-hash" {
		t.Fatalf("expected existing row preserved, got %+v", existing)
	}

	// Role grants are idempotent and the role set comes back sorted.
	if err := repo.GrantRole(ctx, user.ID, RoleUser); err != nil {
		t.Fatalf("grant USER: %v", err)
	}
	if err := repo.GrantRole(ctx, user.ID, RoleAdmin); err != nil {
		t.Fatalf("grant ADMIN: %v", err)
	}
	if err := repo.GrantRole(ctx, user.ID, RoleAdmin); err != nil {
		t.Fatalf("re-grant ADMIN: %v", err)
	}

	loaded, err = repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if len(loaded.Roles) != 2 || loaded.Roles[0] != RoleAdmin || loaded.Roles[1] != RoleUser {
		t.Fatalf("expected roles [ADMIN USER], got %v", loaded.Roles)
	}

	// Unknown role names must not pass silently.
	if err := repo.GrantRole(ctx, user.ID, "SUPERADMIN"); err == nil {
		t.Fatal("expected error for unknown role")
	}

	if _, err := repo.GetByUsername(ctx, "nobody-"+username); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func tableExists(ctx context.Context, t *testing.T, pool *pgxpool.Pool, name string) bool {
	t.Helper()
	var exists bool
	err := pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = $1)`, name).Scan(&exists)
	if err != nil {
		t.Fatalf("check table %s: %v", name, err)
	}
	return exists
}
