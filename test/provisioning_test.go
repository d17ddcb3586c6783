package test

import (
	"context"
	"flag"
	"os"
	"os/exec"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"storefront/auth"
	"storefront/googleid"
	"storefront/test/infra"
)

var (
	flConcurrency = flag.Int("concurrency", 16, "number of concurrent first logins")
	flDSN         = flag.String("dsn", "", "existing Postgres DSN to reuse (avoids Docker)")
)

// stubVerifier accepts any token and maps it to a fixed identity, standing in
// for Google's endpoint so the test exercises only the provisioning path.
type stubVerifier struct {
	claims googleid.Claims
}

func (s stubVerifier) Verify(_ context.Context, _ string) (googleid.Claims, error) {
	return s.claims, nil
}

// TestConcurrentFederatedProvisioning hammers the federated login path with
// many simultaneous first logins for the same verified email and checks that
// exactly one principal exists afterwards, with every login succeeding
// against that one row.
func TestConcurrentFederatedProvisioning(t *testing.T) {
	flag.Parse()

	var (
		pgC        *infra.PGContainer
		dsn        string
		err        error
		usedShared bool
	)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	switch {
	case *flDSN != "":
		dsn = *flDSN
		usedShared = true
		pgC = &infra.PGContainer{}
	case os.Getenv("INTEGRATION_PG_DSN") != "":
		dsn = os.Getenv("INTEGRATION_PG_DSN")
		usedShared = true
		pgC = &infra.PGContainer{}
	default:
		if dockerAvailable(ctx) {
			pgC, dsn, err = infra.StartPostgres16(ctx, "")
			if err != nil {
				t.Fatalf("start postgres: %v", err)
			}
		} else {
			dsn, err = infra.InitLocalDatabase(ctx)
			if err != nil {
				t.Skipf("no Docker and no local Postgres: %v", err)
			}
			pgC = &infra.PGContainer{}
		}
	}
	defer pgC.Terminate(context.Background())

	pool, teardown, err := infra.ApplyMigrations(ctx, dsn, usedShared)
	if err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	defer pool.Close()
	defer func() {
		if err := teardown(context.Background()); err != nil {
			t.Logf("teardown warning: %v", err)
		}
	}()

	repo := auth.NewRepository(pool)
	tokens := auth.NewTokenService([]byte("provisioning-test-key"), time.Hour)
	svc := auth.NewService(repo, tokens, stubVerifier{claims: googleid.Claims{
		Subject: "google-subject-1",
		Email:   "newcomer@example.com",
		Name:    "New Comer",
	}})

	results := make([]auth.LoginResult, *flConcurrency)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < *flConcurrency; i++ {
		g.Go(func() error {
			res, err := svc.GoogleLogin(gctx, auth.GoogleLoginRequest{IDToken: "stub-token"})
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent google login: %v", err)
	}

	for i, res := range results {
		if res.UserID != results[0].UserID {
			t.Fatalf("login %d resolved user %d, login 0 resolved %d", i, res.UserID, results[0].UserID)
		}
		if res.Token == "" {
			t.Fatalf("login %d returned empty token", i)
		}
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM app_user WHERE username = $1`, "newcomer@example.com").Scan(&count); err != nil {
		t.Fatalf("count provisioned users: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 provisioned user, got %d", count)
	}

	// The winning row must carry the sentinel hash, never an empty one.
	var hash string
	if err := pool.QueryRow(ctx, `SELECT password_hash FROM app_user WHERE username = $1`, "newcomer@example.com").Scan(&hash); err != nil {
		t.Fatalf("read password hash: %v", err)
	}
	if hash == "" {
		t.Fatal("provisioned user has empty password hash")
	}
	if auth.CheckPassword("stub-token", hash) || auth.CheckPassword("", hash) {
		t.Fatal("sentinel password hash must not match guessable inputs")
	}
}

func dockerAvailable(ctx context.Context) bool {
	cmd := exec.CommandContext(ctx, "docker", "info")
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}
