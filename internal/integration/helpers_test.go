package integration

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"testing"

	"creatememe/internal/db"
	"creatememe/internal/domain"
	"creatememe/internal/migrations"
	"creatememe/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"
)

// openDB connects to DATABASE_URL and brings the schema up to date.
func openDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err, "connect db")
	t.Cleanup(pool.Close)

	_, err = db.Migrate(context.Background(), pool, migrations.FS)
	require.NoError(t, err, "apply migrations")
	return pool
}

func newUser(t *testing.T, users *repository.UserRepository) *domain.User {
	t.Helper()
	email := "it-" + uuid.NewString() + "@example.com"
	u, created, err := users.UpsertByEmail(context.Background(), email, "Integration", "", domain.RoleUser)
	require.NoError(t, err)
	require.True(t, created)
	return u
}

func newAddress(t *testing.T) string {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return base58.Encode(pub)
}

func newSignature(t *testing.T) string {
	t.Helper()
	raw := make([]byte, ed25519.SignatureSize)
	_, err := rand.Read(raw)
	require.NoError(t, err)
	return base58.Encode(raw)
}
