package testhelpers

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"log"
	"os"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stayspot/mono-repo/backend/shared/go-repositories"
	"github.com/stayspot/mono-repo/backend/shared/go-repositories/memory"
	"github.com/stretchr/testify/require"
)

// TestHelper bundles the store, signing key and clock a test needs. The
// same helper drives in-process tests against the memory store and
// integration tests against a running service.
type TestHelper struct {
	T          *testing.T
	Ctx        context.Context
	BaseURL    string
	Store      *repositories.Store
	Clock      *FixedClock
	PrivateKey *rsa.PrivateKey

	StripeWebhookSecret string
	EsewaSecretKey      string
}

// NewMemoryHelper returns a helper over a fresh in-memory store whose
// timestamps follow the helper's fixed clock.
func NewMemoryHelper(t *testing.T) *TestHelper {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err, "Failed to generate RSA key")

	db := memory.NewDB()
	clock := NewFixedClock(DefaultTestTime)
	db.SetClock(clock.Now)

	return &TestHelper{
		T:                   t,
		Ctx:                 context.Background(),
		Store:               db.Store(),
		Clock:               clock,
		PrivateKey:          key,
		StripeWebhookSecret: "whsec_test_" + t.Name(),
		EsewaSecretKey:      "8gBm/:&EnhH.1/q",
	}
}

// NewTestHelper connects to the service under test. It reads the base URL,
// signing key and database from the environment and is meant to be called
// once from TestMain in integration packages.
func NewTestHelper(t *testing.T) *TestHelper {
	baseURL := os.Getenv("APP_URL_FROM_ANYWHERE")
	if baseURL == "" {
		log.Fatal("APP_URL_FROM_ANYWHERE env var is missing")
	}

	privateKeyB64 := os.Getenv("RSA_PRIVATE_KEY_BASE64")
	require.NotEmpty(t, privateKeyB64, "RSA_PRIVATE_KEY_BASE64 not set")
	privateKeyPEM, err := base64.StdEncoding.DecodeString(privateKeyB64)
	require.NoError(t, err)
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	require.NoError(t, err)

	dbURL := os.Getenv("DB_URL")
	require.NotEmpty(t, dbURL, "DB_URL not set")

	ctx := context.Background()
	pool, err := pgxpool.Connect(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return &TestHelper{
		T:                   t,
		Ctx:                 ctx,
		BaseURL:             baseURL,
		Store:               repositories.NewPostgresStore(pool, pool.Ping),
		Clock:               NewFixedClock(DefaultTestTime),
		PrivateKey:          privateKey,
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		EsewaSecretKey:      os.Getenv("ESEWA_SECRET_KEY"),
	}
}
