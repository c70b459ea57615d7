package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-stats-gateway/internal/config"
	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/domain"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		APIBaseURL:    "http://localhost:3000",
		FetchStrategy: config.StrategySequential,
		BadgeStore:    config.StoreMemory,
		DataDir:       t.TempDir(),
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("Memory stores by default", func(t *testing.T) {
		a, err := New(ctx, testConfig(t), zap.NewNop())
		require.NoError(t, err)
		defer a.Close()

		assert.False(t, a.PersistentCredentials)
		assert.Nil(t, a.DB)
		assert.Nil(t, a.Redis)
		assert.Equal(t, 5, a.Catalog.Len())
	})

	t.Run("File stores with a passphrase", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.BadgeStore = config.StoreFile
		cfg.CredentialPassphrase = "open sesame"

		a, err := New(ctx, cfg, nil)
		require.NoError(t, err)
		defer a.Close()

		assert.True(t, a.PersistentCredentials)

		badges, err := a.Badges.Unlocked(ctx, "42")
		require.NoError(t, err)
		assert.Empty(t, badges)
		assert.DirExists(t, filepath.Join(cfg.DataDir, "badges"))
	})

	t.Run("Error: broken catalog override", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.BadgeCatalog = filepath.Join(t.TempDir(), "missing.yaml")

		_, err := New(ctx, cfg, nil)
		assert.Error(t, err)
	})

	t.Run("WithStrategy shares badge state", func(t *testing.T) {
		a, err := New(ctx, testConfig(t), nil)
		require.NoError(t, err)

		concurrent := a.WithStrategy("concurrent")
		assert.Same(t, a.Catalog, concurrent.Catalog())
		_, err = concurrent.Refresh(ctx)
		assert.ErrorIs(t, err, domain.ErrAuthTokenMissing)
	})
}

func TestApp_AccessTokens(t *testing.T) {
	ctx := context.Background()

	t.Run("Generated secret when none is configured", func(t *testing.T) {
		a, err := New(ctx, testConfig(t), nil)
		require.NoError(t, err)

		token, _, err := a.Access.Issue("42")
		require.NoError(t, err)
		userID, err := a.Access.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "42", userID)

		other, err := New(ctx, testConfig(t), nil)
		require.NoError(t, err)
		_, err = other.Access.Validate(token)
		assert.Error(t, err, "each process signs with its own secret")
	})

	t.Run("Configured secret is shared across processes", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.AccessSecret = "local-secret"

		first, err := New(ctx, cfg, nil)
		require.NoError(t, err)
		token, _, err := first.Access.Issue("42")
		require.NoError(t, err)

		second, err := New(ctx, cfg, nil)
		require.NoError(t, err)
		userID, err := second.Access.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "42", userID)
	})
}

func TestApp_Addr(t *testing.T) {
	cfg := testConfig(t)
	cfg.Host = "127.0.0.1"
	cfg.Port = "8080"

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", a.Addr())
}
