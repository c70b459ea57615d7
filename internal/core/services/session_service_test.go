package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/domain"
	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/services"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("upstream-secret"))
	require.NoError(t, err)
	return token
}

func TestSessionService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Remembers user from login response", func(t *testing.T) {
		auth := new(MockAuthenticator)
		creds := &memoryCreds{}
		svc := services.NewSessionService(auth, creds, nil)

		auth.On("Login", ctx, "ana@example.com", "pw").Return(&domain.Session{Token: "opaque", UserID: "7"}, nil).
			Run(func(mock.Arguments) { _ = creds.SaveToken(ctx, "opaque") })

		session, err := svc.Login(ctx, "  ana@example.com ", "pw")
		require.NoError(t, err)
		assert.Equal(t, "7", session.UserID)

		userID, err := svc.CurrentUser(ctx)
		require.NoError(t, err)
		assert.Equal(t, "7", userID, "opaque token falls back to the remembered user")
	})

	t.Run("Success: New process resolves user of an opaque token", func(t *testing.T) {
		auth := new(MockAuthenticator)
		creds := &memoryCreds{}
		first := services.NewSessionService(auth, creds, nil)

		auth.On("Login", ctx, "ana@example.com", "pw").Return(&domain.Session{Token: "opaque-token-abc", UserID: "42"}, nil).
			Run(func(mock.Arguments) { _ = creds.SaveToken(ctx, "opaque-token-abc") })

		_, err := first.Login(ctx, "ana@example.com", "pw")
		require.NoError(t, err)

		second := services.NewSessionService(new(MockAuthenticator), creds, nil)
		userID, err := second.CurrentUser(ctx)
		require.NoError(t, err)
		assert.Equal(t, "42", userID)
	})

	t.Run("Success: Backend user id wins over token subject", func(t *testing.T) {
		auth := new(MockAuthenticator)
		creds := &memoryCreds{}
		svc := services.NewSessionService(auth, creds, nil)
		token := signedToken(t, jwt.MapClaims{"sub": "user-sub", "exp": time.Now().Add(time.Hour).Unix()})

		auth.On("Login", ctx, "ana@example.com", "pw").Return(&domain.Session{Token: token, UserID: "42"}, nil).
			Run(func(mock.Arguments) { _ = creds.SaveToken(ctx, token) })

		_, err := svc.Login(ctx, "ana@example.com", "pw")
		require.NoError(t, err)

		userID, err := services.NewSessionService(new(MockAuthenticator), creds, nil).CurrentUser(ctx)
		require.NoError(t, err)
		assert.Equal(t, "42", userID)
	})

	t.Run("Success: User id taken from token subject when response lacks it", func(t *testing.T) {
		auth := new(MockAuthenticator)
		svc := services.NewSessionService(auth, &memoryCreds{}, nil)
		token := signedToken(t, jwt.MapClaims{"sub": "99"})

		auth.On("Login", ctx, "ana@example.com", "pw").Return(&domain.Session{Token: token}, nil)

		session, err := svc.Login(ctx, "ana@example.com", "pw")
		require.NoError(t, err)
		assert.Equal(t, "99", session.UserID)
	})

	t.Run("Validation: Missing email or password", func(t *testing.T) {
		svc := services.NewSessionService(new(MockAuthenticator), &memoryCreds{}, nil)

		_, err := svc.Login(ctx, " ", "pw")
		assert.ErrorIs(t, err, services.ErrEmailRequired)

		_, err = svc.Login(ctx, "ana@example.com", "")
		assert.ErrorIs(t, err, services.ErrPasswordRequired)
	})

	t.Run("Error: Upstream failure propagates", func(t *testing.T) {
		auth := new(MockAuthenticator)
		svc := services.NewSessionService(auth, &memoryCreds{}, nil)
		auth.On("Login", ctx, "ana@example.com", "bad").Return(nil, domain.NewServerError(401, "invalid credentials"))

		_, err := svc.Login(ctx, "ana@example.com", "bad")
		assert.ErrorIs(t, err, domain.ErrServer)
	})
}

func TestSessionService_CurrentUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing token", func(t *testing.T) {
		svc := services.NewSessionService(new(MockAuthenticator), &memoryCreds{}, nil)

		_, err := svc.CurrentUser(ctx)
		assert.ErrorIs(t, err, domain.ErrAuthTokenMissing)
	})

	t.Run("Numeric id claim", func(t *testing.T) {
		creds := &memoryCreds{token: signedToken(t, jwt.MapClaims{"id": 12, "exp": time.Now().Add(time.Hour).Unix()})}
		svc := services.NewSessionService(new(MockAuthenticator), creds, nil)

		userID, err := svc.CurrentUser(ctx)
		require.NoError(t, err)
		assert.Equal(t, "12", userID)
	})

	t.Run("Expired token is removed", func(t *testing.T) {
		creds := &memoryCreds{token: signedToken(t, jwt.MapClaims{"sub": "1", "exp": time.Now().Add(-time.Minute).Unix()})}
		svc := services.NewSessionService(new(MockAuthenticator), creds, nil)

		_, err := svc.CurrentUser(ctx)
		assert.ErrorIs(t, err, domain.ErrAuthTokenMissing)

		_, getErr := creds.GetToken(ctx)
		assert.ErrorIs(t, getErr, domain.ErrCredentialMissing)
	})

	t.Run("Opaque token without remembered user", func(t *testing.T) {
		svc := services.NewSessionService(new(MockAuthenticator), &memoryCreds{token: "opaque"}, nil)

		_, err := svc.CurrentUser(ctx)
		assert.ErrorIs(t, err, domain.ErrAuthTokenMissing)
	})
}

func TestSessionService_Logout(t *testing.T) {
	ctx := context.Background()
	auth := new(MockAuthenticator)
	auth.On("Logout", ctx).Return(nil)

	svc := services.NewSessionService(auth, &memoryCreds{token: "opaque"}, nil)
	require.NoError(t, svc.Logout(ctx))
	auth.AssertExpectations(t)
}
