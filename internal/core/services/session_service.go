package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/domain"
)

var (
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordRequired = errors.New("password is required")
)

type Authenticator interface {
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Logout(ctx context.Context) error
}

// SessionService tracks who is logged in upstream. The gateway does not own
// the upstream signing key, so token claims are read without verification
// and only used to learn the subject and the expiry.
type SessionService struct {
	auth   Authenticator
	creds  domain.CredentialStore
	logger *zap.Logger
	now    func() time.Time

	mu     sync.RWMutex
	userID string
}

func NewSessionService(auth Authenticator, creds domain.CredentialStore, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		auth:   auth,
		creds:  creds,
		logger: logger,
		now:    time.Now,
	}
}

func (s *SessionService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	session, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if session.UserID == "" {
		if claims, err := parseClaims(session.Token); err == nil {
			session.UserID = claims.subject
		}
	}

	s.mu.Lock()
	s.userID = session.UserID
	s.mu.Unlock()

	if session.UserID != "" {
		if err := s.creds.SaveUserID(ctx, session.UserID); err != nil {
			s.logger.Warn("[SESSION] failed to store user id", zap.Error(err))
		}
	}

	s.logger.Info("[SESSION] logged in", zap.String("user_id", session.UserID))
	return session, nil
}

func (s *SessionService) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.userID = ""
	s.mu.Unlock()

	if err := s.auth.Logout(ctx); err != nil {
		return fmt.Errorf("session: logout failed: %w", err)
	}
	return nil
}

// CurrentUser resolves who the stored token belongs to: the id the backend
// reported at login, then the token subject, then the id remembered by this
// process. An expired token is removed and reported as a missing credential.
func (s *SessionService) CurrentUser(ctx context.Context) (string, error) {
	token, err := s.creds.GetToken(ctx)
	if err != nil || token == "" {
		return "", domain.NewAPIError(domain.APIErrorAuthTokenMissing, "", err)
	}

	claims, err := parseClaims(token)
	if err == nil {
		if claims.expiresAt != nil && !s.now().Before(*claims.expiresAt) {
			if delErr := s.creds.DeleteToken(ctx); delErr != nil {
				s.logger.Warn("[SESSION] failed to delete expired token", zap.Error(delErr))
			}
			return "", domain.NewAPIError(domain.APIErrorAuthTokenMissing, "token expired", nil)
		}
	}

	if userID, err := s.creds.GetUserID(ctx); err == nil && userID != "" {
		return userID, nil
	}
	if claims != nil && claims.subject != "" {
		return claims.subject, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.userID == "" {
		return "", domain.NewAPIError(domain.APIErrorAuthTokenMissing, "token does not identify a user", nil)
	}
	return s.userID, nil
}

type tokenClaims struct {
	subject   string
	expiresAt *time.Time
}

func parseClaims(token string) (*tokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("session: token is not a jwt: %w", err)
	}

	out := &tokenClaims{}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		out.subject = sub
	} else {
		for _, key := range []string{"id", "userId", "user_id"} {
			if v, ok := claims[key]; ok {
				out.subject = claimString(v)
				break
			}
		}
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		out.expiresAt = &t
	}
	return out, nil
}

func claimString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return fmt.Sprintf("%.0f", id)
	default:
		return fmt.Sprint(id)
	}
}
