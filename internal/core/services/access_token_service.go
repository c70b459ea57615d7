package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrAccessSecretRequired = errors.New("access token secret is required")
	ErrAccessTokenInvalid   = errors.New("invalid or expired access token")
)

// AccessTokenService signs the bearer tokens the gateway hands to its own
// callers. Unlike the upstream token these are verified on every request.
type AccessTokenService struct {
	secretKey     []byte
	issuer        string
	tokenDuration time.Duration
	now           func() time.Time
}

func NewAccessTokenService(secretKey, issuer string, tokenDuration time.Duration) (*AccessTokenService, error) {
	if secretKey == "" {
		return nil, ErrAccessSecretRequired
	}
	if tokenDuration <= 0 {
		tokenDuration = 12 * time.Hour
	}
	return &AccessTokenService{
		secretKey:     []byte(secretKey),
		issuer:        issuer,
		tokenDuration: tokenDuration,
		now:           time.Now,
	}, nil
}

func (s *AccessTokenService) Issue(userID string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, fmt.Errorf("access token: %w", ErrAccessTokenInvalid)
	}

	now := s.now()
	expiresAt := now.Add(s.tokenDuration)
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": expiresAt.Unix(),
		"iat": now.Unix(),
		"iss": s.issuer,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("access token: failed to sign: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate returns the user id the token was issued for.
func (s *AccessTokenService) Validate(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAccessTokenInvalid, err)
	}

	userID, err := token.Claims.GetSubject()
	if err != nil || userID == "" {
		return "", fmt.Errorf("%w: missing subject", ErrAccessTokenInvalid)
	}
	return userID, nil
}
