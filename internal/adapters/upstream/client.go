package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/domain"
)

const (
	apiPrefix       = "/api"
	requestIDHeader = "X-Request-ID"
	maxBodyBytes    = 4 << 20
)

var _ domain.StatsSource = (*Client)(nil)

// Client performs exactly one HTTP round trip per call. It never retries
// and never caches.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	credentials domain.CredentialStore
	logger      *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, credentials domain.CredentialStore, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		credentials: credentials,
		logger:      logger,
	}
}

// WithHTTPClient swaps the transport, mostly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// Request sends body (if any) as JSON to endpoint, relative to the /api base,
// and decodes a 2xx response into out. Every failure is a *domain.APIError.
func (c *Client) Request(ctx context.Context, endpoint, method string, body any, requiresAuth bool, out any) error {
	target, err := c.resolve(endpoint)
	if err != nil {
		return err
	}

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return domain.NewAPIError(domain.APIErrorEncoding, err.Error(), err)
		}
		payload = bytes.NewReader(raw)
	}

	var token string
	if requiresAuth {
		token, err = c.token(ctx)
		if err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return domain.NewAPIError(domain.APIErrorInvalidURL, err.Error(), err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("[UPSTREAM] transport failure",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return domain.NewAPIError(domain.APIErrorRequestFailed, err.Error(), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.NewAPIError(domain.APIErrorInvalidResponse, err.Error(), err)
	}

	c.logger.Debug("[UPSTREAM] request completed",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
		zap.String("request_id", requestID),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return serverError(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return domain.NewAPIError(domain.APIErrorDecoding, "empty response body", nil)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return domain.NewAPIError(domain.APIErrorDecoding, err.Error(), err)
	}
	return nil
}

func (c *Client) resolve(endpoint string) (string, error) {
	if c.baseURL == "" {
		return "", domain.NewAPIError(domain.APIErrorInvalidURL, "empty base url", nil)
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}

	u, err := url.Parse(c.baseURL + apiPrefix + endpoint)
	if err != nil {
		return "", domain.NewAPIError(domain.APIErrorInvalidURL, err.Error(), err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", domain.NewAPIError(domain.APIErrorInvalidURL, "malformed request target "+u.String(), nil)
	}
	return u.String(), nil
}

func (c *Client) token(ctx context.Context) (string, error) {
	if c.credentials == nil {
		return "", domain.ErrAuthTokenMissing
	}
	token, err := c.credentials.GetToken(ctx)
	if err != nil || token == "" {
		if err != nil && !errors.Is(err, domain.ErrCredentialMissing) {
			c.logger.Warn("[UPSTREAM] credential store read failed", zap.Error(err))
		}
		return "", domain.NewAPIError(domain.APIErrorAuthTokenMissing, "", err)
	}
	return token, nil
}

type errorBody struct {
	Message *string `json:"message"`
}

func serverError(status int, raw []byte) error {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != nil {
		return domain.NewServerError(status, *body.Message)
	}
	return domain.NewServerError(status, strings.TrimSpace(string(raw)))
}
