package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-stats-gateway/internal/adapters/upstream/upstreamtest"
	"github.com/comitanigiacomo/kanso-stats-gateway/internal/app"
	"github.com/comitanigiacomo/kanso-stats-gateway/internal/config"
	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/services"
	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/workers"
)

type badgesResponse struct {
	Unlocked []struct {
		ID string `json:"id"`
	} `json:"unlocked"`
	Total int `json:"total"`
}

func TestEndToEnd_SessionOverviewBadges(t *testing.T) {
	gin.SetMode(gin.TestMode)

	up := upstreamtest.NewServer()
	defer up.Close()

	cfg := &config.Config{
		APIBaseURL:           up.URL,
		HTTPTimeout:          5 * time.Second,
		FetchStrategy:        config.StrategyConcurrent,
		BadgeStore:           config.StoreFile,
		DataDir:              t.TempDir(),
		CredentialPassphrase: "e2e passphrase",
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	worker := workers.NewRefreshWorker(a.Sync, 0, zap.NewNop())
	worker.Start(ctx)

	router := newRouter(a, worker, time.Now())
	var bearer string
	do := func(method, path, body string) *httptest.ResponseRecorder {
		req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	// 1. Log in
	w := do(http.MethodPost, "/api/v1/session", `{"email":"`+upstreamtest.Email+`","password":"`+upstreamtest.Password+`"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var session struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	require.NotEmpty(t, session.AccessToken)

	// 2. Anonymous callers are refused even with a stored session
	w = do(http.MethodGet, "/api/v1/overview", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	bearer = session.AccessToken

	// 3. Overview
	w = do(http.MethodGet, "/api/v1/overview", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var view services.OverviewView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, services.StatusOK, view.Status)

	// 4. Unlocked badges survive; the background warm-up may have unlocked
	// them before the overview call, so only the stored set is checked.
	w = do(http.MethodGet, "/api/v1/badges", "")
	require.Equal(t, http.StatusOK, w.Code)

	var badges badgesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &badges))
	ids := make([]string, 0, len(badges.Unlocked))
	for _, b := range badges.Unlocked {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"first_habit_completed", "three_day_streak"}, ids)
	assert.Equal(t, 5, badges.Total)

	// 5. Logout closes protected routes
	w = do(http.MethodDelete, "/api/v1/session", "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(http.MethodGet, "/api/v1/overview", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	cancel()
	<-worker.Done()
}
