package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-stats-gateway/internal/adapters/upstream/upstreamtest"
	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/services"
)

func setupEnv(t *testing.T) *upstreamtest.Server {
	t.Helper()
	up := upstreamtest.NewServer()
	t.Cleanup(up.Close)

	t.Setenv("KANSO_API_BASE_URL", up.URL)
	t.Setenv("KANSO_DATA_DIR", t.TempDir())
	t.Setenv("KANSO_CREDENTIAL_PASSPHRASE", "cli test passphrase")
	t.Setenv("KANSO_BADGE_STORE", "file")
	t.Setenv("KANSO_FETCH_STRATEGY", "sequential")
	t.Setenv("APP_ENV", "test")
	return up
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env")}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestLoginCmd(t *testing.T) {
	t.Run("Success: Password from stdin", func(t *testing.T) {
		setupEnv(t)

		out, err := execute(t, upstreamtest.Password+"\n", "login", "--email", upstreamtest.Email)
		require.NoError(t, err)
		assert.Contains(t, out, "logged in as "+upstreamtest.Email)
		assert.NotContains(t, out, "memory only")
	})

	t.Run("Fail: Wrong password", func(t *testing.T) {
		setupEnv(t)

		_, err := execute(t, "", "login", "-e", upstreamtest.Email, "-p", "nope")
		assert.Error(t, err)
	})

	t.Run("Fail: Missing email flag", func(t *testing.T) {
		setupEnv(t)

		_, err := execute(t, "", "login", "-p", "x")
		assert.Error(t, err)
	})
}

func TestOverviewCmd(t *testing.T) {
	t.Run("Fail: Not logged in", func(t *testing.T) {
		up := setupEnv(t)

		_, err := execute(t, "", "overview")
		assert.Error(t, err)
		assert.Equal(t, 0, up.Hits(upstreamtest.PathDashboard))
	})

	t.Run("Success: Token survives between invocations", func(t *testing.T) {
		setupEnv(t)
		_, err := execute(t, "", "login", "-e", upstreamtest.Email, "-p", upstreamtest.Password)
		require.NoError(t, err)

		out, err := execute(t, "", "overview")
		require.NoError(t, err)
		assert.Contains(t, out, "Summary")
		assert.Contains(t, out, "Read")
		assert.Contains(t, out, "New badges")

		out, err = execute(t, "", "overview", "--json", "--concurrent")
		require.NoError(t, err)

		var view services.OverviewView
		require.NoError(t, json.Unmarshal([]byte(out), &view))
		assert.Equal(t, services.StatusOK, view.Status)
		assert.Empty(t, view.NewBadges, "badges are only new once")
	})

	t.Run("Partial: Warning printed, exit ok", func(t *testing.T) {
		up := setupEnv(t)
		_, err := execute(t, "", "login", "-e", upstreamtest.Email, "-p", upstreamtest.Password)
		require.NoError(t, err)
		up.Fail(upstreamtest.PathUserStats, http.StatusInternalServerError)

		out, err := execute(t, "", "overview")
		require.NoError(t, err)
		assert.Contains(t, out, "partial data: user-stats")
	})

	t.Run("Fail: Every source down", func(t *testing.T) {
		up := setupEnv(t)
		_, err := execute(t, "", "login", "-e", upstreamtest.Email, "-p", upstreamtest.Password)
		require.NoError(t, err)
		up.Fail(upstreamtest.PathDashboard, http.StatusServiceUnavailable)
		up.Fail(upstreamtest.PathUserStats, http.StatusServiceUnavailable)
		up.Fail(upstreamtest.PathActivity, http.StatusServiceUnavailable)

		out, err := execute(t, "", "overview")
		assert.ErrorIs(t, err, errCycleFailed)
		assert.Contains(t, out, "all sources failed")
	})
}

func TestBadgesAndLogoutCmd(t *testing.T) {
	setupEnv(t)
	_, err := execute(t, "", "login", "-e", upstreamtest.Email, "-p", upstreamtest.Password)
	require.NoError(t, err)

	out, err := execute(t, "", "badges")
	require.NoError(t, err)
	assert.Contains(t, out, "Badges 0/5")

	_, err = execute(t, "", "overview")
	require.NoError(t, err)

	out, err = execute(t, "", "badges")
	require.NoError(t, err)
	assert.Contains(t, out, "Badges 2/5")

	out, err = execute(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "logged out")

	_, err = execute(t, "", "badges")
	assert.Error(t, err)
}

func TestRenderOverview_ErrorIsSingleLine(t *testing.T) {
	var buf bytes.Buffer
	renderOverview(&buf, services.OverviewView{Status: services.StatusError, Warning: "all sources failed"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if diff := cmp.Diff(1, len(lines)); diff != "" {
		t.Errorf("error view should be a single line (-want +got):\n%s", diff)
	}
}
