package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthAndLive(t *testing.T) {
	s := NewServer(Config{ServiceName: "derby", Version: "1.0.0", Logger: quietLogger()})
	h := s.Handler()

	for _, path := range []string{"/health", "/live"} {
		rec := get(t, h, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var resp HealthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "derby", resp.Service)
	}
}

func TestReady(t *testing.T) {
	var simErr error
	s := NewServer(Config{
		ServiceName: "derby",
		Logger:      quietLogger(),
		Checks: map[string]Checker{
			"simulation": CheckerFunc(func(ctx context.Context) error { return simErr }),
		},
	})
	h := s.Handler()

	tests := []struct {
		name       string
		ready      bool
		simErr     error
		wantCode   int
		wantChecks map[string]string
	}{
		{"not marked ready", false, nil, http.StatusServiceUnavailable, map[string]string{"service": "not_ready", "simulation": "ok"}},
		{"ready", true, nil, http.StatusOK, map[string]string{"service": "ok", "simulation": "ok"}},
		{"check failing", true, errors.New("stalled"), http.StatusServiceUnavailable, map[string]string{"service": "ok", "simulation": "error: stalled"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.SetReady(tt.ready)
			simErr = tt.simErr

			rec := get(t, h, "/ready")
			assert.Equal(t, tt.wantCode, rec.Code)

			var resp ReadyResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.wantChecks, resp.Checks)
		})
	}
}

func TestStatusRoute(t *testing.T) {
	s := NewServer(Config{
		ServiceName: "derby",
		Logger:      quietLogger(),
		Status: func() interface{} {
			return map[string]string{"race_state": "Running"}
		},
	})
	h := s.Handler()

	rec := get(t, h, "/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"race_state":"Running"}`, rec.Body.String())
}

func TestStatusRouteAbsentWithoutProvider(t *testing.T) {
	s := NewServer(Config{ServiceName: "derby", Logger: quietLogger()})
	rec := get(t, s.Handler(), "/status")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShutdownWithoutStart(t *testing.T) {
	s := NewServer(Config{ServiceName: "derby", Logger: quietLogger()})
	assert.NoError(t, s.Shutdown())
}
