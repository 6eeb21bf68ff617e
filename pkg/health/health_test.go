package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/schooldash/pkg/health"
)

func ok(context.Context) error { return nil }

func failing(msg string) health.CheckFunc {
	return func(context.Context) error { return errors.New(msg) }
}

func get(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, health.Response) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var resp health.Response
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestLivenessHandler(t *testing.T) {
	t.Parallel()

	rec, _ := get(t, health.LivenessHandler(), "/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec, resp := get(t, health.LivenessHandler(), "/health/live?format=json")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, health.StatusHealthy, resp.Status)
}

func TestReadinessHandler(t *testing.T) {
	t.Parallel()

	t.Run("no checks is healthy", func(t *testing.T) {
		t.Parallel()

		rec, _ := get(t, health.ReadinessHandler(nil), "/health/ready")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("all checks pass", func(t *testing.T) {
		t.Parallel()

		h := health.ReadinessHandler(health.Checks{"postgres": ok, "redis": ok})
		rec, resp := get(t, h, "/health/ready?format=json")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, health.StatusHealthy, resp.Status)
		assert.Len(t, resp.Checks, 2)
	})

	t.Run("one failure does not stop the others", func(t *testing.T) {
		t.Parallel()

		h := health.ReadinessHandler(health.Checks{"postgres": ok, "redis": failing("connection refused")})
		rec, resp := get(t, h, "/health/ready?format=json")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, health.StatusUnhealthy, resp.Status)
		assert.Equal(t, health.StatusHealthy, resp.Checks["postgres"].Status)
		assert.Equal(t, "connection refused", resp.Checks["redis"].Error)
	})

	t.Run("plain text failure", func(t *testing.T) {
		t.Parallel()

		rec, _ := get(t, health.ReadinessHandler(health.Checks{"redis": failing("down")}), "/health/ready")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "Service Unavailable", rec.Body.String())
	})

	t.Run("info is reported", func(t *testing.T) {
		t.Parallel()

		h := health.ReadinessHandler(nil, health.WithInfo("cache", func() any {
			return map[string]int{"size": 3}
		}))
		_, resp := get(t, h, "/health/ready?format=json")
		assert.Equal(t, map[string]any{"size": float64(3)}, resp.Info["cache"])
	})
}

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("healthy", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, health.Run(context.Background(), health.Checks{"a": ok}))
	})

	t.Run("failures are joined", func(t *testing.T) {
		t.Parallel()

		err := health.Run(context.Background(), health.Checks{"a": ok, "b": failing("boom")})
		require.ErrorIs(t, err, health.ErrCheckFailed)
		assert.Contains(t, err.Error(), "b: boom")
	})

	t.Run("slow check times out", func(t *testing.T) {
		t.Parallel()

		slow := func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}
		err := health.Run(context.Background(), health.Checks{"slow": slow}, health.WithTimeout(20*time.Millisecond))
		require.ErrorIs(t, err, health.ErrCheckFailed)
		assert.Contains(t, err.Error(), health.ErrCheckTimeout.Error())
	})

	t.Run("panicking check is reported", func(t *testing.T) {
		t.Parallel()

		bad := func(context.Context) error { panic("nil pool") }
		err := health.Run(context.Background(), health.Checks{"a": ok, "bad": bad})
		require.ErrorIs(t, err, health.ErrCheckFailed)
		assert.Contains(t, err.Error(), "bad: health: check panicked: nil pool")
	})
}
