package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/orbitsaas/credit-ledger/internal/api/v1/middleware"
	"github.com/stretchr/testify/assert"
)

func TestHealthCheckMiddleware(t *testing.T) {
	newApp := func(check func() error) *fiber.App {
		app := fiber.New()
		app.Use(middleware.HealthCheckMiddleware("creditledger", check))
		return app
	}

	t.Run("healthy when the database check passes", func(t *testing.T) {
		app := newApp(func() error { return nil })

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unhealthy when the database check fails", func(t *testing.T) {
		app := newApp(func() error { return errors.New("dial tcp 127.0.0.1:3306: connection refused") })

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("nil check reports liveness only", func(t *testing.T) {
		app := newApp(nil)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
