package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/observability"
	apperrors "github.com/spec-kit/servicedesk/pkg/util"
)

func TestErrorMiddleware_MapsDomainErrors(t *testing.T) {
	metrics := observability.NewMetrics()
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	app.Get("/missing", func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("ticket", nil)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestRequestLogger_ObservesMappedStatus(t *testing.T) {
	metrics := observability.NewMetrics()
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	app.Get("/missing", func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("ticket", nil)
	})
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	for _, path := range []string{"/missing", "/ok"} {
		if _, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil)); err != nil {
			t.Fatalf("app.Test %s: %v", path, err)
		}
	}

	// the counter must carry the status the error mapper wrote, not the
	// pre-error default
	if got := metrics.RequestCount("/missing", http.MethodGet, http.StatusNotFound); got != 1 {
		t.Errorf("count for 404 = %d, want 1", got)
	}
	if got := metrics.RequestCount("/missing", http.MethodGet, http.StatusOK); got != 0 {
		t.Errorf("failed request counted as 200: %d", got)
	}
	if got := metrics.RequestCount("/ok", http.MethodGet, http.StatusOK); got != 1 {
		t.Errorf("count for 200 = %d, want 1", got)
	}
}
