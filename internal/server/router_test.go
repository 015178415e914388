package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lingobridge-backend/internal/handlers"
	"github.com/yungbote/lingobridge-backend/internal/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("expected logger, got error %v", err)
	}
	return NewRouter(RouterConfig{
		Log:           log,
		HealthHandler: handlers.NewHealthHandler(),
	})
}

func TestHealthcheckRoute(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "ok" {
		t.Fatalf("expected ok body, got %q", w.Body.String())
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
