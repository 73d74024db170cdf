package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/yungbote/roadmap-backend/internal/observability"
)

func TestMetricsLabelsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.NewMetrics()
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/roadmaps/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/healthcheck", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/roadmaps/a", "/api/roadmaps/b", "/healthcheck", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	if !strings.Contains(body, `roadmap_api_requests_total{method="GET",route="/api/roadmaps/:id",status="200"} 2`) {
		t.Fatalf("want two requests on the templated route")
	}
	if !strings.Contains(body, `route="unmatched",status="404"} 1`) {
		t.Fatalf("want unmatched path counted once")
	}
	if strings.Contains(body, `route="/healthcheck"`) {
		t.Fatalf("healthcheck must not be metered")
	}
}
