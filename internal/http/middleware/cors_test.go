package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name       string
		allow      []string
		origin     string
		wantStatus int
		wantOrigin string
	}{
		{"default vite", nil, "http://localhost:5173", http.StatusNoContent, "http://localhost:5173"},
		{"default next", nil, "http://127.0.0.1:3000", http.StatusNoContent, "http://127.0.0.1:3000"},
		{"configured trailing slash", []string{" https://app.example.com/ "}, "https://app.example.com", http.StatusNoContent, "https://app.example.com"},
		{"unlisted", []string{"https://app.example.com"}, "http://localhost:5173", http.StatusForbidden, ""},
		{"wildcard", []string{"*"}, "https://anything.example", http.StatusNoContent, "*"},
	}
	for _, tc := range cases {
		r := gin.New()
		r.Use(CORS(tc.allow))
		r.POST("/api/roadmaps", func(c *gin.Context) { c.Status(http.StatusCreated) })

		req := httptest.NewRequest(http.MethodOptions, "/api/roadmaps", nil)
		req.Header.Set("Origin", tc.origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != tc.wantStatus {
			t.Fatalf("%s: status want=%d got=%d", tc.name, tc.wantStatus, rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.wantOrigin {
			t.Fatalf("%s: allow-origin want=%q got=%q", tc.name, tc.wantOrigin, got)
		}
	}
}
