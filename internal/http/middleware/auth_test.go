package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/roadmap-backend/internal/platform/ctxutil"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type verifierFunc func(string) (uuid.UUID, error)

func (f verifierFunc) Verify(tok string) (uuid.UUID, error) { return f(tok) }

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	user := uuid.New()
	am := NewAuthMiddleware(logger.Nop(), verifierFunc(func(tok string) (uuid.UUID, error) {
		switch tok {
		case "good":
			return user, nil
		case "nil-user":
			return uuid.Nil, nil
		}
		return uuid.Nil, errors.New("bad token")
	}))

	var seen uuid.UUID
	r := gin.New()
	r.Use(am.RequireAuth())
	r.GET("/api/roadmaps", func(c *gin.Context) {
		seen = ctxutil.UserID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	cases := []struct {
		header string
		want   int
	}{
		{"", http.StatusUnauthorized},
		{"Basic abc", http.StatusUnauthorized},
		{"Bearer wrong", http.StatusUnauthorized},
		{"Bearer nil-user", http.StatusForbidden},
		{"bearer good", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/roadmaps", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%q: want=%d got=%d", tc.header, tc.want, rec.Code)
		}
	}
	if seen != user {
		t.Fatalf("request data: want=%s got=%s", user, seen)
	}
}

func TestAttachTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var (
		td ctxutil.TraceData
		ok bool
	)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/x", func(c *gin.Context) {
		td, ok = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerRequestID, "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if !ok || td.RequestID != "req-1" || td.TraceID == "" {
		t.Fatalf("trace data: %+v", td)
	}
	if got := rec.Header().Get(headerRequestID); got != "req-1" {
		t.Fatalf("echoed request id: want=req-1 got=%q", got)
	}
	if rec.Header().Get(headerTraceID) != td.TraceID {
		t.Fatalf("trace header mismatch")
	}
	if td.Source != ctxutil.TraceSourceGenerated {
		t.Fatalf("source: want=%s got=%s", ctxutil.TraceSourceGenerated, td.Source)
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerTraceID, "client-trace")
	r.ServeHTTP(httptest.NewRecorder(), req)
	if td.TraceID != "client-trace" || td.Source != ctxutil.TraceSourceHeader {
		t.Fatalf("header trace: %+v", td)
	}
}

func TestCleanID(t *testing.T) {
	cases := map[string]string{
		" abc-123 ":                "abc-123",
		"has space":                "",
		"tab\tinside":              "",
		string(make([]byte, 200)): "",
	}
	for in, want := range cases {
		if got := cleanID(in); got != want {
			t.Fatalf("cleanID(%q): want=%q got=%q", in, want, got)
		}
	}
}
