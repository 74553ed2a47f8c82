package middlewares

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeIssuer struct {
	issued int
	verify func(raw string) (string, error)
}

func (f *fakeIssuer) Issue() (string, string, error) {
	f.issued++
	return "cookie-new", "sid-new", nil
}

func (f *fakeIssuer) IssueFor(sid string) (string, error) {
	return "cookie-" + sid, nil
}

func (f *fakeIssuer) Verify(raw string) (string, error) {
	if f.verify != nil {
		return f.verify(raw)
	}
	return "", errors.New("invalid")
}

func sessionRouter(m *SessionMiddleware) *gin.Engine {
	r := gin.New()
	r.Use(m.Ensure())
	r.GET("/", func(c *gin.Context) {
		sid, _ := SessionIDFromContext(c)
		c.String(http.StatusOK, sid)
	})
	return r
}

func TestSessionMiddleware_IssuesWhenMissing(t *testing.T) {
	iss := &fakeIssuer{}
	r := sessionRouter(NewSessionMiddleware(iss, 3600, false))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Body.String() != "sid-new" || iss.issued != 1 {
		t.Fatalf("sid=%q issued=%d", w.Body.String(), iss.issued)
	}
	cookie := w.Header().Get("Set-Cookie")
	if !strings.Contains(cookie, SessionCookie+"=cookie-new") || !strings.Contains(cookie, "HttpOnly") {
		t.Fatalf("unexpected cookie %q", cookie)
	}
}

func TestSessionMiddleware_KeepsValidSession(t *testing.T) {
	iss := &fakeIssuer{verify: func(raw string) (string, error) {
		if raw == "good" {
			return "sid-1", nil
		}
		return "", errors.New("invalid")
	}}
	r := sessionRouter(NewSessionMiddleware(iss, 3600, false))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "good"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Body.String() != "sid-1" || iss.issued != 0 {
		t.Fatalf("sid=%q issued=%d", w.Body.String(), iss.issued)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "forged"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Body.String() != "sid-new" {
		t.Fatalf("forged cookie should start a new session, got %q", w.Body.String())
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	r := gin.New()
	r.Use(rl.RateLimiterMiddleware(KeyByIP))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 3)
	for i := range codes {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes[i] = w.Code
		if i == 2 && w.Header().Get("Retry-After") == "" {
			t.Fatalf("missing Retry-After")
		}
	}

	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes %v", codes)
	}

	if n := rl.Sweep(time.Now().Add(2 * time.Minute)); n != 1 {
		t.Fatalf("Sweep removed %d buckets", n)
	}
}

func TestRequireJSON(t *testing.T) {
	r := gin.New()
	r.POST("/", RequireJSON(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	tests := map[string]int{
		"application/json":                http.StatusNoContent,
		"application/json; charset=utf-8": http.StatusNoContent,
		"text/plain":                      http.StatusUnsupportedMediaType,
		"":                                http.StatusUnsupportedMediaType,
	}
	for ct, want := range tests {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
		if ct != "" {
			req.Header.Set("Content-Type", ct)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != want {
			t.Fatalf("Content-Type %q: got %d want %d", ct, w.Code, want)
		}
	}
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://localhost:5173"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Fatalf("preflight: %d %v", w.Code, w.Header())
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("unknown origin should not be allowed")
	}
}
