package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const testSecret = "test-secret"

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func echoMember(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(MemberID(r.Context()) + ":" + MemberNickname(r.Context())))
}

func TestRequireAuth(t *testing.T) {
	valid := signed(t, testSecret, jwt.MapClaims{
		"sub":      "member-1",
		"nickname": "jeju",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	expired := signed(t, testSecret, jwt.MapClaims{
		"sub": "member-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	wrongKey := signed(t, "other", jwt.MapClaims{"sub": "member-1"})
	noSubject := signed(t, testSecret, jwt.MapClaims{"nickname": "jeju"})

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, ""},
		{"not bearer", "Token " + valid, http.StatusUnauthorized, ""},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, ""},
		{"wrong key", "Bearer " + wrongKey, http.StatusUnauthorized, ""},
		{"no subject", "Bearer " + noSubject, http.StatusUnauthorized, ""},
		{"valid", "Bearer " + valid, http.StatusOK, "member-1:jeju"},
	}

	h := RequireAuth(testSecret)(http.HandlerFunc(echoMember))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if tt.body != "" && w.Body.String() != tt.body {
				t.Fatalf("body = %q, want %q", w.Body.String(), tt.body)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	h := OptionalAuth(testSecret)(http.HandlerFunc(echoMember))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK || w.Body.String() != ":" {
		t.Fatalf("anonymous: got %d %q", w.Code, w.Body.String())
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+signed(t, testSecret, jwt.MapClaims{"sub": "m2"}))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Body.String() != "m2:" {
		t.Fatalf("authenticated: got %q", w.Body.String())
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: got %d", w.Code)
	}
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := Logger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/images", nil))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d log entries", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusTeapot) || fields["path"] != "/api/v1/images" {
		t.Fatalf("unexpected fields %v", fields)
	}
}
