package token

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func gated(svc *Service, invoked *bool, gotUserID *int64) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*invoked = true
		if id, ok := UserIDFrom(r.Context()); ok && gotUserID != nil {
			*gotUserID = id
		}
		w.WriteHeader(http.StatusOK)
	})
	return RequireAuth(svc, zap.NewNop().Sugar())(next)
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body["error"]
}

func TestRequireAuthRejections(t *testing.T) {
	svc := NewService(Config{Secret: "test-secret", TTL: time.Hour})
	expiredSvc := NewService(Config{Secret: "test-secret", TTL: -time.Minute})
	expiredTok, err := expiredSvc.Issue(3)
	if err != nil {
		t.Fatalf("issue expired token: %v", err)
	}

	cases := []struct {
		name    string
		header  string
		wantMsg string
	}{
		{"no header", "", "missing authorization header"},
		{"wrong scheme", "Basic abc123", "invalid auth scheme"},
		{"bare token without scheme", "sometoken", "invalid auth scheme"},
		{"garbage token", "Bearer not-a-jwt", "invalid token"},
		{"expired token", "Bearer " + expiredTok, "token expired"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			invoked := false
			h := gated(svc, &invoked, nil)
			req := httptest.NewRequest(http.MethodGet, "/profile", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			if got := errorBody(t, rec); got != tc.wantMsg {
				t.Fatalf("error = %q, want %q", got, tc.wantMsg)
			}
			if invoked {
				t.Fatal("handler ran despite rejected token")
			}
		})
	}
}

func TestRequireAuthPassesIdentity(t *testing.T) {
	svc := NewService(Config{Secret: "test-secret", TTL: time.Hour})
	tok, err := svc.Issue(42)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	invoked := false
	var gotUserID int64
	h := gated(svc, &invoked, &gotUserID)
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !invoked {
		t.Fatal("handler not invoked for valid token")
	}
	if gotUserID != 42 {
		t.Fatalf("context user id = %d, want 42", gotUserID)
	}
}

func TestFromRequestSchemeCaseInsensitive(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer abc")
	tok, err := FromRequest(req)
	if err != nil {
		t.Fatalf("FromRequest: %v", err)
	}
	if tok != "abc" {
		t.Fatalf("token = %q, want %q", tok, "abc")
	}
}
