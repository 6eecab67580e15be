package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/caretrack/service-auth-go/internal/profile"
	profileentity "github.com/caretrack/service-auth-go/internal/profile/entity"
	"github.com/caretrack/service-auth-go/internal/token"
)

// fakeProfiles reports no completed registration unless one is set.
type fakeProfiles struct {
	profile *profileentity.Profile
	touched int
}

func (f *fakeProfiles) TouchLogin(_ context.Context, _ int64, now time.Time) (*profileentity.Profile, error) {
	f.touched++
	if f.profile == nil {
		return nil, profile.ErrNotFound
	}
	f.profile.TreatmentStreak++
	f.profile.LastLogin = &now
	return f.profile, nil
}

func newTestHandler(profiles *fakeProfiles) (*Handler, *fakeStore) {
	store := newFakeStore()
	svc := NewService(store, fastHasher{})
	tokens := token.NewService(token.Config{Secret: "test-secret", TTL: time.Hour})
	return NewHandler(svc, tokens, profiles, zap.NewNop().Sugar()), store
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestRegisterIssuesToken(t *testing.T) {
	h, _ := newTestHandler(&fakeProfiles{})
	rec := post(h.Register, `{"username":"bob","password":"pw"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	body := decode(t, rec)
	if body["user_id"] == nil || body["access_token"] == "" {
		t.Fatalf("response missing user_id or access_token: %v", body)
	}
	if body["message"] != "User registered successfully" {
		t.Fatalf("message = %v", body["message"])
	}
}

func TestRegisterDuplicateIs400(t *testing.T) {
	h, store := newTestHandler(&fakeProfiles{})
	if rec := post(h.Register, `{"username":"bob","password":"pw"}`); rec.Code != http.StatusCreated {
		t.Fatalf("first register status = %d", rec.Code)
	}
	rec := post(h.Register, `{"username":"bob","password":"other"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register status = %d, want 400", rec.Code)
	}
	if len(store.rows) != 1 {
		t.Fatalf("store has %d rows, want 1", len(store.rows))
	}
}

func TestLoginFailureShapeIsUniform(t *testing.T) {
	h, _ := newTestHandler(&fakeProfiles{})
	post(h.Register, `{"username":"bob","password":"correct"}`)

	wrongPw := post(h.Login, `{"username":"bob","password":"wrong"}`)
	unknown := post(h.Login, `{"username":"ghost","password":"whatever"}`)

	if wrongPw.Code != http.StatusBadRequest || unknown.Code != http.StatusBadRequest {
		t.Fatalf("statuses = %d, %d, want 400 for both", wrongPw.Code, unknown.Code)
	}
	if wrongPw.Body.String() != unknown.Body.String() {
		t.Fatalf("failure bodies differ:\n%s\n%s", wrongPw.Body.String(), unknown.Body.String())
	}
}

func TestLoginWithoutProfileOmitsIt(t *testing.T) {
	profiles := &fakeProfiles{}
	h, _ := newTestHandler(profiles)
	post(h.Register, `{"username":"bob","password":"pw"}`)

	rec := post(h.Login, `{"username":"bob","password":"pw"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200", rec.Code)
	}
	if profiles.touched != 1 {
		t.Fatalf("TouchLogin called %d times, want 1", profiles.touched)
	}
	body := decode(t, rec)
	if body["token_type"] != "bearer" {
		t.Fatalf("token_type = %v", body["token_type"])
	}
	if _, present := body["profile"]; present {
		t.Fatal("profile present in response for uncompleted registration")
	}

	// and the token must verify back to the registered account
	tokens := token.NewService(token.Config{Secret: "test-secret", TTL: time.Hour})
	userID, err := tokens.Verify(body["access_token"].(string))
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if userID != 1 {
		t.Fatalf("token subject = %d, want 1", userID)
	}
}

func TestLoginIncludesProfileAndStreak(t *testing.T) {
	profiles := &fakeProfiles{profile: &profileentity.Profile{UserID: 1, FirstName: "Bob", TreatmentStreak: 0}}
	h, _ := newTestHandler(profiles)
	post(h.Register, `{"username":"bob","password":"pw"}`)

	rec := post(h.Login, `{"username":"bob","password":"pw"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200", rec.Code)
	}
	body := decode(t, rec)
	p, ok := body["profile"].(map[string]any)
	if !ok {
		t.Fatalf("profile missing from login response: %v", body)
	}
	if p["treatment_streak"].(float64) != 1 {
		t.Fatalf("treatment_streak = %v, want 1 after login", p["treatment_streak"])
	}
}
