package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/carlink/internal/services"
	"golang.org/x/oauth2"
)

func TestSession(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		s := New(&oauth2.Token{AccessToken: "tok"})
		if !s.Authorized() {
			t.Error("expected fresh session to be authorized")
		}
		if s.Vehicles == nil || len(s.Vehicles) != 0 {
			t.Error("expected empty, non-nil vehicle mapping")
		}
	})

	t.Run("Authorized", func(t *testing.T) {
		var nilSession *Session
		if nilSession.Authorized() {
			t.Error("nil session should be anonymous")
		}
		if (&Session{}).Authorized() {
			t.Error("empty session should be anonymous")
		}
		if (&Session{Access: &oauth2.Token{}}).Authorized() {
			t.Error("empty token should be anonymous")
		}
	})

	t.Run("Encode Decode Round Trip", func(t *testing.T) {
		s := New(&oauth2.Token{AccessToken: "tok"})
		s.Vehicles["v1"] = services.Vehicle{ID: "v1", Make: "HONDA", Model: "Civic", Year: 2019}

		data, err := s.Encode()
		if err != nil {
			t.Fatalf("encode: %v", err)
		}

		got, err := Decode(data)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Token() != "tok" {
			t.Errorf("expected token to survive round trip, got %q", got.Token())
		}
		if got.Vehicles["v1"].Model != "Civic" {
			t.Errorf("expected vehicle metadata to survive round trip, got %+v", got.Vehicles["v1"])
		}
	})

	t.Run("Decode Garbage", func(t *testing.T) {
		if _, err := Decode([]byte("{not json")); err == nil {
			t.Error("expected error for malformed payload")
		}
	})
}

func TestStore(t *testing.T) {
	store := NewStore("test-secret")

	// Round-trips a session through a real Set-Cookie header.
	save := func(t *testing.T, s *Session) []*http.Cookie {
		t.Helper()
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if err := store.Save(w, r, s); err != nil {
			t.Fatalf("save: %v", err)
		}
		return w.Result().Cookies()
	}

	t.Run("Save And Load", func(t *testing.T) {
		s := New(&oauth2.Token{AccessToken: "tok"})
		s.Vehicles["v1"] = services.Vehicle{ID: "v1"}
		cookies := save(t, s)
		if len(cookies) == 0 {
			t.Fatal("expected a session cookie to be set")
		}

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		for _, c := range cookies {
			r.AddCookie(c)
		}

		got := store.Load(r)
		if !got.Authorized() {
			t.Error("expected loaded session to be authorized")
		}
		if _, ok := got.Vehicles["v1"]; !ok {
			t.Error("expected vehicle mapping to survive the cookie")
		}
	})

	t.Run("Load Without Cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if store.Load(r).Authorized() {
			t.Error("expected anonymous session")
		}
	})

	t.Run("Load Tampered Cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: cookieName, Value: "tampered"})
		if store.Load(r).Authorized() {
			t.Error("tampered cookie should load as anonymous")
		}
	})

	t.Run("Clear", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if err := store.Clear(w, r); err != nil {
			t.Fatalf("clear: %v", err)
		}

		var found bool
		for _, c := range w.Result().Cookies() {
			if c.Name == cookieName {
				found = true
				if c.MaxAge != -1 {
					t.Errorf("expected expiring cookie, got MaxAge %d", c.MaxAge)
				}
			}
		}
		if !found {
			t.Error("expected a Set-Cookie header clearing the session")
		}
	})
}
