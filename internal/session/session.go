// package session holds per-visitor state in a client-side cookie
//
// The cookie carries the complete session payload (access token plus the vehicle
// mapping); there is no server-side store. Session values cross the cookie boundary
// through the explicit [Session.Encode] / [Decode] pair.
package session

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/desertthunder/carlink/internal/services"
	"github.com/gorilla/sessions"
	"golang.org/x/oauth2"
)

const (
	cookieName = "carlink"
	valueKey   = "session"
)

// Session is the per-visitor state. A nil Access token means the visitor is
// anonymous. Vehicles maps vehicle ID to its last-known metadata; the token is
// overwritten wholesale on re-authorization, never partially mutated.
type Session struct {
	Access   *oauth2.Token               `json:"access,omitempty"`
	Vehicles map[string]services.Vehicle `json:"vehicles,omitempty"`
}

// New returns a freshly authorized session: token set, no vehicles discovered yet.
func New(token *oauth2.Token) *Session {
	return &Session{
		Access:   token,
		Vehicles: make(map[string]services.Vehicle),
	}
}

// Authorized reports whether the session carries an access token.
func (s *Session) Authorized() bool {
	return s != nil && s.Access != nil && s.Access.AccessToken != ""
}

// Token returns the raw access token string, or "" for anonymous sessions.
func (s *Session) Token() string {
	if !s.Authorized() {
		return ""
	}
	return s.Access.AccessToken
}

// VehicleIDs returns the identifiers of every vehicle in the session mapping.
func (s *Session) VehicleIDs() []string {
	ids := make([]string, 0, len(s.Vehicles))
	for id := range s.Vehicles {
		ids = append(ids, id)
	}
	return ids
}

// Encode serializes the session to its cookie representation.
func (s *Session) Encode() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	return data, nil
}

// Decode deserializes a cookie payload back into a Session.
func Decode(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &s, nil
}

// Store reads and writes sessions through a signed cookie ([sessions.CookieStore]).
type Store struct {
	cookies *sessions.CookieStore
}

// NewStore creates a cookie-backed session store signed with secret.
func NewStore(secret string) *Store {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Store{cookies: store}
}

// Load returns the visitor's session, or an empty anonymous session when the
// cookie is absent or unreadable (a tampered cookie is treated as anonymous,
// never as an error).
func (st *Store) Load(r *http.Request) *Session {
	cookie, err := st.cookies.Get(r, cookieName)
	if err != nil {
		return &Session{}
	}

	raw, ok := cookie.Values[valueKey].(string)
	if !ok || raw == "" {
		return &Session{}
	}

	s, err := Decode([]byte(raw))
	if err != nil {
		return &Session{}
	}
	return s
}

// Save writes the session into the response cookie.
func (st *Store) Save(w http.ResponseWriter, r *http.Request, s *Session) error {
	data, err := s.Encode()
	if err != nil {
		return err
	}

	cookie, _ := st.cookies.Get(r, cookieName)
	cookie.Values[valueKey] = string(data)
	if err := cookie.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear discards the visitor's session by expiring the cookie.
func (st *Store) Clear(w http.ResponseWriter, r *http.Request) error {
	cookie, _ := st.cookies.Get(r, cookieName)
	cookie.Values = make(map[any]any)
	cookie.Options.MaxAge = -1
	if err := cookie.Save(r, w); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
