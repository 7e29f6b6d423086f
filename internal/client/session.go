package client

import "encoding/json"

// Session tracks who is logged in on this client. The user object is
// kept as a loose map because different endpoints return different
// subsets of the profile; the session never drops fields it already
// knows about.
type Session struct {
	store    *TokenStore
	remember bool
}

// NewSession creates a session over the given store.
func NewSession(store *TokenStore) *Session {
	return &Session{store: store}
}

// SetCredentials saves everything extracted from an auth response.
// Missing pieces are skipped rather than overwritten with blanks.
func (s *Session) SetCredentials(creds Credentials, remember bool) {
	s.remember = remember

	if creds.AccessToken != "" {
		s.store.Set(KeyAccessToken, creds.AccessToken, remember)
		s.store.SetAccessCookie(creds.AccessToken)
	}
	if creds.RefreshToken != "" {
		s.store.Set(KeyRefreshToken, creds.RefreshToken, remember)
	}
	if creds.User != nil {
		if email, ok := creds.User["email"].(string); ok && email != "" {
			s.store.Set(KeyUserEmail, email, remember)
		}
		s.setUser(creds.User)
	}
}

// User returns the stored user object, or nil when logged out.
func (s *Session) User() map[string]interface{} {
	raw := s.store.Get(KeyUser)
	if raw == "" {
		return nil
	}
	var user map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil
	}
	return user
}

// UpdateUser shallow-merges the given fields into the stored user.
// Without a stored user this is a no-op: a background profile fetch
// finishing after logout must not resurrect the session.
func (s *Session) UpdateUser(fields map[string]interface{}) {
	user := s.User()
	if user == nil {
		return
	}
	for k, v := range fields {
		user[k] = v
	}
	s.setUser(user)
}

// Email returns the stored account email.
func (s *Session) Email() string {
	return s.store.Get(KeyUserEmail)
}

// LoggedIn reports whether an access token is available.
func (s *Session) LoggedIn() bool {
	return s.store.AccessToken() != ""
}

// LogOut clears every stored artifact.
func (s *Session) LogOut() {
	s.store.Clear()
	s.remember = false
}

func (s *Session) setUser(user map[string]interface{}) {
	data, err := json.Marshal(user)
	if err != nil {
		return
	}
	s.store.Set(KeyUser, string(data), s.remember)
}
