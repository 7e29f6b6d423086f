package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Storage keys shared by the persistent and session stores.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUserEmail    = "userEmail"
	KeyUser         = "user"
	KeyDocumentURL  = "userDocumentUrl"
	KeyCnicFrontURL = "userCnicFrontUrl"
	KeyCnicBackURL  = "userCnicBackUrl"
	KeyPhotoURL     = "userPhotoUrl"
)

// CookieMaxAge is how long the access token cookie lives.
const CookieMaxAge = 30 * 24 * time.Hour

// TokenStore keeps auth artifacts in three places: a persistent
// file-backed store for remembered sessions, an in-memory session
// store for non-remembered ones, and a cookie value mirroring the
// access token. Writes are best-effort; a failed file write never
// fails the login.
type TokenStore struct {
	mu sync.RWMutex

	path    string
	persist map[string]string
	session map[string]string

	cookie        string
	cookieExpires time.Time
}

// NewTokenStore creates a store backed by the given file path.
// Previously persisted values are loaded if the file exists.
func NewTokenStore(path string) *TokenStore {
	s := &TokenStore{
		path:    path,
		persist: make(map[string]string),
		session: make(map[string]string),
	}
	s.load()
	return s
}

func (s *TokenStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return
	}
	s.persist = m
}

// flush writes the persistent map to disk. Errors are swallowed so
// storage failures degrade to a session-only login.
func (s *TokenStore) flush() {
	data, err := json.MarshalIndent(s.persist, "", "  ")
	if err != nil {
		return
	}
	_ = os.MkdirAll(filepath.Dir(s.path), 0o755)
	_ = os.WriteFile(s.path, data, 0o600)
}

// Set stores a value. When remember is true the value goes to the
// persistent store. Otherwise it lives only for this session and any
// previously remembered value under the same key is removed, so a
// fresh non-remembered login can never fall back to a stale token.
func (s *TokenStore) Set(key, value string, remember bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if remember {
		s.persist[key] = value
		s.flush()
		return
	}
	s.session[key] = value
	if _, ok := s.persist[key]; ok {
		delete(s.persist, key)
		s.flush()
	}
}

// Get reads a value, checking the persistent store first and the
// session store second.
func (s *TokenStore) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.persist[key]; ok && v != "" {
		return v
	}
	return s.session[key]
}

// SetAccessCookie mirrors the access token into the cookie slot with
// the standard 30-day expiry.
func (s *TokenStore) SetAccessCookie(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookie = token
	s.cookieExpires = time.Now().Add(CookieMaxAge)
}

// AccessCookie returns the cookie value, or empty if it has expired.
func (s *TokenStore) AccessCookie() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cookie == "" || time.Now().After(s.cookieExpires) {
		return ""
	}
	return s.cookie
}

// AccessToken returns the stored access token from any tier.
func (s *TokenStore) AccessToken() string {
	if t := s.Get(KeyAccessToken); t != "" {
		return t
	}
	return s.AccessCookie()
}

// RefreshToken returns the stored refresh token.
func (s *TokenStore) RefreshToken() string {
	return s.Get(KeyRefreshToken)
}

// Clear removes every artifact from all three tiers. The persistent
// file is rewritten empty rather than deleted so a locked file cannot
// keep stale tokens alive.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.persist = make(map[string]string)
	s.session = make(map[string]string)
	s.cookie = ""
	s.cookieExpires = time.Time{}
	s.flush()
}
