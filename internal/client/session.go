// Package client is the Go client for the incidenthub API. It keeps the session
// credentials, refreshes them single-flight when the server rejects an expired
// access token, and dials the realtime gateway.
package client

import (
	"sync"
)

// Credentials is the pair issued by login, registration and refresh.
type Credentials struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// SessionState holds the current credentials of one client process.
type SessionState struct {
	mu    sync.RWMutex
	creds *Credentials
}

// NewSessionState creates an empty session.
func NewSessionState() *SessionState {
	return &SessionState{}
}

// Current returns the credentials, or false when the session is empty.
func (s *SessionState) Current() (Credentials, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.creds == nil {
		return Credentials{}, false
	}
	return *s.creds, true
}

// Set replaces the credentials.
func (s *SessionState) Set(creds Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = &creds
}

// Clear empties the session.
func (s *SessionState) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = nil
}
