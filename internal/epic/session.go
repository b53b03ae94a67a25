package epic

import "time"

// Session carries an authenticated Epic Games session. It is created by the
// device-code flow (or restored from a saved device auth) and consumed
// read-only by the profile client; one session authorizes one check.
type Session struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccountID        string    `json:"account_id"`
	DisplayName      string    `json:"displayName"`
	ClientID         string    `json:"client_id"`
	ExpiresAt        time.Time `json:"expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// Expired reports whether the access token has passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// tokenResponse is the OAuth token endpoint response shape.
type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	AccountID        string `json:"account_id"`
	DisplayName      string `json:"displayName"`
	ClientID         string `json:"client_id"`
	ExpiresAt        string `json:"expires_at"`
	RefreshExpiresAt string `json:"refresh_expires_at"`

	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// session converts a token response into a Session.
func (t *tokenResponse) session() *Session {
	s := &Session{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		AccountID:    t.AccountID,
		DisplayName:  t.DisplayName,
		ClientID:     t.ClientID,
	}
	if ts, err := time.Parse(time.RFC3339, t.ExpiresAt); err == nil {
		s.ExpiresAt = ts
	}
	if ts, err := time.Parse(time.RFC3339, t.RefreshExpiresAt); err == nil {
		s.RefreshExpiresAt = ts
	}
	return s
}
