package domain

import "time"

// DownstreamToken is the credential minted by the GIS server for a role.
type DownstreamToken struct {
	Value   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// SessionArtifact is returned to the caller on successful authentication.
type SessionArtifact struct {
	Token      DownstreamToken `json:"token"`
	Email      string          `json:"email"`
	Name       string          `json:"name"`
	Roles      []string        `json:"roles"`
	AdminToken string          `json:"admin_token,omitempty"`
	Ticket     string          `json:"-"`
}

// ContinuationSession is the server-side record backing a remember-me ticket.
// Tickets are self-contained, so sign-out works by deleting this record.
type ContinuationSession struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Application string    `json:"application"`
	Persist     bool      `json:"persist"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// IsExpired reports whether the continuation session has lapsed.
func (s *ContinuationSession) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !s.ExpiresAt.After(reference)
}
