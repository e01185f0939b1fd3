package domain

import (
	"strings"
	"time"
)

// User is an identity scoped to a single application (tenant).
type User struct {
	ID           string        `json:"id"`
	Email        string        `json:"email"`
	Name         string        `json:"name"`
	Agency       string        `json:"agency,omitempty"`
	Application  string        `json:"application"`
	Roles        []string      `json:"roles"`
	Approved     bool          `json:"approved"`
	Active       bool          `json:"active"`
	Access       *AccessWindow `json:"access,omitempty"`
	AdminToken   string        `json:"-"`
	PasswordHash string        `json:"-"`
	Salt         string        `json:"-"`
	LastLoginAt  time.Time     `json:"last_login_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// NormalizeEmail lowercases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeRoles lowercases every role name, dropping empties.
func NormalizeRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.ToLower(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

// HasRole reports whether the user has been granted the named role.
func (u *User) HasRole(role string) bool {
	if u == nil {
		return false
	}
	role = strings.ToLower(role)
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// PrimaryRole is the role a downstream token is requested for.
func (u *User) PrimaryRole() string {
	if u == nil || len(u.Roles) == 0 {
		return ""
	}
	return u.Roles[0]
}

// IsAuthorized reports whether the user may authenticate at all.
func (u *User) IsAuthorized() bool {
	return u != nil && u.Approved && u.Active
}
