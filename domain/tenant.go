package domain

import "strings"

// TenantConfig holds the per-application settings read on every login.
type TenantConfig struct {
	Application          string   `json:"application"`
	AdministrativeEmails []string `json:"administrative_emails"`
	Description          string   `json:"description,omitempty"`
	Roles                []string `json:"roles"`
	UsersCanExpire       bool     `json:"users_can_expire"`
}

// HasRole reports whether the tenant defines the named role.
func (c *TenantConfig) HasRole(role string) bool {
	if c == nil {
		return false
	}
	role = strings.ToLower(role)
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}
