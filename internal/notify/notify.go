// Package notify defines the fire-and-forget notification boundary. Dispatch
// happens after the triggering state change commits, and the outcome never
// joins back into the primary operation.
package notify

// AcceptedPayload feeds the acceptance email rendered for the user.
type AcceptedPayload struct {
	To          []string `json:"to"`
	AdminEmails []string `json:"admin_emails"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
	Application string   `json:"application"`
	BaseURL     string   `json:"base_url"`
}

// RejectedPayload feeds the rejection email.
type RejectedPayload struct {
	To          []string `json:"to"`
	AdminEmails []string `json:"admin_emails"`
	Name        string   `json:"name"`
	Application string   `json:"application"`
}

// RegisteredPayload feeds the admin notification sent when a new user signs up.
type RegisteredPayload struct {
	To          []string `json:"to"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Agency      string   `json:"agency"`
	Application string   `json:"application"`
	Description string   `json:"description"`
	Roles       []string `json:"roles"`
	AdminURL    string   `json:"admin_url"`
}

// Dispatcher hands notifications off for asynchronous delivery. Implementations
// must not block on delivery and must never return transport failures that
// would roll back the caller's state change; an error here only means the
// message could not even be handed off.
type Dispatcher interface {
	UserAccepted(payload AcceptedPayload) error
	UserRejected(payload RejectedPayload) error
	NewUserRegistered(payload RegisteredPayload) error
}
