package transport

// LoginRequest authenticates a user against an application.
type LoginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Application string `json:"application"`
	Persist     bool   `json:"persist"`
}

// RegisterRequest creates a pending user within an application.
type RegisterRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Agency      string `json:"agency"`
	Password    string `json:"password"`
	Application string `json:"application"`
	AccessStart string `json:"access_start,omitempty"`
	AccessEnd   string `json:"access_end,omitempty"`
}

// AcceptRequest approves a pending user and grants roles.
type AcceptRequest struct {
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
	Application string   `json:"application"`
}

// RejectRequest declines a pending user.
type RejectRequest struct {
	Email       string `json:"email"`
	Application string `json:"application"`
}

// CreateApplicationRequest provisions the configuration record for a tenant.
type CreateApplicationRequest struct {
	Application    string   `json:"application"`
	AdminEmails    []string `json:"admin_emails"`
	Description    string   `json:"description"`
	Roles          []string `json:"roles"`
	UsersCanExpire bool     `json:"users_can_expire"`
}

// ChangePasswordRequest rotates a user's credential.
type ChangePasswordRequest struct {
	Email               string `json:"email"`
	Application         string `json:"application"`
	CurrentPassword     string `json:"current_password"`
	NewPassword         string `json:"new_password"`
	NewPasswordRepeated string `json:"new_password_repeated"`
}

// ChangeEmailRequest moves an account to a new address.
type ChangeEmailRequest struct {
	Email       string `json:"email"`
	NewEmail    string `json:"new_email"`
	Password    string `json:"password"`
	Application string `json:"application"`
}
