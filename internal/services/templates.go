package services

import (
	"fmt"
	"strings"

	"github.com/gisgate/backend/internal/notify"
)

// Rendering stays with the delivery side of the boundary; the dispatching
// code only ever sees typed payloads.

func renderAccepted(p notify.AcceptedPayload) (subject, body string) {
	subject = fmt.Sprintf("%s - Access Granted", p.Application)
	body = fmt.Sprintf(`Dear %s,

You have been granted permission to login to the %s.

You can access the %s at %s.

Your user name is: %s
Your assigned role is: %s
Your password is what you provided when you registered.

If you have any questions, you may reply to this email.

Thank you`,
		p.Name, p.Application, p.Application, p.BaseURL, p.Email, strings.Join(p.Roles, ", "))
	return subject, body
}

func renderRejected(p notify.RejectedPayload) (subject, body string) {
	subject = fmt.Sprintf("%s - Access Denied", p.Application)
	body = fmt.Sprintf(`Dear %s,

Your request for access to the %s has been declined.

If you believe this is in error, you may reply to this email to reach the administrators.`,
		p.Name, p.Application)
	return subject, body
}

func renderRegistered(p notify.RegisteredPayload) (subject, body string) {
	subject = fmt.Sprintf("%s - Notification of Registration", p.Description)
	body = fmt.Sprintf(`Dear Admin,

%s from %s has requested access to the %s.

Requestable roles: %s

Use the administration page to accept or reject this request: %s`,
		p.Name, p.Agency, p.Description, strings.Join(p.Roles, ", "), p.AdminURL)
	return subject, body
}
