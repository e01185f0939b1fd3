package services

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// Sender delivers a rendered notification. Implementations own transport
// details; callers never see partial-delivery state.
type Sender interface {
	Send(ctx context.Context, from string, to []string, subject, body string) error
}

// SMTPSender delivers mail through a plain SMTP relay. Every connection
// carries a deadline so a hung relay fails the delivery instead of stalling
// the drain loop.
type SMTPSender struct {
	addr    string
	timeout time.Duration
}

// NewSMTPSender builds a sender for the given relay host and port.
func NewSMTPSender(host string, port int) *SMTPSender {
	return &SMTPSender{
		addr:    fmt.Sprintf("%s:%d", host, port),
		timeout: 10 * time.Second,
	}
}

func (s *SMTPSender) Send(ctx context.Context, from string, to []string, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	dialer := &net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return err
	}

	deadline := time.Now().Add(s.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	host, _, err := net.SplitHostPort(s.addr)
	if err != nil {
		host = s.addr
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(msg.String())); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
