// Package ticket encodes and decodes the session-continuation artifact handed
// to callers that request a persistent session. Tickets are signed JWTs
// carrying the identity and application; the ticket ID references a
// server-side continuation record so sign-out can revoke it.
package ticket

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/gisgate/backend/domain"
)

// Claims embeds the registered JWT claims plus the application the ticket was
// issued for. Subject carries the normalized email, ID the continuation-record
// key.
type Claims struct {
	jwt.RegisteredClaims
	Application string `json:"app"`
	Persist     bool   `json:"persist"`
}

// Codec signs and validates continuation tickets.
type Codec struct {
	secret       []byte
	issuer       string
	sessionTTL   time.Duration
	persistedTTL time.Duration
}

// NewCodec builds a Codec. The session TTL bounds transient tickets; the
// persisted TTL applies when the caller asked to stay signed in.
func NewCodec(secret, issuer string, sessionTTL, persistedTTL time.Duration) *Codec {
	if sessionTTL <= 0 {
		sessionTTL = time.Hour
	}
	if persistedTTL <= 0 {
		persistedTTL = 30 * 24 * time.Hour
	}
	return &Codec{
		secret:       []byte(secret),
		issuer:       issuer,
		sessionTTL:   sessionTTL,
		persistedTTL: persistedTTL,
	}
}

// TTL returns the lifetime a ticket with the given persist flag receives.
func (c *Codec) TTL(persist bool) time.Duration {
	if persist {
		return c.persistedTTL
	}
	return c.sessionTTL
}

// Issue mints a signed ticket for the identity within the application.
// It returns the opaque ticket and the continuation-record ID it references.
func (c *Codec) Issue(email, application string, persist bool) (opaque string, id string, err error) {
	now := time.Now()
	id = uuid.NewString()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   domain.NormalizeEmail(email),
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.TTL(persist))),
		},
		Application: application,
		Persist:     persist,
	})

	opaque, err = token.SignedString(c.secret)
	if err != nil {
		return "", "", err
	}
	return opaque, id, nil
}

// Decode validates the signature and expiry and returns the embedded claims.
// Any failure maps to the single ticket-invalid outcome; callers never learn
// why a ticket was rejected.
func (c *Codec) Decode(opaque string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(opaque, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrTicketInvalid
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrTicketInvalid
	}
	if claims.Subject == "" || claims.Application == "" {
		return nil, domain.ErrTicketInvalid
	}
	return claims, nil
}
