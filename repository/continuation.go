package repository

import (
	"context"

	"github.com/gisgate/backend/domain"
)

// ContinuationRepository stores the server-side half of remember-me tickets.
// Deleting a record revokes the ticket that references it.
type ContinuationRepository interface {
	Get(ctx context.Context, id string) (*domain.ContinuationSession, error)
	Save(ctx context.Context, session *domain.ContinuationSession) error
	Delete(ctx context.Context, id string) error
}
