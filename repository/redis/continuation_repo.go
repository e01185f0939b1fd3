package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/gisgate/backend/domain"
	"github.com/gisgate/backend/repository"
)

type continuationRepository struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewContinuationRepository creates a Redis-backed store for the server-side
// half of remember-me tickets.
func NewContinuationRepository(client *redislib.Client, defaultTTL time.Duration) repository.ContinuationRepository {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	return &continuationRepository{
		client: client,
		prefix: "continuation:",
		ttl:    defaultTTL,
	}
}

func (r *continuationRepository) Get(ctx context.Context, id string) (*domain.ContinuationSession, error) {
	result, err := r.client.Get(ctx, r.key(id)).Result()
	if err != nil {
		if err == redislib.Nil {
			return nil, domain.ErrTicketInvalid
		}
		return nil, err
	}

	var session domain.ContinuationSession
	if err := json.Unmarshal([]byte(result), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *continuationRepository) Save(ctx context.Context, session *domain.ContinuationSession) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	if session.ExpiresAt.Before(session.CreatedAt) {
		session.ExpiresAt = session.CreatedAt.Add(r.ttl)
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		ttl = r.ttl
	}

	return r.client.Set(ctx, r.key(session.ID), payload, ttl).Err()
}

func (r *continuationRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id)).Err()
}

func (r *continuationRepository) key(id string) string {
	return fmt.Sprintf("%s%s", r.prefix, id)
}
