// internal/session/store.go

// Package session keeps short-lived conversation history per identity in
// Redis, so follow-up messages ("and its payment?") can be resolved even
// when the client sends no explicit context.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"crm-concierge/internal/common/config"
	"crm-concierge/internal/models"
)

const keyPrefix = "concierge:session:"

// Store is the Redis-backed conversation history.
type Store struct {
	client   *redis.Client
	ttl      time.Duration
	maxTurns int
}

func NewStore(client *redis.Client, cfg config.SessionConfig) *Store {
	return &Store{
		client:   client,
		ttl:      time.Duration(cfg.TTLMinutes) * time.Minute,
		maxTurns: cfg.MaxTurns,
	}
}

func key(identity string) string {
	return keyPrefix + identity
}

// Append pushes one turn onto the identity's history, trims to the configured
// window and refreshes the TTL.
func (s *Store) Append(ctx context.Context, identity string, turn models.ContextTurn) error {
	payload, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("marshal turn: %w", err)
	}

	k := key(identity)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, k, payload)
	pipe.LTrim(ctx, k, int64(-s.maxTurns), -1)
	pipe.Expire(ctx, k, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append session turn: %w", err)
	}
	return nil
}

// History returns the identity's stored turns, oldest first. A missing key is
// an empty history, not an error.
func (s *Store) History(ctx context.Context, identity string) ([]models.ContextTurn, error) {
	raw, err := s.client.LRange(ctx, key(identity), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read session history: %w", err)
	}

	turns := make([]models.ContextTurn, 0, len(raw))
	for _, item := range raw {
		var turn models.ContextTurn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			// A corrupt entry is skipped rather than poisoning the session.
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// Clear drops the identity's history.
func (s *Store) Clear(ctx context.Context, identity string) error {
	if err := s.client.Del(ctx, key(identity)).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Render flattens turns into the plain-text block the intent prompt expects.
func Render(turns []models.ContextTurn) string {
	if len(turns) == 0 {
		return ""
	}
	var b strings.Builder
	for _, t := range turns {
		role := t.Role
		if role == "" {
			role = "user"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, t.Message)
	}
	return strings.TrimRight(b.String(), "\n")
}
