package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PendingAction is a proposed write tool waiting for the operator to confirm or cancel it.
type PendingAction struct {
	ToolName  string          `json:"tool"`
	Args      json.RawMessage `json:"args"`
	Summary   string          `json:"summary,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

const pendingKeyPrefix = "pending:"

// PendingStore keeps proposed actions in Redis under a TTL so they survive restarts
// and are shared by every server instance.
type PendingStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewPendingStore(rdb redis.Cmdable, ttl time.Duration) *PendingStore {
	return &PendingStore{rdb: rdb, ttl: ttl}
}

// Put stores a under token until the TTL elapses.
func (s *PendingStore) Put(ctx context.Context, token string, a PendingAction) error {
	b, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("pending: encode %s: %w", token, err)
	}
	if err := s.rdb.Set(ctx, pendingKeyPrefix+token, b, s.ttl).Err(); err != nil {
		return fmt.Errorf("pending: store %s: %w", token, err)
	}
	return nil
}

// Take removes and returns the action stored under token.
// A token can be taken once; expired or unknown tokens report found=false.
func (s *PendingStore) Take(ctx context.Context, token string) (PendingAction, bool, error) {
	raw, err := s.rdb.GetDel(ctx, pendingKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return PendingAction{}, false, nil
	}
	if err != nil {
		return PendingAction{}, false, fmt.Errorf("pending: take %s: %w", token, err)
	}
	var a PendingAction
	if err := json.Unmarshal(raw, &a); err != nil {
		return PendingAction{}, false, fmt.Errorf("pending: decode %s: %w", token, err)
	}
	return a, true, nil
}
