package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/transit/pkg/domain"
	"github.com/aretw0/transit/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// TransactionLog implements ports.TransactionLog as a Redis list per operation.
type TransactionLog struct {
	client      *backend.Client
	prefix      string
	operationID string
	ttl         time.Duration
}

var _ ports.TransactionLog = (*TransactionLog)(nil)

// NewTransactionLog creates a log scoped to operationID.
func NewTransactionLog(client *backend.Client, operationID string, opts ...Option) *TransactionLog {
	o := buildOptions(opts)
	return &TransactionLog{
		client:      client,
		prefix:      o.prefix,
		operationID: operationID,
		ttl:         o.ttl,
	}
}

func (l *TransactionLog) key() string {
	return l.prefix + "journal:" + l.operationID
}

// Append pushes entry at the tail of the list.
func (l *TransactionLog) Append(ctx context.Context, entry domain.LogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}

	pipe := l.client.Pipeline()
	pipe.RPush(ctx, l.key(), data)
	if l.ttl > 0 {
		pipe.Expire(ctx, l.key(), l.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append log entry to redis: %w", err)
	}
	return nil
}

// Entries returns the log in append order.
func (l *TransactionLog) Entries(ctx context.Context) ([]domain.LogEntry, error) {
	vals, err := l.client.LRange(ctx, l.key(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read log from redis: %w", err)
	}

	out := make([]domain.LogEntry, 0, len(vals))
	for _, v := range vals {
		var e domain.LogEntry
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal log entry: %w", err)
		}
		out = append(out, e)
	}
	return out, nil
}
