package redis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/transit/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Journals reads the transaction logs kept in Redis after their operations completed.
type Journals struct {
	client *backend.Client
	prefix string
}

// NewJournals creates a reader over the journal keys of client.
func NewJournals(client *backend.Client, opts ...Option) *Journals {
	o := buildOptions(opts)
	return &Journals{client: client, prefix: o.prefix}
}

// List returns the ids of the operations that have a journal, sorted.
func (j *Journals) List(ctx context.Context) ([]string, error) {
	pattern := j.prefix + "journal:*"
	var ids []string
	iter := j.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), j.prefix+"journal:"))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan journals: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Read returns the entries of one operation's journal.
func (j *Journals) Read(ctx context.Context, operationID string) ([]domain.LogEntry, error) {
	n, err := j.client.Exists(ctx, j.prefix+"journal:"+operationID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check journal: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrJournalNotFound, operationID)
	}
	return NewTransactionLog(j.client, operationID, WithPrefix(j.prefix)).Entries(ctx)
}
