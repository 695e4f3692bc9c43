package main

import (
	"context"

	"github.com/aretw0/transit/pkg/adapters/file"
	"github.com/aretw0/transit/pkg/adapters/redis"
	"github.com/aretw0/transit/pkg/domain"
)

// journalSource lists and reads import journals.
type journalSource interface {
	List(ctx context.Context) ([]string, error)
	Read(ctx context.Context, operationID string) ([]domain.LogEntry, error)
}

// journals returns the Redis journals when Redis is configured, the journal
// directory otherwise.
func journals() journalSource {
	if cfg.Redis.Addr == "" {
		return file.NewDirectory(cfg.JournalDir)
	}
	client := redis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	return redis.NewJournals(client, redis.WithPrefix(cfg.Redis.Prefix))
}
