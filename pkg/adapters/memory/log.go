package memory

import (
	"context"
	"sync"

	"github.com/aretw0/transit/pkg/domain"
	"github.com/aretw0/transit/pkg/ports"
)

// TransactionLog implements ports.TransactionLog in memory.
type TransactionLog struct {
	entries []domain.LogEntry
	mu      sync.RWMutex
}

var _ ports.TransactionLog = (*TransactionLog)(nil)

// NewTransactionLog creates an empty log.
func NewTransactionLog() *TransactionLog {
	return &TransactionLog{}
}

// Append records entry at the end of the log.
func (l *TransactionLog) Append(ctx context.Context, entry domain.LogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

// Entries returns a copy of the log in append order.
func (l *TransactionLog) Entries(ctx context.Context) ([]domain.LogEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.LogEntry(nil), l.entries...), nil
}
