// Package file persists transaction logs on the local filesystem.
package file

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/transit/pkg/domain"
	"github.com/aretw0/transit/pkg/ports"
)

// DefaultDir is used when no journal directory is configured.
var DefaultDir = filepath.Join(".transit", "journals")

const journalExt = ".jsonl"

// Journal implements ports.TransactionLog as a JSON-lines file.
// Each Append writes one line and syncs it before returning.
type Journal struct {
	path string
	mu   sync.Mutex
}

var _ ports.TransactionLog = (*Journal)(nil)

// NewJournal opens the journal of operationID under dir.
// The file is created lazily on the first Append.
func NewJournal(dir, operationID string) (*Journal, error) {
	if operationID == "" {
		return nil, fmt.Errorf("%w: operation id cannot be empty", domain.ErrIllegalArgument)
	}
	if strings.ContainsAny(operationID, `/\`) || operationID == "." || operationID == ".." {
		return nil, fmt.Errorf("%w: invalid operation id %q", domain.ErrIllegalArgument, operationID)
	}
	if dir == "" {
		dir = DefaultDir
	}
	return &Journal{path: filepath.Join(dir, operationID+journalExt)}, nil
}

// Path returns the file backing the journal.
func (j *Journal) Path() string {
	return j.path
}

// Append writes entry as one line at the end of the journal.
func (j *Journal) Append(ctx context.Context, entry domain.LogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}
	data = append(data, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(j.path), 0755); err != nil {
		return fmt.Errorf("failed to ensure journal directory: %w", err)
	}
	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to append to journal: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to fsync journal: %w", err)
	}
	return f.Close()
}

// Entries reads the journal in append order. A journal never written is empty.
func (j *Journal) Entries(ctx context.Context) ([]domain.LogEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return readEntries(j.path)
}

func readEntries(path string) ([]domain.LogEntry, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return []domain.LogEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer f.Close()

	entries := []domain.LogEntry{}
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var e domain.LogEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("corrupt journal %s at line %d: %w", filepath.Base(path), line, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	return entries, nil
}

// Directory lists and reads the journals stored under one directory.
type Directory struct {
	BasePath string
}

// NewDirectory creates a Directory. If basePath is empty, DefaultDir is used.
func NewDirectory(basePath string) *Directory {
	if basePath == "" {
		basePath = DefaultDir
	}
	return &Directory{BasePath: basePath}
}

// Journal opens the journal of operationID.
func (d *Directory) Journal(operationID string) (*Journal, error) {
	return NewJournal(d.BasePath, operationID)
}

// List returns the operation ids that have a journal, sorted.
func (d *Directory) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(d.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list journals: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, journalExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, journalExt))
	}
	sort.Strings(ids)
	return ids, nil
}

// Read returns the entries of operationID, or domain.ErrJournalNotFound.
func (d *Directory) Read(ctx context.Context, operationID string) ([]domain.LogEntry, error) {
	j, err := d.Journal(operationID)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(j.path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", domain.ErrJournalNotFound, operationID)
	}
	return j.Entries(ctx)
}
