package tui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/transit/internal/install"
	"github.com/aretw0/transit/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournalMarkdown(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	md := JournalMarkdown("op-1", []domain.LogEntry{
		{ElementName: "Site", ElementType: "FolderDef", Action: domain.ActionCreated, Time: at},
		{ElementName: "a|b", ElementType: "Snippet", Action: domain.ActionDeleted, Time: at},
	})

	assert.Contains(t, md, "# Journal `op-1`")
	assert.Contains(t, md, "| 1 | 2026-03-01T10:00:00Z | FolderDef | Site | created |")
	assert.Contains(t, md, `a\|b`)
}

func TestJournalMarkdown_Empty(t *testing.T) {
	assert.Contains(t, JournalMarkdown("op", nil), "_No entries._")
}

func TestReportMarkdown(t *testing.T) {
	tmpl := domain.Key{Type: "Template", ID: "3"}
	page := domain.Key{Type: "Page", ID: "5"}
	r := &install.Report{
		OperationID: "op-2",
		Order:       []domain.Key{tmpl, page},
		Outcomes:    map[domain.Key]domain.Outcome{tmpl: domain.OutcomeApplied, page: domain.OutcomeFailed},
		Errors:      []error{errors.New("missing record file for Page")},
	}

	md := ReportMarkdown(r)
	assert.Contains(t, md, "**1 applied, 1 failed**")
	assert.Contains(t, md, "| 2 | Page | 5 | failed |")
	assert.Contains(t, md, "- missing record file for Page")
}

func TestWrite_PlainWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "# Title\n"))
	assert.Equal(t, "# Title\n", buf.String())
}

func TestOutcomeAndBanner(t *testing.T) {
	assert.True(t, strings.Contains(Outcome(domain.OutcomeFailed), "failed"))

	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|_|")
}
