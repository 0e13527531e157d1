package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"csvtojira/models"
)

func TestReporter_EventLines(t *testing.T) {
	var out bytes.Buffer
	r := NewReporter(&out)

	r.Start("items.csv", 3)
	r.Created(models.RowResult{Row: 2, Type: "Story", Key: "PROJ-2", Title: "Login", ParentKey: "PROJ-1"})
	r.Transitioned("PROJ-2", "Pending")
	r.WouldTransition("PROJ-DRY2", "Pending")
	r.Warning(2, "Invalid priority 'Urgent', using default: Medium")
	r.Failed(models.RowResult{Row: 3, Type: "Sub-Task", Err: models.ErrParentMissing})

	s := out.String()
	assert.Contains(t, s, "Found 3 work items")
	assert.Contains(t, s, "✓ Created Story: PROJ-2 - Login (parent PROJ-1)")
	assert.Contains(t, s, "→ Transitioned PROJ-2 to 'Pending'")
	assert.Contains(t, s, "→ [dry-run] Would transition PROJ-DRY2 to 'Pending'")
	assert.Contains(t, s, "⚠ Row 2: Invalid priority 'Urgent'")
	assert.Contains(t, s, "✗ Row 3 Sub-Task '(no title)' failed: parent missing")
	// バッファへの出力には色を付けない
	assert.NotContains(t, s, "\x1b[")
}

func TestReporter_Summary(t *testing.T) {
	var out bytes.Buffer
	r := NewReporter(&out)

	summary := &ImportSummary{
		Results: []models.RowResult{
			{Row: 1, Type: "Epic", Key: "PROJ-1", Outcome: models.OutcomeCreated},
			{Row: 2, Type: "Story", Outcome: models.OutcomeFailed, Err: models.ErrParentMissing},
			{Row: 10, Type: "Task", Key: "PROJ-2", Outcome: models.OutcomeCreated},
		},
		Keys: models.IssueMapping{1: "PROJ-1", 10: "PROJ-2"},
	}
	r.Summary(summary)

	s := out.String()
	assert.Contains(t, s, "Successfully created 2 issues, 1 failed")
	assert.Contains(t, s, "Row -> Jira Key Mapping:")
	assert.Contains(t, s, "PROJ-1")
	assert.Contains(t, s, "PROJ-2")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("PROJ-1")), bytes.Index(out.Bytes(), []byte("PROJ-2")))
}

func TestReporter_SummaryWithoutCreatedRows(t *testing.T) {
	var out bytes.Buffer
	NewReporter(&out).Summary(&ImportSummary{Keys: models.IssueMapping{}})

	assert.Contains(t, out.String(), "Successfully created 0 issues, 0 failed")
	assert.NotContains(t, out.String(), "Mapping")
}
