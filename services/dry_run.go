package services

import (
	"context"
	"encoding/json"
	"fmt"

	"csvtojira/models"
	"csvtojira/utils"
)

// DryRunTracker はAPIを呼ばずに仮のキーを払い出すIssueTrackerです
type DryRunTracker struct {
	projectKey string
	next       int
}

// NewDryRunTracker は新しいDryRunTrackerを作成します
func NewDryRunTracker(projectKey string) *DryRunTracker {
	if projectKey == "" {
		projectKey = "DRY"
	}
	return &DryRunTracker{projectKey: projectKey}
}

// CreateIssue はリクエストをデバッグログに出し、仮のキーを返します
func (d *DryRunTracker) CreateIssue(_ context.Context, issue *models.IssueRequest) (string, error) {
	d.next++
	if payload, err := json.MarshalIndent(issue, "", "  "); err == nil {
		utils.LogDebug("dry-run イシュー作成:\n%s", payload)
	}
	return fmt.Sprintf("%s-DRY%d", d.projectKey, d.next), nil
}

// TransitionIssue は何もしません
func (d *DryRunTracker) TransitionIssue(_ context.Context, issueKey, targetStatus string) error {
	utils.LogDebug("dry-run 遷移: %s -> %s", issueKey, targetStatus)
	return nil
}

func isDryRun(tracker IssueTracker) bool {
	_, ok := tracker.(*DryRunTracker)
	return ok
}
