package services

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"csvtojira/models"
)

const ruleWidth = 60

// Reporter はインポートの進捗と結果を利用者向けに表示します
type Reporter struct {
	out    io.Writer
	ok     lipgloss.Style
	warn   lipgloss.Style
	fail   lipgloss.Style
	muted  lipgloss.Style
	header lipgloss.Style
}

// NewReporter は新しいReporterを作成します。端末でない出力先では装飾しません。
func NewReporter(w io.Writer) *Reporter {
	r := lipgloss.NewRenderer(w)
	return &Reporter{
		out:    w,
		ok:     r.NewStyle().Foreground(lipgloss.Color("2")),
		warn:   r.NewStyle().Foreground(lipgloss.Color("3")),
		fail:   r.NewStyle().Foreground(lipgloss.Color("1")),
		muted:  r.NewStyle().Faint(true),
		header: r.NewStyle().Bold(true),
	}
}

func (r *Reporter) printf(format string, v ...interface{}) {
	_, _ = fmt.Fprintf(r.out, format, v...)
}

// Start はインポート開始時の見出しを表示します
func (r *Reporter) Start(path string, count int) {
	rule := strings.Repeat("=", ruleWidth)
	r.printf("%s\n%s\n%s\n", rule, r.header.Render("Jira Work Item Import"), rule)
	r.printf("%s\n", r.muted.Render(path))
	r.printf("Found %d work items\n\n", count)
}

// Created はイシュー作成を表示します
func (r *Reporter) Created(result models.RowResult) {
	line := fmt.Sprintf("✓ Created %s: %s - %s", result.Type, result.Key, result.Title)
	if result.ParentKey != "" {
		line += r.muted.Render(fmt.Sprintf(" (parent %s)", result.ParentKey))
	}
	r.printf("%s\n", r.ok.Render(line))
}

// Transitioned はステータス遷移を表示します
func (r *Reporter) Transitioned(issueKey, status string) {
	r.printf("  → Transitioned %s to '%s'\n", issueKey, status)
}

// WouldTransition はdry-runで行われるはずだった遷移を表示します
func (r *Reporter) WouldTransition(issueKey, status string) {
	r.printf("%s\n", r.muted.Render(fmt.Sprintf("  → [dry-run] Would transition %s to '%s'", issueKey, status)))
}

// Warning は行単位の警告を表示します
func (r *Reporter) Warning(row int, msg string) {
	r.printf("%s\n", r.warn.Render(fmt.Sprintf("  ⚠ Row %d: %s", row, msg)))
}

// Failed は行の失敗を表示します
func (r *Reporter) Failed(result models.RowResult) {
	title := result.Title
	if title == "" {
		title = "(no title)"
	}
	r.printf("%s\n", r.fail.Render(fmt.Sprintf("✗ Row %d %s '%s' failed: %v", result.Row, result.Type, title, result.Err)))
}

// Summary は作成済みの行番号 → キーの表と件数を表示します
func (r *Reporter) Summary(summary *ImportSummary) {
	rule := strings.Repeat("=", ruleWidth)
	r.printf("\n%s\n%s\n", rule, r.header.Render("Import Complete!"))
	r.printf("Successfully created %d issues, %d failed\n%s\n", summary.Created(), summary.Failed(), rule)

	if summary.Created() == 0 {
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Row", "Type", "Key")
	for _, result := range summary.Results {
		if result.Outcome != models.OutcomeCreated {
			continue
		}
		t.Row(strconv.Itoa(result.Row), result.Type, result.Key)
	}
	r.printf("\nRow -> Jira Key Mapping:\n%s\n", t.Render())
}
