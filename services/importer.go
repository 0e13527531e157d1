package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"csvtojira/config"
	"csvtojira/models"
	"csvtojira/utils"
)

// IssueTracker はイシューの作成とステータス遷移を行う外部サービスです
type IssueTracker interface {
	CreateIssue(ctx context.Context, issue *models.IssueRequest) (string, error)
	TransitionIssue(ctx context.Context, issueKey, targetStatus string) error
}

// ImportService はCSVの作業項目をJIRAにインポートします
type ImportService struct {
	config   *config.Config
	tracker  IssueTracker
	csvProc  *CSVProcessor
	mapper   *FieldMapper
	reporter *Reporter
	dryRun   bool
}

// NewImportService は新しいインポートサービスを作成します
func NewImportService(cfg *config.Config, tracker IssueTracker, csvProc *CSVProcessor, reporter *Reporter) *ImportService {
	return &ImportService{
		config:   cfg,
		tracker:  tracker,
		csvProc:  csvProc,
		mapper:   NewFieldMapper(cfg),
		reporter: reporter,
		dryRun:   isDryRun(tracker),
	}
}

// ImportSummary はインポート全体の結果です
type ImportSummary struct {
	Results []models.RowResult // 行番号順
	Keys    models.IssueMapping
}

// Created は作成に成功した件数を返します
func (s *ImportSummary) Created() int {
	return len(s.Keys)
}

// Failed は失敗した件数を返します
func (s *ImportSummary) Failed() int {
	failed := 0
	for _, r := range s.Results {
		if r.Outcome == models.OutcomeFailed {
			failed++
		}
	}
	return failed
}

// ImportFile はCSVファイルを読み込んでインポートします。
// CSVの構造エラーはAPI呼び出し前に返します。行単位のエラーは結果に記録して処理を続けます。
func (s *ImportService) ImportFile(ctx context.Context, path string) (*ImportSummary, error) {
	startTime := time.Now()
	defer utils.TrackTime(startTime, "イシューインポート")

	items, err := s.csvProc.ReadWorkItems(path)
	if err != nil {
		return nil, fmt.Errorf("CSV読み込みエラー: %w", err)
	}

	s.reporter.Start(path, len(items))
	summary := s.Import(ctx, items)
	s.reporter.Summary(summary)

	if s.config.ReportFile != "" {
		if err := WriteReportFile(s.csvProc, s.config.ReportFile, summary.Results); err != nil {
			return summary, fmt.Errorf("レポート書き込みエラー: %w", err)
		}
		utils.LogInfo("レポートを書き出しました: %s", s.config.ReportFile)
	}

	return summary, nil
}

// Import は作業項目をファイル順に1回だけ処理します。
// 親がまだ処理されていない行は親の完了まで保留し、親が失敗した行は作成せずに失敗として記録します。
func (s *ImportService) Import(ctx context.Context, items []models.WorkItem) *ImportSummary {
	plans := PlanImport(items)

	summary := &ImportSummary{
		Results: make([]models.RowResult, 0, len(plans)),
		Keys:    make(models.IssueMapping),
	}
	finished := make(map[int]bool, len(plans))
	waiting := make(map[int][]ImportPlan)

	for _, plan := range plans {
		queue := []ImportPlan{plan}
		for len(queue) > 0 {
			p := queue[0]
			queue = queue[1:]

			if p.Err == nil && p.ParentRow != 0 && !finished[p.ParentRow] {
				waiting[p.ParentRow] = append(waiting[p.ParentRow], p)
				continue
			}

			summary.Results = append(summary.Results, s.processRow(ctx, p, summary.Keys))
			finished[p.Item.Row] = true

			// 待っていた子を解放する
			queue = append(queue, waiting[p.Item.Row]...)
			delete(waiting, p.Item.Row)
		}
	}

	// 最後まで親が処理されなかった行 (存在しない行や循環参照)
	var orphans []ImportPlan
	for _, children := range waiting {
		orphans = append(orphans, children...)
	}
	sort.Slice(orphans, func(i, j int) bool { return orphans[i].Item.Row < orphans[j].Item.Row })
	for _, p := range orphans {
		result := newRowResult(p.Item)
		summary.Results = append(summary.Results, s.fail(result, fmt.Errorf("親の行 %d が見つかりません: %w", p.ParentRow, models.ErrParentMissing)))
	}

	sort.SliceStable(summary.Results, func(i, j int) bool { return summary.Results[i].Row < summary.Results[j].Row })
	return summary
}

// processRow は1行を作成し、デフォルトステータスへ遷移させます
func (s *ImportService) processRow(ctx context.Context, p ImportPlan, keys models.IssueMapping) models.RowResult {
	item := p.Item
	result := newRowResult(item)

	if p.Err != nil {
		return s.fail(result, p.Err)
	}

	if p.RequiresParent && p.ParentRow == 0 {
		return s.fail(result, fmt.Errorf("親のStory/Taskがありません: %w", models.ErrParentMissing))
	}

	if p.ParentRow != 0 {
		parentKey, ok := keys.Lookup(p.ParentRow)
		if !ok {
			return s.fail(result, fmt.Errorf("親の行 %d が作成されていません: %w", p.ParentRow, models.ErrParentMissing))
		}
		result.ParentKey = parentKey
	}

	issue, warnings, err := s.mapper.Map(item, result.ParentKey)
	if err != nil {
		return s.fail(result, err)
	}
	for _, w := range warnings {
		result.Warnings = append(result.Warnings, w)
		s.reporter.Warning(item.Row, w)
	}

	issueKey, err := s.tracker.CreateIssue(ctx, issue)
	if err != nil {
		return s.fail(result, err)
	}

	keys.Record(item.Row, issueKey)
	result.Key = issueKey
	result.Outcome = models.OutcomeCreated
	s.reporter.Created(result)

	if status := s.config.DefaultStatus; status != "" {
		if err := s.tracker.TransitionIssue(ctx, issueKey, status); err != nil {
			// 遷移できなくてもイシューは初期ステータスのまま残る
			utils.LogWarn("ステータス更新失敗 %s: %v", issueKey, err)
			msg := fmt.Sprintf("Could not transition %s to '%s': %v", issueKey, status, err)
			result.Warnings = append(result.Warnings, msg)
			s.reporter.Warning(item.Row, msg)
		} else if s.dryRun {
			// 実際には遷移していないので結果には記録しない
			s.reporter.WouldTransition(issueKey, status)
		} else {
			result.Transitioned = true
			s.reporter.Transitioned(issueKey, status)
		}
	}

	return result
}

func (s *ImportService) fail(result models.RowResult, err error) models.RowResult {
	result.Outcome = models.OutcomeFailed
	result.Err = err
	utils.LogDebug("行 %d の処理に失敗: %v", result.Row, err)
	s.reporter.Failed(result)
	return result
}

func newRowResult(item models.WorkItem) models.RowResult {
	return models.RowResult{
		Row:   item.Row,
		Type:  item.RawType,
		Title: item.Title,
	}
}
