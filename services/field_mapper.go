package services

import (
	"fmt"
	"strings"

	"csvtojira/config"
	"csvtojira/models"
)

// FieldMapper は作業項目をJIRAのイシュー作成リクエストに変換します。副作用はありません。
type FieldMapper struct {
	config *config.Config
}

// NewFieldMapper は新しいFieldMapperを作成します
func NewFieldMapper(cfg *config.Config) *FieldMapper {
	return &FieldMapper{config: cfg}
}

// Map は作業項目からリクエストを組み立てます。
// 優先度を置き換えた場合は警告を返します。種別やタイトルが不正な場合は*models.ValidationErrorを返します。
func (m *FieldMapper) Map(item models.WorkItem, parentKey string) (*models.IssueRequest, []string, error) {
	issueType, err := m.IssueTypeName(item)
	if err != nil {
		return nil, nil, err
	}
	if item.Title == "" {
		return nil, nil, &models.ValidationError{Row: item.Row, Field: ColumnTitle, Err: models.ErrEmptyTitle}
	}

	priority, warning := m.resolvePriority(item.Priority)
	var warnings []string
	if warning != "" {
		warnings = append(warnings, warning)
	}

	issue := &models.IssueRequest{
		Fields: models.IssueFields{
			Project:     models.ProjectRef{Key: m.config.JiraProjectKey},
			Summary:     item.Title,
			Description: BuildDescription(item.Description),
			IssueType:   models.NamedRef{Name: issueType},
			Labels:      BuildLabels(item.Tags),
		},
	}
	if priority != "" {
		issue.Fields.Priority = &models.NamedRef{Name: priority}
	}
	if parentKey != "" {
		issue.Fields.Parent = &models.KeyRef{Key: parentKey}
	}

	return issue, warnings, nil
}

// IssueTypeName はCSVの種別に対応するJIRAのイシュータイプ名を返します
func (m *FieldMapper) IssueTypeName(item models.WorkItem) (string, error) {
	switch item.Type {
	case models.TypeEpic:
		return m.config.EpicType, nil
	case models.TypeStory:
		return m.config.StoryType, nil
	case models.TypeTask:
		return m.config.TaskType, nil
	case models.TypeSubTask:
		return m.config.SubTaskType, nil
	}
	return "", &models.ValidationError{
		Row:   item.Row,
		Field: ColumnWorkItemType,
		Value: item.RawType,
		Err:   models.ErrUnknownWorkItemType,
	}
}

// 許可リスト外の値は設定されたデフォルトに置き換える。空の場合は警告なしでデフォルトを使う。
func (m *FieldMapper) resolvePriority(priority string) (string, string) {
	if priority == "" {
		return m.config.DefaultPriority, ""
	}
	if m.config.IsValidPriority(priority) {
		return priority, ""
	}
	return m.config.DefaultPriority,
		fmt.Sprintf("Invalid priority '%s', using default: %s", priority, m.config.DefaultPriority)
}

// BuildDescription はプレーンテキストを1段落のADFドキュメントに変換します。空の場合はnilです。
func BuildDescription(text string) *models.Document {
	if text == "" {
		return nil
	}
	return &models.Document{
		Version: 1,
		Type:    "doc",
		Content: []models.DocNode{
			{
				Type:    "paragraph",
				Content: []models.DocNode{{Type: "text", Text: text}},
			},
		},
	}
}

// BuildLabels はタグをJIRAラベルに変換します。
// JIRAのラベルは空白を含められないため「_」に置き換え、重複は最初の出現のみ残します。
func BuildLabels(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	labels := make([]string, 0, len(tags))
	for _, tag := range tags {
		label := strings.ReplaceAll(strings.TrimSpace(tag), " ", "_")
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}
	if len(labels) == 0 {
		return nil
	}
	return labels
}
