package models

import "sort"

// WorkItemType はCSVの「Work Item Type」列で認識される種別です
type WorkItemType string

const (
	TypeEpic    WorkItemType = "Epic"
	TypeStory   WorkItemType = "Story"
	TypeTask    WorkItemType = "Task"
	TypeSubTask WorkItemType = "Sub-Task"
)

// ParseWorkItemType はCSVの種別文字列を解釈します (大文字小文字は区別します)
func ParseWorkItemType(raw string) (WorkItemType, bool) {
	switch raw {
	case "Epic":
		return TypeEpic, true
	case "Story":
		return TypeStory, true
	case "Task":
		return TypeTask, true
	case "Sub-Task", "Sub-task":
		// "Sub-task" はJIRA側の表記
		return TypeSubTask, true
	}
	return "", false
}

// IsStoryOrTask はサブタスクの親になれる種別かどうかを返します
func (t WorkItemType) IsStoryOrTask() bool {
	return t == TypeStory || t == TypeTask
}

// WorkItem はCSVの1行を表します
type WorkItem struct {
	Row         int // CSV本文の1始まりの行番号 (ヘッダーを除く)
	RawType     string
	Type        WorkItemType // 認識できない種別の場合は空
	Title       string
	Description string
	Tags        []string
	Priority    string
	ParentRef   string // 任意の「Parent」列 (親の行番号)
}

// IssueRequest はJIRAのイシュー作成リクエストです
type IssueRequest struct {
	Fields IssueFields `json:"fields"`
}

// IssueFields はイシュー作成時のフィールドです
type IssueFields struct {
	Project     ProjectRef `json:"project"`
	Summary     string     `json:"summary"`
	Description *Document  `json:"description,omitempty"`
	IssueType   NamedRef   `json:"issuetype"`
	Labels      []string   `json:"labels,omitempty"`
	Priority    *NamedRef  `json:"priority,omitempty"`
	Parent      *KeyRef    `json:"parent,omitempty"`
}

// ProjectRef はプロジェクト参照です
type ProjectRef struct {
	Key string `json:"key"`
}

// NamedRef は名前で指定する参照です (イシュータイプ、優先度)
type NamedRef struct {
	Name string `json:"name"`
}

// KeyRef はイシューキーで指定する参照です
type KeyRef struct {
	Key string `json:"key"`
}

// Document はAtlassian Document Format (ADF) のドキュメントです
type Document struct {
	Version int       `json:"version"`
	Type    string    `json:"type"`
	Content []DocNode `json:"content"`
}

// DocNode はADFのノードです
type DocNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text,omitempty"`
	Content []DocNode `json:"content,omitempty"`
}

// IssueMapping はCSV行番号とJIRAキーのマッピングを表します
type IssueMapping map[int]string

// Record は作成に成功した行のキーを記録します
func (m IssueMapping) Record(row int, key string) {
	m[row] = key
}

// Lookup は行番号に対応するキーを返します
func (m IssueMapping) Lookup(row int) (string, bool) {
	key, ok := m[row]
	return key, ok
}

// Rows は記録済みの行番号を昇順で返します
func (m IssueMapping) Rows() []int {
	rows := make([]int, 0, len(m))
	for row := range m {
		rows = append(rows, row)
	}
	sort.Ints(rows)
	return rows
}

// Outcome は1行の処理結果です
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeFailed  Outcome = "failed"
)

// RowResult は1行分のインポート結果です
type RowResult struct {
	Row          int
	Type         string
	Title        string
	Key          string
	ParentKey    string
	Outcome      Outcome
	Transitioned bool
	Warnings     []string
	Err          error
}
