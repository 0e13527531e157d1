package models

import (
	"errors"
	"fmt"
)

// 共通エラー
var (
	ErrParentMissing          = errors.New("parent missing")
	ErrMissingColumn          = errors.New("必須カラムがありません")
	ErrUnknownWorkItemType    = errors.New("不明な作業項目タイプです")
	ErrEmptyTitle             = errors.New("タイトルが空です")
	ErrInvalidParentRef       = errors.New("親の行番号が不正です")
	ErrTransitionNotAvailable = errors.New("指定されたステータスへの遷移が見つかりません")
)

// InputError はCSV全体に関わる致命的な入力エラーです。API呼び出し前に処理を中断します。
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("入力エラー (%s): %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// ValidationError は1行の値が不正な場合のエラーです
type ValidationError struct {
	Row   int
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("行 %d: %s '%s': %v", e.Row, e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// CreationError はイシュー作成APIが失敗した場合のエラーです。
// ネットワーク・認証・バリデーションのいずれの失敗もこの型にまとめます。
type CreationError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *CreationError) Error() string {
	msg := "イシュー作成失敗"
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *CreationError) Unwrap() error {
	return e.Err
}

// TransitionError はステータス遷移の失敗です。警告として扱います。
type TransitionError struct {
	IssueKey string
	Status   string
	Err      error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s を '%s' に遷移できません: %v", e.IssueKey, e.Status, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}
