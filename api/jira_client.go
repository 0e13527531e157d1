package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"csvtojira/config"
	"csvtojira/models"
	"csvtojira/utils"
)

// JiraClient はJIRA REST API (v3) とのやり取りを処理します
type JiraClient struct {
	config *config.Config
	client *http.Client
}

// NewJiraClient は新しいJIRAクライアントを作成します
func NewJiraClient(cfg *config.Config) *JiraClient {
	return &JiraClient{
		config: cfg,
		client: &http.Client{},
	}
}

type createIssueResponse struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

type transitionsResponse struct {
	Transitions []transition `json:"transitions"`
}

type transition struct {
	ID string `json:"id"`
	To struct {
		Name string `json:"name"`
	} `json:"to"`
}

type transitionRequest struct {
	Transition struct {
		ID string `json:"id"`
	} `json:"transition"`
}

// newRequest は認証ヘッダー付きのリクエストを作成します
func (j *JiraClient) newRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("JSONエンコードエラー: %w", err)
		}
		body = bytes.NewReader(payloadBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, j.config.JiraURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("リクエスト作成エラー: %w", err)
	}

	req.SetBasicAuth(j.config.JiraEmail, j.config.JiraAPIToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do はリクエストを送信し、ステータスコードとレスポンスボディを返します
func (j *JiraClient) do(req *http.Request) (int, []byte, error) {
	resp, err := j.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("リクエスト送信エラー: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("レスポンス読み込みエラー: %w", err)
	}
	utils.LogDebug("%s %s -> %d %s", req.Method, req.URL.Path, resp.StatusCode, string(body))
	return resp.StatusCode, body, nil
}

// CheckAuth はJIRA認証をチェックします
func (j *JiraClient) CheckAuth(ctx context.Context) error {
	req, err := j.newRequest(ctx, http.MethodGet, "/rest/api/3/myself", nil)
	if err != nil {
		return err
	}

	status, body, err := j.do(req)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("認証失敗 (HTTP %d): %s", status, string(body))
	}
	return nil
}

// CreateIssue はJIRAイシューを作成し、イシューキーを返します。
// 失敗した場合はレスポンスボディ付きの*models.CreationErrorを返します。
func (j *JiraClient) CreateIssue(ctx context.Context, issue *models.IssueRequest) (string, error) {
	req, err := j.newRequest(ctx, http.MethodPost, "/rest/api/3/issue", issue)
	if err != nil {
		return "", &models.CreationError{Err: err}
	}

	status, body, err := j.do(req)
	if err != nil {
		return "", &models.CreationError{StatusCode: status, Err: err}
	}
	if status != http.StatusCreated {
		return "", &models.CreationError{StatusCode: status, Body: string(body)}
	}

	var result createIssueResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", &models.CreationError{StatusCode: status, Body: string(body), Err: fmt.Errorf("レスポンス解析エラー: %w", err)}
	}
	if result.Key == "" {
		return "", &models.CreationError{StatusCode: status, Body: string(body), Err: errors.New("イシューキーが見つかりません")}
	}

	return result.Key, nil
}

// GetTransitions はイシューの利用可能なトランジションを取得します (遷移先ステータス名の小文字 → ID)
func (j *JiraClient) GetTransitions(ctx context.Context, issueKey string) (map[string]string, error) {
	req, err := j.newRequest(ctx, http.MethodGet, fmt.Sprintf("/rest/api/3/issue/%s/transitions", issueKey), nil)
	if err != nil {
		return nil, err
	}

	status, body, err := j.do(req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("トランジション取得失敗 (HTTP %d): %s", status, string(body))
	}

	var result transitionsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("レスポンス解析エラー: %w", err)
	}

	transitionMap := make(map[string]string, len(result.Transitions))
	for _, t := range result.Transitions {
		if t.ID == "" || t.To.Name == "" {
			continue
		}
		transitionMap[strings.ToLower(t.To.Name)] = t.ID
	}

	return transitionMap, nil
}

// TransitionIssue はイシューを指定したステータスに遷移させます。
// 失敗はすべて*models.TransitionErrorとして返します。
func (j *JiraClient) TransitionIssue(ctx context.Context, issueKey, targetStatus string) error {
	wrap := func(err error) error {
		return &models.TransitionError{IssueKey: issueKey, Status: targetStatus, Err: err}
	}

	transitions, err := j.GetTransitions(ctx, issueKey)
	if err != nil {
		return wrap(err)
	}

	transitionID, ok := transitions[strings.ToLower(targetStatus)]
	if !ok {
		return wrap(models.ErrTransitionNotAvailable)
	}

	var payload transitionRequest
	payload.Transition.ID = transitionID

	req, err := j.newRequest(ctx, http.MethodPost, fmt.Sprintf("/rest/api/3/issue/%s/transitions", issueKey), payload)
	if err != nil {
		return wrap(err)
	}

	status, body, err := j.do(req)
	if err != nil {
		return wrap(err)
	}
	if status != http.StatusNoContent {
		return wrap(fmt.Errorf("ステータス更新失敗 (HTTP %d): %s", status, string(body)))
	}

	return nil
}
