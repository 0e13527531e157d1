package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 設定キー (環境変数名は大文字にしたもの)
const (
	KeyJiraURL         = "jira_url"
	KeyJiraEmail       = "jira_email"
	KeyJiraAPIToken    = "jira_api_token"
	KeyJiraProjectKey  = "jira_project_key"
	KeyCSVFile         = "csv_file"
	KeyReportFile      = "report_file"
	KeyDefaultStatus   = "default_status"
	KeyDefaultPriority = "default_priority"
	KeyValidPriorities = "valid_priorities"
	KeyIssueTypeEpic   = "issue_type_epic"
	KeyIssueTypeStory  = "issue_type_story"
	KeyIssueTypeTask   = "issue_type_task"
	KeyIssueTypeSub    = "issue_type_subtask"
)

const (
	DefaultStatus   = "Pending"
	DefaultPriority = "Medium"
)

// DefaultValidPriorities はデフォルトの優先度許可リストです
var DefaultValidPriorities = []string{"Critical", "Trivial", "High", "Low", "Medium"}

// ErrMissingSetting は必須設定が未設定の場合のエラーです
var ErrMissingSetting = errors.New("必須設定がありません")

// Config はアプリケーション全体の設定を保持します。起動時に一度だけ読み込み、以後は変更しません。
type Config struct {
	// JIRA API設定
	JiraURL        string `toml:"jira_url"`
	JiraEmail      string `toml:"jira_email"`
	JiraAPIToken   string `toml:"jira_api_token"`
	JiraProjectKey string `toml:"jira_project_key"`

	// ファイルパス
	CSVFile    string `toml:"csv_file"`
	ReportFile string `toml:"report_file"`

	// インポート設定
	DefaultStatus   string   `toml:"default_status"`
	DefaultPriority string   `toml:"default_priority"`
	ValidPriorities []string `toml:"valid_priorities"`

	// CSVの種別に対応するJIRAイシュータイプ名
	EpicType    string `toml:"issue_type_epic"`
	StoryType   string `toml:"issue_type_story"`
	TaskType    string `toml:"issue_type_task"`
	SubTaskType string `toml:"issue_type_subtask"`
}

type loadSettings struct {
	envFile    string
	configFile string
	overrides  map[string]any
}

// Option はLoadConfigの動作を変更します
type Option func(*loadSettings)

// WithEnvFile は読み込む.envファイルを指定します
func WithEnvFile(path string) Option {
	return func(s *loadSettings) {
		s.envFile = path
	}
}

// WithConfigFile は設定ファイル (YAML/TOML) を指定します
func WithConfigFile(path string) Option {
	return func(s *loadSettings) {
		s.configFile = path
	}
}

// WithOverrides はコマンドラインフラグの値で設定を上書きします
func WithOverrides(overrides map[string]any) Option {
	return func(s *loadSettings) {
		s.overrides = overrides
	}
}

// LoadConfig は設定を読み込みます。
// 優先順位: デフォルト < 設定ファイル < 環境変数 (.env含む) < 上書き
func LoadConfig(opts ...Option) (*Config, error) {
	settings := loadSettings{}
	for _, opt := range opts {
		opt(&settings)
	}

	// .envファイルを読み込む (既存の環境変数は上書きしない)
	if err := loadEnvFile(settings.envFile); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if settings.configFile != "" {
		v.SetConfigFile(settings.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("設定ファイル読み込みエラー (%s): %w", settings.configFile, err)
		}
	}

	for k, val := range settings.overrides {
		v.Set(k, val)
	}

	config := &Config{
		JiraURL:         strings.TrimRight(strings.TrimSpace(v.GetString(KeyJiraURL)), "/"),
		JiraEmail:       strings.TrimSpace(v.GetString(KeyJiraEmail)),
		JiraAPIToken:    strings.TrimSpace(v.GetString(KeyJiraAPIToken)),
		JiraProjectKey:  strings.TrimSpace(v.GetString(KeyJiraProjectKey)),
		CSVFile:         v.GetString(KeyCSVFile),
		ReportFile:      v.GetString(KeyReportFile),
		DefaultStatus:   defaultStatus(v, settings.overrides),
		DefaultPriority: strings.TrimSpace(v.GetString(KeyDefaultPriority)),
		ValidPriorities: getStringList(v, KeyValidPriorities),
		EpicType:        v.GetString(KeyIssueTypeEpic),
		StoryType:       v.GetString(KeyIssueTypeStory),
		TaskType:        v.GetString(KeyIssueTypeTask),
		SubTaskType:     v.GetString(KeyIssueTypeSub),
	}

	return config, nil
}

// defaultStatus は遷移先ステータスを返します。
// viperは空の環境変数を未設定扱いにするため、DEFAULT_STATUS= (遷移しない) はここで拾います。
func defaultStatus(v *viper.Viper, overrides map[string]any) string {
	if _, ok := overrides[KeyDefaultStatus]; !ok {
		if val, set := os.LookupEnv(strings.ToUpper(KeyDefaultStatus)); set {
			return strings.TrimSpace(val)
		}
	}
	return strings.TrimSpace(v.GetString(KeyDefaultStatus))
}

// ValidateCredentials は接続に必要な設定を確認します
func (c *Config) ValidateCredentials() error {
	return missingError(c.missingCredentials())
}

// Validate はインポートに必要な設定をまとめて確認します
func (c *Config) Validate() error {
	missing := c.missingCredentials()
	if c.JiraProjectKey == "" {
		missing = append(missing, "JIRA_PROJECT_KEY")
	}
	return missingError(missing)
}

func (c *Config) missingCredentials() []string {
	var missing []string
	if c.JiraURL == "" {
		missing = append(missing, "JIRA_URL")
	}
	if c.JiraEmail == "" {
		missing = append(missing, "JIRA_EMAIL")
	}
	if c.JiraAPIToken == "" {
		missing = append(missing, "JIRA_API_TOKEN")
	}
	return missing
}

func missingError(missing []string) error {
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingSetting, strings.Join(missing, ", "))
	}
	return nil
}

// IsValidPriority は優先度が許可リストに含まれるかどうかを返します
func (c *Config) IsValidPriority(priority string) bool {
	for _, p := range c.ValidPriorities {
		if p == priority {
			return true
		}
	}
	return false
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyJiraURL, "")
	v.SetDefault(KeyJiraEmail, "")
	v.SetDefault(KeyJiraAPIToken, "")
	v.SetDefault(KeyJiraProjectKey, "")
	v.SetDefault(KeyCSVFile, "")
	v.SetDefault(KeyReportFile, "")
	v.SetDefault(KeyDefaultStatus, DefaultStatus)
	v.SetDefault(KeyDefaultPriority, DefaultPriority)
	v.SetDefault(KeyValidPriorities, DefaultValidPriorities)
	v.SetDefault(KeyIssueTypeEpic, "Epic")
	v.SetDefault(KeyIssueTypeStory, "Story")
	v.SetDefault(KeyIssueTypeTask, "Task")
	v.SetDefault(KeyIssueTypeSub, "Sub-task")
}

func loadEnvFile(path string) error {
	if path == "" {
		// カレントディレクトリの.envは任意
		_ = godotenv.Load()
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf(".envファイルが見つかりません: %s", path)
		}
		return fmt.Errorf(".envファイル読み込みエラー: %w", err)
	}
	return nil
}

// 環境変数ではカンマ区切り、設定ファイルでは配列を受け付ける
func getStringList(v *viper.Viper, key string) []string {
	var items []string
	switch raw := v.Get(key).(type) {
	case string:
		items = strings.Split(raw, ",")
	default:
		items = v.GetStringSlice(key)
	}

	result := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}

// Redacted はAPIトークンを伏せた設定のコピーを返します
func (c *Config) Redacted() Config {
	cp := *c
	cp.ValidPriorities = append([]string(nil), c.ValidPriorities...)
	if cp.JiraAPIToken != "" {
		cp.JiraAPIToken = "********"
	}
	return cp
}
