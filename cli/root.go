// Package cli はjira-importのコマンドラインインターフェースです。
package cli

import (
	"github.com/spf13/cobra"

	"csvtojira/config"
	"csvtojira/utils"
)

// globalOptions は全コマンド共通のフラグです
type globalOptions struct {
	configFile string
	envFile    string
	logLevel   string
}

// load は共通フラグと上書き値から設定を読み込みます
func (o *globalOptions) load(overrides map[string]any) (*config.Config, error) {
	return config.LoadConfig(
		config.WithEnvFile(o.envFile),
		config.WithConfigFile(o.configFile),
		config.WithOverrides(overrides),
	)
}

// NewRootCommand はルートコマンドを作成します
func NewRootCommand(version string) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "jira-import",
		Short: "CSVの作業項目をJIRAにインポートするツール",
		Long: `CSVファイルに記述された作業項目 (Epic → Story/Task → Sub-task) を
JIRAのイシューとして作成し、親子関係・ラベル・優先度を設定した上で
デフォルトステータスへ遷移させます。

環境変数:
  JIRA_URL            JIRA URL (必須)
  JIRA_EMAIL          JIRA APIアカウントのメールアドレス (必須)
  JIRA_API_TOKEN      JIRA APIトークン (必須)
  JIRA_PROJECT_KEY    JIRAプロジェクトキー (必須)
  CSV_FILE            インポートするCSVファイル
  DEFAULT_STATUS      作成後に遷移させるステータス (デフォルト: Pending, 空なら遷移しない)
  DEFAULT_PRIORITY    不正な優先度の代わりに使う優先度 (デフォルト: Medium)
  VALID_PRIORITIES    許可する優先度のカンマ区切りリスト`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			utils.SetLevel(opts.logLevel)
		},
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "設定ファイル (YAML/TOML)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", ".envファイルのパス (デフォルト: カレントディレクトリの.env)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "ログレベル (debug, info, warn, error)")

	root.AddCommand(
		newImportCommand(opts),
		newAuthCheckCommand(opts),
		newConfigCommand(opts),
	)

	return root
}
