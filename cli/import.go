package cli

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"csvtojira/api"
	"csvtojira/config"
	"csvtojira/services"
	"csvtojira/utils"
)

var errNoCSVFile = errors.New("CSVファイルが指定されていません (引数または CSV_FILE で指定してください)")

type importOptions struct {
	reportFile      string
	status          string
	defaultPriority string
	projectKey      string
	dryRun          bool
}

func newImportCommand(g *globalOptions) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import [CSVファイル]",
		Short: "CSVの作業項目をJIRAにインポートする",
		Long: `CSVの作業項目をJIRAにインポートします。
同じCSVを2回実行すると、別々のイシューが2セット作成されます (重複チェックは行いません)。`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := map[string]any{}
			if len(args) == 1 {
				overrides[config.KeyCSVFile] = args[0]
			}

			flags := cmd.Flags()
			if flags.Changed("report") {
				overrides[config.KeyReportFile] = opts.reportFile
			}
			if flags.Changed("status") {
				overrides[config.KeyDefaultStatus] = opts.status
			}
			if flags.Changed("default-priority") {
				overrides[config.KeyDefaultPriority] = opts.defaultPriority
			}
			if flags.Changed("project") {
				overrides[config.KeyJiraProjectKey] = opts.projectKey
			}

			cfg, err := g.load(overrides)
			if err != nil {
				return err
			}
			return runImport(cmd.Context(), cmd.OutOrStdout(), cfg, opts.dryRun)
		},
	}

	cmd.Flags().StringVar(&opts.reportFile, "report", "", "行番号とJIRAキーの対応を書き出すファイル (.csv または .yaml)")
	cmd.Flags().StringVar(&opts.status, "status", "", "作成後に遷移させるステータス (空文字で遷移しない)")
	cmd.Flags().StringVar(&opts.defaultPriority, "default-priority", "", "不正な優先度の代わりに使う優先度")
	cmd.Flags().StringVar(&opts.projectKey, "project", "", "JIRAプロジェクトキー")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "APIを呼ばずに変換と親子関係の解決だけを行う")

	return cmd
}

func runImport(ctx context.Context, out io.Writer, cfg *config.Config, dryRun bool) error {
	if cfg.CSVFile == "" {
		return errNoCSVFile
	}

	var tracker services.IssueTracker
	if dryRun {
		utils.LogInfo("dry-run モード: JIRA APIは呼び出しません")
		tracker = services.NewDryRunTracker(cfg.JiraProjectKey)
	} else {
		if err := cfg.Validate(); err != nil {
			return err
		}
		tracker = api.NewJiraClient(cfg)
	}

	csvProc := services.NewCSVProcessor(cfg)
	importService := services.NewImportService(cfg, tracker, csvProc, services.NewReporter(out))

	summary, err := importService.ImportFile(ctx, cfg.CSVFile)
	if err != nil {
		return err
	}
	if summary.Failed() > 0 {
		utils.LogWarn("%d 件の作業項目を作成できませんでした", summary.Failed())
	}
	return nil
}
