package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"csvtojira/api"
	"csvtojira/utils"
)

func newAuthCheckCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "auth-check",
		Short: "JIRA APIの認証情報を確認する",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load(nil)
			if err != nil {
				return err
			}
			if err := cfg.ValidateCredentials(); err != nil {
				return err
			}

			utils.LogInfo("JIRA APIの認証を確認しています...")
			if err := api.NewJiraClient(cfg).CheckAuth(cmd.Context()); err != nil {
				return fmt.Errorf("JIRA認証エラー: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "JIRA認証成功！ 接続先: %s\n", cfg.JiraURL)
			return nil
		},
	}
}
