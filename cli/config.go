package cli

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

func newConfigCommand(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "設定を確認する",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "有効な設定をTOML形式で表示する (APIトークンは伏せ字)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load(nil)
			if err != nil {
				return err
			}

			data, err := toml.Marshal(cfg.Redacted())
			if err != nil {
				return fmt.Errorf("TOMLエンコードエラー: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})

	return cmd
}
