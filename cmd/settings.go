package cmd

import (
	"fmt"

	"github.com/shouni/gemini-studio-kit/internal/config"
	"github.com/shouni/gemini-studio-kit/pkg/domain"
	"github.com/shouni/gemini-studio-kit/pkg/settings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "保存済みのスタイル設定を表示・変更します",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [field]",
	Short: "設定を表示します",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		current := store.Current()
		if len(args) == 1 {
			f, err := domain.ParseField(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), current.Get(f))
			return nil
		}
		return printSettings(cmd, current)
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <field> <value>",
	Short: "設定を1項目保存します",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := domain.ParseField(args[0])
		if err != nil {
			return err
		}
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		next, err := store.Set(f, args[1])
		if err != nil {
			return err
		}
		return printSettings(cmd, next)
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "設定を既定値に戻します",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		next, err := store.Reset()
		if err != nil {
			return err
		}
		return printSettings(cmd, next)
	},
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd, settingsResetCmd)
}

// openStore は API キーを必要としないので、設定ファイルだけを開きます。
func openStore(cmd *cobra.Command) (*settings.Store, error) {
	cfg := config.LoadConfig()
	kv, err := settings.NewFileKV(cfg.SettingsFile)
	if err != nil {
		return nil, err
	}
	store, err := settings.NewStore(kv)
	if err != nil {
		return nil, err
	}
	if _, err := store.Load(cmd.Context()); err != nil {
		return nil, err
	}
	return store, nil
}

func printSettings(cmd *cobra.Command, s domain.Settings) error {
	out, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
