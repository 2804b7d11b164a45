package main

import (
	"github.com/spf13/cobra"

	"github.com/quailyquaily/text2cw/internal/clifmt"
	"github.com/quailyquaily/text2cw/internal/settings"
)

func newSettingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "List the user settings with their defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := settings.Default()
			rows := make([][]string, 0, len(reg.Settings()))
			for _, s := range reg.Settings() {
				rows = append(rows, []string{s.Key, s.Default, s.Help})
			}
			clifmt.PrintTable(cmd.OutOrStdout(), clifmt.Table{
				Title:   "Settings",
				Headers: []string{"KEY", "DEFAULT", "DESCRIPTION"},
				Rows:    rows,
			})
			return nil
		},
	}
}
