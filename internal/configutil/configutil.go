// Package configutil reads a setting from a cobra flag when it was passed on
// the command line, otherwise from viper.
package configutil

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func flagChanged(cmd *cobra.Command, flag string) bool {
	if cmd == nil || flag == "" {
		return false
	}
	f := cmd.Flags().Lookup(flag)
	return f != nil && f.Changed
}

func FlagOrViperString(cmd *cobra.Command, flag, key string) string {
	if flagChanged(cmd, flag) {
		v, _ := cmd.Flags().GetString(flag)
		return v
	}
	return viper.GetString(key)
}

func FlagOrViperInt(cmd *cobra.Command, flag, key string) int {
	if flagChanged(cmd, flag) {
		v, _ := cmd.Flags().GetInt(flag)
		return v
	}
	return viper.GetInt(key)
}

func FlagOrViperDuration(cmd *cobra.Command, flag, key string) time.Duration {
	if flagChanged(cmd, flag) {
		v, _ := cmd.Flags().GetDuration(flag)
		return v
	}
	return viper.GetDuration(key)
}

// FlagOrViperStringArray also splits comma separated entries, so that env
// vars can carry lists.
func FlagOrViperStringArray(cmd *cobra.Command, flag, key string) []string {
	var raw []string
	if flagChanged(cmd, flag) {
		raw, _ = cmd.Flags().GetStringArray(flag)
	} else {
		raw = viper.GetStringSlice(key)
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
