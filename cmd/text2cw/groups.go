package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quailyquaily/text2cw/internal/clifmt"
	"github.com/quailyquaily/text2cw/internal/content"
	"github.com/quailyquaily/text2cw/internal/settings"
)

const groupsPerLine = 5

func newGroupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Print random groups of five symbols, reproducible with --seed",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := settings.Default()
			charset, _ := cmd.Flags().GetString("charset")
			charset, err := reg.Validate(settings.KeyCharset, charset)
			if err != nil {
				return err
			}
			count, _ := cmd.Flags().GetInt("count")
			countRaw, err := reg.Validate(settings.KeyGroupCount, fmt.Sprint(count))
			if err != nil {
				return err
			}
			values := settings.Values{settings.KeyGroupCount: countRaw}

			seed, _ := cmd.Flags().GetUint64("seed")
			if !cmd.Flags().Changed("seed") {
				seed = content.RandomSeed()
			}
			groups := content.Groups(content.NewRand(seed), charset, values.Int(settings.KeyGroupCount))

			out := cmd.OutOrStdout()
			if !clifmt.IsTerminal(out) {
				_, _ = fmt.Fprintln(out, strings.Join(groups, " "))
				return nil
			}
			st := clifmt.For(out)
			_, _ = fmt.Fprintln(out, st.Headerf("%d groups of %q", len(groups), charset))
			_, _ = fmt.Fprintln(out, st.Dim(fmt.Sprintf("seed %d", seed)))
			for i := 0; i < len(groups); i += groupsPerLine {
				end := min(i+groupsPerLine, len(groups))
				_, _ = fmt.Fprintln(out, strings.Join(groups[i:end], " "))
			}
			return nil
		},
	}
	cmd.Flags().Uint64("seed", 0, "Random seed. The same seed prints the same groups.")
	cmd.Flags().String("charset", "abcdefghijklmnopqrstuvwxyz0123456789", "Symbols to draw from.")
	cmd.Flags().Int("count", 10, "Number of groups.")
	return cmd
}
