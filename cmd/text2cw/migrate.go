package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quailyquaily/text2cw/internal/clifmt"
	"github.com/quailyquaily/text2cw/internal/logutil"
	"github.com/quailyquaily/text2cw/internal/session"
	"github.com/quailyquaily/text2cw/internal/settings"
)

// migration is what changed in one session.
type migration struct {
	userID   string
	added    []string
	pruned   []string
	repaired []string
}

func (m migration) changed() bool {
	return len(m.added)+len(m.pruned)+len(m.repaired) > 0
}

func (m migration) detail() string {
	var parts []string
	if len(m.added) > 0 {
		parts = append(parts, "added "+strings.Join(m.added, ","))
	}
	if len(m.pruned) > 0 {
		parts = append(parts, "removed "+strings.Join(m.pruned, ","))
	}
	if len(m.repaired) > 0 {
		parts = append(parts, "reset "+strings.Join(m.repaired, ","))
	}
	return strings.Join(parts, "; ")
}

// migrateSession backfills, prunes and repairs the settings of sess in place.
func migrateSession(reg *settings.Registry, sess *session.Session) migration {
	m := migration{userID: sess.UserID}
	m.added = sess.Migrate(reg)
	m.pruned = reg.Prune(sess.Settings)
	m.repaired = reg.Repair(sess.Settings)
	return m
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Bring every stored session up to date with the current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			userID, _ := cmd.Flags().GetString("user")

			store, err := openStore(logger)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			reg := settings.Default()
			sessions := session.NewStore(store)

			var targets []*session.Session
			if userID = strings.TrimSpace(userID); userID != "" {
				sess, err := sessions.Lookup(ctx, userID)
				if err != nil {
					return err
				}
				targets = append(targets, sess)
			} else {
				for sess, err := range sessions.All(ctx) {
					if err != nil {
						logger.Warn("session_skip", "error", err.Error())
						continue
					}
					targets = append(targets, sess)
				}
			}

			var rows [][]string
			for _, sess := range targets {
				m := migrateSession(reg, sess)
				if !m.changed() {
					continue
				}
				rows = append(rows, []string{m.userID, m.detail()})
				if dryRun {
					continue
				}
				if err := sessions.Put(ctx, sess); err != nil {
					return fmt.Errorf("save session %s: %w", sess.UserID, err)
				}
				logger.Info("session_migrated", "user_id", sess.UserID, "changes", m.detail())
			}

			out := cmd.OutOrStdout()
			title := "Migrated sessions"
			if dryRun {
				title = "Sessions to migrate"
			}
			clifmt.PrintTable(out, clifmt.Table{
				Title:     title,
				Headers:   []string{"USER", "CHANGES"},
				Rows:      rows,
				EmptyText: "All sessions are up to date.",
			})
			st := clifmt.For(out)
			_, _ = fmt.Fprintf(out, "%s: %d sessions checked\n", st.Success("done"), len(targets))
			return nil
		},
	}
	cmd.Flags().Bool("dry-run", false, "Print the changes without saving them.")
	cmd.Flags().String("user", "", "Migrate only this user id.")
	return cmd
}
