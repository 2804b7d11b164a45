package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quailyquaily/text2cw/internal/bot"
	"github.com/quailyquaily/text2cw/internal/configutil"
	"github.com/quailyquaily/text2cw/internal/content"
	"github.com/quailyquaily/text2cw/internal/dispatch"
	"github.com/quailyquaily/text2cw/internal/feed"
	"github.com/quailyquaily/text2cw/internal/kv"
	"github.com/quailyquaily/text2cw/internal/logutil"
	"github.com/quailyquaily/text2cw/internal/outputfmt"
	"github.com/quailyquaily/text2cw/internal/pathutil"
	"github.com/quailyquaily/text2cw/internal/render"
	"github.com/quailyquaily/text2cw/internal/session"
	"github.com/quailyquaily/text2cw/internal/settings"
	"github.com/quailyquaily/text2cw/internal/statepaths"
	"github.com/quailyquaily/text2cw/internal/telegram"
	"github.com/quailyquaily/text2cw/internal/workdir"
)

func newTelegramCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "telegram",
		Short: "Run the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			token := strings.TrimSpace(configutil.FlagOrViperString(cmd, "telegram-bot-token", "telegram.bot_token"))
			if token == "" {
				return fmt.Errorf("missing telegram.bot_token (set via --telegram-bot-token or TEXT2CW_TELEGRAM_BOT_TOKEN)")
			}

			allowed := make(map[int64]bool)
			for _, s := range configutil.FlagOrViperStringArray(cmd, "telegram-allowed-user-id", "telegram.allowed_user_ids") {
				id, err := strconv.ParseInt(s, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid telegram.allowed_user_ids entry %q: %w", s, err)
				}
				allowed[id] = true
			}

			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := openStore(logger)
			if err != nil {
				return err
			}
			defer store.Close()

			workDir, err := workdir.Ensure(statepaths.FileCacheDir())
			if err != nil {
				return fmt.Errorf("render work dir: %w", err)
			}
			go pruneWorkDir(ctx, logger, workDir)

			b, err := newBot(cmd, logger, store, workDir)
			if err != nil {
				return err
			}

			api := telegram.NewClient(nil, configutil.FlagOrViperString(cmd, "telegram-base-url", "telegram.base_url"), token)
			return telegram.Run(ctx, api, b, telegram.RunOptions{
				PollTimeout:    configutil.FlagOrViperDuration(cmd, "telegram-poll-timeout", "telegram.poll_timeout"),
				MaxConcurrency: configutil.FlagOrViperInt(cmd, "telegram-max-concurrency", "telegram.max_concurrency"),
				QueueSize:      viper.GetInt("telegram.queue_size"),
				AllowedUserIDs: allowed,
				Logger:         logger,
			})
		},
	}

	cmd.Flags().String("telegram-bot-token", "", "Telegram bot token.")
	cmd.Flags().String("telegram-base-url", "", "Telegram Bot API base URL.")
	cmd.Flags().StringArray("telegram-allowed-user-id", nil, "Allowed user id(s). If empty, allows all.")
	cmd.Flags().Duration("telegram-poll-timeout", 30*time.Second, "Long polling timeout for getUpdates.")
	cmd.Flags().Int("telegram-max-concurrency", 3, "Max number of users served at the same time.")
	cmd.Flags().String("render-command", "", "Path of the ebook2cw executable.")
	cmd.Flags().String("render-author", "", "Author tag written in the audio files.")
	cmd.Flags().String("dictionary", "", "Word list used by /words, one word per line.")

	return cmd
}

func newBot(cmd *cobra.Command, logger *slog.Logger, store kv.Store, workDir string) (*bot.Bot, error) {
	reg := settings.Default()
	machine, err := dispatch.New(reg, dispatch.DefaultTable(reg))
	if err != nil {
		return nil, err
	}
	sessions := session.NewStore(store)
	sessions.ValidState = machine.ValidState

	dictPath := configutil.FlagOrViperString(cmd, "dictionary", "dictionary.path")
	dictPath = pathutil.ResolveStateFile(statepaths.FileStateDir(), dictPath)
	dict, err := content.OpenDictionary(dictPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Warn("dictionary_missing", "path", dictPath)
		dict = nil
	case err != nil:
		return nil, fmt.Errorf("dictionary %s: %w", dictPath, err)
	default:
		logger.Info("dictionary_loaded", "path", dictPath, "words", dict.Len())
	}

	qso := content.DefaultQSOData()
	if p := strings.TrimSpace(viper.GetString("qso.corpus")); p != "" {
		p = pathutil.ResolveStateFile(statepaths.FileStateDir(), p)
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("qso corpus: %w", err)
		}
		if qso, err = content.LoadQSOData(data); err != nil {
			return nil, fmt.Errorf("qso corpus %s: %w", p, err)
		}
	}

	reader := feed.NewReader(viper.GetDuration("feed.timeout"))
	return &bot.Bot{
		Store:    sessions,
		Machine:  machine,
		Registry: reg,
		Builder: render.Builder{
			WorkDir: workDir,
			Author:  configutil.FlagOrViperString(cmd, "render-author", "render.author"),
		},
		Renderer:   render.Ebook2CW{Command: configutil.FlagOrViperString(cmd, "render-command", "render.command")},
		Feeds:      bot.Feeds{Default: viper.GetString("feed.default"), URLs: viper.GetStringMapString("feeds")},
		FeedReader: reader,
		Dictionary: dict,
		QSO:        qso,
		Logger:     logger,
	}, nil
}

// pruneWorkDir drops stale artifacts left by crashed renders, at start and
// then every file_cache.prune_interval.
func pruneWorkDir(ctx context.Context, logger *slog.Logger, dir string) {
	limits := workdir.Limits{
		MaxAge:        viper.GetDuration("file_cache.max_age"),
		MaxFiles:      viper.GetInt("file_cache.max_files"),
		MaxTotalBytes: viper.GetInt64("file_cache.max_total_bytes"),
	}
	interval := viper.GetDuration("file_cache.prune_interval")
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		removed, err := workdir.Prune(dir, limits)
		if err != nil {
			logger.Warn("file_cache_prune_error", "dir", dir, "error", outputfmt.Error(err))
		} else if removed > 0 {
			logger.Info("file_cache_pruned", "dir", dir, "removed", removed)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
