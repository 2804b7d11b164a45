package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/quailyquaily/text2cw/internal/bot"
	"github.com/quailyquaily/text2cw/internal/outputfmt"
	"github.com/quailyquaily/text2cw/internal/worker"
)

const msgBusy = "Sorry, I'm still working on your previous messages, try again in a while"

// Handler processes one event. Events of one user are never handled
// concurrently.
type Handler interface {
	HandleEvent(ctx context.Context, ev bot.Event, out bot.Replier)
}

type RunOptions struct {
	PollTimeout    time.Duration
	MaxConcurrency int
	QueueSize      int
	// AllowedUserIDs restricts the bot to these users. Empty allows all.
	AllowedUserIDs map[int64]bool
	Logger         *slog.Logger
}

type job struct {
	chatID int64
	event  bot.Event
}

// Run polls updates until ctx is done. Every message is queued behind the
// previous messages of the same user.
func Run(ctx context.Context, api *Client, h Handler, opts RunOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	me, err := api.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("telegram getMe: %s", outputfmt.Error(err))
	}
	logger.Info("telegram_start",
		"bot_username", me.Username,
		"poll_timeout", opts.PollTimeout.String(),
		"max_concurrency", opts.MaxConcurrency,
		"allowed_users", len(opts.AllowedUserIDs),
	)

	pool := worker.NewPool(ctx, worker.PoolOptions[int64, job]{
		MaxConcurrency: opts.MaxConcurrency,
		QueueSize:      opts.QueueSize,
		Handle: func(ctx context.Context, userID int64, j job) {
			h.HandleEvent(ctx, j.event, &chatReplier{
				api:    api,
				chatID: j.chatID,
				logger: logger.With("user_id", userID, "chat_id", j.chatID),
			})
		},
	})
	defer pool.Close()

	var offset int64
	for {
		updates, nextOffset, err := api.GetUpdates(ctx, offset, opts.PollTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				logger.Info("telegram_stop", "reason", "context_canceled")
				return nil
			}
			if isPollTimeoutError(err) {
				logger.Debug("telegram_get_updates_timeout", "error", outputfmt.Error(err))
			} else {
				logger.Warn("telegram_get_updates_error", "error", outputfmt.Error(err))
			}
			select {
			case <-ctx.Done():
				logger.Info("telegram_stop", "reason", "context_canceled")
				return nil
			case <-time.After(time.Second):
			}
			continue
		}
		offset = nextOffset

		for _, u := range updates {
			j, ok := jobFromUpdate(u)
			if !ok {
				continue
			}
			userID := u.Message.From.ID
			if len(opts.AllowedUserIDs) > 0 && !opts.AllowedUserIDs[userID] {
				logger.Warn("telegram_unauthorized_user", "user_id", userID, "chat_id", j.chatID)
				continue
			}
			err := pool.Submit(userID, j)
			switch {
			case errors.Is(err, worker.ErrQueueFull):
				logger.Warn("telegram_user_busy", "user_id", userID, "chat_id", j.chatID)
				if sendErr := api.SendMessage(ctx, j.chatID, msgBusy, nil); sendErr != nil {
					logger.Warn("telegram_send_error", "chat_id", j.chatID, "error", outputfmt.Error(sendErr))
				}
			case err != nil:
				logger.Info("telegram_stop", "reason", "context_canceled")
				return nil
			}
		}
	}
}

// jobFromUpdate keeps messages sent by people. Messages without text, like
// stickers or photos, become NonText events.
func jobFromUpdate(u Update) (job, bool) {
	msg := u.Message
	if msg == nil || msg.Chat == nil || msg.From == nil || msg.From.IsBot {
		return job{}, false
	}
	text := strings.TrimSpace(msg.Text)
	return job{
		chatID: msg.Chat.ID,
		event: bot.Event{
			UserID:    strconv.FormatInt(msg.From.ID, 10),
			MessageID: strconv.FormatInt(msg.MessageID, 10),
			Text:      text,
			FirstName: strings.TrimSpace(msg.From.FirstName),
			NonText:   text == "",
		},
	}, true
}
