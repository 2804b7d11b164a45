package telegram

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/quailyquaily/text2cw/internal/dispatch"
	"github.com/quailyquaily/text2cw/internal/outputfmt"
	"github.com/quailyquaily/text2cw/internal/retryutil"
)

const busyActionInterval = 4 * time.Second

// chatReplier sends the replies of one event to its chat.
type chatReplier struct {
	api    *Client
	chatID int64
	logger *slog.Logger
}

// SendText retries once when Telegram asks to slow down. The retry blocks so
// that texts and the audio after them arrive in order.
func (r *chatReplier) SendText(ctx context.Context, text string, kb dispatch.Keyboard) error {
	markup := markupFor(kb)
	err := r.api.SendMessage(ctx, r.chatID, text, markup)
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.Retryable() {
		return retryutil.Retry(ctx, r.logger, "telegram_send_message", reqErr.RetryAfter, 0, func(ctx context.Context) error {
			return r.api.SendMessage(ctx, r.chatID, text, markup)
		})
	}
	return err
}

func (r *chatReplier) SendAudio(ctx context.Context, path, title string) error {
	return r.api.SendAudio(ctx, r.chatID, path, title)
}

func (r *chatReplier) SendVoice(ctx context.Context, path, caption string) error {
	return r.api.SendVoice(ctx, r.chatID, path, caption)
}

func (r *chatReplier) SendDocument(ctx context.Context, filename string, data []byte) error {
	return r.api.SendDocument(ctx, r.chatID, filename, data)
}

// StartBusy shows "sending audio" in the chat until the returned func is
// called.
func (r *chatReplier) StartBusy(ctx context.Context) func() {
	if ctx == nil {
		ctx = context.Background()
	}
	ticker := time.NewTicker(busyActionInterval)
	done := make(chan struct{})
	send := func() {
		if err := r.api.SendChatAction(ctx, r.chatID, "upload_voice"); err != nil {
			r.logger.Debug("telegram_chat_action_error", "error", outputfmt.Error(err))
		}
	}
	go func() {
		send()
		for {
			select {
			case <-ticker.C:
				send()
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return func() {
		select {
		case <-done:
		default:
			close(done)
		}
		ticker.Stop()
	}
}
