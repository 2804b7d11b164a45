// Package bot runs one inbound event end to end: it loads the session, lets
// the dispatcher decide, persists the result, sends the replies and runs the
// long running task, if any.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"

	"github.com/quailyquaily/text2cw/internal/content"
	"github.com/quailyquaily/text2cw/internal/dispatch"
	"github.com/quailyquaily/text2cw/internal/feed"
	"github.com/quailyquaily/text2cw/internal/outputfmt"
	"github.com/quailyquaily/text2cw/internal/render"
	"github.com/quailyquaily/text2cw/internal/session"
	"github.com/quailyquaily/text2cw/internal/settings"
)

// Replier sends replies to the chat an event came from. Every method may fail
// with a network error; failures are logged and never touch the session.
type Replier interface {
	SendText(ctx context.Context, text string, kb dispatch.Keyboard) error
	SendAudio(ctx context.Context, path, title string) error
	SendVoice(ctx context.Context, path, caption string) error
	SendDocument(ctx context.Context, filename string, data []byte) error
}

// BusyIndicator is implemented by repliers that can show progress while a
// task runs.
type BusyIndicator interface {
	StartBusy(ctx context.Context) (stop func())
}

// FeedGetter is the news collaborator.
type FeedGetter interface {
	Get(ctx context.Context, url string, opts feed.Options) (string, error)
}

// Event is one inbound message.
type Event struct {
	UserID string
	// MessageID tags the artifacts of the event.
	MessageID string
	Text      string
	FirstName string
	NonText   bool
}

type Bot struct {
	Store      *session.Store
	Machine    *dispatch.Machine
	Registry   *settings.Registry
	Builder    render.Builder
	Renderer   render.Renderer
	Feeds      Feeds
	FeedReader FeedGetter
	Dictionary *content.Dictionary
	QSO        *content.QSOData
	Logger     *slog.Logger
	// NewRand returns the random source of one task. Defaults to a randomly
	// seeded PCG.
	NewRand func() *rand.Rand
}

func (b *Bot) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}

func (b *Bot) taskRand() *rand.Rand {
	if b.NewRand != nil {
		return b.NewRand()
	}
	return content.NewRand(content.RandomSeed())
}

// HandleEvent processes ev. Events of one user must not be handled
// concurrently.
func (b *Bot) HandleEvent(ctx context.Context, ev Event, out Replier) {
	reqID := uuid.NewString()
	logger := b.logger().With("request_id", reqID, "user_id", ev.UserID)
	if ev.MessageID == "" {
		ev.MessageID = reqID[:8]
	}

	task, ok := b.dispatch(ctx, logger, ev, out)
	if !ok || task == nil {
		return
	}
	logger = logger.With("task", string(task.Kind))
	logger.Info("task_start")
	if busy, ok := out.(BusyIndicator); ok {
		stop := busy.StartBusy(ctx)
		defer stop()
	}
	if err := b.runTask(ctx, logger, ev, *task, out); err != nil {
		b.reportError(ctx, logger, err, out)
		return
	}
	logger.Info("task_done")
}

func (b *Bot) dispatch(ctx context.Context, logger *slog.Logger, ev Event, out Replier) (*dispatch.Task, bool) {
	sess, err := b.Store.Get(ctx, ev.UserID)
	if err != nil {
		logger.Error("session_load_error", "error", outputfmt.Error(err))
		b.send(ctx, logger, out, msgFailure, dispatch.KeyboardKeep)
		return nil, false
	}
	before := sess.State

	outcome, err := b.handle(sess, dispatch.Input{Text: ev.Text, FirstName: ev.FirstName, NonText: ev.NonText})
	if err != nil {
		logger.Error("dispatch_panic", "state", string(before), "error", outputfmt.Error(err))
		b.send(ctx, logger, out, msgFailure, dispatch.KeyboardKeep)
		return nil, false
	}
	if outcome.NotJoined {
		logger.Debug("session_not_joined")
	} else if err := b.Store.Put(ctx, sess); err != nil {
		logger.Error("session_save_error", "error", outputfmt.Error(err))
		b.send(ctx, logger, out, msgFailure, dispatch.KeyboardKeep)
		return nil, false
	}
	if len(outcome.Migrated) > 0 {
		logger.Info("session_migrated", "keys", strings.Join(outcome.Migrated, ","))
	}
	if before != sess.State {
		logger.Debug("session_state", "from", string(before), "to", string(sess.State))
	}
	for _, r := range outcome.Replies {
		b.send(ctx, logger, out, r.Text, r.Keyboard)
	}
	return outcome.Task, true
}

// handle runs the machine, turning a panic into an error. sess is left
// untouched on panic.
func (b *Bot) handle(sess *session.Session, in dispatch.Input) (outcome dispatch.Outcome, err error) {
	work := sess.Clone()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v\n%s", rec, debug.Stack())
		}
	}()
	outcome = b.Machine.Handle(work, in)
	*sess = *work
	return outcome, nil
}

func (b *Bot) send(ctx context.Context, logger *slog.Logger, out Replier, text string, kb dispatch.Keyboard) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if err := out.SendText(ctx, text, kb); err != nil {
		logger.Warn("reply_send_error", "error", outputfmt.Error(err))
	}
}
