package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime/debug"
	"strings"

	"github.com/quailyquaily/text2cw/internal/content"
	"github.com/quailyquaily/text2cw/internal/cwerr"
	"github.com/quailyquaily/text2cw/internal/dispatch"
	"github.com/quailyquaily/text2cw/internal/feed"
	"github.com/quailyquaily/text2cw/internal/outputfmt"
	"github.com/quailyquaily/text2cw/internal/pdfdoc"
	"github.com/quailyquaily/text2cw/internal/render"
	"github.com/quailyquaily/text2cw/internal/settings"
	"github.com/quailyquaily/text2cw/internal/textproc"
)

// exercise is the text to send in Morse and, for generated content, the
// clear text delivered as solution.
type exercise struct {
	text     string
	solution string
}

func (b *Bot) runTask(ctx context.Context, logger *slog.Logger, ev Event, task dispatch.Task, out Replier) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("task panic: %v\n%s", rec, debug.Stack())
		}
	}()
	rng := b.taskRand()
	ex, err := b.prepare(ctx, rng, task)
	if err != nil {
		return err
	}
	text := textproc.Apply(ex.text, pipelineOptions(task.Settings, rng, task.Kind == dispatch.TaskMessage))
	if strings.TrimSpace(text) == "" {
		b.send(ctx, logger, out, msgEmpty, dispatch.KeyboardKeep)
		return nil
	}

	jobs, err := b.Builder.Build(ev.UserID, ev.MessageID, task.Settings, text)
	if err != nil {
		return err
	}
	err = render.RunAll(ctx, b.Renderer, jobs, func(ctx context.Context, a render.Artifact) error {
		logger.Debug("render_deliver", "title", a.Job.Title, "wpm", a.Job.WPM)
		if a.Job.Format == settings.FormatVoice {
			return out.SendVoice(ctx, a.Path, a.Job.Title)
		}
		return out.SendAudio(ctx, a.Path, a.Job.Title)
	})
	if err != nil {
		if cwerr.IsRenderFailure(err) {
			return err
		}
		// Artifacts were rendered but some could not be sent or removed.
		if errors.Is(err, cwerr.ErrCleanup) {
			logger.Warn("render_cleanup_error", "error", outputfmt.Error(err))
		} else {
			logger.Warn("render_deliver_error", "error", outputfmt.Error(err))
		}
	}
	if ex.solution != "" {
		b.sendSolution(ctx, logger, task.Settings, ex.solution, out)
	}
	return nil
}

func (b *Bot) prepare(ctx context.Context, rng *rand.Rand, task dispatch.Task) (exercise, error) {
	v := task.Settings
	switch task.Kind {
	case dispatch.TaskMessage:
		return exercise{text: task.Text}, nil
	case dispatch.TaskGroups:
		groups := content.Groups(rng, v.String(settings.KeyCharset), v.Int(settings.KeyGroupCount))
		if len(groups) == 0 {
			return exercise{}, fmt.Errorf("%w: empty charset", cwerr.ErrNotFound)
		}
		text := strings.Join(groups, " ")
		return exercise{text: text, solution: text}, nil
	case dispatch.TaskWords:
		lo, hi := v.Pair(settings.KeyWordLen)
		entries, err := b.Dictionary.Anagrams(v.String(settings.KeyCharset), lo, hi)
		if err != nil {
			return exercise{}, err
		}
		text := strings.Join(content.Pick(rng, entries, v.Int(settings.KeyWordCount)), " ")
		return exercise{text: text, solution: text}, nil
	case dispatch.TaskQSO:
		qso := b.QSO
		if qso == nil {
			qso = content.DefaultQSOData()
		}
		text := qso.Random(rng)
		return exercise{text: text, solution: text}, nil
	case dispatch.TaskNews:
		url, err := b.Feeds.Resolve(task.Arg)
		if err != nil {
			return exercise{}, err
		}
		if b.FeedReader == nil {
			return exercise{}, fmt.Errorf("%w: no feed reader", cwerr.ErrFeedUnreadable)
		}
		filter, _ := v.OptString(settings.KeyNewsFilter)
		text, err := b.FeedReader.Get(ctx, url, feed.Options{
			Count:      v.Int(settings.KeyNewsCount),
			Timestamps: v.Bool(settings.KeyNewsTime),
			Filter:     filter,
		})
		if err != nil {
			return exercise{}, err
		}
		return exercise{text: text}, nil
	default:
		return exercise{}, fmt.Errorf("unknown task %q", task.Kind)
	}
}

// pipelineOptions reads the pipeline toggles. Generated content is never
// shuffled.
func pipelineOptions(v settings.Values, rng *rand.Rand, shuffle bool) textproc.Options {
	opts := textproc.Options{
		Simplify: v.Bool(settings.KeySimplify),
		Fold:     v.Bool(settings.KeyNoAccents),
		Numbers:  v.Bool(settings.KeyNumbers),
		Rand:     rng,
	}
	if shuffle {
		opts.Shuffle = v.String(settings.KeyShuffle)
	}
	return opts
}

func (b *Bot) sendSolution(ctx context.Context, logger *slog.Logger, v settings.Values, solution string, out Replier) {
	switch v.String(settings.KeySolution) {
	case settings.SolutionText:
		b.send(ctx, logger, out, solution, dispatch.KeyboardKeep)
	case settings.SolutionPDF:
		title := strings.TrimSpace(strings.ReplaceAll(v.String(settings.KeyTitle), render.WPMToken, ""))
		if title == "" {
			title = "CW Text"
		}
		data, err := pdfdoc.Render(title, solution)
		if err != nil {
			logger.Error("solution_pdf_error", "error", outputfmt.Error(err))
			b.send(ctx, logger, out, solution, dispatch.KeyboardKeep)
			return
		}
		if err := out.SendDocument(ctx, solutionFilename(title), data); err != nil {
			logger.Warn("solution_send_error", "error", outputfmt.Error(err))
		}
	}
}

func solutionFilename(title string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, title)
	return name + ".pdf"
}

// reportError maps task errors to the reply the user sees.
func (b *Bot) reportError(ctx context.Context, logger *slog.Logger, err error, out Replier) {
	var text string
	switch v, isValidation := cwerr.IsValidation(err); {
	case isValidation:
		logger.Info("task_rejected", "key", v.Key, "reason", v.Reason)
		text = v.Reason
	case errors.Is(err, cwerr.ErrFeedUnreadable):
		logger.Warn("feed_unreadable", "error", outputfmt.Error(err))
		text = msgFeedUnreadable
	case errors.Is(err, cwerr.ErrNotFound):
		logger.Info("task_not_found", "error", outputfmt.Error(err))
		text = msgNotFound
	case cwerr.IsRenderFailure(err):
		logger.Error("render_failed", "error", outputfmt.Error(err))
		text = msgRenderFailed
	default:
		logger.Error("task_error", "error", outputfmt.Error(err))
		text = msgFailure
	}
	b.send(ctx, logger, out, text, dispatch.KeyboardMain)
}
