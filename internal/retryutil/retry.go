package retryutil

import (
	"context"
	"log/slog"
	"time"

	"github.com/quailyquaily/text2cw/internal/outputfmt"
)

const (
	defaultRetryDelay   = 2 * time.Second
	defaultRetryTimeout = 12 * time.Second
)

// Retry runs fn once more after delay, bounded by timeout. It blocks until the
// retry is done, so the caller's later sends keep their order. Cancelling ctx
// during the delay abandons the retry.
func Retry(ctx context.Context, logger *slog.Logger, name string, delay, timeout time.Duration, fn func(ctx context.Context) error) error {
	if fn == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if delay <= 0 {
		delay = defaultRetryDelay
	}
	if timeout <= 0 {
		timeout = defaultRetryTimeout
	}
	if logger != nil {
		logger.Info(name+"_retry_scheduled", "delay", delay.String(), "timeout", timeout.String())
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	retryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := fn(retryCtx); err != nil {
		if logger != nil {
			logger.Warn(name+"_retry_failed", "error", outputfmt.Error(err))
		}
		return err
	}
	if logger != nil {
		logger.Info(name + "_retry_ok")
	}
	return nil
}
