// Package dispatch sends generated payloads to the target platform one item
// at a time. The platform enforces a low requests/second ceiling and answers
// 403 when it is crossed, so items are paced with a fixed gap and retried
// with a bounded linear backoff. A 401 means the access token died mid-run
// and triggers a refresh before the item is retried.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/relayops/fleetbridge/pkg/constants"
	"github.com/relayops/fleetbridge/pkg/errors"
	"github.com/relayops/fleetbridge/pkg/lockfile"
	"github.com/relayops/fleetbridge/pkg/logging"
)

// TokenSource supplies and refreshes the target platform access token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}

// SendFunc delivers a single item to the target platform.
type SendFunc[T any] func(ctx context.Context, item T) error

// Summary totals the outcome of a dispatch run.
type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Dispatcher sends a batch of items sequentially.
type Dispatcher[T any] struct {
	job      string
	tokens   TokenSource
	send     SendFunc[T]
	label    func(T) string
	lockPath string

	// sleep is swapped in tests
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a dispatcher for the named job.
func New[T any](job string, tokens TokenSource, send SendFunc[T]) *Dispatcher[T] {
	return &Dispatcher[T]{
		job:    job,
		tokens: tokens,
		send:   send,
		label:  func(item T) string { return fmt.Sprintf("%v", item) },
		sleep:  sleepContext,
	}
}

// WithLabel sets how items are described in logs.
func (d *Dispatcher[T]) WithLabel(label func(T) string) *Dispatcher[T] {
	d.label = label
	return d
}

// WithLock makes the run a no-op when another run of the same job holds
// the lock at path.
func (d *Dispatcher[T]) WithLock(path string) *Dispatcher[T] {
	d.lockPath = path
	return d
}

// Run dispatches every item in order. Items that exhaust their retry budget
// are counted as failed and the run moves on; only a dead credential that
// cannot be refreshed, or a canceled context, aborts the run, with all
// unsent items counted as failed.
func (d *Dispatcher[T]) Run(ctx context.Context, items []T) (Summary, error) {
	summary := Summary{Total: len(items)}

	if d.lockPath != "" {
		lock, err := lockfile.Acquire(d.lockPath)
		if err != nil {
			if errors.IsLockHeld(err) {
				logging.Info().Str("job", d.job).Str("lock", d.lockPath).
					Msg("Another run holds the lock, skipping")
			}
			return summary, err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				logging.Warn().Err(err).Str("job", d.job).Msg("Failed to release lock")
			}
		}()
	}

	if len(items) == 0 {
		logging.Info().Str("job", d.job).Msg("Nothing to dispatch")
		return summary, nil
	}

	// Prime the credential so a cold cache fails before anything is sent.
	if _, err := d.tokens.Token(ctx); err != nil {
		summary.Failed = len(items)
		return summary, err
	}

	logging.Info().Str("job", d.job).Int("items", len(items)).Msg("Dispatching")

	for i, item := range items {
		if i > 0 {
			if err := d.sleep(ctx, constants.InterRequestDelay); err != nil {
				summary.Failed = summary.Total - summary.Succeeded
				return summary, err
			}
		}

		err := d.dispatchOne(ctx, item)
		switch {
		case err == nil:
			summary.Succeeded++
		case errors.Is(err, errAbortRun):
			// Credential gone for good. Everything not yet sent fails.
			summary.Failed = summary.Total - summary.Succeeded
			logging.Error().Err(err).Str("job", d.job).
				Int("sent", summary.Succeeded).Msg("Dispatch aborted")
			return summary, err
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			summary.Failed = summary.Total - summary.Succeeded
			return summary, err
		default:
			summary.Failed++
			logging.Error().Err(err).Str("job", d.job).
				Str("item", d.label(item)).Msg("Item failed")
		}
	}

	logging.Info().Str("job", d.job).
		Int("succeeded", summary.Succeeded).Int("failed", summary.Failed).
		Msg("Dispatch finished")
	return summary, nil
}

// errAbortRun marks errors that should stop the whole run.
var errAbortRun = errors.New("dispatch aborted")

func (d *Dispatcher[T]) dispatchOne(ctx context.Context, item T) error {
	authAttempts := 0
	rateAttempts := 0

	for {
		err := d.send(ctx, item)
		if err == nil {
			return nil
		}

		switch {
		case errors.IsUnauthenticated(err):
			authAttempts++
			if authAttempts >= constants.MaxAuthAttempts {
				return err
			}
			logging.Warn().Str("job", d.job).Str("item", d.label(item)).
				Int("attempt", authAttempts).Msg("Token rejected, refreshing")
			if _, refreshErr := d.tokens.Refresh(ctx); refreshErr != nil {
				return fmt.Errorf("%w: %w", errAbortRun, refreshErr)
			}
			if sleepErr := d.sleep(ctx, constants.AuthRetryDelay); sleepErr != nil {
				return sleepErr
			}

		case errors.IsRateLimited(err):
			rateAttempts++
			if rateAttempts >= constants.MaxRateAttempts {
				return err
			}
			backoff := time.Duration(rateAttempts) * constants.RateBackoffStep
			if backoff > constants.MaxRateBackoff {
				backoff = constants.MaxRateBackoff
			}
			logging.Warn().Str("job", d.job).Str("item", d.label(item)).
				Int("attempt", rateAttempts).Dur("backoff", backoff).
				Msg("Rate limited, backing off")
			if sleepErr := d.sleep(ctx, backoff); sleepErr != nil {
				return sleepErr
			}

		default:
			return err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
