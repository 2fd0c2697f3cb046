package api

import (
	"errors"
	"log/slog"
	"time"

	"github.com/bitop-dev/studio"
	"github.com/bitop-dev/studio/internal/config"
	"github.com/bitop-dev/studio/internal/media"
)

// retryPolicy turns a configured policy into a request override that also
// counts retries.
func (d *Dependencies) retryPolicy(op string, p config.RetryPolicy) *studio.RetryPolicy {
	return &studio.RetryPolicy{
		MaxAttempts: p.MaxAttempts,
		BaseDelay:   p.BaseDelay,
		OnRetry: func(studio.RetryAttempt) {
			if d.Metrics != nil {
				d.Metrics.Retries.WithLabelValues(op).Inc()
			}
		},
	}
}

// observe records the outcome of one remote operation.
func (d *Dependencies) observe(op string, start time.Time, err error) {
	if d.Metrics == nil {
		return
	}
	outcome := "ok"
	switch {
	case err == nil:
	case studio.IsValidation(err):
		outcome = "invalid"
	case studio.IsTransient(err):
		outcome = "rate_limited"
	default:
		outcome = "error"
	}
	d.Metrics.RemoteCalls.WithLabelValues(op, outcome).Inc()
	d.Metrics.RemoteDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// replace releases the handle a client says it no longer displays once its
// successor exists.
func (d *Dependencies) replace(old string) {
	if old == "" || d.Media == nil {
		return
	}
	err := d.Media.Release(media.Handle(old))
	if err != nil && !errors.Is(err, media.ErrNotFound) {
		slog.Warn("release replaced media", slog.String("handle", old), slog.String("error", err.Error()))
	}
}

// show records h as the handle player now displays; the player's slot
// releases whatever it held before. replaces, when set, is released too.
func (d *Dependencies) show(player, replaces, h string) {
	if replaces != h {
		d.replace(replaces)
	}
	if player == "" || h == "" || d.Media == nil {
		return
	}
	v, _ := d.players.LoadOrStore(player, media.NewSlot(d.Media))
	v.(*media.Slot).Replace(media.Handle(h))
}

// releasePlayer drops player's slot and the handle in it. It reports whether
// the player was showing anything.
func (d *Dependencies) releasePlayer(player string) bool {
	v, ok := d.players.LoadAndDelete(player)
	if !ok {
		return false
	}
	slot := v.(*media.Slot)
	showing := slot.Current() != ""
	slot.Release()
	return showing
}

// mediaStore returns the store as a studio.MediaStore, nil when unset.
func (d *Dependencies) mediaStore() studio.MediaStore {
	if d.Media == nil {
		return nil
	}
	return d.Media
}
