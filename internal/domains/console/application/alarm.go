package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/Apurer/pos-console/internal/domains/console/domain"
	"github.com/Apurer/pos-console/internal/domains/console/ports"
)

// Alarm drives the single looping cue. At most one playback is active and a
// restart always begins from the start of the sound.
type Alarm struct {
	mu         sync.Mutex
	cue        ports.Cue
	logger     *slog.Logger
	ringing    bool
	primed     bool
	retryArmed bool
}

type AlarmOption func(*Alarm)

func WithAlarmLogger(logger *slog.Logger) AlarmOption {
	return func(a *Alarm) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func NewAlarm(cue ports.Cue, opts ...AlarmOption) *Alarm {
	a := &Alarm{
		cue:    cue,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Start rewinds and loops the cue. Calling it while already ringing restarts
// the sound from zero without issuing a second play.
func (a *Alarm) Start(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cue.SetLoop(true)
	a.cue.SetMuted(false)
	a.cue.Rewind()
	if a.ringing && a.cue.State().Playing {
		return
	}
	a.ringing = true
	a.play(ctx)
}

// Stop pauses and rewinds the cue. It is a no-op when nothing is ringing.
func (a *Alarm) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.retryArmed = false
	if !a.ringing && !a.cue.State().Playing {
		return
	}
	a.ringing = false
	a.cue.Pause()
	a.cue.Rewind()
}

// Gesture is called on every operator interaction. The first one primes the
// cue with a silent play; a blocked alarm is retried once per gesture.
func (a *Alarm) Gesture(ctx context.Context) {
	ctx = ports.WithUserGesture(ctx)
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.primed && !a.ringing {
		a.cue.SetMuted(true)
		if err := a.cue.Play(ctx); err == nil {
			a.primed = true
		} else {
			a.logger.WarnContext(ctx, "alarm priming failed", slog.String("error", err.Error()))
		}
		a.cue.Pause()
		a.cue.SetMuted(false)
		a.cue.Rewind()
	}
	if a.ringing && a.retryArmed {
		a.retryArmed = false
		a.play(ctx)
	}
}

// Status reports the alarm for console views.
func (a *Alarm) Status() domain.AlarmStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	cue := a.cue.State()
	return domain.AlarmStatus{
		Ringing:    a.ringing,
		Playing:    cue.Playing,
		Primed:     a.primed,
		RetryArmed: a.retryArmed,
		Generation: cue.Generation,
	}
}

func (a *Alarm) play(ctx context.Context) {
	err := a.cue.Play(ctx)
	if err == nil {
		a.primed = true
		return
	}
	if errors.Is(err, ports.ErrPlaybackBlocked) {
		a.retryArmed = true
		a.logger.DebugContext(ctx, "alarm playback blocked; waiting for operator gesture")
		return
	}
	a.logger.WarnContext(ctx, "alarm playback failed", slog.String("error", err.Error()))
}
