package ports

import (
	"context"
	"errors"
)

// ErrPlaybackBlocked is returned when the runtime refuses playback without a prior user gesture.
var ErrPlaybackBlocked = errors.New("playback blocked until user gesture")

// CueState describes the audio element as the console should mirror it.
type CueState struct {
	Source  string
	Playing bool
	Loop    bool
	Muted   bool
	// Generation increments on every rewind so views restart from the beginning.
	Generation uint64
}

// Cue is the single loopable alarm sound.
type Cue interface {
	Play(ctx context.Context) error
	Pause()
	Rewind()
	SetLoop(loop bool)
	SetMuted(muted bool)
	State() CueState
}

type gestureKey struct{}

// WithUserGesture marks ctx as running inside an operator click.
func WithUserGesture(ctx context.Context) context.Context {
	return context.WithValue(ctx, gestureKey{}, true)
}

// IsUserGesture reports whether ctx was marked by WithUserGesture.
func IsUserGesture(ctx context.Context) bool {
	v, _ := ctx.Value(gestureKey{}).(bool)
	return v
}
