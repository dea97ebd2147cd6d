package sound

import (
	"context"
	"sync"

	"github.com/Apurer/pos-console/internal/domains/console/ports"
)

var _ ports.Cue = (*Element)(nil)

// Element models the console's audio element. Views mirror its state and
// play Source locally; the element enforces the autoplay policy so the
// alarm logic behaves the same as in the browser.
type Element struct {
	mu             sync.Mutex
	source         string
	requireGesture bool
	activated      bool
	playing        bool
	loop           bool
	muted          bool
	generation     uint64
}

// Option configures an Element.
type Option func(*Element)

// WithGesturePolicy makes Play fail with ErrPlaybackBlocked until a play happens inside a user gesture.
func WithGesturePolicy(required bool) Option {
	return func(e *Element) {
		e.requireGesture = required
	}
}

// NewElement creates a paused element for the given asset path.
func NewElement(source string, opts ...Option) *Element {
	e := &Element{source: source}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Play starts playback. Activation is sticky once a play succeeds inside a gesture.
func (e *Element) Play(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.requireGesture && !e.activated {
		if !ports.IsUserGesture(ctx) {
			return ports.ErrPlaybackBlocked
		}
		e.activated = true
	}
	e.playing = true
	return nil
}

func (e *Element) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = false
}

func (e *Element) Rewind() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
}

func (e *Element) SetLoop(loop bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loop = loop
}

func (e *Element) SetMuted(muted bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.muted = muted
}

func (e *Element) State() ports.CueState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ports.CueState{
		Source:     e.source,
		Playing:    e.playing,
		Loop:       e.loop,
		Muted:      e.muted,
		Generation: e.generation,
	}
}
