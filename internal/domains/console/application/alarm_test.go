package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlarm_StartTwiceKeepsSinglePlayback(t *testing.T) {
	cue := &recordingCue{}
	alarm := NewAlarm(cue)

	alarm.Start(context.Background())
	alarm.Start(context.Background())

	plays, playing, position := cue.counts()
	require.Equal(t, 1, plays)
	require.True(t, playing)
	require.Zero(t, position)
	require.True(t, cue.State().Loop)
	require.True(t, alarm.Status().Ringing)
}

func TestAlarm_StopIsNoopWhenIdle(t *testing.T) {
	cue := &recordingCue{}
	alarm := NewAlarm(cue)

	alarm.Stop()
	require.Zero(t, cue.State().Generation)

	alarm.Start(context.Background())
	alarm.Stop()
	_, playing, position := cue.counts()
	require.False(t, playing)
	require.Zero(t, position)
	require.False(t, alarm.Status().Ringing)
}

func TestAlarm_BlockedPlaybackRetriesOnGesture(t *testing.T) {
	cue := &recordingCue{blockUntil: true}
	alarm := NewAlarm(cue)

	alarm.Start(context.Background())
	status := alarm.Status()
	require.True(t, status.Ringing)
	require.False(t, status.Playing)
	require.True(t, status.RetryArmed)

	alarm.Gesture(context.Background())
	status = alarm.Status()
	require.True(t, status.Playing)
	require.False(t, status.RetryArmed)

	plays, _, _ := cue.counts()
	require.Equal(t, 1, plays)
}

func TestAlarm_GesturePrimesOnceWhileIdle(t *testing.T) {
	cue := &recordingCue{blockUntil: true}
	alarm := NewAlarm(cue)

	alarm.Gesture(context.Background())
	alarm.Gesture(context.Background())

	plays, playing, _ := cue.counts()
	require.Equal(t, 1, plays)
	require.False(t, playing)
	require.False(t, cue.State().Muted)
	require.True(t, alarm.Status().Primed)
}
