package assistant

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"hearsay/internal/config"
	"hearsay/internal/reminder"
	"hearsay/internal/speech"
)

func newTestSession(listener speech.Listener) (*Session, *fakeSayer) {
	sayer := &fakeSayer{}
	d := &Dispatcher{
		Queue:       sayer,
		Listener:    listener,
		Reminders:   reminder.NewStore(time.Second),
		DefaultCity: "new delhi,in",
		OpenBrowser: func(string) error { return nil },
	}
	s := &Session{
		Dispatcher:    d,
		Listener:      listener,
		Queue:         sayer,
		WakeListen:    config.Listen{TimeoutSec: 1, PhraseLimitSec: 1},
		CommandListen: config.Listen{TimeoutSec: 1, PhraseLimitSec: 1},
		ManualListen:  config.Listen{TimeoutSec: 1, PhraseLimitSec: 1},
		triggerWait:   time.Millisecond,
	}
	return s, sayer
}

func TestIsWake(t *testing.T) {
	for _, text := range []string{"assistant", "hey assistant", "ok assistant", "oh assistant are you there"} {
		assert.True(t, IsWake(text), "expected %q to wake", text)
	}
	assert.False(t, IsWake("good morning"))
	assert.False(t, IsWake(""))
}

func TestSession_WakeWordThenCommandThenExit(t *testing.T) {
	listener := &scriptedListener{replies: []string{
		"hey assistant", // wake poll
		"what time is it",
		"assistant", // wake poll again
		"quit",
	}}
	s, sayer := newTestSession(listener)

	err := s.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 4, listener.calls, "no listen cycles may follow exit")
	assert.Contains(t, sayer.said, "Yes?")
	assert.Contains(t, sayer.said, "Goodbye!")
	// The time answer came between the two activations.
	assert.Contains(t, sayer.said[2], "The time is")
}

func TestSession_EmptyCommandSpeaksNotice(t *testing.T) {
	listener := &scriptedListener{replies: []string{
		"assistant",
		"", // command listen times out
		"assistant",
		"exit",
	}}
	s, sayer := newTestSession(listener)

	err := s.Run(context.Background())

	assert.NoError(t, err)
	assert.Contains(t, sayer.said, "I did not hear anything.")
}

func TestSession_AmbientSilenceSaysNothing(t *testing.T) {
	listener := &scriptedListener{replies: []string{
		"",     // ambient wake poll hears nothing: no notice
		"stuff that is not a wake word",
		"assistant",
		"quit",
	}}
	s, sayer := newTestSession(listener)

	err := s.Run(context.Background())

	assert.NoError(t, err)
	assert.NotContains(t, sayer.said, "I did not hear anything.")
}

func TestSession_ManualTrigger(t *testing.T) {
	listener := &scriptedListener{replies: []string{
		"", // wake poll: silence
		"quit",
	}}
	trigger := make(chan struct{}, 1)
	trigger <- struct{}{}
	s, sayer := newTestSession(listener)
	s.Trigger = trigger

	err := s.Run(context.Background())

	assert.NoError(t, err)
	assert.Contains(t, sayer.said, "Listening for your command.")
	assert.Contains(t, sayer.said, "Goodbye!")
}

func TestSession_StopsOnContextCancel(t *testing.T) {
	listener := &scriptedListener{}
	s, _ := newTestSession(listener)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop on context cancel")
	}
}

func TestSession_UnavailableListenerTreatedAsSilence(t *testing.T) {
	calls := 0
	listener := speechListenerFunc(func(ctx context.Context, timeout, limit time.Duration) (string, error) {
		calls++
		switch calls {
		case 1:
			return "", speech.ErrUnavailable
		case 2:
			return "assistant", nil
		default:
			return "quit", nil
		}
	})
	s, sayer := newTestSession(listener)

	err := s.Run(context.Background())

	assert.NoError(t, err)
	assert.Contains(t, sayer.said, "Goodbye!")
}

type speechListenerFunc func(ctx context.Context, timeout, phraseLimit time.Duration) (string, error)

func (f speechListenerFunc) Listen(ctx context.Context, timeout, phraseLimit time.Duration) (string, error) {
	return f(ctx, timeout, phraseLimit)
}
