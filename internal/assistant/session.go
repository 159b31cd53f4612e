package assistant

import (
	"context"
	"errors"
	"strings"
	"time"

	"hearsay/internal/config"
	"hearsay/internal/speech"
	"hearsay/pkg/logging"
)

// WakeWords are the fixed phrases that pull the assistant out of ambient
// listening.
var WakeWords = []string{"assistant", "hey assistant", "ok assistant"}

// IsWake reports whether heard text contains a wake word.
func IsWake(text string) bool {
	for _, w := range WakeWords {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// Session drives the listen/dispatch cycle: an ambient wake-word poll, an
// optional manual trigger, one command listen per activation, strictly
// sequential. It terminates only when the dispatcher signals exit or ctx is
// cancelled.
type Session struct {
	Dispatcher *Dispatcher
	Listener   speech.Listener
	Queue      Sayer

	WakeListen    config.Listen
	CommandListen config.Listen
	ManualListen  config.Listen

	// Trigger delivers manual activations (Enter key). May be nil.
	Trigger <-chan struct{}

	// triggerWait bounds how long an iteration waits on the manual trigger
	// before polling for the wake word again. Zero means 200ms.
	triggerWait time.Duration
}

func (s *Session) waitForTrigger() time.Duration {
	if s.triggerWait > 0 {
		return s.triggerWait
	}
	return 200 * time.Millisecond
}

// Run executes listen/dispatch cycles until exit. Each iteration makes
// exactly one wake-word listen attempt; the wake word and the manual trigger
// are mutually exclusive within an iteration, never raced against each
// other.
func (s *Session) Run(ctx context.Context) error {
	s.Queue.Say(`Assistant is starting. Say "assistant" or press Enter to speak.`)
	logging.Info("session started")

	for {
		if ctx.Err() != nil {
			return nil
		}

		heard := s.listen(ctx, s.WakeListen)
		if IsWake(heard) {
			s.Queue.Say("Yes?")
			if s.command(ctx, s.CommandListen) {
				return nil
			}
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-s.Trigger:
			if !ok {
				// Trigger source closed (stdin gone); keep wake polling.
				s.Trigger = nil
				continue
			}
			s.Queue.Say("Listening for your command.")
			if s.command(ctx, s.ManualListen) {
				return nil
			}
		case <-time.After(s.waitForTrigger()):
		}
	}
}

// command performs one explicit command listen and dispatch. Returns true
// when the dispatcher asked to stop.
func (s *Session) command(ctx context.Context, l config.Listen) bool {
	cmd := s.listen(ctx, l)
	if cmd == "" {
		// Explicit attempt, so the user gets told, unlike ambient polls.
		s.Queue.Say("I did not hear anything.")
		return false
	}
	logging.Info("heard command: %s", cmd)
	return s.Dispatcher.Dispatch(ctx, cmd)
}

// listen wraps one listen attempt. Unavailable recognition is logged and
// treated as silence; the loop carries on.
func (s *Session) listen(ctx context.Context, l config.Listen) string {
	text, err := s.Listener.Listen(ctx, l.Timeout(), l.PhraseLimit())
	if err != nil {
		if errors.Is(err, speech.ErrUnavailable) {
			logging.Error("speech recognition unavailable: %v", err)
		} else if !errors.Is(err, context.Canceled) {
			logging.Error("listen failed: %v", err)
		}
		return ""
	}
	return text
}
