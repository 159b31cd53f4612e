package speech

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable signals that the recognition service cannot be reached at
// all (no network, no microphone). Callers log it and carry on as if nothing
// was heard.
var ErrUnavailable = errors.New("speech service unavailable")

// Speaker turns text into audible speech. Implementations block until
// playback finishes; callers that must not block go through a Queue.
type Speaker interface {
	Speak(text string) error
}

// Listener captures one utterance and returns the recognized text,
// lowercased. It returns "" on timeout or unrecognized speech, and
// ErrUnavailable when the recognition backend is unreachable.
type Listener interface {
	Listen(ctx context.Context, timeout, phraseLimit time.Duration) (string, error)
}

// SpeakerFunc adapts a plain function to the Speaker interface.
type SpeakerFunc func(text string) error

func (f SpeakerFunc) Speak(text string) error { return f(text) }
