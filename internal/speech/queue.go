package speech

import (
	"context"
	"time"

	"hearsay/pkg/logging"
)

type utterance struct {
	text  string
	pause time.Duration
}

// Queue serializes speech output. Callers submit utterances without
// blocking; a single worker goroutine plays them in submission order, so
// related utterances (a headline list, a reminder burst) never talk over
// each other. A Speaker failure on one utterance is logged and the next one
// still plays.
type Queue struct {
	speaker  Speaker
	items    chan utterance
	observer func(text string)
	done     chan struct{}
}

// NewQueue creates a Queue feeding the given Speaker. Start must be called
// before utterances play.
func NewQueue(speaker Speaker) *Queue {
	return &Queue{
		speaker: speaker,
		items:   make(chan utterance, 64),
		done:    make(chan struct{}),
	}
}

// SetObserver registers a callback invoked for every utterance as it is
// played, on the worker goroutine. Used to mirror speech to the gateway.
func (q *Queue) SetObserver(fn func(text string)) {
	q.observer = fn
}

// Start launches the consuming worker. It stops when ctx is cancelled;
// utterances still queued at that point are dropped.
func (q *Queue) Start(ctx context.Context) {
	go func() {
		defer close(q.done)
		for {
			select {
			case <-ctx.Done():
				return
			case u := <-q.items:
				if q.observer != nil {
					q.observer(u.text)
				}
				if err := q.speaker.Speak(u.text); err != nil {
					logging.Error("speech output failed: %v", err)
				}
				if u.pause > 0 {
					select {
					case <-ctx.Done():
						return
					case <-time.After(u.pause):
					}
				}
			}
		}
	}()
}

// Wait blocks until the worker has exited.
func (q *Queue) Wait() {
	<-q.done
}

// Say submits text for playback and returns immediately. When the queue is
// full the utterance is dropped rather than blocking the caller.
func (q *Queue) Say(text string) {
	q.submit(utterance{text: text})
}

// SayPaced submits text followed by a silent gap before the next utterance.
// Used for lists read item by item.
func (q *Queue) SayPaced(text string, pause time.Duration) {
	q.submit(utterance{text: text, pause: pause})
}

func (q *Queue) submit(u utterance) {
	select {
	case q.items <- u:
	default:
		logging.Error("speech queue full, dropping utterance: %q", u.text)
	}
}
