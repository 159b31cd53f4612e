package speech

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// recordingSpeaker collects spoken text and can fail on demand.
type recordingSpeaker struct {
	mu     sync.Mutex
	spoken []string
	failOn string
}

func (r *recordingSpeaker) Speak(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn != "" && text == r.failOn {
		return errors.New("playback failed")
	}
	r.spoken = append(r.spoken, text)
	return nil
}

func (r *recordingSpeaker) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.spoken...)
}

func TestQueue_PlaysInSubmissionOrder(t *testing.T) {
	spk := &recordingSpeaker{}
	q := NewQueue(spk)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)

	q.Say("one")
	q.Say("two")
	q.Say("three")

	assert.Eventually(t, func() bool {
		return len(spk.all()) == 3
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"one", "two", "three"}, spk.all())
}

func TestQueue_FailureDoesNotStopLaterUtterances(t *testing.T) {
	spk := &recordingSpeaker{failOn: "broken"}
	q := NewQueue(spk)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)

	q.Say("broken")
	q.Say("still here")

	assert.Eventually(t, func() bool {
		got := spk.all()
		return len(got) == 1 && got[0] == "still here"
	}, time.Second, 10*time.Millisecond)
}

func TestQueue_SayPacedDelaysNextUtterance(t *testing.T) {
	spk := &recordingSpeaker{}
	q := NewQueue(spk)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)

	start := time.Now()
	q.SayPaced("first", 50*time.Millisecond)
	q.Say("second")

	assert.Eventually(t, func() bool {
		return len(spk.all()) == 2
	}, time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestQueue_ObserverSeesEveryUtterance(t *testing.T) {
	spk := &recordingSpeaker{}
	q := NewQueue(spk)
	var mu sync.Mutex
	var observed []string
	q.SetObserver(func(text string) {
		mu.Lock()
		observed = append(observed, text)
		mu.Unlock()
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)

	q.Say("hello")
	q.Say("goodbye")

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(observed) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestQueue_StopsOnCancel(t *testing.T) {
	spk := &recordingSpeaker{}
	q := NewQueue(spk)
	ctx, cancel := context.WithCancel(context.Background())
	q.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		q.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("queue worker did not stop on cancel")
	}
}

func TestTerminalListener(t *testing.T) {
	l := NewTerminalListener(strings.NewReader("  Hello World  \n"))
	ctx := context.Background()

	got, err := l.Listen(ctx, time.Second, 0)
	assert.NoError(t, err)
	assert.Equal(t, "hello world", got)

	// Stream exhausted: the listener reports the service unavailable.
	_, err = l.Listen(ctx, 100*time.Millisecond, 0)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestTerminalListener_Timeout(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	l := NewTerminalListener(pr)
	got, err := l.Listen(context.Background(), 20*time.Millisecond, 0)
	assert.NoError(t, err)
	assert.Equal(t, "", got)
}
