package speech

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"

	"hearsay/pkg/logging"
)

// TerminalListener reads typed commands from an input stream, standing in
// for the microphone when none is available. A single reader goroutine owns
// the stream; Listen waits for the next line up to the timeout.
type TerminalListener struct {
	lines chan string
}

// NewTerminalListener starts reading lines from r (normally os.Stdin).
func NewTerminalListener(r io.Reader) *TerminalListener {
	l := &TerminalListener{lines: make(chan string)}
	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			l.lines <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			logging.Error("terminal input closed: %v", err)
		}
		close(l.lines)
	}()
	return l
}

// Listen returns the next typed line, lowercased and trimmed, or "" when the
// timeout passes without input. The phrase limit has no meaning for typed
// input and is ignored.
func (l *TerminalListener) Listen(ctx context.Context, timeout, _ time.Duration) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(timeout):
		return "", nil
	case line, ok := <-l.lines:
		if !ok {
			return "", ErrUnavailable
		}
		return strings.ToLower(strings.TrimSpace(line)), nil
	}
}
