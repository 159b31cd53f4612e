package gateway

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialTestServer(t *testing.T) (*Server, *websocket.Conn) {
	t.Helper()
	s := NewServer()
	srv := httptest.NewServer(http.HandlerFunc(s.HandleWebSocket))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return s, conn
}

func TestBroadcastUtterance(t *testing.T) {
	s, conn := dialTestServer(t)

	// The client is registered synchronously in HandleWebSocket, but give
	// the server a beat to finish the upgrade before broadcasting.
	time.Sleep(50 * time.Millisecond)
	s.BroadcastUtterance("Hello! How can I help you?")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env Envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("failed to read broadcast: %v", err)
	}
	if env.Type != "utterance" {
		t.Errorf("expected type 'utterance', got %q", env.Type)
	}
	if env.Text != "Hello! How can I help you?" {
		t.Errorf("unexpected text %q", env.Text)
	}
	if env.ID == "" || env.Timestamp == "" {
		t.Errorf("expected id and timestamp to be set, got %+v", env)
	}
}

func TestCommandFrameReachesChannel(t *testing.T) {
	s, conn := dialTestServer(t)

	err := conn.WriteJSON(Envelope{Type: "command", Text: "what time is it"})
	if err != nil {
		t.Fatalf("failed to write command: %v", err)
	}

	select {
	case got := <-s.Commands():
		if got != "what time is it" {
			t.Errorf("unexpected command text %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("command never arrived on the channel")
	}
}

func TestNonCommandFramesIgnored(t *testing.T) {
	s, conn := dialTestServer(t)

	if err := conn.WriteJSON(Envelope{Type: "utterance", Text: "echo"}); err != nil {
		t.Fatalf("failed to write frame: %v", err)
	}
	if err := conn.WriteJSON(Envelope{Type: "command", Text: ""}); err != nil {
		t.Fatalf("failed to write frame: %v", err)
	}
	if err := conn.WriteJSON(Envelope{Type: "command", Text: "real one"}); err != nil {
		t.Fatalf("failed to write frame: %v", err)
	}

	select {
	case got := <-s.Commands():
		if got != "real one" {
			t.Errorf("expected only the real command, got %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("command never arrived on the channel")
	}
}
