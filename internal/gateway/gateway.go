package gateway

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"hearsay/pkg/logging"
)

// Envelope is the wire format exchanged with gateway clients. The assistant
// sends type "utterance" for everything it speaks; clients send type
// "command" with the text they want dispatched as if it had been heard.
type Envelope struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	Text      string `json:"text"`
	Timestamp string `json:"ts,omitempty"`
}

// Server is a websocket fan-out for utterances and a fan-in for remote text
// commands. It gives clients the same narrow listen/speak surface the
// microphone and TTS provide locally.
type Server struct {
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.RWMutex
	commands  chan string
}

func NewServer() *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:  make(map[*websocket.Conn]bool),
		commands: make(chan string, 16),
	}
}

// Commands yields the text of command frames received from any client.
func (s *Server) Commands() <-chan string {
	return s.commands
}

// BroadcastUtterance sends one spoken utterance to every connected client.
// Never blocks on a slow client beyond the websocket write itself.
func (s *Server) BroadcastUtterance(text string) {
	env := Envelope{
		Type:      "utterance",
		ID:        uuid.New().String(),
		Text:      text,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for conn := range s.clients {
		if err := conn.WriteJSON(env); err != nil {
			logging.Error("error broadcasting to gateway client: %v", err)
		}
	}
}

// HandleWebSocket upgrades the connection and serves it until the client
// disconnects.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("websocket upgrade error: %v", err)
		return
	}
	s.clientsMu.Lock()
	s.clients[conn] = true
	s.clientsMu.Unlock()
	logging.Info("gateway client connected from %s", r.RemoteAddr)

	const pongWait = 60 * time.Second
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error { conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	go func() {
		defer conn.Close()
		defer func() {
			s.clientsMu.Lock()
			delete(s.clients, conn)
			s.clientsMu.Unlock()
			logging.Info("gateway client disconnected")
		}()
		for {
			var env Envelope
			if err := conn.ReadJSON(&env); err != nil {
				logging.Debug("gateway read ended: %v", err)
				return
			}
			conn.SetReadDeadline(time.Now().Add(pongWait))
			if env.Type != "command" || env.Text == "" {
				logging.Debug("ignoring gateway frame of type %q", env.Type)
				continue
			}
			select {
			case s.commands <- env.Text:
				logging.Info("gateway command received: %s", env.Text)
			default:
				logging.Error("gateway command queue full, dropping: %q", env.Text)
			}
		}
	}()
}
