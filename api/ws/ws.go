// Package ws bridges panel events to editor clients over websockets and
// takes their replies back into the panel.
package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/papercomputeco/rubberduck/pkg/conversation"
	"github.com/papercomputeco/rubberduck/pkg/panel"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
	pingEvery = (pongWait * 9) / 10

	outboundBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// Config is the websocket bridge configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8082")
	ListenAddr string

	Panel  *panel.Panel
	Logger *slog.Logger
}

// Server serves /events.
type Server struct {
	config Config
	panel  *panel.Panel
	logger *slog.Logger
	srv    *http.Server
}

// Inbound is a frame sent by the client.
type Inbound struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversationId,omitempty"`
	Content        string `json:"content,omitempty"`
}

// Outbound is a frame sent to the client.
type Outbound struct {
	Type           string                `json:"type"`
	ConversationID string                `json:"conversationId,omitempty"`
	Trigger        *conversation.Trigger `json:"trigger,omitempty"`
	Message        *conversation.Message `json:"message,omitempty"`
	State          *conversation.State   `json:"state,omitempty"`
	Accepted       bool                  `json:"accepted,omitempty"`
	Code           string                `json:"code,omitempty"`
	Error          string                `json:"error,omitempty"`
}

// NewServer creates the websocket bridge.
func NewServer(config Config) (*Server, error) {
	if config.Panel == nil {
		return nil, errors.New("panel is required")
	}
	if config.Logger == nil {
		return nil, errors.New("logger is required")
	}

	s := &Server{
		config: config,
		panel:  config.Panel,
		logger: config.Logger.With("component", "ws"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/events", s.handleEvents)
	s.srv = &http.Server{
		Addr:              config.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// Handler returns the HTTP handler serving /events.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run starts the bridge on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting websocket bridge", "listen", s.config.ListenAddr)
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and closes the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	filter := strings.TrimSpace(r.URL.Query().Get("conversation_id"))

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		s.logger.Warn("websocket set read deadline failed", "error", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	writeCh := make(chan Outbound, outboundBuffer)
	writerDone := make(chan struct{})
	go s.writeLoop(ctx, conn, writeCh, writerDone)

	unsubscribe := s.panel.Subscribe(func(ev panel.Event) {
		if filter != "" && ev.ConversationID != filter {
			return
		}
		push(writeCh, fromPanelEvent(ev))
	})
	defer unsubscribe()

	s.logger.Debug("websocket client subscribed", "conversation_id", filter)
	push(writeCh, Outbound{Type: "subscribed", ConversationID: filter})

	for {
		var in Inbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}

		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "ping":
			push(writeCh, Outbound{Type: "pong"})
		case "submit":
			id := filter
			if v := strings.TrimSpace(in.ConversationID); v != "" {
				id = v
			}
			if filter != "" && id != filter {
				push(writeCh, Outbound{Type: "error", Code: "invalid_argument", Error: "conversationId mismatch"})
				continue
			}
			if id == "" {
				push(writeCh, Outbound{Type: "error", Code: "invalid_argument", Error: "conversationId is required"})
				continue
			}

			accepted, err := s.panel.Submit(ctx, id, in.Content)
			if err != nil {
				code := "internal"
				if errors.Is(err, panel.ErrNotFound) {
					code = "not_found"
				}
				push(writeCh, Outbound{Type: "error", ConversationID: id, Code: code, Error: err.Error()})
				continue
			}
			push(writeCh, Outbound{Type: "submit_ack", ConversationID: id, Accepted: accepted})
		case "":
			push(writeCh, Outbound{Type: "error", Code: "invalid_argument", Error: "type is required"})
		default:
			push(writeCh, Outbound{Type: "error", Code: "invalid_argument", Error: "unsupported type: " + in.Type})
		}
	}
}

func (s *Server) writeLoop(ctx context.Context, conn *websocket.Conn, writeCh <-chan Outbound, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case out := <-writeCh:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteJSON(out); err != nil {
				s.logger.Debug("websocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// push never blocks: a slow client loses its oldest queued frame.
func push(writeCh chan Outbound, out Outbound) {
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}

func fromPanelEvent(ev panel.Event) Outbound {
	return Outbound{
		Type:           strings.ReplaceAll(string(ev.Kind), "-", "_"),
		ConversationID: ev.ConversationID,
		Trigger:        ev.Trigger,
		Message:        ev.Message,
		State:          ev.State,
		Error:          ev.Error,
	}
}
