package server

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// maxEventClients bounds concurrent event-feed connections
const maxEventClients = 100

var eventsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Any origin is accepted (the CORS layer only adds headers and rejects
	// nothing); the feed carries no sensitive payloads beyond what the JSON
	// API already serves.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleEventsWebSocket serves GET /ws/events: a feed of catalog lifecycle
// events (snapshot reloads) for UI clients
func (s *Server) HandleEventsWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := eventsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("WebSocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		server: s,
		conn:   conn,
		send:   make(chan interface{}, 16),
	}

	s.register <- client

	go client.writePump()
	go client.readPump()
}

// Run is the hub loop: client registration and event fan-out. It exits when
// the server context is cancelled.
func (s *Server) Run() {
	for {
		select {
		case <-s.ctx.Done():
			s.closeAllClients()
			return

		case client := <-s.register:
			s.clientsMu.Lock()
			if len(s.clients) >= maxEventClients {
				s.clientsMu.Unlock()
				s.logger.Warnw("Event client limit reached, rejecting connection")
				client.conn.Close()
				continue
			}
			s.clients[client] = true
			s.clientsMu.Unlock()
			s.logger.Debugw("Event client connected", "clients", s.clientCount())

		case client := <-s.unregister:
			s.clientsMu.Lock()
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}
			s.clientsMu.Unlock()

		case event := <-s.events:
			s.clientsMu.RLock()
			for client := range s.clients {
				select {
				case client.send <- event:
				default:
					// Slow consumer; drop the event rather than block the hub.
				}
			}
			s.clientsMu.RUnlock()
		}
	}
}

// BroadcastEvent queues an event for all connected clients. Never blocks.
func (s *Server) BroadcastEvent(event interface{}) {
	select {
	case s.events <- event:
	default:
		s.logger.Debugw("Event queue full, dropping event")
	}
}

func (s *Server) clientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

func (s *Server) closeAllClients() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for client := range s.clients {
		close(client.send)
		delete(s.clients, client)
	}
}
