package transport

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"landslide-monitor/internal/hub"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096
)

// Client events accepted on the socket
const (
	EventJoin  = "join"
	EventLeave = "leave"
)

// ClientEvent is a frame sent by a connected client
type ClientEvent struct {
	Event string `json:"event"`
	Site  string `json:"site"`
}

// Activator starts the producer loop on the first connection
type Activator interface {
	Activate(ctx context.Context) bool
}

// ServerConfig holds configuration for the websocket server
type ServerConfig struct {
	SubscriberBuffer int
	EventRate        rate.Limit // client events per second; 0 means unlimited
	EventBurst       int
}

// Server upgrades HTTP requests to websocket sessions that subscribe to the hub
type Server struct {
	// ctx outlives individual requests; it is handed to the activator
	ctx       context.Context
	hub       *hub.Hub
	activator Activator
	buffer    int
	rate      rate.Limit
	burst     int
	upgrader  websocket.Upgrader
}

// NewServer creates a websocket server bound to a hub
func NewServer(ctx context.Context, h *hub.Hub, activator Activator, config ServerConfig) *Server {
	buffer := config.SubscriberBuffer
	if buffer <= 0 {
		buffer = 64
	}
	limit, burst := config.EventRate, config.EventBurst
	if limit <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &Server{
		ctx:       ctx,
		hub:       h,
		activator: activator,
		buffer:    buffer,
		rate:      limit,
		burst:     burst,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Session is one connected client; it is the hub subscriber handle
type Session struct {
	*hub.Queue
	conn    *websocket.Conn
	limiter *rate.Limiter
}

// ServeHTTP handles the connect, join and disconnect lifecycle of a client
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Websocket: Failed to upgrade connection: %v", err)
		return
	}

	session := &Session{
		Queue:   hub.NewQueue(uuid.NewString(), s.buffer),
		conn:    conn,
		limiter: rate.NewLimiter(s.rate, s.burst),
	}
	s.onConnect(session)

	go s.writePump(session)
	s.readPump(session)
}

// onConnect subscribes to the snapshot topic, then activates the producer loop
func (s *Server) onConnect(session *Session) {
	s.hub.Connect(session)
	log.Printf("Websocket: Client %s connected", session.ID())
	if s.activator != nil && s.activator.Activate(s.ctx) {
		log.Printf("Websocket: First client %s started the producer loop", session.ID())
	}
}

// onJoin subscribes a session to a site topic; unknown sites are ignored
func (s *Server) onJoin(session *Session, site string) {
	if err := s.hub.Join(site, session); err != nil {
		if errors.Is(err, hub.ErrUnknownTopic) {
			log.Printf("Websocket: Client %s asked to join unknown site %q, ignoring", session.ID(), site)
			return
		}
		log.Printf("Websocket: Error joining %s for %s: %v", site, session.ID(), err)
		return
	}
	log.Printf("Websocket: Client %s joined site %s", session.ID(), site)
}

// onDisconnect removes a session from every topic
func (s *Server) onDisconnect(session *Session) {
	s.hub.LeaveAll(session)
	session.Close()
	log.Printf("Websocket: Client %s disconnected", session.ID())
}

// readPump reads client events until the connection fails
func (s *Server) readPump(session *Session) {
	defer s.onDisconnect(session)

	conn := session.conn
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var event ClientEvent
		if err := conn.ReadJSON(&event); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Websocket: Read error for %s: %v", session.ID(), err)
			}
			return
		}
		if !session.limiter.Allow() {
			log.Printf("Websocket: Dropping %s event from %s, rate limit exceeded", event.Event, session.ID())
			continue
		}

		if event.Site == hub.AllTopic {
			log.Printf("Websocket: Ignoring %s of reserved topic from %s", event.Event, session.ID())
			continue
		}

		switch event.Event {
		case EventJoin:
			s.onJoin(session, event.Site)
		case EventLeave:
			s.hub.Leave(event.Site, session)
			log.Printf("Websocket: Client %s left site %s", session.ID(), event.Site)
		default:
			log.Printf("Websocket: Ignoring unknown event %q from %s", event.Event, session.ID())
		}
	}
}

// writePump is the only writer on the connection; it drains the session queue in order
func (s *Server) writePump(session *Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		session.conn.Close()
	}()

	conn := session.conn
	for {
		select {
		case msg, ok := <-session.Messages():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("Websocket: Write error for %s: %v", session.ID(), err)
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
