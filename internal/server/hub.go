package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/strider/internal/core/observability/log"
	"github.com/zeusync/strider/internal/core/protocol"
	"github.com/zeusync/strider/pkg/generic"
)

// Hub streams pose snapshots to websocket clients. Every client gets a
// buffered send queue; a client whose queue is full is dropped rather than
// slowing the simulation down.
type Hub struct {
	cfg      Config
	welcome  protocol.Welcome
	logger   log.Log
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	clients  map[string]*client
	lastHash uint64
	hasLast  bool
	// lastMsg is the most recent pose sent, replayed to clients that join
	// while the pose is unchanged.
	lastMsg []byte

	sent    atomic.Uint64
	skipped atomic.Uint64
	dropped atomic.Uint64

	running    atomic.Bool
	httpServer *http.Server
	addr       net.Addr
}

type client struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	closed chan struct{}
	once   sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.closed)
		_ = c.conn.Close()
	})
}

// Stats contains hub statistics
type Stats struct {
	Clients int
	Sent    uint64
	Skipped uint64
	Dropped uint64
}

// NewHub creates a hub. welcome is sent to every client with its ClientID
// filled in.
func NewHub(cfg Config, welcome protocol.Welcome, logger log.Log) *Hub {
	if logger == nil {
		logger = log.NewNop()
	}
	// room for the welcome and the replayed pose before the write pump runs
	if cfg.SendBuffer < 2 {
		cfg.SendBuffer = 2
	}
	return &Hub{
		cfg:     cfg,
		welcome: welcome,
		logger:  logger.With(log.String("component", "pose-hub")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[string]*client),
	}
}

// Handler serves the websocket endpoint at the configured path.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(h.cfg.Path, h)
	return mux
}

// Start listens on the configured address and serves until Stop.
func (h *Hub) Start(_ context.Context) error {
	if !h.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}

	ln, err := net.Listen("tcp", h.cfg.Addr)
	if err != nil {
		h.running.Store(false)
		return fmt.Errorf("listen %s: %w", h.cfg.Addr, err)
	}

	h.mu.Lock()
	h.addr = ln.Addr()
	h.httpServer = &http.Server{
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv := h.httpServer
	h.mu.Unlock()

	h.logger.Info("pose stream listening",
		log.String("addr", ln.Addr().String()),
		log.String("path", h.cfg.Path),
	)

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("pose stream stopped", log.Error(err))
		}
	}()
	return nil
}

// Addr is the bound listen address once started.
func (h *Hub) Addr() net.Addr {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.addr
}

// Stop disconnects every client and shuts the listener down.
func (h *Hub) Stop(ctx context.Context) error {
	if !h.running.CompareAndSwap(true, false) {
		return ErrServerNotRunning
	}

	h.mu.Lock()
	srv := h.httpServer
	clients := h.clients
	h.clients = make(map[string]*client)
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
	h.logger.Info("pose stream stopped", log.Int("clients", len(clients)))
	return srv.Shutdown(ctx)
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}
	conn.SetReadLimit(h.cfg.MaxMessageSize)

	c := &client{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan []byte, h.cfg.SendBuffer),
		closed: make(chan struct{}),
	}

	welcome := h.welcome
	welcome.ClientID = c.id
	msg, err := protocol.Encode(protocol.MsgWelcome, welcome)
	if err != nil {
		h.logger.Error("encode welcome", log.Error(err))
		_ = conn.Close()
		return
	}
	c.send <- msg

	h.mu.Lock()
	h.clients[c.id] = c
	total := len(h.clients)
	if h.lastMsg != nil {
		c.send <- h.lastMsg
		h.sent.Add(1)
	}
	h.mu.Unlock()

	h.logger.Info("client connected",
		log.String("client_id", c.id),
		log.String("remote_addr", conn.RemoteAddr().String()),
		log.Int("total_clients", total),
	)

	go h.writePump(c)
	h.readPump(c)
}

// Broadcast queues pose for every client. It reports false when the pose is
// identical to the previous one apart from its tick.
func (h *Hub) Broadcast(pose protocol.Pose) (bool, error) {
	sum, err := fingerprint(pose)
	if err != nil {
		return false, err
	}
	msg, err := protocol.Encode(protocol.MsgPose, pose)
	if err != nil {
		return false, err
	}

	h.mu.Lock()
	if h.hasLast && h.lastHash == sum {
		h.mu.Unlock()
		h.skipped.Add(1)
		return false, nil
	}
	h.lastHash, h.hasLast = sum, true
	h.lastMsg = msg
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		select {
		case c.send <- msg:
			h.sent.Add(1)
		default:
			h.dropped.Add(1)
			h.logger.Warn("dropping slow client", log.String("client_id", c.id))
			h.remove(c)
		}
	}
	return true, nil
}

var fingerprintBuffers = generic.NewPool(func() *bytes.Buffer { return new(bytes.Buffer) }, (*bytes.Buffer).Reset)

// fingerprint hashes everything in a pose except its tick.
func fingerprint(pose protocol.Pose) (uint64, error) {
	pose.Tick = 0
	var sum uint64
	err := fingerprintBuffers.With(func(buf *bytes.Buffer) error {
		if err := json.NewEncoder(buf).Encode(pose); err != nil {
			return fmt.Errorf("fingerprint pose: %w", err)
		}
		sum = xxhash.Sum64(buf.Bytes())
		return nil
	})
	return sum, err
}

func (h *Hub) Stats() Stats {
	h.mu.RLock()
	n := len(h.clients)
	h.mu.RUnlock()
	return Stats{
		Clients: n,
		Sent:    h.sent.Load(),
		Skipped: h.skipped.Load(),
		Dropped: h.dropped.Load(),
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c.id]
	delete(h.clients, c.id)
	total := len(h.clients)
	h.mu.Unlock()

	c.close()
	if ok {
		h.logger.Info("client disconnected",
			log.String("client_id", c.id),
			log.Int("total_clients", total),
		)
	}
}

func (h *Hub) readPump(c *client) {
	defer h.remove(c)

	_ = c.conn.SetReadDeadline(time.Now().Add(2 * h.cfg.PingInterval))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * h.cfg.PingInterval))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		env, err := protocol.DecodeEnvelope(data)
		if err != nil {
			h.logger.Debug("bad client message", log.String("client_id", c.id), log.Error(err))
			continue
		}
		if env.T == protocol.MsgHello {
			hello, err := protocol.DecodePayload[protocol.Hello](env)
			if err == nil {
				h.logger.Debug("client hello", log.String("client_id", c.id), log.String("name", hello.Name))
			}
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		case <-c.closed:
			return
		}
	}
}
