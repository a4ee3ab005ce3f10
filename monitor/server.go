package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mklimuk/pressure/mensor"
)

const writeWait = 5 * time.Second

// Source is the part of the instrument the monitor polls.
type Source interface {
	ReadPressureWithUnits(ctx context.Context) (mensor.Reading, error)
	IsStable(ctx context.Context) (bool, error)
}

// Sample is one poll of the instrument.
type Sample struct {
	Time     time.Time `json:"time"`
	Pressure float64   `json:"pressure"`
	Unit     string    `json:"unit"`
	Stable   bool      `json:"stable"`
	Error    string    `json:"error,omitempty"`
}

type client struct {
	mx   sync.Mutex
	conn *websocket.Conn
}

func (c *client) send(v any) error {
	c.mx.Lock()
	defer c.mx.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// Server polls a Source at a fixed interval and pushes every sample to the
// connected websocket clients. Only the polling goroutine talks to the
// instrument.
type Server struct {
	source   Source
	interval time.Duration
	upgrader websocket.Upgrader

	mx      sync.RWMutex
	last    Sample
	clients map[*client]struct{}
}

func New(source Source, interval time.Duration) *Server {
	return &Server{
		source:   source,
		interval: interval,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Run polls until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Poll(ctx)
		}
	}
}

// Poll takes one sample, stores it and broadcasts it. Instrument errors are
// reported inside the sample.
func (s *Server) Poll(ctx context.Context) Sample {
	sample := Sample{Time: time.Now().UTC()}
	reading, err := s.source.ReadPressureWithUnits(ctx)
	if err == nil {
		sample.Pressure = reading.Value
		sample.Unit = reading.Unit
		sample.Stable, err = s.source.IsStable(ctx)
	}
	if err != nil {
		slog.WarnContext(ctx, "instrument poll failed", "error", err)
		sample.Error = err.Error()
	}
	s.mx.Lock()
	s.last = sample
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mx.Unlock()
	for _, c := range clients {
		if err := c.send(sample); err != nil {
			slog.Debug("dropping websocket client", "remote", c.conn.RemoteAddr().String(), "error", err)
			s.remove(c)
		}
	}
	return sample
}

func (s *Server) Last() Sample {
	s.mx.RLock()
	defer s.mx.RUnlock()
	return s.last
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.ServeWS)
	mux.HandleFunc("/sample", s.serveSample)
	return mux
}

// ServeWS upgrades the connection, sends the last sample and keeps the client
// registered until it disconnects.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn}
	s.mx.Lock()
	s.clients[c] = struct{}{}
	last := s.last
	s.mx.Unlock()
	defer s.remove(c)
	if !last.Time.IsZero() {
		if err := c.send(last); err != nil {
			return
		}
	}
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) serveSample(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.Last())
}

func (s *Server) remove(c *client) {
	s.mx.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.mx.Unlock()
	if ok {
		_ = c.conn.Close()
	}
}

// ListenAndServe polls the instrument and serves clients on addr until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	errs := make(chan error, 1)
	go func() {
		errs <- srv.ListenAndServe()
	}()
	go func() {
		_ = s.Run(ctx)
	}()
	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
