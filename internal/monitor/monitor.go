// Package monitor exposes a running strip over HTTP: Prometheus metrics, a
// websocket frame feed and a health snapshot.
package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coreman2200/funtimes-strips/internal/input"
	"github.com/coreman2200/funtimes-strips/internal/player"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Throttle is the minimum gap between two frames sent to websocket clients.
const Throttle = 50 * time.Millisecond

type frameMsg struct {
	FrameID    uint64 `json:"frame_id"`
	Status     string `json:"status"`
	Brightness uint8  `json:"brightness"`
	RGB        []byte `json:"rgb"` // base64 in JSON
}

// Server implements player.Observer. The player hands over snapshots without
// blocking; everything else happens on the server's goroutines.
type Server struct {
	reg           *prometheus.Registry
	frames        prometheus.Counter
	displayErrors prometheus.Counter
	commands      *prometheus.CounterVec
	brightness    prometheus.Gauge
	tick          prometheus.Histogram

	feed chan player.Snapshot

	mu       sync.RWMutex
	clients  map[*websocket.Conn]bool
	last     frameMsg
	lastEmit time.Time
	start    time.Time

	srv     *http.Server
	cancel  context.CancelFunc
	stopped chan struct{} // closed when the forwarder started by Start returns
	log     zerolog.Logger
}

func New(log zerolog.Logger) *Server {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Server{
		reg: reg,
		frames: f.NewCounter(prometheus.CounterOpts{
			Name: "strips_frames_total",
			Help: "Frames shown on the strip",
		}),
		displayErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "strips_display_errors_total",
			Help: "Failed frame writes",
		}),
		commands: f.NewCounterVec(prometheus.CounterOpts{
			Name: "strips_commands_total",
			Help: "Runtime commands applied, by kind",
		}, []string{"command"}),
		brightness: f.NewGauge(prometheus.GaugeOpts{
			Name: "strips_brightness",
			Help: "Current brightness (0-255)",
		}),
		tick: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "strips_tick_seconds",
			Help:    "Render and display time of one frame",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		feed:    make(chan player.Snapshot, 1),
		clients: map[*websocket.Conn]bool{},
		start:   time.Now(),
		log:     log,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/ws", s.HandleFramesWS)
	mux.HandleFunc("/health", s.HandleHealth)
	return mux
}

// Start listens on addr and serves until Shutdown. It returns once the
// listener is up. Snapshots are forwarded until ctx is done or Shutdown.
func (s *Server) Start(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.srv = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("monitor server")
		}
	}()
	ctx, s.cancel = context.WithCancel(ctx)
	s.stopped = make(chan struct{})
	go func() {
		defer close(s.stopped)
		s.Run(ctx)
	}()
	s.log.Info().Str("addr", ln.Addr().String()).Msg("monitor listening")
	return nil
}

// Shutdown stops the forwarder, drops websocket clients and stops the
// HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
		select {
		case <-s.stopped:
		case <-ctx.Done():
		}
	}
	s.mu.Lock()
	for c := range s.clients {
		c.Close()
		delete(s.clients, c)
	}
	s.mu.Unlock()
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// Run forwards snapshots to websocket clients until ctx is done.
func (s *Server) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-s.feed:
			s.publish(snap)
		}
	}
}

func (s *Server) Displayed(snap player.Snapshot) {
	s.frames.Inc()
	s.brightness.Set(float64(snap.Brightness))
	s.tick.Observe(snap.Tick.Seconds())
	// Render allocates a fresh frame every tick, so the snapshot can be
	// handed over as is.
	select {
	case s.feed <- snap:
	default:
	}
}

func (s *Server) DisplayFailed(err error) {
	s.displayErrors.Inc()
}

func (s *Server) Applied(cmd input.Command) {
	s.commands.WithLabelValues(cmd.Kind.String()).Inc()
}

func (s *Server) publish(snap player.Snapshot) {
	msg := frameMsg{
		FrameID:    snap.Index,
		Status:     snap.Status,
		Brightness: snap.Brightness,
		RGB:        snap.Frame.Scaled(snap.Brightness).Bytes(),
	}

	s.mu.Lock()
	s.last = msg
	now := time.Now()
	if now.Sub(s.lastEmit) < Throttle {
		s.mu.Unlock()
		return
	}
	s.lastEmit = now
	s.mu.Unlock()

	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			s.log.Debug().Err(err).Msg("write frame")
		}
	}
}

func (s *Server) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp := map[string]any{
		"frame_id":   s.last.FrameID,
		"status":     s.last.Status,
		"brightness": s.last.Brightness,
		"uptime_s":   time.Since(s.start).Seconds(),
		"clients":    len(s.clients),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Clients is the number of connected websocket clients.
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}
