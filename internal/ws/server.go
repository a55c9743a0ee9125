package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/signworks/dmsview/internal/app"
	"github.com/signworks/dmsview/internal/config"
	diag "github.com/signworks/dmsview/internal/diagnostics"
	"github.com/signworks/dmsview/internal/driver/preview"
	"github.com/signworks/dmsview/internal/layout"
	"github.com/signworks/dmsview/internal/pagefile"
	"github.com/signworks/dmsview/internal/render"
	"github.com/signworks/dmsview/internal/sequence"
)

const writeWait = 200 * time.Millisecond

// Server is the browser preview host: painted frames, diagnostics and a
// control socket over a chi router.
type Server struct {
	core    *app.Core
	preview *preview.Driver

	// ConfigPath, when set, receives the config after every control change.
	ConfigPath string
	cfgMu      sync.Mutex

	mu          sync.RWMutex
	clients     map[*websocket.Conn]*sync.Mutex
	diagClients map[*websocket.Conn]*sync.Mutex
	startTime   time.Time
	origins     []string
	up          websocket.Upgrader
}

// NewServer attaches a preview driver to core's engine and subscribes to its
// diagnostics. An empty origins list allows any origin.
func NewServer(core *app.Core, throttle time.Duration, origins []string) *Server {
	s := &Server{
		core:        core,
		clients:     map[*websocket.Conn]*sync.Mutex{},
		diagClients: map[*websocket.Conn]*sync.Mutex{},
		startTime:   time.Now(),
		origins:     origins,
	}
	s.up = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	s.preview = preview.New(throttle, s.broadcastFrame)
	core.Eng.AddDriver(s.preview)
	core.OnDiag(s.pushDiag)
	return s
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.origins) == 0 {
		return true
	}
	o := r.Header.Get("Origin")
	if o == "" {
		return true
	}
	for _, a := range s.origins {
		if a == "*" || a == o {
			return true
		}
	}
	return false
}

// Router mounts every endpoint.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	origins := s.origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/ws", s.HandleFramesWS)
	r.Get("/diag", s.HandleDiagWS)
	r.Get("/control", s.HandleControlWS)
	r.Get("/health", s.HandleHealth)
	r.Route("/pages", func(r chi.Router) {
		r.Get("/", s.HandleGetPages)
		r.Post("/", s.HandlePostPages)
	})
	return r
}

func (s *Server) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.up.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("frames upgrade")
		return
	}
	lock := &sync.Mutex{}
	s.mu.Lock()
	s.clients[conn] = lock
	s.mu.Unlock()

	s.sendStatus(conn, lock)
	if f, ok := s.preview.Last(); ok {
		s.write(conn, lock, f)
	}
	go s.drain(conn, s.clients)
}

func (s *Server) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.up.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("diag upgrade")
		return
	}
	s.mu.Lock()
	s.diagClients[conn] = &sync.Mutex{}
	s.mu.Unlock()
	go s.drain(conn, s.diagClients)
}

// drain reads until the client goes away, then forgets it.
func (s *Server) drain(conn *websocket.Conn, set map[*websocket.Conn]*sync.Mutex) {
	defer func() {
		s.mu.Lock()
		delete(set, conn)
		s.mu.Unlock()
		_ = conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.up.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("control upgrade")
		return
	}
	defer conn.Close()
	lock := &sync.Mutex{}
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Control
		if err := json.Unmarshal(data, &msg); err != nil {
			s.pushDiag(diag.Diagnostic{Severity: diag.Warn, Code: "CONTROL.BAD_JSON", Summary: "Malformed control message", Detail: err.Error()})
			continue
		}
		if err := s.Apply(msg); err != nil {
			log.Warn().Err(err).Msg("control")
		}
		s.sendStatus(conn, lock)
	}
}

// Health is the /health body and the status sent to socket clients.
type Health struct {
	Type     string          `json:"type"`
	FrameID  uint64          `json:"frame_id"`
	UptimeS  float64         `json:"uptime_s"`
	Render   render.Stats    `json:"render"`
	Sign     layout.Sign     `json:"sign"`
	Viewport render.Viewport `json:"viewport"`
	Sequence sequence.Status `json:"sequence"`
}

func (s *Server) health() Health {
	e := s.core.Eng
	return Health{
		Type:     "status",
		FrameID:  e.FrameID(),
		UptimeS:  time.Since(s.startTime).Seconds(),
		Render:   e.Stats(),
		Sign:     e.Sign(),
		Viewport: e.Viewport(),
		Sequence: s.core.Seq.Status(),
	}
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.health())
}

func (s *Server) HandleGetPages(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(pagefile.FromPageSet(s.core.Current()))
}

func (s *Server) HandlePostPages(w http.ResponseWriter, r *http.Request) {
	f, err := pagefile.Decode(http.MaxBytesReader(w, r.Body, 1<<20), true)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ps, err := s.core.Pages(f)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.core.Play(ps); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) sendStatus(conn *websocket.Conn, lock *sync.Mutex) {
	s.write(conn, lock, s.health())
}

func (s *Server) write(conn *websocket.Conn, lock *sync.Mutex, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	lock.Lock()
	defer lock.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		log.Debug().Err(err).Msg("ws write")
	}
}

func (s *Server) broadcastFrame(f preview.Frame) {
	s.broadcast(s.clients, struct {
		Type string `json:"type"`
		preview.Frame
	}{"frame", f})
}

func (s *Server) pushDiag(d diag.Diagnostic) {
	s.broadcast(s.diagClients, d)
}

func (s *Server) broadcast(set map[*websocket.Conn]*sync.Mutex, v any) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c, lock := range set {
		s.write(c, lock, v)
	}
}

func (s *Server) saveConfig(cfg *config.Config) {
	if s.ConfigPath == "" {
		return
	}
	if err := config.Save(s.ConfigPath, cfg); err != nil {
		log.Warn().Err(err).Str("path", s.ConfigPath).Msg("save config")
	}
}
