// internal/httpserver/server.go
//
// HTTP server wiring for the Hit and Blow solver.
// Responsibilities:
//   - Router + middleware (request IDs, request logging, panic recovery, timeouts, CORS).
//   - Public endpoints: "/health", "/metrics", static web UI.
//   - Solver endpoints under /api (see routes_solver.go), each bound to the
//     caller's own session (see session.go).
//
// Notes:
//   - The solver core never logs; every log line about a game is written here.
//   - Error bodies are JSON: {"error": "<code>", "message": "..."}.

package httpserver

import (
	"encoding/json"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hitblow/assets"
	"github.com/robalobadob/hitblow/internal/history"
	"github.com/robalobadob/hitblow/internal/solver"
	"github.com/robalobadob/hitblow/internal/store"
)

// Options are the server's collaborators.
type Options struct {
	Sessions   store.Store
	NewSolver  func() *solver.Solver // one independent solver per session
	History    *history.Store        // optional; nil disables game history
	Secret     string                // HS256 key for session tokens
	SessionTTL time.Duration
	Origin     string // allowed CORS origin
	Web        fs.FS  // static files; defaults to the embedded UI
}

// Server bundles router, session store, and optional history.
type Server struct {
	r         *chi.Mux
	sessions  store.Store
	newSolver func() *solver.Solver
	history   *history.Store
	tokens    *tokenIssuer
	validate  *validator.Validate
	web       fs.FS
}

// New constructs a Server, installs middleware, and registers routes.
func New(o Options) *Server {
	if o.SessionTTL <= 0 {
		o.SessionTTL = 24 * time.Hour
	}
	if o.Web == nil {
		o.Web = assets.Web()
	}
	s := &Server{
		r:         chi.NewRouter(),
		sessions:  o.Sessions,
		newSolver: o.NewSolver,
		history:   o.History,
		tokens:    newTokenIssuer(o.Secret, o.SessionTTL),
		validate:  validator.New(),
		web:       o.Web,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)                   // zerolog access log
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(30 * time.Second)) // bound handler time
	s.r.Use(cors(o.Origin))

	// --- diagnostics ---
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "sessions": s.sessions.Len()})
	})
	s.r.Handle("/metrics", promhttp.Handler())

	s.mountAPI()

	// Static UI
	s.r.Get("/", s.serveStatic)
	s.r.Get("/*", s.serveStatic)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", r.URL.Path)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin != "" {
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Set("Access-Control-Expose-Headers", sessionHeader)
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger writes one debug line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("reqId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

// ------------------------------- static ------------------------------------

// serveStatic serves the embedded UI; "/" maps to index.html.
func (s *Server) serveStatic(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" {
		name = "index.html"
	}
	data, err := fs.ReadFile(s.web, name)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", r.URL.Path)
		return
	}
	ctype := mime.TypeByExtension(path.Ext(name))
	if ctype == "" {
		ctype = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", ctype)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ------------------------------- helpers -----------------------------------

type errorRes struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorRes{Error: code, Message: msg})
}
