// Package server exposes a scan result over a read-only HTTP API.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/typegraph-io/typegraph/scan"
)

// Config holds server configuration
type Config struct {
	// Addr is the server listen address (e.g., "localhost:7180")
	Addr string

	// AuthSecret enables bearer token authentication when non-empty
	AuthSecret string

	// TokenTTL is the lifetime of issued tokens
	TokenTTL time.Duration

	// Cache is an optional response cache for list endpoints
	Cache *ResponseCache
}

// Server serves class metadata queries against a single scan result.
type Server struct {
	result *scan.Result
	config Config
	log    *zap.Logger
	router chi.Router
}

// New builds a server around the given scan result.
func New(result *scan.Result, config Config, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		result: result,
		config: config,
		log:    log,
	}
	s.router = s.buildRouter()
	return s
}

// Handler returns the server's HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server on the configured address.
func (s *Server) ListenAndServe() error {
	httpServer := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.log.Info("listening", zap.String("addr", s.config.Addr))
	return httpServer.ListenAndServe()
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		if s.config.AuthSecret != "" {
			auth := NewAuthService(s.config.AuthSecret, s.config.TokenTTL)
			r.Use(auth.Middleware)
		}

		r.Get("/classes", s.handleListClasses)
		r.Get("/classes/{name}", s.handleGetClass)
		r.Get("/arrays", s.handleListArrays)
	})

	return r
}

// requestLogger logs one line per request with method, path, and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}

// classView is the wire representation of a class entry.
type classView struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Modifiers int    `json:"modifiers"`
	Module    string `json:"module,omitempty"`
	Package   string `json:"package,omitempty"`
	Dims      int    `json:"dims,omitempty"`
	Element   string `json:"element,omitempty"`
}

func viewOf(ci *scan.ClassInfo) classView {
	v := classView{
		Name:      ci.Name,
		Kind:      ci.Kind.String(),
		Modifiers: ci.Modifiers,
	}
	if ci.Provenance.Module != nil {
		v.Module = ci.Provenance.Module.Name
	}
	if ci.Provenance.Package != nil {
		v.Package = ci.Provenance.Package.Name
	}
	if ci.IsArray() {
		v.Dims = ci.NumDimensions()
		if elem := ci.ElementTypeSignature(); elem != nil {
			v.Element = elem.SignatureStr()
		}
	}
	return v
}

func viewsOf(list scan.ClassInfoList) []classView {
	views := make([]classView, 0, len(list))
	for _, ci := range list {
		views = append(views, viewOf(ci))
	}
	return views
}

// handleListClasses returns all classes, narrowed by optional module,
// package, kind, and name-prefix query parameters.
func (s *Server) handleListClasses(w http.ResponseWriter, r *http.Request) {
	if body, ok := s.cachedResponse(r); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "hit")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
		return
	}

	list := s.result.AllClasses()

	if module := r.URL.Query().Get("module"); module != "" {
		list = scan.FilterByModule(list, module)
	}
	if pkg := r.URL.Query().Get("package"); pkg != "" {
		list = scan.FilterByPackage(list, pkg)
	}
	if kind := r.URL.Query().Get("kind"); kind != "" {
		list = list.Filter(func(ci *scan.ClassInfo) bool {
			return ci.Kind.String() == kind
		})
	}
	if prefix := r.URL.Query().Get("prefix"); prefix != "" {
		list = list.Filter(func(ci *scan.ClassInfo) bool {
			return len(ci.Name) >= len(prefix) && ci.Name[:len(prefix)] == prefix
		})
	}

	body, err := json.Marshal(viewsOf(list))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
	s.storeResponse(r, body)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// handleGetClass returns a single class by name, 404 if unknown.
func (s *Server) handleGetClass(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	ci := s.result.Class(name)
	if ci == nil {
		writeError(w, http.StatusNotFound, "class not found: "+name)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(ci))
}

// handleListArrays returns array classes, narrowed by optional element
// signature and dims query parameters.
func (s *Server) handleListArrays(w http.ResponseWriter, r *http.Request) {
	list := s.result.ArrayClasses()

	if element := r.URL.Query().Get("element"); element != "" {
		list = list.Filter(func(ci *scan.ClassInfo) bool {
			elem := ci.ElementTypeSignature()
			return elem != nil && elem.SignatureStr() == element
		})
	}
	if dimsStr := r.URL.Query().Get("dims"); dimsStr != "" {
		dims, err := strconv.Atoi(dimsStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid dims parameter")
			return
		}
		list = list.Filter(func(ci *scan.ClassInfo) bool {
			return ci.NumDimensions() == dims
		})
	}

	writeJSON(w, http.StatusOK, viewsOf(list))
}

// cachedResponse looks up the response for this request URL in the cache.
func (s *Server) cachedResponse(r *http.Request) ([]byte, bool) {
	if s.config.Cache == nil {
		return nil, false
	}
	body, err := s.config.Cache.Get(r.Context(), r.URL.RequestURI())
	if err != nil {
		return nil, false
	}
	return body, true
}

func (s *Server) storeResponse(r *http.Request, body []byte) {
	if s.config.Cache == nil {
		return
	}
	if err := s.config.Cache.Set(r.Context(), r.URL.RequestURI(), body); err != nil {
		s.log.Warn("failed to cache response", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
