package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"crate/internal/apierr"
	"crate/internal/config"
	"crate/internal/sigv4"
	"crate/internal/storage"
)

// Server holds the dependencies every handler needs: the object store and
// the SigV4 engine. It carries no other mutable state, per §9's "global
// state" note.
type Server struct {
	cfg   config.Config
	store *storage.Store
	auth  *sigv4.Engine
}

// New constructs a Server from cfg, creating the data directory if it does
// not already exist.
func New(cfg config.Config) (*Server, error) {
	store, err := storage.NewStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:   cfg,
		store: store,
		auth:  sigv4.NewEngine(cfg.Credential),
	}, nil
}

// Handler builds the full middleware chain and route table described in
// §4.6, rooted at a go-chi/chi router (replacing the teacher's raw
// http.NewServeMux path-pattern routing, per SPEC_FULL.md's domain-stack
// wiring).
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete, http.MethodHead},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"ETag", "X-Amz-Request-Id"},
		AllowCredentials: false,
	}))
	r.Use(withRequestID)
	r.Use(standardHeaders)
	r.Use(logRequest)
	r.Use(recoverer)
	r.Use(s.requireAuthentication)

	r.Get("/", s.handleListBuckets)

	r.Route("/{bucket}", func(r chi.Router) {
		r.Get("/", s.handleBucketGet)
		r.Put("/", s.handleCreateBucket)
		r.Delete("/", s.handleDeleteBucket)
	})

	r.Get("/{bucket}/*", s.handleGetObject)
	r.Head("/{bucket}/*", s.handleHeadObject)
	r.Put("/{bucket}/*", s.handleObjectPut)
	r.Post("/{bucket}/*", s.handleObjectPost)
	r.Delete("/{bucket}/*", s.handleObjectDelete)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, apierr.ErrMethodNotAllowed)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, apierr.ErrMethodNotAllowed)
	})

	return r
}
