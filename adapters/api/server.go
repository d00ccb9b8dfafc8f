// Package api exposes the standardization service over HTTP. Strictly a
// presentation shell: parsing, status mapping, and rendering live here,
// numbers come from the application service untouched.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"goeffect/app"
	"goeffect/internal"
)

// Server is the HTTP surface over the standardization service.
type Server struct {
	router  *chi.Mux
	service *app.StandardizeService
	log     *internal.Logger
}

// NewServer wires routes and middleware.
func NewServer(service *app.StandardizeService, log *internal.Logger) *Server {
	if log == nil {
		log = internal.DefaultLogger
	}
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
		log:     log,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/standardize", s.handleStandardize)
		r.Post("/standardize/compare", s.handleCompare)
		r.Post("/effect-size/group-difference", s.handleGroupDifference)
		r.Post("/effect-size/f2", s.handleNestedF2)
		r.Get("/reports", s.handleListReports)
		r.Get("/reports/{id}", s.handleGetReport)
		r.Get("/reports/{id}/html", s.handleReportHTML)
	})
}

// Handler returns the root handler for an http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
