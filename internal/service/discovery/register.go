package discovery

import (
	"github.com/go-chi/chi/v5"

	"github.com/dkazlou/flint/internal/app"
	"github.com/dkazlou/flint/internal/server"
)

// Registrar ties the discovery service into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the discovery service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the discovery routes to the router
func (r *Registrar) Register(mux chi.Router) {
	svc := NewService(r.appCtx)

	mux.Group(func(pr chi.Router) {
		pr.Use(server.RequireAuth(r.appCtx.JWT))
		pr.Get("/proposals", svc.handleProposals)
		pr.Get("/matched", svc.handleMatched)
		pr.Get("/matched/count", svc.handleMatchCount)
	})
}
