package swipe

import (
	"github.com/go-chi/chi/v5"

	"github.com/dkazlou/flint/internal/app"
	"github.com/dkazlou/flint/internal/server"
)

// Registrar ties the swipe service into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the swipe service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the swipe route to the router
func (r *Registrar) Register(mux chi.Router) {
	svc := NewService(r.appCtx)

	mux.Group(func(pr chi.Router) {
		pr.Use(server.RequireAuth(r.appCtx.JWT))
		pr.Post("/swipe/{id}", svc.handleSwipe)
	})
}
