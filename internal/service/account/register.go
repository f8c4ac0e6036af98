package account

import (
	"github.com/go-chi/chi/v5"

	"github.com/dkazlou/flint/internal/app"
	"github.com/dkazlou/flint/internal/server"
)

// Registrar ties the account service into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the account service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the account routes to the router
func (r *Registrar) Register(mux chi.Router) {
	svc := NewService(r.appCtx)

	mux.Post("/register", svc.handleRegister)
	mux.Post("/login", svc.handleLogin)

	mux.Group(func(pr chi.Router) {
		pr.Use(server.RequireAuth(r.appCtx.JWT))
		pr.Get("/users/{id}", svc.handleGetUser)
		pr.Put("/profile", svc.handleUpdateProfile)
		pr.Put("/password", svc.handleChangePassword)
		pr.Put("/location", svc.handleUpdateLocation)
		pr.Put("/search_radius", svc.handleUpdateSearchRadius)
	})
}
