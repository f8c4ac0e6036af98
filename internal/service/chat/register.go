package chat

import (
	"github.com/go-chi/chi/v5"

	"github.com/dkazlou/flint/internal/app"
	"github.com/dkazlou/flint/internal/server"
)

// Registrar ties the chat service into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the chat service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the chat routes to the router
func (r *Registrar) Register(mux chi.Router) {
	svc := NewService(r.appCtx)

	mux.Group(func(pr chi.Router) {
		pr.Use(server.RequireAuth(r.appCtx.JWT))
		pr.Get("/chats", svc.handleListChats)
		pr.Get("/chats/{id}/messages", svc.handleHistory)
		pr.Post("/chats/{id}/messages", svc.handlePostMessage)
	})
}
