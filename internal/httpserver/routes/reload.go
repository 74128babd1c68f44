package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/handlers"
)

func init() { Register(registerReload, Restricted) }

func registerReload(r chi.Router, d deps.Deps) {
	if d.Syncer == nil {
		return
	}
	r.Post("/reload", handlers.Reload(d))
}
