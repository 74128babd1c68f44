package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/handlers"
)

func init() { Register(registerJump, Restricted) }

func registerJump(r chi.Router, d deps.Deps) {
	r.Get("/go", handlers.Jump(d))
}
