package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/mw"
)

func init() { Register(registerBookmarks, Restricted) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	r.Route("/api", func(api chi.Router) {
		api.With(mw.RateLimit(mw.RateLimitConfig{
			Burst:             d.RateBurst,
			RefillPerIPPerMin: d.RatePerMin,
			MaxEntries:        10_000,
			TrustProxy:        d.TrustProxy,
		})).Post("/bookmarks", handlers.CreateBookmark(d))

		api.Get("/bookmarks", handlers.ListBookmarks(d))
		api.Get("/bookmarks/grouped", handlers.GroupedBookmarks(d))
		api.Patch("/bookmarks/{id}", handlers.UpdateTopic(d))
		api.Delete("/bookmarks/{id}", handlers.DeleteBookmark(d))
		api.Get("/topics", handlers.Topics(d))
	})
}
