package handlers

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// Jump redirects to the bookmark whose title best matches ?q=, for use as a
// browser search shortcut. Without a match it answers 404.
func Jump(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			writeError(w, http.StatusBadRequest, "q is required")
			return
		}

		candidates := domain.Rank(query, d.MemoryIndex.All())
		if len(candidates) == 0 {
			d.Logger.Info("no matching bookmark",
				logger.String("query", query))
			writeError(w, http.StatusNotFound, "no matching bookmark")
			return
		}

		best := candidates[0]
		d.Logger.Info("resolved bookmark",
			logger.String("query", query),
			logger.String("id", best.Bookmark.ID),
			logger.String("url", best.Bookmark.URL),
			logger.Any("score", best.Score))

		http.Redirect(w, r, best.Bookmark.URL, http.StatusFound)
	}
}
