package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/bookmark"
	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

type createBookmarkRequest struct {
	URL     string `json:"url" validate:"required,http_url"`
	HTML    string `json:"html"`
	Title   string `json:"title" validate:"max=1000"`
	Target  string `json:"target" validate:"max=512"`
	Favicon string `json:"favicon"`
}

type updateTopicRequest struct {
	Topic string `json:"topic" validate:"required"`
}

// maxTopicBodyBytes caps a retag body, which only carries a label.
const maxTopicBodyBytes = 4 << 10

// decodeBody reads a JSON body of at most limit bytes (no cap when limit is
// 0) and answers 413 or 400 itself when it cannot.
func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, v any) bool {
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// CreateBookmark runs the save pipeline for one page. A page that cannot be
// read still produces a record; only a store failure fails the request.
func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createBookmarkRequest
		if !decodeBody(w, r, d.MaxBodyBytes, &req) {
			return
		}
		if err := validateStruct(req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		b, err := d.Bookmarks.Save(r.Context(), bookmark.Request{
			URL:     req.URL,
			HTML:    req.HTML,
			Title:   req.Title,
			Target:  req.Target,
			Favicon: req.Favicon,
		})
		if err != nil {
			d.Logger.Error("failed to save bookmark",
				logger.String("url", req.URL),
				logger.Error(err))
			writeError(w, statusFor(err), "bookmark could not be saved")
			return
		}
		writeJSON(w, http.StatusCreated, b)
	}
}

func filterFrom(r *http.Request) domain.Filter {
	q := r.URL.Query()
	return domain.Filter{
		Search: q.Get("search"),
		Topic:  q.Get("topic"),
		Source: q.Get("source"),
	}
}

// ListBookmarks serves the filtered replica in stored order.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Bookmarks.List(filterFrom(r)))
	}
}

// GroupedBookmarks serves the filtered replica grouped by topic.
func GroupedBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Bookmarks.Grouped(filterFrom(r)))
	}
}

// UpdateTopic retags a bookmark. An absent id is not an error.
func UpdateTopic(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req updateTopicRequest
		if !decodeBody(w, r, maxTopicBodyBytes, &req) {
			return
		}
		if err := validateStruct(req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := d.Bookmarks.UpdateTopic(r.Context(), id, req.Topic); err != nil {
			status := statusFor(err)
			if status == http.StatusBadRequest {
				writeError(w, status, err.Error())
				return
			}
			d.Logger.Error("failed to update topic",
				logger.String("id", id),
				logger.Error(err))
			writeError(w, status, "topic could not be updated")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteBookmark removes a bookmark. An absent id is not an error.
func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := d.Bookmarks.Remove(r.Context(), id); err != nil {
			d.Logger.Error("failed to remove bookmark",
				logger.String("id", id),
				logger.Error(err))
			writeError(w, statusFor(err), "bookmark could not be removed")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Topics lists the taxonomy labels in declared order.
func Topics(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Bookmarks.Topics())
	}
}
