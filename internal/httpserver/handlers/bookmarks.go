package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/notedocs/internal/domain"
	"github.com/MrSnakeDoc/notedocs/internal/httpserver/deps"
)

// ListBookmarks serves GET /api/bookmarks?page&page_size&search&tag.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, err := d.Bookmarks.List(r.Context(), domain.Query{
			Search:   q.Get("search"),
			Tag:      q.Get("tag"),
			Page:     queryInt(r, "page", 1),
			PageSize: queryInt(r, "page_size", domain.DefaultPageSize),
		})
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, listResponse{
			Success:    true,
			Data:       page.Items,
			Pagination: page.Pagination,
		})
	}
}

func GetBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := d.Bookmarks.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

// CreateBookmark stores the body as a new bookmark and records the caller's
// User-Agent on it.
func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.BookmarkInput
		if err := decodeBody(w, r, &in); err != nil {
			writeError(w, r, d, err)
			return
		}
		b, err := d.Bookmarks.Create(r.Context(), in, r.UserAgent())
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func UpdateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p domain.BookmarkPatch
		if err := decodeBody(w, r, &p); err != nil {
			writeError(w, r, d, err)
			return
		}
		b, err := d.Bookmarks.Update(r.Context(), chi.URLParam(r, "id"), p)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := d.Bookmarks.Delete(r.Context(), id); err != nil {
			writeError(w, r, d, err)
			return
		}
		writeSuccess(w, d, http.StatusOK, "bookmark "+id+" deleted", nil)
	}
}
