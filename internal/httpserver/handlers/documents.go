package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/notedocs/internal/domain"
	"github.com/MrSnakeDoc/notedocs/internal/httpserver/deps"
	"github.com/MrSnakeDoc/notedocs/internal/logger"
)

// CreateDocument upserts by title: posting an existing title overwrites
// that row and keeps its id.
func CreateDocument(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.DocumentInput
		if err := decodeBody(w, r, &in); err != nil {
			writeError(w, r, d, err)
			return
		}
		doc, err := d.Documents.Create(r.Context(), in)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		d.Logger.Debug("document written",
			logger.Int64("id", doc.ID),
			logger.String("title", doc.Title))
		writeSuccess(w, d, http.StatusOK, "document saved", doc)
	}
}

func ListDocuments(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := queryInt64(r, "uid")
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		win := window(r)
		docs, total, err := d.Documents.List(r.Context(), uid, win)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, windowResponse{
			Success: true,
			Data:    docs,
			Count:   total,
			Limit:   win.Limit,
			Offset:  win.Offset,
		})
	}
}

func GetDocument(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathInt64(r, "id")
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		doc, err := d.Documents.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

func UpdateDocument(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathInt64(r, "id")
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		var p domain.DocumentPatch
		if err := decodeBody(w, r, &p); err != nil {
			writeError(w, r, d, err)
			return
		}
		doc, err := d.Documents.Update(r.Context(), id, p)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

func DeleteDocument(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathInt64(r, "id")
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		if err := d.Documents.Delete(r.Context(), id); err != nil {
			writeError(w, r, d, err)
			return
		}
		writeSuccess(w, d, http.StatusOK, "document deleted", nil)
	}
}

// SearchDocuments returns the best rated matches first. Content comes back
// as a preview.
func SearchDocuments(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := queryInt64(r, "uid")
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		win := window(r)
		docs, err := d.Documents.Search(r.Context(), r.URL.Query().Get("keyword"), uid, win)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, windowResponse{
			Success: true,
			Data:    docs,
			Count:   len(docs),
			Limit:   win.Limit,
			Offset:  win.Offset,
		})
	}
}

func DocumentsByTag(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := queryInt64(r, "uid")
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		win := window(r)
		docs, err := d.Documents.ByTag(r.Context(), chi.URLParam(r, "tag"), uid, win)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, windowResponse{
			Success: true,
			Data:    docs,
			Count:   len(docs),
			Limit:   win.Limit,
			Offset:  win.Offset,
		})
	}
}
