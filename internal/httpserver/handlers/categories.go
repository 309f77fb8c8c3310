package handlers

import (
	"fmt"
	"net/http"

	"github.com/MrSnakeDoc/notedocs/internal/domain"
	"github.com/MrSnakeDoc/notedocs/internal/httpserver/deps"
)

type countedResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
	Count   int  `json:"count"`
}

type addDocumentRequest struct {
	DocID int64 `json:"doc_id"`
}

// ownerAndID reads the {id} path param and the required ?uid owner.
func ownerAndID(r *http.Request) (id, uid int64, err error) {
	if id, err = pathInt64(r, "id"); err != nil {
		return 0, 0, err
	}
	if uid, err = queryInt64(r, "uid"); err != nil {
		return 0, 0, err
	}
	return id, uid, nil
}

func ListCategories(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := queryInt64(r, "uid")
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		cats, err := d.Categories.List(r.Context(), uid)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, countedResponse{Success: true, Data: cats, Count: len(cats)})
	}
}

func CreateCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.CategoryInput
		if err := decodeBody(w, r, &in); err != nil {
			writeError(w, r, d, err)
			return
		}
		c, err := d.Categories.Create(r.Context(), in)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeSuccess(w, d, http.StatusCreated, "category created", c)
	}
}

func UpdateCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, uid, err := ownerAndID(r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		var p domain.CategoryPatch
		if err := decodeBody(w, r, &p); err != nil {
			writeError(w, r, d, err)
			return
		}
		c, err := d.Categories.Update(r.Context(), id, uid, p)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeSuccess(w, d, http.StatusOK, "category updated", c)
	}
}

func DeleteCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, uid, err := ownerAndID(r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		if err := d.Categories.Delete(r.Context(), id, uid); err != nil {
			writeError(w, r, d, err)
			return
		}
		writeSuccess(w, d, http.StatusOK, "category deleted", nil)
	}
}

// AddCategoryDocument links {doc_id} to the category. Linking twice is
// reported as success with a different message.
func AddCategoryDocument(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, uid, err := ownerAndID(r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		var req addDocumentRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, r, d, err)
			return
		}
		added, err := d.Categories.AddDocument(r.Context(), id, uid, req.DocID)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		msg := fmt.Sprintf("document %d added to category %d", req.DocID, id)
		if !added {
			msg = fmt.Sprintf("document %d already in category %d", req.DocID, id)
		}
		writeSuccess(w, d, http.StatusOK, msg, nil)
	}
}

func RemoveCategoryDocument(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, uid, err := ownerAndID(r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		docID, err := pathInt64(r, "doc_id")
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		if err := d.Categories.RemoveDocument(r.Context(), id, uid, docID); err != nil {
			writeError(w, r, d, err)
			return
		}
		writeSuccess(w, d, http.StatusOK, fmt.Sprintf("document %d removed from category %d", docID, id), nil)
	}
}

// CategoryDocuments lists one window of the category's documents; count is
// the total number of linked documents, not the window size.
func CategoryDocuments(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, uid, err := ownerAndID(r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		win := window(r)
		docs, total, err := d.Categories.Documents(r.Context(), id, uid, win)
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
