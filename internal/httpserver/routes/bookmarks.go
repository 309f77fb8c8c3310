package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/notedocs/internal/httpserver/deps"
	"github.com/MrSnakeDoc/notedocs/internal/httpserver/handlers"
)

func init() { RegisterAPI(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	r.Get("/bookmarks", handlers.ListBookmarks(d))
	r.Post("/bookmarks", handlers.CreateBookmark(d))
	r.Get("/bookmarks/{id}", handlers.GetBookmark(d))
	r.Put("/bookmarks/{id}", handlers.UpdateBookmark(d))
	r.Delete("/bookmarks/{id}", handlers.DeleteBookmark(d))
}
