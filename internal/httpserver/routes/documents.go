package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/notedocs/internal/httpserver/deps"
	"github.com/MrSnakeDoc/notedocs/internal/httpserver/handlers"
)

func init() { RegisterAPI(registerDocuments) }

func registerDocuments(r chi.Router, d deps.Deps) {
	r.Get("/documents", handlers.ListDocuments(d))
	r.Post("/documents", handlers.CreateDocument(d))
	r.Get("/documents/search", handlers.SearchDocuments(d))
	r.Get("/documents/tags/{tag}", handlers.DocumentsByTag(d))
	r.Get("/documents/id/{id}", handlers.GetDocument(d))
	r.Put("/documents/id/{id}", handlers.UpdateDocument(d))
	r.Delete("/documents/id/{id}", handlers.DeleteDocument(d))
}
