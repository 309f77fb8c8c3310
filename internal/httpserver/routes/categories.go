package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/notedocs/internal/httpserver/deps"
	"github.com/MrSnakeDoc/notedocs/internal/httpserver/handlers"
)

func init() { RegisterAPI(registerCategories) }

func registerCategories(r chi.Router, d deps.Deps) {
	r.Get("/categories", handlers.ListCategories(d))
	r.Post("/categories", handlers.CreateCategory(d))
	r.Put("/categories/{id}", handlers.UpdateCategory(d))
	r.Delete("/categories/{id}", handlers.DeleteCategory(d))
	r.Get("/categories/{id}/docs", handlers.CategoryDocuments(d))
	r.Post("/categories/{id}/docs", handlers.AddCategoryDocument(d))
	r.Delete("/categories/{id}/docs/{doc_id}", handlers.RemoveCategoryDocument(d))
}
