package main

import (
	"github.com/julienschmidt/httprouter"
)

// SetupCatalogRoutes injects the catalog related api endpoints. Reads
// stay public while every mutation and enrichment call goes through
// the privileged chain.
func (api *APIHandler) SetupCatalogRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.RedirectTrailingSlash = true
	router.GET("/", m.public(api.Index))
	router.GET("/status", m.public(api.Status))

	router.POST("/v1/login", m.public(api.Login))
	router.POST("/v1/logout", m.public(api.Logout))

	router.GET("/v1/books", m.public(api.GetAllBooks))
	router.GET("/v1/books/:id", m.public(api.GetOneBook))
	router.POST("/v1/books", m.admin(api.CreateBook))
	router.PUT("/v1/books/:id", m.admin(api.UpdateBook))
	router.DELETE("/v1/books/:id", m.admin(api.DeleteOneBook))

	router.GET("/v1/archive/export", m.admin(api.ExportBooks))
	router.POST("/v1/archive/import", m.admin(api.ImportBooks))

	router.POST("/v1/ai/details", m.admin(api.SuggestBookDetails))
	router.GET("/v1/ai/bio", m.public(api.GetAuthorBio))
	router.POST("/v1/ai/cover", m.admin(api.GenerateBookCover))
	return router
}
