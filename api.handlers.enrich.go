package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// EnrichmentRequest is the payload of the detail suggestion and cover
// generation endpoints. The cover endpoint also uses the author field.
type EnrichmentRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// SuggestBookDetails asks the enrichment service for the metadata of the
// book carrying the submitted title. The suggestion never touches the
// collection: the caller merges it into a draft explicitly.
func (api *APIHandler) SuggestBookDetails(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var payload EnrichmentRequest
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	err := DecodeRequestBody(r, &payload)
	if err != nil || strings.TrimSpace(payload.Title) == "" {
		api.logger.Error("failed to read suggestion request", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "a book title is required", EmptyData)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	suggestion, err := api.enricher.SuggestDetails(r.Context(), strings.TrimSpace(payload.Title))
	if err != nil {
		api.writeEnrichmentError(w, r, requestID, "failed to suggest the book details", err)
		return
	}

	api.logger.Info("success to suggest book details", zap.String("book.title", payload.Title), zap.String("request.id", requestID))
	resp := GenericResponse(requestID, http.StatusOK, "Book details suggested successfully.", nil, suggestion)
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// GetAuthorBio serves a short biography of the author passed as the
// `author` query parameter. The enrichment service already degrades an
// unconfigured or unreachable state into a displayable placeholder.
func (api *APIHandler) GetAuthorBio(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	author := strings.TrimSpace(r.URL.Query().Get("author"))
	if author == "" {
		errResp := NewAPIError(requestID, http.StatusBadRequest, "an author name is required", EmptyData)
		if err := WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	bio, err := api.enricher.AuthorBio(r.Context(), author)
	if err != nil {
		api.writeEnrichmentError(w, r, requestID, "failed to fetch the author biography", err)
		return
	}

	api.logger.Info("success to fetch author biography", zap.String("book.author", author), zap.String("request.id", requestID))
	resp := GenericResponse(requestID, http.StatusOK, "Author biography fetched successfully.", nil,
		map[string]string{
			"author": author,
			"bio":    bio,
		})
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// GenerateBookCover asks the enrichment service for a cover proposal and
// returns it as a data URL along with a download-safe filename.
func (api *APIHandler) GenerateBookCover(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var payload EnrichmentRequest
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	err := DecodeRequestBody(r, &payload)
	if err != nil || strings.TrimSpace(payload.Title) == "" || strings.TrimSpace(payload.Author) == "" {
		api.logger.Error("failed to read cover request", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "a book title and author are required", EmptyData)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	cover, err := api.enricher.GenerateCover(r.Context(), strings.TrimSpace(payload.Title), strings.TrimSpace(payload.Author))
	if err != nil {
		api.writeEnrichmentError(w, r, requestID, "failed to generate the book cover", err)
		return
	}

	api.logger.Info("success to generate book cover", zap.String("book.title", payload.Title), zap.String("request.id", requestID))
	resp := GenericResponse(requestID, http.StatusOK, "Book cover generated successfully.", nil,
		map[string]string{
			"filename": SanitizeCoverFilename(payload.Title),
			"cover":    cover,
		})
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// writeEnrichmentError maps enrichment failures onto api errors: an
// unconfigured service is a client-actionable 400 while an upstream
// failure surfaces as a 502.
func (api *APIHandler) writeEnrichmentError(w http.ResponseWriter, r *http.Request, requestID, message string, err error) {
	api.logger.Error(message, zap.String("request.id", requestID), zap.Error(err))
	errResp := NewAPIError(requestID, http.StatusBadGateway, message, err.Error())
	if errors.Is(err, ErrEnrichmentDisabled) {
		errResp = NewAPIError(requestID, http.StatusBadRequest, "enrichment is disabled. configure the api key first.", EmptyData)
	}
	if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
		api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
	}
}
