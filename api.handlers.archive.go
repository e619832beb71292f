package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// maxImportSize bounds the import artifact to 10MB.
const maxImportSize = 10 << 20

// ExportBooks serves the whole collection as a downloadable json
// artifact named after the current date.
func (api *APIHandler) ExportBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	filename, data, err := api.gateway.ExportAll(r.Context())
	if errors.Is(err, ErrNothingToExport) {
		api.logger.Info("no books to export", zap.String("request.id", requestID))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "there are no books to export", EmptyData)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	if err != nil {
		api.logger.Error("failed to export books", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to export the books", EmptyData)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	api.logger.Info("success to export books", zap.String("archive.name", filename), zap.String("request.id", requestID))
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err = w.Write(data); err != nil {
		api.logger.Error("failed to send archive", zap.String("request.id", requestID), zap.Error(err))
	}
}

// ImportBooks replaces the whole collection with the uploaded artifact.
// The upload is fully validated first so a bad artifact never touches
// the current collection.
func (api *APIHandler) ImportBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
	if err != nil {
		api.logger.Error("failed to read import artifact", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to read the import artifact", EmptyData)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	total, err := api.gateway.ImportAll(r.Context(), data)
	switch {
	case errors.Is(err, ErrNotPrivileged):
		errResp := NewAPIError(requestID, http.StatusForbidden, "a privileged session is required", EmptyData)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	case err != nil:
		api.logger.Error("failed to import books", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to import the books", err.Error())
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	api.logger.Info("success to import books", zap.Int("books.total", total), zap.String("request.id", requestID))
	resp := GenericResponse(requestID, http.StatusOK, "Books imported successfully.", &total, EmptyData)
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}
