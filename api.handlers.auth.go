package main

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// LoginRequest is the payload of a privileged session request.
type LoginRequest struct {
	Secret string `json:"secret"`
}

// Login grants a privileged session token when the submitted secret
// matches the configured one. A mismatch always answers 401 without
// telling more.
func (api *APIHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var payload LoginRequest
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	err := DecodeRequestBody(r, &payload)
	if err != nil {
		api.logger.Error("failed to read login request", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to read the login request", EmptyData)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	token, err := api.gate.AttemptLogin(payload.Secret)
	if err != nil {
		if errors.Is(err, ErrBadSecret) {
			api.logger.Error("rejected login attempt",
				zap.String("request.id", requestID),
				zap.String("request.ip", GetRequestSourceIP(r)),
			)
			errResp := NewAPIError(requestID, http.StatusUnauthorized, "secret provided is not valid", EmptyData)
			if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
				api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
			}
			return
		}
		api.logger.Error("failed to issue session token", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to open the session", EmptyData)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	api.logger.Info("privileged session opened", zap.String("request.id", requestID))
	resp := GenericResponse(requestID, http.StatusOK, "Session opened successfully.", nil,
		map[string]string{
			"token":   token,
			"expires": api.clock.Now().Add(api.config.Catalog.SessionTTL).UTC().String(),
		})
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// Logout revokes the session carried by the bearer token. It always
// answers 200: an absent or already dead session leaves nothing to do.
func (api *APIHandler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	if token := BearerToken(r); token != "" {
		api.gate.Logout(token)
	}
	api.logger.Info("privileged session closed", zap.String("request.id", requestID))
	resp := GenericResponse(requestID, http.StatusOK, "Session closed successfully.", nil, EmptyData)
	if err := WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}
