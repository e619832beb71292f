package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIHandler_Login(t *testing.T) {
	api, _, _ := newTestAPIHandler(t)

	w := httptest.NewRecorder()
	api.Login(w, newTestRequest(http.MethodPost, "/v1/login", strings.NewReader(`{"secret":"test-secret"}`), false), nil)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var resp APIResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&resp))
	data := resp.Data.(map[string]interface{})
	token := data["token"].(string)
	require.NotEmpty(t, token)
	assert.True(t, api.gate.Verify(token))
}

func TestAPIHandler_Login_WrongSecret(t *testing.T) {
	api, _, _ := newTestAPIHandler(t)

	w := httptest.NewRecorder()
	api.Login(w, newTestRequest(http.MethodPost, "/v1/login", strings.NewReader(`{"secret":"nope"}`), false), nil)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestAPIHandler_Login_BadPayload(t *testing.T) {
	api, _, _ := newTestAPIHandler(t)

	w := httptest.NewRecorder()
	api.Login(w, newTestRequest(http.MethodPost, "/v1/login", strings.NewReader(`not json`), false), nil)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestAPIHandler_Logout(t *testing.T) {
	api, _, _ := newTestAPIHandler(t)
	token, err := api.gate.AttemptLogin("test-secret")
	require.NoError(t, err)
	require.True(t, api.gate.Verify(token))

	r := newTestRequest(http.MethodPost, "/v1/logout", nil, false)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	api.Logout(w, r, nil)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.False(t, api.gate.Verify(token))
}

func TestAPIHandler_Logout_WithoutToken(t *testing.T) {
	api, _, _ := newTestAPIHandler(t)

	w := httptest.NewRecorder()
	api.Logout(w, newTestRequest(http.MethodPost, "/v1/logout", nil, false), nil)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
