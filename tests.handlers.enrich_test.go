package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIHandler_SuggestBookDetails(t *testing.T) {
	api, _, _ := newTestAPIHandler(t)
	api.enricher = &MockEnricher{
		SuggestDetailsFunc: func(_ context.Context, title string) (DetailSuggestion, error) {
			assert.Equal(t, "Dune", title)
			return DetailSuggestion{Title: "Dune", Author: "Frank Herbert", Year: 1965, Genres: []string{"Sci-Fi"}}, nil
		},
	}

	w := httptest.NewRecorder()
	api.SuggestBookDetails(w, newTestRequest(http.MethodPost, "/v1/ai/details", strings.NewReader(`{"title":"Dune"}`), true), nil)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var resp APIResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "Frank Herbert", data["author"])
}

func TestAPIHandler_SuggestBookDetails_Rejections(t *testing.T) {
	api, _, _ := newTestAPIHandler(t)

	// a title is mandatory.
	w := httptest.NewRecorder()
	api.SuggestBookDetails(w, newTestRequest(http.MethodPost, "/v1/ai/details", strings.NewReader(`{"title":"  "}`), true), nil)
	res := w.Result()
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	// a disabled service is a client-actionable failure.
	api.enricher = &MockEnricher{
		SuggestDetailsFunc: func(_ context.Context, _ string) (DetailSuggestion, error) {
			return DetailSuggestion{}, ErrEnrichmentDisabled
		},
	}
	w = httptest.NewRecorder()
	api.SuggestBookDetails(w, newTestRequest(http.MethodPost, "/v1/ai/details", strings.NewReader(`{"title":"Dune"}`), true), nil)
	res = w.Result()
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	// an upstream failure surfaces as a bad gateway.
	api.enricher = &MockEnricher{
		SuggestDetailsFunc: func(_ context.Context, _ string) (DetailSuggestion, error) {
			return DetailSuggestion{}, assert.AnError
		},
	}
	w = httptest.NewRecorder()
	api.SuggestBookDetails(w, newTestRequest(http.MethodPost, "/v1/ai/details", strings.NewReader(`{"title":"Dune"}`), true), nil)
	res = w.Result()
	res.Body.Close()
	assert.Equal(t, http.StatusBadGateway, res.StatusCode)
}

func TestAPIHandler_GetAuthorBio(t *testing.T) {
	api, _, _ := newTestAPIHandler(t)
	api.enricher = &MockEnricher{
		AuthorBioFunc: func(_ context.Context, author string) (string, error) {
			assert.Equal(t, "Frank Herbert", author)
			return "A short biography.", nil
		},
	}

	w := httptest.NewRecorder()
	api.GetAuthorBio(w, newTestRequest(http.MethodGet, "/v1/ai/bio?author=Frank+Herbert", nil, false), nil)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var resp APIResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "A short biography.", data["bio"])
}

func TestAPIHandler_GetAuthorBio_MissingAuthor(t *testing.T) {
	api, _, _ := newTestAPIHandler(t)

	w := httptest.NewRecorder()
	api.GetAuthorBio(w, newTestRequest(http.MethodGet, "/v1/ai/bio", nil, false), nil)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestAPIHandler_GenerateBookCover(t *testing.T) {
	api, _, _ := newTestAPIHandler(t)
	api.enricher = &MockEnricher{
		GenerateCoverFunc: func(_ context.Context, title, author string) (string, error) {
			assert.Equal(t, "Dune", title)
			assert.Equal(t, "Frank Herbert", author)
			return "data:image/png;base64,aW1hZ2U=", nil
		},
	}

	w := httptest.NewRecorder()
	api.GenerateBookCover(w, newTestRequest(http.MethodPost, "/v1/ai/cover", strings.NewReader(`{"title":"Dune","author":"Frank Herbert"}`), true), nil)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var resp APIResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "Dune_cover.png", data["filename"])
	assert.Equal(t, "data:image/png;base64,aW1hZ2U=", data["cover"])
}

func TestAPIHandler_GenerateBookCover_MissingFields(t *testing.T) {
	api, _, _ := newTestAPIHandler(t)

	w := httptest.NewRecorder()
	api.GenerateBookCover(w, newTestRequest(http.MethodPost, "/v1/ai/cover", strings.NewReader(`{"title":"Dune"}`), true), nil)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}
