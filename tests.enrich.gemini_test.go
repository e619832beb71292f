package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestEnricher builds a gemini enricher pointed at a fake server.
func newTestEnricher(handler http.HandlerFunc) (*GeminiEnricher, *httptest.Server) {
	server := httptest.NewServer(handler)
	enricher := NewGeminiEnricher(zap.NewNop(), &GeminiConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		TextModel:  "text-model",
		ImageModel: "image-model",
		Timeout:    5 * time.Second,
	})
	return enricher, server
}

// geminiTextAnswer shapes a generateContent response carrying one text part.
func geminiTextAnswer(text string) geminiResponse {
	return geminiResponse{Candidates: []struct {
		Content geminiContent `json:"content"`
	}{{Content: geminiContent{Parts: []geminiPart{{Text: text}}}}}}
}

// Ensure detail suggestions are parsed and their tags sanitized.
func TestGeminiEnricher_SuggestDetails(t *testing.T) {
	enricher, server := newTestEnricher(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/text-model:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.GenerationConfig)
		assert.Equal(t, "application/json", req.GenerationConfig.ResponseMimeType)

		payload := `{"title":"Dune","author":"Frank Herbert","year":1965,"description":"Desert planet epic.","genres":[" Sci-Fi ","Sci-Fi","Classic"]}`
		require.NoError(t, json.NewEncoder(w).Encode(geminiTextAnswer(payload)))
	})
	defer server.Close()

	suggestion, err := enricher.SuggestDetails(context.TODO(), "Dune")
	require.NoError(t, err)
	assert.Equal(t, "Dune", suggestion.Title)
	assert.Equal(t, "Frank Herbert", suggestion.Author)
	assert.Equal(t, 1965, suggestion.Year)
	assert.Equal(t, []string{"Sci-Fi", "Classic"}, suggestion.Genres)
}

// Ensure an upstream failure surfaces as an error with the answer excerpt.
func TestGeminiEnricher_SuggestDetails_UpstreamFailure(t *testing.T) {
	enricher, server := newTestEnricher(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})
	defer server.Close()

	_, err := enricher.SuggestDetails(context.TODO(), "Dune")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

// Ensure a missing api key disables the suggestion endpoint.
func TestGeminiEnricher_SuggestDetails_Disabled(t *testing.T) {
	enricher := NewGeminiEnricher(zap.NewNop(), &GeminiConfig{Timeout: time.Second})
	_, err := enricher.SuggestDetails(context.TODO(), "Dune")
	assert.ErrorIs(t, err, ErrEnrichmentDisabled)
}

// Ensure the biography degrades into placeholders instead of errors.
func TestGeminiEnricher_AuthorBio(t *testing.T) {
	enricher, server := newTestEnricher(func(w http.ResponseWriter, _ *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(geminiTextAnswer("A short biography.")))
	})
	defer server.Close()

	bio, err := enricher.AuthorBio(context.TODO(), "Frank Herbert")
	require.NoError(t, err)
	assert.Equal(t, "A short biography.", bio)

	// unconfigured service yields an explanatory placeholder.
	disabled := NewGeminiEnricher(zap.NewNop(), &GeminiConfig{Timeout: time.Second})
	bio, err = disabled.AuthorBio(context.TODO(), "Frank Herbert")
	require.NoError(t, err)
	assert.Equal(t, bioUnconfigured, bio)

	// unreachable service yields the unavailable placeholder.
	server.Close()
	bio, err = enricher.AuthorBio(context.TODO(), "Frank Herbert")
	require.NoError(t, err)
	assert.Equal(t, bioUnavailable, bio)
}

// Ensure cover generation returns the inline image as a data URL.
func TestGeminiEnricher_GenerateCover(t *testing.T) {
	enricher, server := newTestEnricher(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/image-model:generateContent", r.URL.Path)
		resp := geminiResponse{Candidates: []struct {
			Content geminiContent `json:"content"`
		}{{Content: geminiContent{Parts: []geminiPart{
			{Text: "here is your cover"},
			{InlineData: &geminiBlob{MimeType: "image/png", Data: "aW1hZ2U="}},
		}}}}}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})
	defer server.Close()

	cover, err := enricher.GenerateCover(context.TODO(), "Dune", "Frank Herbert")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,aW1hZ2U=", cover)
}

// Ensure a text-only answer to a cover request is an error.
func TestGeminiEnricher_GenerateCover_NoImage(t *testing.T) {
	enricher, server := newTestEnricher(func(w http.ResponseWriter, _ *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(geminiTextAnswer("no image for you")))
	})
	defer server.Close()

	_, err := enricher.GenerateCover(context.TODO(), "Dune", "Frank Herbert")
	assert.EqualError(t, err, "enrichment service returned no image")
}
