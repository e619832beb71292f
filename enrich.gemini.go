package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// ErrEnrichmentDisabled is returned when no api key is configured.
var ErrEnrichmentDisabled = errors.New("enrichment api key is not configured")

// DetailSuggestion carries the metadata proposed by the enrichment
// service for a draft. Callers merge it over their draft explicitly, so
// a failed call leaves the draft untouched.
type DetailSuggestion struct {
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Year        int      `json:"year"`
	Description string   `json:"description"`
	Genres      []string `json:"genres"`
}

// Enricher describes the external generative service contract consumed
// by the catalog: metadata suggestion, author biography and cover
// image generation. Implementations own their transport and auth.
type Enricher interface {
	SuggestDetails(ctx context.Context, title string) (DetailSuggestion, error)
	AuthorBio(ctx context.Context, author string) (string, error)
	GenerateCover(ctx context.Context, title, author string) (string, error)
}

const (
	bioUnconfigured = "Configure the enrichment API key to see author biographies."
	bioUnavailable  = "No information could be found about this author."
)

// suggestionSchema constrains the structured suggestion response.
var suggestionSchema = json.RawMessage(`{
	"type": "OBJECT",
	"properties": {
		"title": {"type": "STRING"},
		"author": {"type": "STRING"},
		"year": {"type": "INTEGER"},
		"description": {"type": "STRING"},
		"genres": {"type": "ARRAY", "items": {"type": "STRING"}, "description": "List of 3-5 genre or theme tags"}
	},
	"required": ["title", "author", "year", "description", "genres"]
}`)

type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *geminiBlob `json:"inlineData,omitempty"`
}

type geminiBlob struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// GeminiEnricher implements the Enricher interface over the Gemini
// generateContent REST endpoint.
type GeminiEnricher struct {
	logger *zap.Logger
	config *GeminiConfig
	client *http.Client
}

var _ Enricher = (*GeminiEnricher)(nil) // ensure GeminiEnricher implements Enricher.

// NewGeminiEnricher provides a ready to use GeminiEnricher.
func NewGeminiEnricher(logger *zap.Logger, config *GeminiConfig) *GeminiEnricher {
	return &GeminiEnricher{
		logger: logger,
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// SuggestDetails asks the service for the technical details of the book
// carrying the given title. The response is constrained to a structured
// json document matching DetailSuggestion; genre tags are sanitized the
// same way user-entered tags are.
func (ge *GeminiEnricher) SuggestDetails(ctx context.Context, title string) (DetailSuggestion, error) {
	var suggestion DetailSuggestion
	if ge.config.APIKey == "" {
		return suggestion, ErrEnrichmentDisabled
	}

	prompt := fmt.Sprintf("Provide the technical details of the book titled %q.", title)
	resp, err := ge.generate(ctx, ge.config.TextModel, &geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   suggestionSchema,
		},
	})
	if err != nil {
		return suggestion, err
	}

	text := firstTextPart(resp)
	if text == "" {
		return suggestion, errors.New("enrichment service returned no suggestion")
	}
	if err = json.Unmarshal([]byte(text), &suggestion); err != nil {
		return DetailSuggestion{}, fmt.Errorf("unreadable suggestion payload: %v", err)
	}
	suggestion.Genres = SanitizeTags(suggestion.Genres)
	return suggestion, nil
}

// AuthorBio asks the service for a short professional biography of the
// given author. An unconfigured or unreachable service yields an
// explanatory placeholder string instead of an error: callers treat
// both outcomes as a display string.
func (ge *GeminiEnricher) AuthorBio(ctx context.Context, author string) (string, error) {
	if ge.config.APIKey == "" {
		return bioUnconfigured, nil
	}

	prompt := fmt.Sprintf("Write a very brief professional biography of the author %q. "+
		"Include their nationality, main style and a list of their 3-5 most famous books. "+
		"Format: one short paragraph followed by a list of notable works.", author)
	resp, err := ge.generate(ctx, ge.config.TextModel, &geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		ge.logger.Warn("enrichment: biography fetch failed", zap.String("author", author), zap.Error(err))
		return bioUnavailable, nil
	}

	if text := firstTextPart(resp); text != "" {
		return text, nil
	}
	return bioUnavailable, nil
}

// GenerateCover asks the image model for a cover proposal and returns it
// as a data URL suited for a direct download.
func (ge *GeminiEnricher) GenerateCover(ctx context.Context, title, author string) (string, error) {
	if ge.config.APIKey == "" {
		return "", ErrEnrichmentDisabled
	}

	prompt := fmt.Sprintf("Generate a professional, artistic book cover. Title: %q. Author: %q. "+
		"The design must visibly integrate the title at the top and the author name at the bottom, "+
		"using an elegant typography. Cinematic style, themed after the title, balanced 3:4 composition.",
		title, author)
	resp, err := ge.generate(ctx, ge.config.ImageModel, &geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				return "data:image/png;base64," + part.InlineData.Data, nil
			}
		}
	}
	return "", errors.New("enrichment service returned no image")
}

// generate performs one generateContent call against the given model.
func (ge *GeminiEnricher) generate(ctx context.Context, model string, payload *geminiRequest) (*geminiResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", ge.config.BaseURL, model, ge.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ge.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("enrichment service answered %d: %s", resp.StatusCode, truncate(string(data), 256))
	}

	out := &geminiResponse{}
	if err = json.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("unreadable enrichment response: %v", err)
	}
	return out, nil
}

// firstTextPart returns the first non-empty text part of the response.
func firstTextPart(resp *geminiResponse) string {
	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				return part.Text
			}
		}
	}
	return ""
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
