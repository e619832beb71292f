package main

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"strings"
)

var ErrBookNotFound = errors.New("book not found")

type (
	ContextKey        string
	missingFieldError string
	invalidFieldError string
)

const (
	BookIDPrefix            string     = "b"
	RequestIDPrefix         string     = "r"
	SessionIDPrefix         string     = "s"
	RequestIDContextKey     ContextKey = "request.id"
	RequestNumberContextKey ContextKey = "request.number"
)

func (m missingFieldError) Error() string {
	return string(m) + " is required"
}

func (i invalidFieldError) Error() string {
	return string(i) + " is not valid"
}

// GetValueFromContext returns the value of a given key in the context
// if this key is not available, it returns an empty string.
func GetValueFromContext(ctx context.Context, contextKey ContextKey) string {
	if val := ctx.Value(contextKey); val != nil {
		return val.(string)
	}
	return ""
}

// GetRequestNumberFromContext returns the request number set in
// the context. if not previously set then it returns 0.
func GetRequestNumberFromContext(ctx context.Context) uint64 {
	if val := ctx.Value(RequestNumberContextKey); val != nil {
		return val.(uint64)
	}
	return 0
}

// DecodeRequestBody is a helper function to read a json request payload.
func DecodeRequestBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errors.New("invalid request body")
	}
	return json.NewDecoder(r.Body).Decode(v)
}

// ValidateBookDraft checks whether a creation submission is acceptable.
// Only title and author are mandatory, the remaining fields either get
// defaults or must simply be coherent when present.
func ValidateBookDraft(draft *BookDraft) error {
	if len(strings.TrimSpace(draft.Title)) == 0 {
		return missingFieldError("title")
	}

	if len(strings.TrimSpace(draft.Author)) == 0 {
		return missingFieldError("author")
	}

	if draft.Rating < 0 || draft.Rating > 5 {
		return invalidFieldError("rating")
	}

	if draft.Status != "" && !draft.Status.IsValid() {
		return invalidFieldError("status")
	}

	return nil
}

// ValidateBookPatch checks whether an edit submission is acceptable on
// its own, before being merged over the stored record.
func ValidateBookPatch(patch *BookPatch) error {
	if patch.Title != nil && len(strings.TrimSpace(*patch.Title)) == 0 {
		return missingFieldError("title")
	}

	if patch.Author != nil && len(strings.TrimSpace(*patch.Author)) == 0 {
		return missingFieldError("author")
	}

	if patch.Rating != nil && (*patch.Rating < 0 || *patch.Rating > 5) {
		return invalidFieldError("rating")
	}

	if patch.Status != nil && !patch.Status.IsValid() {
		return invalidFieldError("status")
	}

	return nil
}

// ValidateImportedBook checks one record of an import artifact against the
// collection invariants. Any violation rejects the whole import.
func ValidateImportedBook(book *Book) error {
	if len(book.ID) == 0 {
		return missingFieldError("id")
	}

	if len(strings.TrimSpace(book.Title)) == 0 {
		return missingFieldError("title")
	}

	if len(strings.TrimSpace(book.Author)) == 0 {
		return missingFieldError("author")
	}

	if book.Rating < 0 || book.Rating > 5 {
		return invalidFieldError("rating")
	}

	if !book.Status.IsValid() {
		return invalidFieldError("status")
	}

	return nil
}

// BearerToken extracts the bearer token carried by the
// Authorization header. It returns an empty string if absent.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// GetRequestSourceIP helps find the source IP of the caller.
func GetRequestSourceIP(r *http.Request) string {
	// Get IP from the X-REAL-IP header
	ip := r.Header.Get("X-REAL-IP")
	netIP := net.ParseIP(ip)
	if netIP != nil {
		return ip
	}

	// Get IP from X-FORWARDED-FOR header
	ips := r.Header.Get("X-FORWARDED-FOR")
	splitIps := strings.Split(ips, ",")
	for _, ip := range splitIps {
		netIP = net.ParseIP(ip)
		if netIP != nil {
			return ip
		}
	}

	// Get IP from RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return ""
	}
	netIP = net.ParseIP(ip)
	if netIP != nil {
		return ip
	}
	return ""
}

// IsAppRunningInDocker checks the existence of the .dockerenv
// file at the root directory and returns a boolean result. This
// helps know if the App is running in a docker container or not.
func IsAppRunningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}
