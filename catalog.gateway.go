package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	// ErrNothingToExport is returned when the collection is empty.
	ErrNothingToExport = errors.New("no records to export")
	// ErrInvalidFormat is returned when the import artifact is not a json array.
	ErrInvalidFormat = errors.New("import artifact is not a json array")
)

// ArchiveGateway serializes the full collection into a portable artifact
// and validates then adopts an external one. Import is an all-or-nothing
// replacement: the existing collection stays untouched on any failure.
type ArchiveGateway struct {
	logger  *zap.Logger
	catalog CatalogProvider
	clock   Clocker
	ids     UIDHandler
}

// NewArchiveGateway provides a ready to use ArchiveGateway.
func NewArchiveGateway(logger *zap.Logger, catalog CatalogProvider, clock Clocker, ids UIDHandler) *ArchiveGateway {
	return &ArchiveGateway{
		logger:  logger,
		catalog: catalog,
		clock:   clock,
		ids:     ids,
	}
}

// ExportAll serializes the collection as a pretty-printed json array and
// names the artifact with the current date. An empty collection yields
// ErrNothingToExport and no artifact.
func (g *ArchiveGateway) ExportAll(ctx context.Context) (string, []byte, error) {
	books := g.catalog.List(ctx)
	if len(books) == 0 {
		return "", nil, ErrNothingToExport
	}
	data, err := json.MarshalIndent(books, "", "  ")
	if err != nil {
		return "", nil, err
	}
	filename := fmt.Sprintf("bookshelf_%s.json", g.clock.Now().Format("2006-01-02"))
	return filename, data, nil
}

// ImportAll parses the artifact and replaces the whole collection on
// success, reporting the count of adopted records. The artifact must be
// a json array and every record must satisfy the collection invariants:
// a well-formed id, non-empty title and author, a known status, a rating
// within range and no duplicated id. Any violation rejects the whole
// import and the current collection stays untouched.
func (g *ArchiveGateway) ImportAll(ctx context.Context, data []byte) (int, error) {
	var books []Book
	if err := json.Unmarshal(data, &books); err != nil {
		g.logger.Error("archive: rejected import artifact", zap.Error(err))
		return 0, ErrInvalidFormat
	}
	// the json `null` literal decodes into a nil slice without any error.
	if books == nil {
		g.logger.Error("archive: rejected import artifact", zap.String("reason", "null payload"))
		return 0, ErrInvalidFormat
	}

	seen := make(map[string]struct{}, len(books))
	for i := range books {
		if err := ValidateImportedBook(&books[i]); err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
		if !g.ids.IsValid(books[i].ID, BookIDPrefix) {
			return 0, fmt.Errorf("record %d: %w", i, invalidFieldError("id"))
		}
		if _, dup := seen[books[i].ID]; dup {
			return 0, fmt.Errorf("record %d: duplicated id %s", i, books[i].ID)
		}
		seen[books[i].ID] = struct{}{}
	}

	return g.catalog.Replace(ctx, books)
}
