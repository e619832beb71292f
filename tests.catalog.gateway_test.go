package main

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestGateway(t *testing.T) (*ArchiveGateway, *CatalogStore) {
	t.Helper()
	cs, clock := newTestCatalogStore(newNopSnapshotStorage(), nil)
	require.NoError(t, cs.Load(context.TODO()))
	return NewArchiveGateway(zap.NewNop(), cs, clock, NewMockUIDHandler("abc", true)), cs
}

// Ensure the export artifact carries the whole collection and a
// date-stamped filename.
func TestArchiveGateway_ExportAll(t *testing.T) {
	gateway, cs := newTestGateway(t)
	_, err := cs.Add(adminCtx(), BookDraft{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)

	filename, data, err := gateway.ExportAll(context.TODO())
	require.NoError(t, err)
	assert.Equal(t, "bookshelf_2023-07-02.json", filename)

	var books []Book
	require.NoError(t, json.Unmarshal(data, &books))
	require.Len(t, books, 1)
	assert.Equal(t, "Dune", books[0].Title)
}

// Ensure an empty collection yields no artifact.
func TestArchiveGateway_ExportAll_Empty(t *testing.T) {
	gateway, _ := newTestGateway(t)
	_, _, err := gateway.ExportAll(context.TODO())
	assert.ErrorIs(t, err, ErrNothingToExport)
}

// Ensure a valid artifact replaces the whole collection.
func TestArchiveGateway_ImportAll(t *testing.T) {
	gateway, cs := newTestGateway(t)
	_, err := cs.Add(adminCtx(), BookDraft{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)

	artifact := `[
		{"id":"b:1","title":"Hyperion","author":"Dan Simmons","status":"Read","rating":5},
		{"id":"b:2","title":"Ubik","author":"Philip K. Dick","status":"Pending"}
	]`
	total, err := gateway.ImportAll(adminCtx(), []byte(artifact))
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	books := cs.List(context.TODO())
	require.Len(t, books, 2)
	assert.Equal(t, "Hyperion", books[0].Title)
}

// Ensure a bad artifact never touches the current collection.
func TestArchiveGateway_ImportAll_Rejections(t *testing.T) {
	testCases := []struct {
		name     string
		artifact string
		message  string
	}{
		{name: "not a json array", artifact: `{"id":"b:1"}`, message: "import artifact is not a json array"},
		{name: "unreadable payload", artifact: `not json at all`, message: "import artifact is not a json array"},
		{name: "null literal", artifact: `null`, message: "import artifact is not a json array"},
		{name: "missing id", artifact: `[{"title":"Dune","author":"Frank Herbert","status":"Read"}]`, message: "record 0: id is required"},
		{name: "missing author", artifact: `[{"id":"b:1","title":"Dune","status":"Read"}]`, message: "record 0: author is required"},
		{name: "unknown status", artifact: `[{"id":"b:1","title":"Dune","author":"Frank Herbert","status":"Done"}]`, message: "record 0: status is not valid"},
		{name: "rating out of range", artifact: `[{"id":"b:1","title":"Dune","author":"Frank Herbert","status":"Read","rating":9}]`, message: "record 0: rating is not valid"},
		{
			name: "duplicated id",
			artifact: `[
				{"id":"b:1","title":"Dune","author":"Frank Herbert","status":"Read"},
				{"id":"b:1","title":"Ubik","author":"Philip K. Dick","status":"Pending"}
			]`,
			message: "record 1: duplicated id b:1",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gateway, cs := newTestGateway(t)
			_, err := cs.Add(adminCtx(), BookDraft{Title: "Original", Author: "Author"})
			require.NoError(t, err)

			total, err := gateway.ImportAll(adminCtx(), []byte(tc.artifact))
			assert.EqualError(t, err, tc.message)
			assert.Zero(t, total)

			books := cs.List(context.TODO())
			require.Len(t, books, 1)
			assert.Equal(t, "Original", books[0].Title)
		})
	}
}

// Ensure records carrying ids the catalog could never have issued are
// rejected: an adopted record must stay reachable through the id-checked
// lookup endpoints.
func TestArchiveGateway_ImportAll_MalformedID(t *testing.T) {
	cs, clock := newTestCatalogStore(newNopSnapshotStorage(), nil)
	require.NoError(t, cs.Load(context.TODO()))
	gateway := NewArchiveGateway(zap.NewNop(), cs, clock, NewIDsHandler())
	_, err := cs.Add(adminCtx(), BookDraft{Title: "Original", Author: "Author"})
	require.NoError(t, err)

	artifact := `[{"id":"1712345678901","title":"Dune","author":"Frank Herbert","status":"Read"}]`
	total, err := gateway.ImportAll(adminCtx(), []byte(artifact))
	assert.EqualError(t, err, "record 0: id is not valid")
	assert.Zero(t, total)
	require.Len(t, cs.List(context.TODO()), 1)
}
