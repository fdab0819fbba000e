package search

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citybreaker/citybreaker-server/internal/domain"
	"github.com/citybreaker/citybreaker-server/internal/geo"
)

// setupTestIndex creates a temporary search index for testing.
func setupTestIndex(t *testing.T) (*SearchIndex, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "search-test-*")
	require.NoError(t, err)

	index, err := NewSearchIndex(Options{
		DataPath: tmpDir,
		Logger:   nil,
	})
	require.NoError(t, err)

	cleanup := func() {
		_ = index.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return index, cleanup
}

func TestNewSearchIndex(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearchIndex_IndexDocument(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	doc := &ScanDocument{
		ID:      "scan-123",
		OwnerID: "user-1",
		Name:    "Eiffel Tower",
		Tags:    []string{"modern", "tower"},
	}

	err := index.IndexDocument(doc)
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestSearchIndex_IndexDocuments_Batch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*ScanDocument{
		{ID: "scan-1", Name: "Eiffel Tower"},
		{ID: "scan-2", Name: "Arc de Triomphe"},
		{ID: "scan-3", Name: "Sacre Coeur"},
	}

	err := index.IndexDocuments(docs)
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestSearchIndex_DeleteDocument(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	doc := &ScanDocument{
		ID:   "scan-123",
		Name: "Eiffel Tower",
	}

	err := index.IndexDocument(doc)
	require.NoError(t, err)

	err = index.DeleteDocument("scan-123")
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearchIndex_Search_Basic(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*ScanDocument{
		{ID: "scan-1", Name: "Notre-Dame Cathedral", Description: "Gothic cathedral in Paris"},
		{ID: "scan-2", Name: "Chartres Cathedral", Description: "Gothic masterpiece"},
		{ID: "scan-3", Name: "Louvre Museum", Description: "World's largest art museum"},
	}

	err := index.IndexDocuments(docs)
	require.NoError(t, err)

	ctx := context.Background()

	result, err := index.Search(ctx, SearchParams{
		Query: "cathedral",
		Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)
	assert.Len(t, result.Hits, 2)
}

func TestSearchIndex_Search_ByTag(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*ScanDocument{
		{ID: "scan-1", Name: "Notre-Dame", Tags: []string{"gothic", "cathedral"}},
		{ID: "scan-2", Name: "Chrysler Building", Tags: []string{"art_deco", "skyscraper"}},
		{ID: "scan-3", Name: "Sainte-Chapelle", Tags: []string{"gothic", "church"}},
	}

	err := index.IndexDocuments(docs)
	require.NoError(t, err)

	ctx := context.Background()

	result, err := index.Search(ctx, SearchParams{
		Query: "",
		Tags:  []string{"gothic"},
		Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)

	// Compound slug stays intact under the keyword analyzer
	result, err = index.Search(ctx, SearchParams{
		Query: "",
		Tags:  []string{"art_deco"},
		Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Total)
	assert.Equal(t, "scan-2", result.Hits[0].ID)
}

func TestSearchIndex_Search_ExcludeOwner(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*ScanDocument{
		{ID: "scan-1", OwnerID: "user-1", Name: "Notre-Dame Cathedral"},
		{ID: "scan-2", OwnerID: "user-2", Name: "Chartres Cathedral"},
	}

	err := index.IndexDocuments(docs)
	require.NoError(t, err)

	ctx := context.Background()

	result, err := index.Search(ctx, SearchParams{
		Query:        "cathedral",
		ExcludeOwner: "user-1",
		Limit:        10,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Total)
	assert.Equal(t, "scan-2", result.Hits[0].ID)
}

func TestSearchIndex_Search_Prefix(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	doc := &ScanDocument{
		ID:   "scan-1",
		Name: "Colosseum",
	}

	err := index.IndexDocument(doc)
	require.NoError(t, err)

	ctx := context.Background()

	// Search with prefix - should find result
	result, err := index.Search(ctx, SearchParams{
		Query: "Colo", // Prefix of Colosseum
		Limit: 10,
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Total, uint64(1))
}

func TestSearchIndex_Search_MinRating(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*ScanDocument{
		{ID: "scan-1", Name: "Tourist Trap", Rating: 2},
		{ID: "scan-2", Name: "Hidden Gem", Rating: 5},
		{ID: "scan-3", Name: "Decent Spot", Rating: 4},
	}

	err := index.IndexDocuments(docs)
	require.NoError(t, err)

	ctx := context.Background()

	result, err := index.Search(ctx, SearchParams{
		Query:     "",
		MinRating: 4,
		Limit:     10,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)
}

func TestSearchIndex_Rebuild(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	doc := &ScanDocument{ID: "scan-1", Name: "Test"}
	err := index.IndexDocument(doc)
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	// Rebuild - should clear the index
	err = index.Rebuild()
	require.NoError(t, err)

	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearchIndex_Persistence(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "search-persist-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	// Create index and add document
	index1, err := NewSearchIndex(Options{DataPath: tmpDir})
	require.NoError(t, err)

	doc := &ScanDocument{ID: "scan-1", Name: "Trevi Fountain"}
	err = index1.IndexDocument(doc)
	require.NoError(t, err)

	err = index1.Close()
	require.NoError(t, err)

	// Reopen index and verify document is still there
	index2, err := NewSearchIndex(Options{DataPath: tmpDir})
	require.NoError(t, err)
	defer index2.Close()

	count, err := index2.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	ctx := context.Background()
	result, err := index2.Search(ctx, SearchParams{Query: "Trevi", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Total)
}

func TestScanToDocument(t *testing.T) {
	now := time.Now()
	scan := &domain.ScanRecord{
		ID:          "scan-123",
		OwnerID:     "user-1",
		Name:        "Notre-Dame",
		Location:    geo.Coordinate{Lat: 48.853, Lng: 2.3499},
		Description: "Gothic cathedral on the Île de la Cité.",
		Tags: domain.TagSet{
			domain.CategoryArchitecture: {"gothic"},
			domain.CategoryLandmarkType: {"cathedral"},
		},
		Rating:    5,
		CreatedAt: now,
	}

	doc := ScanToDocument(scan)

	assert.Equal(t, "scan-123", doc.ID)
	assert.Equal(t, "user-1", doc.OwnerID)
	assert.Equal(t, "Notre-Dame", doc.Name)
	assert.Equal(t, "Gothic cathedral on the Île de la Cité.", doc.Description)
	assert.Contains(t, doc.Tags, "gothic")
	assert.Contains(t, doc.Tags, "cathedral")
	assert.Equal(t, 5, doc.Rating)
	assert.Equal(t, now.UnixMilli(), doc.CreatedAt)
}

func TestSearchIndex_LargeBatch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large batch test in short mode")
	}

	index, cleanup := setupTestIndex(t)
	defer cleanup()

	// Create 1000 documents to test chunking (batch size is 500)
	docs := make([]*ScanDocument, 1000)
	for i := 0; i < 1000; i++ {
		docs[i] = &ScanDocument{
			ID:   "scan-" + string(rune('0'+i%10)) + string(rune('0'+i/10%10)) + string(rune('0'+i/100%10)),
			Name: "Landmark Number " + string(rune('0'+i%10)),
		}
	}

	start := time.Now()
	err := index.IndexDocuments(docs)
	require.NoError(t, err)
	t.Logf("Indexed 1000 documents in %v", time.Since(start))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), count)
}
