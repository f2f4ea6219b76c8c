package sqlite

import (
	"errors"
	"testing"
	"time"

	"github.com/contentpulse/backend/internal/storage"
	"github.com/contentpulse/backend/internal/storage/models"
)

func testDocument(id, hash string) *models.Document {
	fetched := time.Unix(time.Now().Unix(), 0)
	return &models.Document{
		ID:          id,
		Source:      "rss",
		SourceURL:   "https://example.com/articles/" + id,
		Title:       "Choosing a tent for alpine conditions",
		Content:     "A four season tent handles snow loading and high wind better than a summer shelter.",
		Language:    "en",
		Domain:      "example.com",
		Market:      "us",
		Vertical:    "outdoors",
		ContentHash: hash,
		FetchedAt:   fetched,
		Entities:    []string{"Alpine"},
		Keywords:    []string{"tent", "alpine"},
		Status:      models.DocumentStatusNew,
	}
}

func TestInsertAndGetDocument(t *testing.T) {
	client := setupTestDB(t)

	doc := testDocument("doc-1", "hash-1")
	if err := client.InsertDocument(doc); err != nil {
		t.Fatalf("InsertDocument: %v", err)
	}

	got, err := client.GetDocument("doc-1")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if got == nil {
		t.Fatal("GetDocument returned nil for existing document")
	}

	if got.Title != doc.Title {
		t.Errorf("title = %q, want %q", got.Title, doc.Title)
	}
	if got.ContentHash != doc.ContentHash {
		t.Errorf("content hash = %q, want %q", got.ContentHash, doc.ContentHash)
	}
	if !got.FetchedAt.Equal(doc.FetchedAt) {
		t.Errorf("fetched at = %v, want %v", got.FetchedAt, doc.FetchedAt)
	}
	if got.PublishedAt != nil {
		t.Errorf("published at = %v, want nil", got.PublishedAt)
	}
	if len(got.Keywords) != 2 || got.Keywords[0] != "tent" {
		t.Errorf("keywords = %v, want [tent alpine]", got.Keywords)
	}
	if got.Paywall {
		t.Error("paywall = true, want false")
	}
}

func TestInsertDocumentDuplicate(t *testing.T) {
	client := setupTestDB(t)

	original := testDocument("doc-1", "hash-1")
	if err := client.InsertDocument(original); err != nil {
		t.Fatalf("InsertDocument: %v", err)
	}

	clash := testDocument("doc-1", "hash-other")
	clash.Title = "A different title"

	err := client.InsertDocument(clash)
	var dup *storage.DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}

	// The stored row must be untouched.
	got, err := client.GetDocument("doc-1")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if got.Title != original.Title {
		t.Errorf("title after duplicate insert = %q, want original %q", got.Title, original.Title)
	}
}

func TestGetDocumentAbsent(t *testing.T) {
	client := setupTestDB(t)

	got, err := client.GetDocument("missing")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if got != nil {
		t.Errorf("GetDocument = %+v, want nil", got)
	}
}

func TestGetDocumentByHash(t *testing.T) {
	client := setupTestDB(t)

	doc := testDocument("doc-1", "hash-1")
	if err := client.InsertDocument(doc); err != nil {
		t.Fatalf("InsertDocument: %v", err)
	}

	got, err := client.GetDocumentByHash("hash-1")
	if err != nil {
		t.Fatalf("GetDocumentByHash: %v", err)
	}
	if got == nil || got.ID != "doc-1" {
		t.Errorf("GetDocumentByHash = %+v, want doc-1", got)
	}

	absent, err := client.GetDocumentByHash("no-such-hash")
	if err != nil {
		t.Fatalf("GetDocumentByHash: %v", err)
	}
	if absent != nil {
		t.Errorf("GetDocumentByHash(absent) = %+v, want nil", absent)
	}
}

func TestUpdateDocument(t *testing.T) {
	client := setupTestDB(t)

	doc := testDocument("doc-1", "hash-1")
	if err := client.InsertDocument(doc); err != nil {
		t.Fatalf("InsertDocument: %v", err)
	}

	doc.Title = "Updated tent guide"
	doc.Content = "Completely rewritten advice about bivouac shelters."
	doc.Status = models.DocumentStatusProcessed
	if err := client.UpdateDocument(doc); err != nil {
		t.Fatalf("UpdateDocument: %v", err)
	}

	got, err := client.GetDocument("doc-1")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if got.Title != "Updated tent guide" || got.Status != models.DocumentStatusProcessed {
		t.Errorf("update not applied: %+v", got)
	}

	missing := testDocument("doc-missing", "h")
	if err := client.UpdateDocument(missing); err == nil {
		t.Error("expected error updating nonexistent document")
	}
}

func TestSearchDocuments(t *testing.T) {
	client := setupTestDB(t)

	tent := testDocument("doc-tent", "hash-tent")
	stove := testDocument("doc-stove", "hash-stove")
	stove.Title = "Canister stoves compared"
	stove.Content = "Liquid fuel stoves outperform canister stoves in freezing weather."
	for _, doc := range []*models.Document{tent, stove} {
		if err := client.InsertDocument(doc); err != nil {
			t.Fatalf("InsertDocument(%s): %v", doc.ID, err)
		}
	}

	results, err := client.SearchDocuments("stoves", 10)
	if err != nil {
		t.Fatalf("SearchDocuments: %v", err)
	}
	if len(results) != 1 || results[0].ID != "doc-stove" {
		t.Fatalf("SearchDocuments(stoves) = %v results, want doc-stove only", len(results))
	}

	// The index follows updates: once title and content drop a token,
	// the document stops matching it and starts matching the new ones.
	stove.Title = "Dehydrated meal planning"
	stove.Content = "All about freeze dried meals instead."
	if err := client.UpdateDocument(stove); err != nil {
		t.Fatalf("UpdateDocument: %v", err)
	}
	results, err = client.SearchDocuments("stoves", 10)
	if err != nil {
		t.Fatalf("SearchDocuments after update: %v", err)
	}
	for _, r := range results {
		if r.ID == "doc-stove" {
			t.Error("stale index entry survived update")
		}
	}
	results, err = client.SearchDocuments("dried", 10)
	if err != nil {
		t.Fatalf("SearchDocuments(dried): %v", err)
	}
	if len(results) != 1 || results[0].ID != "doc-stove" {
		t.Fatalf("SearchDocuments(dried) = %d results, want reindexed doc-stove", len(results))
	}

	// And deletes.
	if err := client.DeleteDocument("doc-tent"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	results, err = client.SearchDocuments("tent", 10)
	if err != nil {
		t.Fatalf("SearchDocuments after delete: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("search found %d results after delete, want 0", len(results))
	}
}

func TestListDocuments(t *testing.T) {
	client := setupTestDB(t)

	en := testDocument("doc-en", "hash-en")
	es := testDocument("doc-es", "hash-es")
	es.Language = "es"
	es.Status = models.DocumentStatusProcessed
	for _, doc := range []*models.Document{en, es} {
		if err := client.InsertDocument(doc); err != nil {
			t.Fatalf("InsertDocument(%s): %v", doc.ID, err)
		}
	}

	all, err := client.ListDocuments(DocumentFilter{})
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("ListDocuments = %d, want 2", len(all))
	}

	spanish, err := client.ListDocuments(DocumentFilter{Language: "es"})
	if err != nil {
		t.Fatalf("ListDocuments(es): %v", err)
	}
	if len(spanish) != 1 || spanish[0].ID != "doc-es" {
		t.Errorf("language filter returned %v", spanish)
	}

	processed, err := client.ListDocuments(DocumentFilter{Status: models.DocumentStatusProcessed})
	if err != nil {
		t.Fatalf("ListDocuments(processed): %v", err)
	}
	if len(processed) != 1 || processed[0].ID != "doc-es" {
		t.Errorf("status filter returned %v", processed)
	}

	limited, err := client.ListDocuments(DocumentFilter{Limit: 1})
	if err != nil {
		t.Fatalf("ListDocuments(limit): %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limit ignored, got %d rows", len(limited))
	}
}
