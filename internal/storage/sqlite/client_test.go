package sqlite

import (
	"testing"
	"time"

	"github.com/contentpulse/backend/internal/storage/models"
)

func setupTestDB(t *testing.T) *Client {
	t.Helper()

	client, err := NewClient(Options{Mode: ModeMemory})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	if err := client.InitSchema(); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}

	return client
}

func TestInitSchemaIdempotent(t *testing.T) {
	client := setupTestDB(t)

	// A second run against the populated database must be a no-op.
	if err := client.InitSchema(); err != nil {
		t.Fatalf("second InitSchema: %v", err)
	}
	if err := client.InitSchema(); err != nil {
		t.Fatalf("third InitSchema: %v", err)
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	client := setupTestDB(t)

	// serp_results requires an existing topic.
	err := client.SaveSERPResults("no-such-topic", "query", []models.SERPResult{
		{Position: 1, URL: "https://example.com", Title: "t", Domain: "example.com"},
	}, time.Now())
	if err == nil {
		t.Fatal("expected foreign key violation for orphan serp rows")
	}
}

func testTopic(id string) *models.Topic {
	now := time.Unix(time.Now().Unix(), 0)
	return &models.Topic{
		ID:            id,
		Title:         "Best hiking trails in Patagonia",
		Description:   "Roundup of trails",
		Source:        "reddit",
		SourceURL:     "https://reddit.com/r/hiking/123",
		DiscoveredAt:  now,
		Domain:        "outdoors",
		Market:        "us",
		Language:      "en",
		Intent:        "informational",
		TrendingScore: 0.7,
		Priority:      3,
		Citations:     []string{"https://example.com/a"},
		Status:        models.TopicStatusDiscovered,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func mustInsertTopic(t *testing.T, client *Client, id string) *models.Topic {
	t.Helper()
	topic := testTopic(id)
	if err := client.InsertTopic(topic); err != nil {
		t.Fatalf("InsertTopic(%s): %v", id, err)
	}
	return topic
}
