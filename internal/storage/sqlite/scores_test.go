package sqlite

import (
	"testing"
	"time"

	"github.com/contentpulse/backend/internal/storage/models"
)

func TestSaveContentScoreUpsert(t *testing.T) {
	client := setupTestDB(t)

	fetched := time.Unix(time.Now().Unix(), 0)
	score := &models.ContentScore{
		URL:          "https://example.com/guide",
		QualityScore: 61.5,
		WordCount:    1800,
		FetchedAt:    fetched,
	}

	id, err := client.SaveContentScore(score)
	if err != nil {
		t.Fatalf("SaveContentScore: %v", err)
	}
	if id == 0 {
		t.Fatal("SaveContentScore returned zero id")
	}

	// Second save for the same URL replaces the row in place.
	score.QualityScore = 74.0
	score.WordCount = 2400
	id2, err := client.SaveContentScore(score)
	if err != nil {
		t.Fatalf("SaveContentScore(update): %v", err)
	}
	if id2 != id {
		t.Errorf("upsert changed id: %d then %d", id, id2)
	}

	got, err := client.GetContentScore("https://example.com/guide")
	if err != nil {
		t.Fatalf("GetContentScore: %v", err)
	}
	if got.QualityScore != 74.0 || got.WordCount != 2400 {
		t.Errorf("updated score not read back: %+v", got)
	}

	absent, err := client.GetContentScore("https://example.com/unknown")
	if err != nil {
		t.Fatalf("GetContentScore(absent): %v", err)
	}
	if absent != nil {
		t.Errorf("GetContentScore(absent) = %+v, want nil", absent)
	}
}

func TestGetContentScoresForTopic(t *testing.T) {
	client := setupTestDB(t)
	mustInsertTopic(t, client, "topic-1")

	topicID := "topic-1"
	fetched := time.Unix(time.Now().Unix(), 0)
	for _, url := range []string{"https://a.example.com", "https://b.example.com"} {
		if _, err := client.SaveContentScore(&models.ContentScore{
			URL: url, TopicID: &topicID, QualityScore: 50, FetchedAt: fetched,
		}); err != nil {
			t.Fatalf("SaveContentScore(%s): %v", url, err)
		}
	}
	if _, err := client.SaveContentScore(&models.ContentScore{
		URL: "https://c.example.com", QualityScore: 50, FetchedAt: fetched,
	}); err != nil {
		t.Fatalf("SaveContentScore(unlinked): %v", err)
	}

	scores, err := client.GetContentScoresForTopic("topic-1")
	if err != nil {
		t.Fatalf("GetContentScoresForTopic: %v", err)
	}
	if len(scores) != 2 {
		t.Errorf("got %d scores for topic, want 2", len(scores))
	}
}

func TestSaveDifficultyScoreRoundTrip(t *testing.T) {
	client := setupTestDB(t)
	mustInsertTopic(t, client, "topic-1")

	analyzed := time.Unix(time.Now().Unix(), 0)
	score := &models.DifficultyScore{
		TopicID:              "topic-1",
		DifficultyScore:      47.3125,
		CompetitionScore:     0.62,
		AuthorityScore:       0.40,
		ContentDepthScore:    0.55,
		FreshnessScore:       0.30,
		TargetWordCount:      2500,
		TargetHeadingCount:   9,
		TargetImageCount:     6,
		TargetQualityScore:   78.5,
		AvgCompetitorWords:   2150.25,
		AvgCompetitorQuality: 71.125,
		HighAuthorityRatio:   0.375,
		FreshnessRequirement: "high",
		EstimatedRankingTime: "6-9 months",
		AnalyzedAt:           analyzed,
	}

	if _, err := client.SaveDifficultyScore(score); err != nil {
		t.Fatalf("SaveDifficultyScore: %v", err)
	}

	got, err := client.GetDifficultyScore("topic-1")
	if err != nil {
		t.Fatalf("GetDifficultyScore: %v", err)
	}
	if got == nil {
		t.Fatal("GetDifficultyScore returned nil")
	}

	// Float columns must read back bit-identical.
	if got.DifficultyScore != score.DifficultyScore ||
		got.CompetitionScore != score.CompetitionScore ||
		got.AuthorityScore != score.AuthorityScore ||
		got.ContentDepthScore != score.ContentDepthScore ||
		got.FreshnessScore != score.FreshnessScore ||
		got.AvgCompetitorWords != score.AvgCompetitorWords ||
		got.AvgCompetitorQuality != score.AvgCompetitorQuality ||
		got.HighAuthorityRatio != score.HighAuthorityRatio {
		t.Errorf("float readback differs:\ngot  %+v\nwant %+v", got, score)
	}
	if got.TargetWordCount != 2500 || got.EstimatedRankingTime != "6-9 months" {
		t.Errorf("targets not read back: %+v", got)
	}
	if !got.AnalyzedAt.Equal(analyzed) {
		t.Errorf("analyzed at = %v, want %v", got.AnalyzedAt, analyzed)
	}
}

func TestSaveDifficultyScoreUpsert(t *testing.T) {
	client := setupTestDB(t)
	mustInsertTopic(t, client, "topic-1")

	analyzed := time.Unix(time.Now().Unix(), 0)
	id, err := client.SaveDifficultyScore(&models.DifficultyScore{
		TopicID: "topic-1", DifficultyScore: 30, AnalyzedAt: analyzed,
	})
	if err != nil {
		t.Fatalf("SaveDifficultyScore: %v", err)
	}

	id2, err := client.SaveDifficultyScore(&models.DifficultyScore{
		TopicID: "topic-1", DifficultyScore: 65, AnalyzedAt: analyzed,
	})
	if err != nil {
		t.Fatalf("SaveDifficultyScore(update): %v", err)
	}
	if id2 != id {
		t.Errorf("upsert changed id: %d then %d", id, id2)
	}

	got, _ := client.GetDifficultyScore("topic-1")
	if got.DifficultyScore != 65 {
		t.Errorf("difficulty = %v, want 65", got.DifficultyScore)
	}

	absent, err := client.GetDifficultyScore("missing")
	if err != nil {
		t.Fatalf("GetDifficultyScore(absent): %v", err)
	}
	if absent != nil {
		t.Errorf("GetDifficultyScore(absent) = %+v, want nil", absent)
	}
}
