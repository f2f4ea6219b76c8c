package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/contentpulse/backend/internal/storage/models"
	"github.com/contentpulse/backend/pkg/logger"
)

const contentScoreColumns = `id, url, topic_id, quality_score, word_count_score, readability_score,
	keyword_score, structure_score, entity_score, freshness_score, word_count, reading_ease,
	keyword_density, heading_count, list_count, image_count, entity_count, entity_density,
	published_at, content_hash, fetched_at, updated_at`

// SaveContentScore upserts a quality assessment keyed by URL. A later
// assessment replaces the earlier row in place; only the latest is retained.
// Returns the surrogate row id either way.
func (c *Client) SaveContentScore(score *models.ContentScore) (int64, error) {
	var id int64

	err := c.withTx("save content score", func(tx *sql.Tx) error {
		var existingID int64
		err := tx.QueryRow(`SELECT id FROM content_scores WHERE url = ?`, score.URL).Scan(&existingID)
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("failed to check for existing content score: %w", err)
		}

		now := time.Now()

		if err == nil {
			_, err = tx.Exec(`
				UPDATE content_scores SET
					topic_id = ?, quality_score = ?, word_count_score = ?, readability_score = ?,
					keyword_score = ?, structure_score = ?, entity_score = ?, freshness_score = ?,
					word_count = ?, reading_ease = ?, keyword_density = ?, heading_count = ?,
					list_count = ?, image_count = ?, entity_count = ?, entity_density = ?,
					published_at = ?, content_hash = ?, fetched_at = ?, updated_at = ?
				WHERE id = ?`,
				score.TopicID,
				score.QualityScore,
				score.WordCountScore,
				score.ReadabilityScore,
				score.KeywordScore,
				score.StructureScore,
				score.EntityScore,
				score.FreshnessScore,
				score.WordCount,
				score.ReadingEase,
				score.KeywordDensity,
				score.HeadingCount,
				score.ListCount,
				score.ImageCount,
				score.EntityCount,
				score.EntityDensity,
				nullableUnix(score.PublishedAt),
				score.ContentHash,
				score.FetchedAt.Unix(),
				now.Unix(),
				existingID,
			)
			if err != nil {
				return fmt.Errorf("failed to update content score: %w", err)
			}
			id = existingID
			return nil
		}

		result, err := tx.Exec(`
			INSERT INTO content_scores (url, topic_id, quality_score, word_count_score,
				readability_score, keyword_score, structure_score, entity_score, freshness_score,
				word_count, reading_ease, keyword_density, heading_count, list_count, image_count,
				entity_count, entity_density, published_at, content_hash, fetched_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			score.URL,
			score.TopicID,
			score.QualityScore,
			score.WordCountScore,
			score.ReadabilityScore,
			score.KeywordScore,
			score.StructureScore,
			score.EntityScore,
			score.FreshnessScore,
			score.WordCount,
			score.ReadingEase,
			score.KeywordDensity,
			score.HeadingCount,
			score.ListCount,
			score.ImageCount,
			score.EntityCount,
			score.EntityDensity,
			nullableUnix(score.PublishedAt),
			score.ContentHash,
			score.FetchedAt.Unix(),
			now.Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert content score: %w", err)
		}

		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read content score id: %w", err)
		}
		return nil
	})

	if err != nil {
		return 0, err
	}

	logger.Debug("Content score saved",
		zap.String("url", score.URL),
		zap.Float64("quality_score", score.QualityScore),
	)
	return id, nil
}

// GetContentScore returns the latest assessment for a URL, or nil.
func (c *Client) GetContentScore(url string) (*models.ContentScore, error) {
	row := c.db.QueryRow(`SELECT `+contentScoreColumns+` FROM content_scores WHERE url = ?`, url)

	score, err := scanContentScore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get content score: %w", err)
	}

	return score, nil
}

// GetContentScoresForTopic returns every assessment linked to a topic.
func (c *Client) GetContentScoresForTopic(topicID string) ([]models.ContentScore, error) {
	rows, err := c.db.Query(`SELECT `+contentScoreColumns+` FROM content_scores WHERE topic_id = ?`, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to get content scores for topic: %w", err)
	}
	defer rows.Close()

	var scores []models.ContentScore
	for rows.Next() {
		score, err := scanContentScore(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content score: %w", err)
		}
		scores = append(scores, *score)
	}

	return scores, rows.Err()
}

// SaveDifficultyScore upserts the difficulty analysis for a topic, replacing
// the previous row entirely on conflict. Returns the surrogate id.
func (c *Client) SaveDifficultyScore(score *models.DifficultyScore) (int64, error) {
	var id int64

	err := c.withTx("save difficulty score", func(tx *sql.Tx) error {
		var existingID int64
		err := tx.QueryRow(`SELECT id FROM difficulty_scores WHERE topic_id = ?`, score.TopicID).Scan(&existingID)
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("failed to check for existing difficulty score: %w", err)
		}

		now := time.Now()

		if err == nil {
			_, err = tx.Exec(`
				UPDATE difficulty_scores SET
					difficulty_score = ?, competition_score = ?, authority_score = ?,
					content_depth_score = ?, freshness_score = ?, target_word_count = ?,
					target_heading_count = ?, target_image_count = ?, target_quality_score = ?,
					avg_competitor_words = ?, avg_competitor_quality = ?, high_authority_ratio = ?,
					freshness_requirement = ?, estimated_ranking_time = ?, analyzed_at = ?, updated_at = ?
				WHERE id = ?`,
				score.DifficultyScore,
				score.CompetitionScore,
				score.AuthorityScore,
				score.ContentDepthScore,
				score.FreshnessScore,
				score.TargetWordCount,
				score.TargetHeadingCount,
				score.TargetImageCount,
				score.TargetQualityScore,
				score.AvgCompetitorWords,
				score.AvgCompetitorQuality,
				score.HighAuthorityRatio,
				score.FreshnessRequirement,
				score.EstimatedRankingTime,
				score.AnalyzedAt.Unix(),
				now.Unix(),
				existingID,
			)
			if err != nil {
				return fmt.Errorf("failed to update difficulty score: %w", err)
			}
			id = existingID
			return nil
		}

		result, err := tx.Exec(`
			INSERT INTO difficulty_scores (topic_id, difficulty_score, competition_score,
				authority_score, content_depth_score, freshness_score, target_word_count,
				target_heading_count, target_image_count, target_quality_score,
				avg_competitor_words, avg_competitor_quality, high_authority_ratio,
				freshness_requirement, estimated_ranking_time, analyzed_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			score.TopicID,
			score.DifficultyScore,
			score.CompetitionScore,
			score.AuthorityScore,
			score.ContentDepthScore,
			score.FreshnessScore,
			score.TargetWordCount,
			score.TargetHeadingCount,
			score.TargetImageCount,
			score.TargetQualityScore,
			score.AvgCompetitorWords,
			score.AvgCompetitorQuality,
			score.HighAuthorityRatio,
			score.FreshnessRequirement,
			score.EstimatedRankingTime,
			score.AnalyzedAt.Unix(),
			now.Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert difficulty score: %w", err)
		}

		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read difficulty score id: %w", err)
		}
		return nil
	})

	if err != nil {
		return 0, err
	}

	logger.Debug("Difficulty score saved",
		zap.String("topic_id", score.TopicID),
		zap.Float64("difficulty", score.DifficultyScore),
	)
	return id, nil
}

// GetDifficultyScore returns the difficulty analysis for a topic, or nil.
func (c *Client) GetDifficultyScore(topicID string) (*models.DifficultyScore, error) {
	row := c.db.QueryRow(`
		SELECT id, topic_id, difficulty_score, competition_score, authority_score,
			content_depth_score, freshness_score, target_word_count, target_heading_count,
			target_image_count, target_quality_score, avg_competitor_words,
			avg_competitor_quality, high_authority_ratio, freshness_requirement,
			estimated_ranking_time, analyzed_at, updated_at
		FROM difficulty_scores WHERE topic_id = ?`, topicID)

	var (
		score      models.DifficultyScore
		analyzedAt int64
		updatedAt  int64
	)

	err := row.Scan(
		&score.ID,
		&score.TopicID,
		&score.DifficultyScore,
		&score.CompetitionScore,
		&score.AuthorityScore,
		&score.ContentDepthScore,
		&score.FreshnessScore,
		&score.TargetWordCount,
		&score.TargetHeadingCount,
		&score.TargetImageCount,
		&score.TargetQualityScore,
		&score.AvgCompetitorWords,
		&score.AvgCompetitorQuality,
		&score.HighAuthorityRatio,
		&score.FreshnessRequirement,
		&score.EstimatedRankingTime,
		&analyzedAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get difficulty score: %w", err)
	}

	score.AnalyzedAt = time.Unix(analyzedAt, 0)
	score.UpdatedAt = time.Unix(updatedAt, 0)

	return &score, nil
}

func scanContentScore(row rowScanner) (*models.ContentScore, error) {
	var (
		score       models.ContentScore
		topicID     sql.NullString
		publishedAt sql.NullInt64
		fetchedAt   int64
		updatedAt   int64
	)

	err := row.Scan(
		&score.ID,
		&score.URL,
		&topicID,
		&score.QualityScore,
		&score.WordCountScore,
		&score.ReadabilityScore,
		&score.KeywordScore,
		&score.StructureScore,
		&score.EntityScore,
		&score.FreshnessScore,
		&score.WordCount,
		&score.ReadingEase,
		&score.KeywordDensity,
		&score.HeadingCount,
		&score.ListCount,
		&score.ImageCount,
		&score.EntityCount,
		&score.EntityDensity,
		&publishedAt,
		&score.ContentHash,
		&fetchedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if topicID.Valid {
		score.TopicID = &topicID.String
	}
	if publishedAt.Valid {
		t := time.Unix(publishedAt.Int64, 0)
		score.PublishedAt = &t
	}
	score.FetchedAt = time.Unix(fetchedAt, 0)
	score.UpdatedAt = time.Unix(updatedAt, 0)

	return &score, nil
}
