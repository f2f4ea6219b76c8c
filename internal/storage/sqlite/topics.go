package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"github.com/contentpulse/backend/internal/storage"
	"github.com/contentpulse/backend/internal/storage/models"
	"github.com/contentpulse/backend/pkg/logger"
)

const topicColumns = `id, title, description, source, source_url, discovered_at, domain, market,
	language, intent, engagement_score, trending_score, priority, content_score, research_report,
	citations, word_count, minhash_signature, status, created_at, updated_at, published_at`

// InsertTopic stores a new topic. An existing id fails with DuplicateError,
// checked by lookup inside the same transaction.
func (c *Client) InsertTopic(topic *models.Topic) error {
	err := c.withTx("insert topic", func(tx *sql.Tx) error {
		var existing string
		err := tx.QueryRow(`SELECT id FROM topics WHERE id = ?`, topic.ID).Scan(&existing)
		if err == nil {
			return &storage.DuplicateError{Entity: "topic", Key: topic.ID}
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("failed to check for existing topic: %w", err)
		}

		citationsJSON, _ := json.Marshal(topic.Citations)

		_, err = tx.Exec(`
			INSERT INTO topics (`+topicColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			topic.ID,
			topic.Title,
			topic.Description,
			topic.Source,
			topic.SourceURL,
			topic.DiscoveredAt.Unix(),
			topic.Domain,
			topic.Market,
			topic.Language,
			topic.Intent,
			topic.EngagementScore,
			topic.TrendingScore,
			topic.Priority,
			topic.ContentScore,
			topic.ResearchReport,
			string(citationsJSON),
			topic.WordCount,
			topic.MinhashSignature,
			topic.Status,
			topic.CreatedAt.Unix(),
			topic.UpdatedAt.Unix(),
			nullableUnix(topic.PublishedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert topic: %w", err)
		}

		return nil
	})

	if err != nil {
		return err
	}

	logger.Debug("Topic inserted", zap.String("topic_id", topic.ID), zap.String("status", topic.Status))
	return nil
}

// GetTopic returns the topic or nil when the id is unknown.
func (c *Client) GetTopic(id string) (*models.Topic, error) {
	row := c.db.QueryRow(`SELECT `+topicColumns+` FROM topics WHERE id = ?`, id)

	topic, err := scanTopic(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}

	return topic, nil
}

// UpdateTopic replaces every column of an existing topic. Status transitions
// are written as given; the store does not enforce the editorial progression.
func (c *Client) UpdateTopic(topic *models.Topic) error {
	return c.withTx("update topic", func(tx *sql.Tx) error {
		citationsJSON, _ := json.Marshal(topic.Citations)

		result, err := tx.Exec(`
			UPDATE topics SET
				title = ?, description = ?, source = ?, source_url = ?, discovered_at = ?,
				domain = ?, market = ?, language = ?, intent = ?, engagement_score = ?,
				trending_score = ?, priority = ?, content_score = ?, research_report = ?,
				citations = ?, word_count = ?, minhash_signature = ?, status = ?,
				created_at = ?, updated_at = ?, published_at = ?
			WHERE id = ?`,
			topic.Title,
			topic.Description,
			topic.Source,
			topic.SourceURL,
			topic.DiscoveredAt.Unix(),
			topic.Domain,
			topic.Market,
			topic.Language,
			topic.Intent,
			topic.EngagementScore,
			topic.TrendingScore,
			topic.Priority,
			topic.ContentScore,
			topic.ResearchReport,
			string(citationsJSON),
			topic.WordCount,
			topic.MinhashSignature,
			topic.Status,
			topic.CreatedAt.Unix(),
			topic.UpdatedAt.Unix(),
			nullableUnix(topic.PublishedAt),
			topic.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update topic: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read update result: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("topic %s does not exist", topic.ID)
		}

		return nil
	})
}

// DeleteTopic removes the topic. The engine-level foreign keys cascade the
// delete to serp_results and difficulty_scores and null the reference on
// content_scores.
func (c *Client) DeleteTopic(id string) error {
	return c.withTx("delete topic", func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM topics WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete topic: %w", err)
		}
		return nil
	})
}

// TopicFilter narrows ListTopics. Zero values mean "no filter".
type TopicFilter struct {
	Status      string
	Language    string
	MinPriority int
	Limit       int
}

// ListTopics returns topics matching the filter, highest priority first.
func (c *Client) ListTopics(filter TopicFilter) ([]models.Topic, error) {
	builder := sq.Select(topicColumns).
		From("topics").
		OrderBy("priority DESC", "trending_score DESC")

	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"status": filter.Status})
	}
	if filter.Language != "" {
		builder = builder.Where(sq.Eq{"language": filter.Language})
	}
	if filter.MinPriority > 0 {
		builder = builder.Where(sq.GtOrEq{"priority": filter.MinPriority})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build topic query: %w", err)
	}

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	defer rows.Close()

	return collectTopics(rows)
}

// ListResearchedTopics returns every topic carrying a non-empty research
// report, in stable id order. This is the scan behind related-topic
// discovery.
func (c *Client) ListResearchedTopics() ([]models.Topic, error) {
	rows, err := c.db.Query(`
		SELECT ` + topicColumns + `
		FROM topics
		WHERE research_report IS NOT NULL AND research_report != ''
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list researched topics: %w", err)
	}
	defer rows.Close()

	return collectTopics(rows)
}

// CountTopicsByStatus returns how many topics sit in each status value,
// for the exported topic gauge.
func (c *Client) CountTopicsByStatus() (map[string]int, error) {
	rows, err := c.db.Query(`SELECT status, COUNT(*) FROM topics GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count topics: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan topic count: %w", err)
		}
		counts[status] = n
	}

	return counts, rows.Err()
}

func collectTopics(rows *sql.Rows) ([]models.Topic, error) {
	var topics []models.Topic
	for rows.Next() {
		topic, err := scanTopic(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		topics = append(topics, *topic)
	}
	return topics, rows.Err()
}

func scanTopic(row rowScanner) (*models.Topic, error) {
	var (
		topic         models.Topic
		discoveredAt  int64
		contentScore  sql.NullFloat64
		citationsJSON string
		createdAt     int64
		updatedAt     int64
		publishedAt   sql.NullInt64
	)

	err := row.Scan(
		&topic.ID,
		&topic.Title,
		&topic.Description,
		&topic.Source,
		&topic.SourceURL,
		&discoveredAt,
		&topic.Domain,
		&topic.Market,
		&topic.Language,
		&topic.Intent,
		&topic.EngagementScore,
		&topic.TrendingScore,
		&topic.Priority,
		&contentScore,
		&topic.ResearchReport,
		&citationsJSON,
		&topic.WordCount,
		&topic.MinhashSignature,
		&topic.Status,
		&createdAt,
		&updatedAt,
		&publishedAt,
	)
	if err != nil {
		return nil, err
	}

	topic.DiscoveredAt = time.Unix(discoveredAt, 0)
	topic.CreatedAt = time.Unix(createdAt, 0)
	topic.UpdatedAt = time.Unix(updatedAt, 0)
	if contentScore.Valid {
		topic.ContentScore = &contentScore.Float64
	}
	if publishedAt.Valid {
		t := time.Unix(publishedAt.Int64, 0)
		topic.PublishedAt = &t
	}
	json.Unmarshal([]byte(citationsJSON), &topic.Citations)

	return &topic, nil
}
