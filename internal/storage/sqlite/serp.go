package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/contentpulse/backend/internal/storage/models"
	"github.com/contentpulse/backend/pkg/logger"
)

const serpColumns = `id, topic_id, search_query, position, url, title, snippet, domain, searched_at`

// SaveSERPResults appends one snapshot for a topic/query pair. Every row in
// the batch shares a single timestamp so the snapshot can be recovered
// exactly. Earlier snapshots are never touched.
func (c *Client) SaveSERPResults(topicID, query string, results []models.SERPResult, searchedAt time.Time) error {
	err := c.withTx("save serp results", func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO serp_results (topic_id, search_query, position, url, title, snippet, domain, searched_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare serp insert: %w", err)
		}
		defer stmt.Close()

		for _, r := range results {
			_, err := stmt.Exec(topicID, query, r.Position, r.URL, r.Title, r.Snippet, r.Domain, searchedAt.Unix())
			if err != nil {
				return fmt.Errorf("failed to insert serp result: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		return err
	}

	logger.Debug("SERP snapshot saved",
		zap.String("topic_id", topicID),
		zap.String("query", query),
		zap.Int("results", len(results)),
	)
	return nil
}

// GetLatestSERPSnapshot returns the rows of the most recent snapshot for a
// topic/query pair, ordered by position. Nil when no snapshot exists.
func (c *Client) GetLatestSERPSnapshot(topicID, query string) ([]models.SERPResult, error) {
	rows, err := c.db.Query(`
		SELECT `+serpColumns+`
		FROM serp_results
		WHERE topic_id = ? AND search_query = ?
			AND searched_at = (
				SELECT MAX(searched_at) FROM serp_results
				WHERE topic_id = ? AND search_query = ?
			)
		ORDER BY position`,
		topicID, query, topicID, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest serp snapshot: %w", err)
	}
	defer rows.Close()

	return collectSERPResults(rows)
}

// GetSERPHistory returns up to maxSnapshots snapshots for a topic/query
// pair, newest first, each fully expanded and ordered by position.
func (c *Client) GetSERPHistory(topicID, query string, maxSnapshots int) ([][]models.SERPResult, error) {
	timestampRows, err := c.db.Query(`
		SELECT DISTINCT searched_at
		FROM serp_results
		WHERE topic_id = ? AND search_query = ?
		ORDER BY searched_at DESC
		LIMIT ?`,
		topicID, query, maxSnapshots)
	if err != nil {
		return nil, fmt.Errorf("failed to get serp history timestamps: %w", err)
	}
	defer timestampRows.Close()

	var timestamps []int64
	for timestampRows.Next() {
		var ts int64
		if err := timestampRows.Scan(&ts); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot timestamp: %w", err)
		}
		timestamps = append(timestamps, ts)
	}
	if err := timestampRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read snapshot timestamps: %w", err)
	}

	history := make([][]models.SERPResult, 0, len(timestamps))
	for _, ts := range timestamps {
		rows, err := c.db.Query(`
			SELECT `+serpColumns+`
			FROM serp_results
			WHERE topic_id = ? AND search_query = ? AND searched_at = ?
			ORDER BY position`,
			topicID, query, ts)
		if err != nil {
			return nil, fmt.Errorf("failed to expand snapshot: %w", err)
		}

		snapshot, err := collectSERPResults(rows)
		rows.Close()
		if err != nil {
			return nil, err
		}
		history = append(history, snapshot)
	}

	return history, nil
}

func collectSERPResults(rows *sql.Rows) ([]models.SERPResult, error) {
	var results []models.SERPResult
	for rows.Next() {
		var (
			r          models.SERPResult
			searchedAt int64
		)
		err := rows.Scan(&r.ID, &r.TopicID, &r.SearchQuery, &r.Position, &r.URL, &r.Title, &r.Snippet, &r.Domain, &searchedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan serp result: %w", err)
		}
		r.SearchedAt = time.Unix(searchedAt, 0)
		results = append(results, r)
	}
	return results, rows.Err()
}
