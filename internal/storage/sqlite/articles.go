package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/contentpulse/backend/internal/storage"
	"github.com/contentpulse/backend/internal/storage/models"
)

// InsertArticle stores a generated draft written back by the generation
// subsystem.
func (c *Client) InsertArticle(article *models.Article) error {
	return c.withTx("insert article", func(tx *sql.Tx) error {
		var existing string
		err := tx.QueryRow(`SELECT id FROM articles WHERE id = ?`, article.ID).Scan(&existing)
		if err == nil {
			return &storage.DuplicateError{Entity: "article", Key: article.ID}
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("failed to check for existing article: %w", err)
		}

		_, err = tx.Exec(`
			INSERT INTO articles (id, topic_id, title, content, word_count, status, published_url, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			article.ID,
			article.TopicID,
			article.Title,
			article.Content,
			article.WordCount,
			article.Status,
			article.PublishedURL,
			article.CreatedAt.Unix(),
			article.UpdatedAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert article: %w", err)
		}
		return nil
	})
}

// GetArticle returns an article by id, or nil.
func (c *Client) GetArticle(id string) (*models.Article, error) {
	var (
		article   models.Article
		createdAt int64
		updatedAt int64
	)
	err := c.db.QueryRow(`
		SELECT id, topic_id, title, content, word_count, status, published_url, created_at, updated_at
		FROM articles WHERE id = ?`, id).
		Scan(&article.ID, &article.TopicID, &article.Title, &article.Content, &article.WordCount,
			&article.Status, &article.PublishedURL, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	article.CreatedAt = time.Unix(createdAt, 0)
	article.UpdatedAt = time.Unix(updatedAt, 0)
	return &article, nil
}

// ListArticlesForTopic returns every draft for a topic, newest first.
func (c *Client) ListArticlesForTopic(topicID string) ([]models.Article, error) {
	rows, err := c.db.Query(`
		SELECT id, topic_id, title, content, word_count, status, published_url, created_at, updated_at
		FROM articles WHERE topic_id = ? ORDER BY created_at DESC`, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	var articles []models.Article
	for rows.Next() {
		var (
			a         models.Article
			createdAt int64
			updatedAt int64
		)
		err := rows.Scan(&a.ID, &a.TopicID, &a.Title, &a.Content, &a.WordCount, &a.Status,
			&a.PublishedURL, &createdAt, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		a.CreatedAt = time.Unix(createdAt, 0)
		a.UpdatedAt = time.Unix(updatedAt, 0)
		articles = append(articles, a)
	}

	return articles, rows.Err()
}

// RecordAPICost appends one external API usage record.
func (c *Client) RecordAPICost(cost *models.APICost) error {
	return c.withTx("record api cost", func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO api_costs (provider, operation, model, prompt_tokens, completion_tokens, cost_usd, topic_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			cost.Provider,
			cost.Operation,
			cost.Model,
			cost.PromptTokens,
			cost.CompletionTokens,
			cost.CostUSD,
			cost.TopicID,
			cost.CreatedAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to record api cost: %w", err)
		}
		return nil
	})
}

// TotalCostByProvider sums recorded spend per provider.
func (c *Client) TotalCostByProvider() (map[string]float64, error) {
	rows, err := c.db.Query(`SELECT provider, SUM(cost_usd) FROM api_costs GROUP BY provider`)
	if err != nil {
		return nil, fmt.Errorf("failed to total api costs: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]float64)
	for rows.Next() {
		var (
			provider string
			total    float64
		)
		if err := rows.Scan(&provider, &total); err != nil {
			return nil, fmt.Errorf("failed to scan cost total: %w", err)
		}
		totals[provider] = total
	}

	return totals, rows.Err()
}
