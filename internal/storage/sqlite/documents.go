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

const documentColumns = `id, source, source_url, title, content, summary, language, domain, market,
	vertical, content_hash, canonical_url, published_at, fetched_at, author, entities, keywords,
	reliability_score, paywall, status`

// InsertDocument stores a new document and its full-text index entry in one
// transaction. A pre-insert lookup turns an existing id into DuplicateError
// without touching the stored row.
func (c *Client) InsertDocument(doc *models.Document) error {
	err := c.withTx("insert document", func(tx *sql.Tx) error {
		var existing string
		err := tx.QueryRow(`SELECT id FROM documents WHERE id = ?`, doc.ID).Scan(&existing)
		if err == nil {
			return &storage.DuplicateError{Entity: "document", Key: doc.ID}
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("failed to check for existing document: %w", err)
		}

		entitiesJSON, _ := json.Marshal(doc.Entities)
		keywordsJSON, _ := json.Marshal(doc.Keywords)

		_, err = tx.Exec(`
			INSERT INTO documents (`+documentColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			doc.ID,
			doc.Source,
			doc.SourceURL,
			doc.Title,
			doc.Content,
			doc.Summary,
			doc.Language,
			doc.Domain,
			doc.Market,
			doc.Vertical,
			doc.ContentHash,
			doc.CanonicalURL,
			nullableUnix(doc.PublishedAt),
			doc.FetchedAt.Unix(),
			doc.Author,
			string(entitiesJSON),
			string(keywordsJSON),
			doc.ReliabilityScore,
			boolToInt(doc.Paywall),
			doc.Status,
		)
		if err != nil {
			return fmt.Errorf("failed to insert document: %w", err)
		}

		_, err = tx.Exec(`INSERT INTO documents_fts (doc_id, title, content) VALUES (?, ?, ?)`,
			doc.ID, doc.Title, doc.Content)
		if err != nil {
			return fmt.Errorf("failed to index document: %w", err)
		}

		return nil
	})

	if err != nil {
		return err
	}

	logger.Debug("Document inserted", zap.String("doc_id", doc.ID), zap.String("url", doc.SourceURL))
	return nil
}

// GetDocument returns the document or nil when the id is unknown.
func (c *Client) GetDocument(id string) (*models.Document, error) {
	row := c.db.QueryRow(`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)

	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return doc, nil
}

// GetDocumentByHash looks a document up by its content hash. Duplicate
// detection is caller-driven; the store holds no uniqueness constraint on
// the hash.
func (c *Client) GetDocumentByHash(contentHash string) (*models.Document, error) {
	row := c.db.QueryRow(`SELECT `+documentColumns+` FROM documents WHERE content_hash = ? LIMIT 1`, contentHash)

	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document by hash: %w", err)
	}

	return doc, nil
}

// UpdateDocument replaces every column of an existing document and rewrites
// its full-text entry in the same transaction.
func (c *Client) UpdateDocument(doc *models.Document) error {
	return c.withTx("update document", func(tx *sql.Tx) error {
		entitiesJSON, _ := json.Marshal(doc.Entities)
		keywordsJSON, _ := json.Marshal(doc.Keywords)

		result, err := tx.Exec(`
			UPDATE documents SET
				source = ?, source_url = ?, title = ?, content = ?, summary = ?, language = ?,
				domain = ?, market = ?, vertical = ?, content_hash = ?, canonical_url = ?,
				published_at = ?, fetched_at = ?, author = ?, entities = ?, keywords = ?,
				reliability_score = ?, paywall = ?, status = ?
			WHERE id = ?`,
			doc.Source,
			doc.SourceURL,
			doc.Title,
			doc.Content,
			doc.Summary,
			doc.Language,
			doc.Domain,
			doc.Market,
			doc.Vertical,
			doc.ContentHash,
			doc.CanonicalURL,
			nullableUnix(doc.PublishedAt),
			doc.FetchedAt.Unix(),
			doc.Author,
			string(entitiesJSON),
			string(keywordsJSON),
			doc.ReliabilityScore,
			boolToInt(doc.Paywall),
			doc.Status,
			doc.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update document: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read update result: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("document %s does not exist", doc.ID)
		}

		if _, err := tx.Exec(`DELETE FROM documents_fts WHERE doc_id = ?`, doc.ID); err != nil {
			return fmt.Errorf("failed to clear document index: %w", err)
		}
		if _, err := tx.Exec(`INSERT INTO documents_fts (doc_id, title, content) VALUES (?, ?, ?)`,
			doc.ID, doc.Title, doc.Content); err != nil {
			return fmt.Errorf("failed to reindex document: %w", err)
		}

		return nil
	})
}

// DeleteDocument removes the row and its full-text entry.
func (c *Client) DeleteDocument(id string) error {
	return c.withTx("delete document", func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM documents WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete document: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM documents_fts WHERE doc_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete document index: %w", err)
		}
		return nil
	})
}

// DocumentFilter narrows ListDocuments. Zero values mean "no filter".
type DocumentFilter struct {
	Status   string
	Language string
	Limit    int
}

// ListDocuments returns documents matching the filter, newest fetch first.
func (c *Client) ListDocuments(filter DocumentFilter) ([]models.Document, error) {
	builder := sq.Select(documentColumns).
		From("documents").
		OrderBy("fetched_at DESC")

	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"status": filter.Status})
	}
	if filter.Language != "" {
		builder = builder.Where(sq.Eq{"language": filter.Language})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build document query: %w", err)
	}

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, *doc)
	}

	return docs, rows.Err()
}

// SearchDocuments runs a full-text match over (title, content) and returns
// matching documents newest fetch first, capped at limit.
func (c *Client) SearchDocuments(query string, limit int) ([]models.Document, error) {
	rows, err := c.db.Query(`
		SELECT `+prefixedDocumentColumns("d")+`
		FROM documents_fts f
		JOIN documents d ON d.id = f.doc_id
		WHERE documents_fts MATCH ?
		ORDER BY d.fetched_at DESC
		LIMIT ?`,
		query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		docs = append(docs, *doc)
	}

	return docs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var (
		doc          models.Document
		publishedAt  sql.NullInt64
		fetchedAt    int64
		entitiesJSON string
		keywordsJSON string
		paywall      int
	)

	err := row.Scan(
		&doc.ID,
		&doc.Source,
		&doc.SourceURL,
		&doc.Title,
		&doc.Content,
		&doc.Summary,
		&doc.Language,
		&doc.Domain,
		&doc.Market,
		&doc.Vertical,
		&doc.ContentHash,
		&doc.CanonicalURL,
		&publishedAt,
		&fetchedAt,
		&doc.Author,
		&entitiesJSON,
		&keywordsJSON,
		&doc.ReliabilityScore,
		&paywall,
		&doc.Status,
	)
	if err != nil {
		return nil, err
	}

	if publishedAt.Valid {
		t := time.Unix(publishedAt.Int64, 0)
		doc.PublishedAt = &t
	}
	doc.FetchedAt = time.Unix(fetchedAt, 0)
	doc.Paywall = paywall != 0
	json.Unmarshal([]byte(entitiesJSON), &doc.Entities)
	json.Unmarshal([]byte(keywordsJSON), &doc.Keywords)

	return &doc, nil
}

func prefixedDocumentColumns(alias string) string {
	return alias + `.id, ` + alias + `.source, ` + alias + `.source_url, ` + alias + `.title, ` +
		alias + `.content, ` + alias + `.summary, ` + alias + `.language, ` + alias + `.domain, ` +
		alias + `.market, ` + alias + `.vertical, ` + alias + `.content_hash, ` + alias + `.canonical_url, ` +
		alias + `.published_at, ` + alias + `.fetched_at, ` + alias + `.author, ` + alias + `.entities, ` +
		alias + `.keywords, ` + alias + `.reliability_score, ` + alias + `.paywall, ` + alias + `.status`
}

func nullableUnix(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
