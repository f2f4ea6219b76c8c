package sqlite

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/contentpulse/backend/internal/storage"
	"github.com/contentpulse/backend/pkg/logger"
)

// InitSchema creates every table and index if absent, then runs the
// forward-only column migrations. Safe to call on every startup.
func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		source TEXT,
		source_url TEXT,
		title TEXT NOT NULL,
		content TEXT,
		summary TEXT,
		language TEXT,
		domain TEXT,
		market TEXT,
		vertical TEXT,
		content_hash TEXT,
		canonical_url TEXT,
		published_at INTEGER,
		fetched_at INTEGER NOT NULL,
		author TEXT,
		entities TEXT,
		keywords TEXT,
		reliability_score REAL DEFAULT 0.5,
		paywall INTEGER DEFAULT 0,
		status TEXT DEFAULT 'new'
	);
	CREATE INDEX IF NOT EXISTS idx_documents_hash ON documents(content_hash);
	CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
	CREATE INDEX IF NOT EXISTS idx_documents_language ON documents(language);

	CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts4(
		doc_id,
		title,
		content,
		notindexed=doc_id
	);

	CREATE TABLE IF NOT EXISTS topics (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		source TEXT,
		source_url TEXT,
		discovered_at INTEGER,
		domain TEXT,
		market TEXT,
		language TEXT,
		intent TEXT,
		engagement_score REAL DEFAULT 0,
		trending_score REAL DEFAULT 0,
		priority INTEGER DEFAULT 5,
		content_score REAL,
		research_report TEXT DEFAULT '',
		citations TEXT,
		word_count INTEGER DEFAULT 0,
		minhash_signature TEXT,
		status TEXT DEFAULT 'discovered',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		published_at INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_topics_status ON topics(status);
	CREATE INDEX IF NOT EXISTS idx_topics_language ON topics(language);
	CREATE INDEX IF NOT EXISTS idx_topics_priority ON topics(priority);

	CREATE TABLE IF NOT EXISTS serp_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		topic_id TEXT NOT NULL,
		search_query TEXT NOT NULL,
		position INTEGER NOT NULL,
		url TEXT NOT NULL,
		title TEXT,
		snippet TEXT,
		domain TEXT,
		searched_at INTEGER NOT NULL,
		FOREIGN KEY (topic_id) REFERENCES topics(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_serp_topic_query ON serp_results(topic_id, search_query, searched_at);

	CREATE TABLE IF NOT EXISTS content_scores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT UNIQUE NOT NULL,
		topic_id TEXT,
		quality_score REAL NOT NULL,
		word_count_score REAL,
		readability_score REAL,
		keyword_score REAL,
		structure_score REAL,
		entity_score REAL,
		freshness_score REAL,
		word_count INTEGER,
		reading_ease REAL,
		keyword_density REAL,
		heading_count INTEGER,
		list_count INTEGER,
		image_count INTEGER,
		entity_count INTEGER,
		entity_density REAL,
		published_at INTEGER,
		content_hash TEXT,
		fetched_at INTEGER,
		updated_at INTEGER,
		FOREIGN KEY (topic_id) REFERENCES topics(id) ON DELETE SET NULL
	);
	CREATE INDEX IF NOT EXISTS idx_content_scores_topic ON content_scores(topic_id);

	CREATE TABLE IF NOT EXISTS difficulty_scores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		topic_id TEXT NOT NULL UNIQUE,
		difficulty_score REAL NOT NULL,
		competition_score REAL,
		authority_score REAL,
		content_depth_score REAL,
		freshness_score REAL,
		target_word_count INTEGER,
		target_heading_count INTEGER,
		target_image_count INTEGER,
		target_quality_score REAL,
		avg_competitor_words REAL,
		avg_competitor_quality REAL,
		high_authority_ratio REAL,
		freshness_requirement TEXT,
		estimated_ranking_time TEXT,
		analyzed_at INTEGER,
		updated_at INTEGER,
		FOREIGN KEY (topic_id) REFERENCES topics(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS clusters (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		hub_topic_id TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (hub_topic_id) REFERENCES topics(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS cluster_members (
		cluster_id TEXT NOT NULL,
		topic_id TEXT NOT NULL,
		role TEXT NOT NULL,
		position INTEGER DEFAULT 0,
		PRIMARY KEY (cluster_id, topic_id),
		FOREIGN KEY (cluster_id) REFERENCES clusters(id) ON DELETE CASCADE,
		FOREIGN KEY (topic_id) REFERENCES topics(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS articles (
		id TEXT PRIMARY KEY,
		topic_id TEXT NOT NULL,
		title TEXT,
		content TEXT,
		word_count INTEGER DEFAULT 0,
		status TEXT DEFAULT 'draft',
		published_url TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		FOREIGN KEY (topic_id) REFERENCES topics(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_articles_topic ON articles(topic_id);

	CREATE TABLE IF NOT EXISTS api_costs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		provider TEXT NOT NULL,
		operation TEXT NOT NULL,
		model TEXT,
		prompt_tokens INTEGER DEFAULT 0,
		completion_tokens INTEGER DEFAULT 0,
		cost_usd REAL DEFAULT 0,
		topic_id TEXT,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (topic_id) REFERENCES topics(id) ON DELETE SET NULL
	);
	CREATE INDEX IF NOT EXISTS idx_api_costs_provider ON api_costs(provider);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := c.migrate(); err != nil {
		return err
	}

	logger.Info("SQLite schema initialized")
	return nil
}

// columnMigrations lists columns added after the initial release. Migrations
// are forward-only and additive; each is applied only when introspection
// shows the column missing.
var columnMigrations = []struct {
	table  string
	column string
	ddl    string
}{
	{"topics", "minhash_signature", "ALTER TABLE topics ADD COLUMN minhash_signature TEXT"},
	{"topics", "published_at", "ALTER TABLE topics ADD COLUMN published_at INTEGER"},
	{"documents", "paywall", "ALTER TABLE documents ADD COLUMN paywall INTEGER DEFAULT 0"},
	{"documents", "canonical_url", "ALTER TABLE documents ADD COLUMN canonical_url TEXT"},
	{"content_scores", "entity_density", "ALTER TABLE content_scores ADD COLUMN entity_density REAL"},
	{"difficulty_scores", "freshness_requirement", "ALTER TABLE difficulty_scores ADD COLUMN freshness_requirement TEXT"},
}

func (c *Client) migrate() error {
	columns := make(map[string]map[string]bool)

	for _, m := range columnMigrations {
		existing, ok := columns[m.table]
		if !ok {
			var err error
			existing, err = c.tableColumns(m.table)
			if err != nil {
				return &storage.MigrationError{Table: m.table, Err: err}
			}
			columns[m.table] = existing
		}

		if existing[m.column] {
			continue
		}

		if _, err := c.db.Exec(m.ddl); err != nil {
			return &storage.MigrationError{Table: m.table, Err: err}
		}
		existing[m.column] = true
		logger.Info("Applied column migration",
			zap.String("table", m.table),
			zap.String("column", m.column),
		)
	}

	return nil
}

// tableColumns introspects the current columns of a table.
func (c *Client) tableColumns(table string) (map[string]bool, error) {
	rows, err := c.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("failed to introspect table %s: %w", table, err)
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var (
			cid        int
			name       string
			colType    string
			notNull    int
			defaultVal interface{}
			pk         int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultVal, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column info: %w", err)
		}
		columns[name] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read column info: %w", err)
	}

	return columns, nil
}
