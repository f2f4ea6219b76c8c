// Package ingestion turns fetched markup into stored reference documents.
package ingestion

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	readability "github.com/go-shiori/go-readability"
	prose "github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	"github.com/contentpulse/backend/internal/fetch"
	"github.com/contentpulse/backend/internal/llm"
	"github.com/contentpulse/backend/internal/metrics"
	"github.com/contentpulse/backend/internal/similarity"
	"github.com/contentpulse/backend/internal/storage/models"
	"github.com/contentpulse/backend/internal/storage/sqlite"
	"github.com/contentpulse/backend/pkg/logger"
	"github.com/contentpulse/backend/pkg/utils"
)

// maxEntities caps how many named entities are kept per document.
const maxEntities = 25

type Processor struct {
	db        *sqlite.Client
	fetcher   *fetch.Fetcher
	llmClient *llm.Client
}

// NewProcessor wires the ingest pipeline. llmClient may be nil; documents
// are then stored without a summary.
func NewProcessor(db *sqlite.Client, fetcher *fetch.Fetcher, llmClient *llm.Client) *Processor {
	return &Processor{
		db:        db,
		fetcher:   fetcher,
		llmClient: llmClient,
	}
}

// ProcessPage extracts, deduplicates and stores one fetched page. When the
// same content was already ingested under another URL the existing document
// is returned unchanged.
func (p *Processor) ProcessPage(ctx context.Context, source, pageURL, htmlContent, market, vertical string) (*models.Document, error) {
	logger.Info("Processing document", zap.String("url", pageURL))

	text, title := p.extractContent(pageURL, htmlContent)
	if text == "" {
		metrics.DocumentsIngested.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("no content extracted from %s", pageURL)
	}

	contentHash := utils.HashString(text)

	existing, err := p.db.GetDocumentByHash(contentHash)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate: %w", err)
	}
	if existing != nil {
		logger.Debug("Duplicate content skipped",
			zap.String("url", pageURL),
			zap.String("existing_id", existing.ID),
		)
		metrics.DocumentsIngested.WithLabelValues("duplicate").Inc()
		return existing, nil
	}

	doc := &models.Document{
		ID:          uuid.New().String(),
		Source:      source,
		SourceURL:   pageURL,
		Title:       title,
		Content:     text,
		Language:    p.fetcher.DetectLanguage(text),
		Domain:      domainOf(pageURL),
		Market:      market,
		Vertical:    vertical,
		ContentHash: contentHash,
		FetchedAt:   time.Now(),
		Entities:    extractEntities(text),
		Keywords:    titleKeywords(title),
		Status:      models.DocumentStatusNew,
	}

	if p.llmClient != nil {
		result, err := p.llmClient.Summarize(ctx, text)
		if err != nil {
			logger.Warn("Failed to summarize document", zap.String("url", pageURL), zap.Error(err))
		} else {
			doc.Summary = result.Content
			if err := p.db.RecordAPICost(&models.APICost{
				Provider:         "openai",
				Operation:        "summarize",
				Model:            p.llmClient.Model(),
				PromptTokens:     result.PromptTokens,
				CompletionTokens: result.CompletionTokens,
				CostUSD:          result.CostUSD,
				CreatedAt:        time.Now(),
			}); err != nil {
				logger.Warn("Failed to record API cost", zap.Error(err))
			}
		}
	}

	if err := p.db.InsertDocument(doc); err != nil {
		metrics.DocumentsIngested.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("failed to insert document: %w", err)
	}

	metrics.DocumentsIngested.WithLabelValues("stored").Inc()
	logger.Info("Document ingested",
		zap.String("id", doc.ID),
		zap.String("language", doc.Language),
		zap.Int("words", len(strings.Fields(text))),
	)

	return doc, nil
}

// FetchAndProcess downloads a page and runs it through ProcessPage.
func (p *Processor) FetchAndProcess(ctx context.Context, source, pageURL, market, vertical string) (*models.Document, error) {
	htmlContent, err := p.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		metrics.PagesFetched.WithLabelValues("failed").Inc()
		return nil, err
	}
	metrics.PagesFetched.WithLabelValues("ok").Inc()

	return p.ProcessPage(ctx, source, pageURL, htmlContent, market, vertical)
}

// extractContent pulls readable text and the page title, preferring the
// readability extraction and falling back to a stripped DOM.
func (p *Processor) extractContent(pageURL, htmlContent string) (text, title string) {
	parsed, err := url.Parse(pageURL)
	if err == nil {
		if article, err := readability.FromReader(strings.NewReader(htmlContent), parsed); err == nil {
			text = strings.TrimSpace(article.TextContent)
			title = strings.TrimSpace(article.Title)
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return text, title
	}

	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if text == "" {
		body := doc.Clone()
		body.Find("script, style, nav, footer, header, aside, form").Remove()
		text = strings.Join(strings.Fields(body.Find("body").Text()), " ")
	}

	return text, title
}

// extractEntities runs named-entity recognition over the opening of the
// document and keeps distinct entity texts in order of first appearance.
func extractEntities(text string) []string {
	if len(text) > 10000 {
		text = text[:10000]
	}

	doc, err := prose.NewDocument(text)
	if err != nil {
		logger.Warn("Entity extraction failed", zap.Error(err))
		return nil
	}

	seen := make(map[string]bool)
	var entities []string
	for _, ent := range doc.Entities() {
		name := strings.TrimSpace(ent.Text)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		entities = append(entities, name)
		if len(entities) >= maxEntities {
			break
		}
	}

	return entities
}

func titleKeywords(title string) []string {
	set := similarity.ExtractKeywords(title)
	keywords := make([]string, 0, len(set))
	for k := range set {
		keywords = append(keywords, k)
	}
	sort.Strings(keywords)
	return keywords
}

func domainOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}
