// Package content converts fetched page markup into a 0-100 quality score
// with per-signal sub-scores. Scoring is a pure function over the markup;
// persistence belongs to the caller.
package content

import (
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	readability "github.com/go-shiori/go-readability"
	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	"github.com/contentpulse/backend/internal/storage"
	"github.com/contentpulse/backend/internal/storage/models"
	"github.com/contentpulse/backend/pkg/logger"
	"github.com/contentpulse/backend/pkg/utils"
)

// Scorer assesses the quality of already-fetched page markup.
type Scorer struct {
	now func() time.Time
}

func NewScorer() *Scorer {
	return &Scorer{now: time.Now}
}

// Score runs the full assessment pipeline: strip boilerplate, measure the
// signals, map each through its curve and combine them by weight. Markup
// that yields no content fails with ValidationError; no degraded score is
// produced.
func (s *Scorer) Score(pageURL, rawHTML, targetKeyword string) (*models.ContentScore, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, &storage.ValidationError{Reason: "unparseable markup"}
	}

	text := s.extractText(pageURL, rawHTML, doc)
	if text == "" {
		return nil, &storage.ValidationError{Reason: "no content extracted from markup"}
	}

	words := strings.Fields(text)
	wordCount := len(words)

	sentences, entities := analyzeProse(text)
	flesch := fleschReadingEase(words, sentences)

	headings := doc.Find("h1, h2, h3, h4, h5, h6").Length()
	lists := doc.Find("ul, ol").Length()
	images := doc.Find("img").Length()

	publishedAt := extractPublishDate(doc)

	var keywordDensity float64
	hasKeyword := targetKeyword != ""
	if hasKeyword && wordCount > 0 {
		occurrences := strings.Count(strings.ToLower(text), strings.ToLower(targetKeyword))
		keywordDensity = float64(occurrences) / float64(wordCount) * 100
	}

	entityDensity := 0.0
	if wordCount > 0 {
		entityDensity = float64(len(entities)) / float64(wordCount) * 100
	}

	now := s.now()
	subScores := map[string]float64{
		"word_count":  wordCountScore(wordCount),
		"readability": readabilityScore(flesch),
		"keyword":     keywordScore(keywordDensity, hasKeyword),
		"structure":   structureScore(headings, lists, images),
		"entity":      entityScore(entityDensity),
		"freshness":   freshnessScore(publishedAt, now),
	}

	combined := 0.0
	for name, sub := range subScores {
		combined += sub * weights[name]
	}
	combined *= 100

	score := &models.ContentScore{
		URL:              pageURL,
		QualityScore:     combined,
		WordCountScore:   subScores["word_count"],
		ReadabilityScore: subScores["readability"],
		KeywordScore:     subScores["keyword"],
		StructureScore:   subScores["structure"],
		EntityScore:      subScores["entity"],
		FreshnessScore:   subScores["freshness"],
		WordCount:        wordCount,
		ReadingEase:      flesch,
		KeywordDensity:   keywordDensity,
		HeadingCount:     headings,
		ListCount:        lists,
		ImageCount:       images,
		EntityCount:      len(entities),
		EntityDensity:    entityDensity,
		PublishedAt:      publishedAt,
		ContentHash:      utils.HashString(text),
		FetchedAt:        now,
	}

	logger.Debug("Content scored",
		zap.String("url", pageURL),
		zap.Float64("quality_score", combined),
		zap.Int("word_count", wordCount),
	)

	return score, nil
}

// extractText prefers readability's article extraction and falls back to
// stripping known boilerplate elements when readability cannot find an
// article body.
func (s *Scorer) extractText(pageURL, rawHTML string, doc *goquery.Document) string {
	parsedURL, err := url.Parse(pageURL)
	if err == nil {
		article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
		if err == nil {
			if text := normalizeWhitespace(article.TextContent); text != "" {
				return text
			}
		}
	}

	clone := doc.Clone()
	clone.Find("script, style, nav, footer, header, aside, form").Remove()
	return normalizeWhitespace(clone.Find("body").Text())
}

// analyzeProse segments the text and extracts the naive entity set:
// capitalized tokens that do not open their sentence, minus a bilingual
// stop-list and anything shorter than three characters.
func analyzeProse(text string) (sentenceCount int, entities []string) {
	doc, err := prose.NewDocument(text,
		prose.WithExtraction(false),
		prose.WithTagging(false),
	)
	if err != nil {
		// Segmentation failure degrades to one-sentence text; entity
		// extraction is skipped.
		return 1, nil
	}

	seen := make(map[string]bool)
	sents := doc.Sentences()
	sentenceCount = len(sents)
	if sentenceCount == 0 {
		sentenceCount = 1
	}

	for _, sent := range sents {
		tokens := strings.Fields(sent.Text)
		for i, token := range tokens {
			if i == 0 {
				continue
			}
			cleaned := strings.Trim(token, ".,!?;:\"'()[]«»¿¡")
			if len(cleaned) <= 2 {
				continue
			}
			runes := []rune(cleaned)
			if !unicode.IsUpper(runes[0]) {
				continue
			}
			if entityStopwords[strings.ToLower(cleaned)] {
				continue
			}
			if !seen[cleaned] {
				seen[cleaned] = true
				entities = append(entities, cleaned)
			}
		}
	}

	return sentenceCount, entities
}

// fleschReadingEase computes the standard Flesch score:
// 206.835 - 1.015*(words/sentences) - 84.6*(syllables/word).
func fleschReadingEase(words []string, sentences int) float64 {
	if len(words) == 0 || sentences == 0 {
		return 0
	}

	totalSyllables := 0
	for _, word := range words {
		totalSyllables += countSyllables(word)
	}

	wordsPerSentence := float64(len(words)) / float64(sentences)
	syllablesPerWord := float64(totalSyllables) / float64(len(words))

	return 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord
}

// countSyllables approximates syllables as vowel groups, dropping a silent
// trailing e. Always at least one.
func countSyllables(word string) int {
	word = strings.ToLower(strings.Trim(word, ".,!?;:\"'()[]"))
	if word == "" {
		return 1
	}

	count := 0
	prevVowel := false
	for _, r := range word {
		vowel := strings.ContainsRune("aeiouyáéíóúü", r)
		if vowel && !prevVowel {
			count++
		}
		prevVowel = vowel
	}

	if strings.HasSuffix(word, "e") && count > 1 {
		count--
	}
	if count == 0 {
		count = 1
	}
	return count
}

// extractPublishDate reads the publish timestamp from the usual metadata
// locations, first match wins.
func extractPublishDate(doc *goquery.Document) *time.Time {
	candidates := []string{}

	selectors := []struct {
		query string
		attr  string
	}{
		{`meta[property="article:published_time"]`, "content"},
		{`meta[name="article:published_time"]`, "content"},
		{`meta[itemprop="datePublished"]`, "content"},
		{`meta[name="date"]`, "content"},
		{`meta[name="publish-date"]`, "content"},
		{`time[datetime]`, "datetime"},
	}

	for _, sel := range selectors {
		if value, ok := doc.Find(sel.query).First().Attr(sel.attr); ok && value != "" {
			candidates = append(candidates, value)
		}
	}

	for _, candidate := range candidates {
		if t, err := dateparse.ParseAny(candidate); err == nil {
			return &t
		}
	}

	return nil
}

func normalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// entityStopwords filters capitalized function words (English and Spanish)
// out of the naive entity set.
var entityStopwords = map[string]bool{
	"the": true, "this": true, "that": true, "these": true, "those": true,
	"there": true, "then": true, "they": true, "their": true, "them": true,
	"when": true, "where": true, "which": true, "while": true, "what": true,
	"with": true, "from": true, "into": true, "about": true, "after": true,
	"before": true, "because": true, "however": true, "also": true,
	"you": true, "your": true, "our": true, "his": true, "her": true,
	"its": true, "but": true, "and": true, "for": true, "not": true,
	"una": true, "uno": true, "los": true, "las": true, "del": true,
	"este": true, "esta": true, "estos": true, "estas": true, "ese": true,
	"esa": true, "aunque": true, "porque": true, "cuando": true, "donde": true,
	"como": true, "pero": true, "para": true, "con": true, "sin": true,
	"sobre": true, "entre": true, "desde": true, "hasta": true, "muy": true,
}
