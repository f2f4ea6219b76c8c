package content

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/contentpulse/backend/internal/storage"
)

// samplePage builds markup with a controllable amount of body text.
func samplePage(paragraphs int, published string) string {
	var sb strings.Builder
	sb.WriteString(`<html><head><title>Trail running shoes compared</title>`)
	if published != "" {
		sb.WriteString(fmt.Sprintf(`<meta property="article:published_time" content="%s">`, published))
	}
	sb.WriteString(`</head><body><nav>Home Gear About</nav><article><h1>Trail running shoes compared</h1>`)
	for i := 0; i < paragraphs; i++ {
		sb.WriteString(`<h2>Another section</h2>`)
		sb.WriteString(`<p>Trail running shoes need grip and drainage. The tread bites into mud and wet rock. `)
		sb.WriteString(`A stiff plate under the foot guards against sharp stones on long descents. `)
		sb.WriteString(`Most runners replace their shoes after five hundred miles of rough ground.</p>`)
		sb.WriteString(`<ul><li>Grip</li><li>Drainage</li><li>Cushioning</li></ul>`)
		sb.WriteString(`<img src="shoe.jpg" alt="shoe">`)
	}
	sb.WriteString(`</article><footer>Copyright</footer></body></html>`)
	return sb.String()
}

func TestScoreRejectsEmptyMarkup(t *testing.T) {
	scorer := NewScorer()

	for _, html := range []string{"", "<html><body></body></html>", "<html><body><script>x()</script></body></html>"} {
		_, err := scorer.Score("https://example.com/page", html, "")
		var invalid *storage.ValidationError
		if !errors.As(err, &invalid) {
			t.Errorf("Score(%q) error = %v, want ValidationError", html, err)
		}
	}
}

func TestScoreProducesBoundedScore(t *testing.T) {
	scorer := NewScorer()

	score, err := scorer.Score("https://example.com/shoes", samplePage(8, ""), "trail running shoes")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	if score.QualityScore < 0 || score.QualityScore > 100 {
		t.Errorf("quality score = %v, out of [0,100]", score.QualityScore)
	}
	for name, sub := range map[string]float64{
		"word_count":  score.WordCountScore,
		"readability": score.ReadabilityScore,
		"keyword":     score.KeywordScore,
		"structure":   score.StructureScore,
		"entity":      score.EntityScore,
		"freshness":   score.FreshnessScore,
	} {
		if sub < 0 || sub > 1 {
			t.Errorf("sub-score %s = %v, out of [0,1]", name, sub)
		}
	}

	if score.WordCount == 0 {
		t.Error("word count = 0 for non-empty page")
	}
	if score.HeadingCount != 9 { // one h1 plus eight h2
		t.Errorf("heading count = %d, want 9", score.HeadingCount)
	}
	if score.ListCount != 8 {
		t.Errorf("list count = %d, want 8", score.ListCount)
	}
	if score.ContentHash == "" {
		t.Error("content hash is empty")
	}
	if score.KeywordDensity <= 0 {
		t.Errorf("keyword density = %v, want > 0 for a present keyword", score.KeywordDensity)
	}
}

func TestScoreIgnoresBoilerplate(t *testing.T) {
	scorer := NewScorer()

	withChrome, err := scorer.Score("https://example.com/a", samplePage(6, ""), "")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	if withChrome.WordCount < 100 {
		t.Errorf("word count = %d, suspiciously low for six sections", withChrome.WordCount)
	}

	// The body is six repeats of a ~45 word block; nav and footer chrome
	// would add noticeably more if it leaked through extraction.
	if withChrome.WordCount > 400 {
		t.Errorf("word count = %d, boilerplate may have leaked into content", withChrome.WordCount)
	}
}

func TestScoreReadsPublishDate(t *testing.T) {
	scorer := NewScorer()
	fixed := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	scorer.now = func() time.Time { return fixed }

	score, err := scorer.Score("https://example.com/fresh", samplePage(4, "2026-02-01T10:00:00Z"), "")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if score.PublishedAt == nil {
		t.Fatal("publish date not extracted from meta tag")
	}
	if score.FreshnessScore != 1.0 {
		t.Errorf("freshness = %v for month-old content, want 1.0", score.FreshnessScore)
	}

	undated, err := scorer.Score("https://example.com/undated", samplePage(4, ""), "")
	if err != nil {
		t.Fatalf("Score(undated): %v", err)
	}
	if undated.PublishedAt != nil {
		t.Errorf("publish date = %v for undated page, want nil", undated.PublishedAt)
	}
	if undated.FreshnessScore != 0.5 {
		t.Errorf("freshness = %v for undated page, want neutral 0.5", undated.FreshnessScore)
	}
}

func TestCountSyllables(t *testing.T) {
	tests := []struct {
		word string
		want int
	}{
		{"run", 1},
		{"runner", 2},
		{"mountain", 2},
		{"article", 2},
		{"idea", 2},
		{"", 1},
	}
	for _, tt := range tests {
		if got := countSyllables(tt.word); got != tt.want {
			t.Errorf("countSyllables(%q) = %d, want %d", tt.word, got, tt.want)
		}
	}
}
