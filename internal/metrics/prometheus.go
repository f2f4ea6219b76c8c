package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ScoringDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contentpulse_scoring_duration_seconds",
			Help:    "Content and difficulty scoring duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"scorer"},
	)

	ScoringTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentpulse_scoring_total",
			Help: "Total scoring runs",
		},
		[]string{"scorer", "status"},
	)

	DocumentsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentpulse_documents_ingested_total",
			Help: "Total reference documents ingested",
		},
		[]string{"status"},
	)

	SERPSnapshots = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "contentpulse_serp_snapshots_total",
			Help: "Total SERP snapshots persisted",
		},
	)

	SearchesPerformed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentpulse_searches_total",
			Help: "Total external search queries",
		},
		[]string{"status"},
	)

	PagesFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentpulse_pages_fetched_total",
			Help: "Total competitor pages fetched",
		},
		[]string{"status"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentpulse_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentpulse_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	LLMTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentpulse_llm_tokens_used",
			Help: "Total LLM tokens used",
		},
		[]string{"model", "type"},
	)

	LLMCost = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentpulse_llm_cost_usd",
			Help: "Estimated LLM API cost in USD",
		},
		[]string{"model"},
	)

	DifficultyScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "contentpulse_difficulty_score",
			Help:    "Distribution of computed difficulty scores",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	TopicsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "contentpulse_topics_total",
			Help: "Topics in the store by status",
		},
		[]string{"status"},
	)
)

func Init() {
	prometheus.MustRegister(ScoringDuration)
	prometheus.MustRegister(ScoringTotal)
	prometheus.MustRegister(DocumentsIngested)
	prometheus.MustRegister(SERPSnapshots)
	prometheus.MustRegister(SearchesPerformed)
	prometheus.MustRegister(PagesFetched)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(LLMTokensUsed)
	prometheus.MustRegister(LLMCost)
	prometheus.MustRegister(DifficultyScore)
	prometheus.MustRegister(TopicsTotal)
}

// SetTopicCounts replaces the per-status topic gauge with a fresh count.
// Reset first so statuses that dropped to zero disappear from the export.
func SetTopicCounts(counts map[string]int) {
	TopicsTotal.Reset()
	for status, n := range counts {
		TopicsTotal.WithLabelValues(status).Set(float64(n))
	}
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
