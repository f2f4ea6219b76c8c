// Package difficulty turns a competitive SERP snapshot and the quality
// scores of its ranking pages into a 0-100 difficulty score, production
// targets and prioritized recommendations.
package difficulty

import (
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/contentpulse/backend/internal/storage"
	"github.com/contentpulse/backend/internal/storage/models"
	"github.com/contentpulse/backend/pkg/logger"
)

// Component weights for the combined difficulty score. They must sum to 1.0.
var weights = map[string]float64{
	"competition": 0.40,
	"authority":   0.30,
	"depth":       0.20,
	"freshness":   0.10,
}

// CompetitorPage is one ranking result, optionally tagged with an authority
// bucket. Untagged pages are classified from their domain.
type CompetitorPage struct {
	Position  int
	URL       string
	Domain    string
	Authority Authority
}

// Recommendation priorities.
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"
)

// Recommendation is one prioritized piece of editorial guidance.
type Recommendation struct {
	Priority string
	Message  string
}

// Analysis bundles the persisted score entity with its recommendations.
type Analysis struct {
	Score           models.DifficultyScore
	Recommendations []Recommendation
}

// freshWindowDays bounds what counts as "very fresh" competitor content.
const freshWindowDays = 90

type Scorer struct {
	now func() time.Time
}

func NewScorer() *Scorer {
	return &Scorer{now: time.Now}
}

// Analyze scores the competitive landscape for a topic. Both input lists
// must be non-empty; an empty snapshot or an empty score list fails with
// ValidationError and produces no output.
func (s *Scorer) Analyze(topicID string, pages []CompetitorPage, scores []models.ContentScore) (*Analysis, error) {
	if len(pages) == 0 {
		return nil, &storage.ValidationError{Reason: "no competitor pages in snapshot"}
	}
	if len(scores) == 0 {
		return nil, &storage.ValidationError{Reason: "no competitor content scores"}
	}

	now := s.now()

	avgQuality := 0.0
	avgWords := 0.0
	avgHeadings := 0.0
	avgImages := 0.0
	fresh := 0
	for _, score := range scores {
		avgQuality += score.QualityScore
		avgWords += float64(score.WordCount)
		avgHeadings += float64(score.HeadingCount)
		avgImages += float64(score.ImageCount)
		if score.PublishedAt != nil && now.Sub(*score.PublishedAt).Hours()/24 <= freshWindowDays {
			fresh++
		}
	}
	n := float64(len(scores))
	avgQuality /= n
	avgWords /= n
	avgHeadings /= n
	avgImages /= n
	freshRatio := float64(fresh) / n

	highAuthority := 0
	for _, page := range pages {
		authority := page.Authority
		if authority == "" {
			authority = ClassifyAuthority(page.Domain)
		}
		if authority == AuthorityHigh || authority == AuthorityMediumHigh {
			highAuthority++
		}
	}
	authorityRatio := float64(highAuthority) / float64(len(pages))

	components := map[string]float64{
		"competition": competitionCurve(avgQuality),
		"authority":   authorityCurve(authorityRatio),
		"depth":       depthCurve(avgWords),
		"freshness":   freshnessCurve(freshRatio),
	}

	combined := 0.0
	for name, value := range components {
		combined += value * weights[name]
	}
	combined *= 100

	score := models.DifficultyScore{
		TopicID:              topicID,
		DifficultyScore:      combined,
		CompetitionScore:     components["competition"],
		AuthorityScore:       components["authority"],
		ContentDepthScore:    components["depth"],
		FreshnessScore:       components["freshness"],
		TargetWordCount:      targetWordCount(avgWords),
		TargetHeadingCount:   int(math.Floor(avgHeadings)) + 1,
		TargetImageCount:     int(math.Floor(avgImages)) + 1,
		TargetQualityScore:   targetQuality(scores),
		AvgCompetitorWords:   avgWords,
		AvgCompetitorQuality: avgQuality,
		HighAuthorityRatio:   authorityRatio,
		FreshnessRequirement: freshnessRequirement(freshRatio),
		EstimatedRankingTime: estimatedRankingTime(combined),
		AnalyzedAt:           now,
	}

	analysis := &Analysis{
		Score:           score,
		Recommendations: buildRecommendations(score, authorityRatio, avgQuality, avgWords, freshRatio),
	}

	logger.Debug("Difficulty analyzed",
		zap.String("topic_id", topicID),
		zap.Float64("difficulty", combined),
		zap.Float64("authority_ratio", authorityRatio),
	)

	return analysis, nil
}

// targetWordCount beats the competitor average by 10%, rounded to the
// nearest hundred.
func targetWordCount(avgWords float64) int {
	return int(math.Round(avgWords*1.10/100)) * 100
}

// targetQuality aims 5 points above the top-3 competitor average, capped
// at 100.
func targetQuality(scores []models.ContentScore) float64 {
	sorted := make([]float64, 0, len(scores))
	for _, s := range scores {
		sorted = append(sorted, s.QualityScore)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	top := sorted
	if len(top) > 3 {
		top = top[:3]
	}

	sum := 0.0
	for _, q := range top {
		sum += q
	}
	target := sum/float64(len(top)) + 5
	if target > 100 {
		target = 100
	}
	return target
}

// estimatedRankingTime picks one of five buckets purely from the combined
// score's band.
func estimatedRankingTime(difficulty float64) string {
	switch {
	case difficulty < 20:
		return "2-4 months"
	case difficulty < 40:
		return "4-6 months"
	case difficulty < 60:
		return "6-9 months"
	case difficulty < 80:
		return "9-12 months"
	default:
		return "12-18 months"
	}
}

func freshnessRequirement(freshRatio float64) string {
	switch {
	case freshRatio >= 0.5:
		return "high"
	case freshRatio >= 0.2:
		return "medium"
	default:
		return "low"
	}
}

// buildRecommendations assembles the guidance list: the overall band
// assessment always comes first, followed by hard-threshold warnings that
// fire regardless of the combined score, then the production targets.
func buildRecommendations(score models.DifficultyScore, authorityRatio, avgQuality, avgWords, freshRatio float64) []Recommendation {
	recs := []Recommendation{bandAssessment(score.DifficultyScore)}

	if authorityRatio > 0.6 {
		recs = append(recs, Recommendation{
			Priority: PriorityCritical,
			Message: fmt.Sprintf("%.0f%% of ranking pages are high-authority domains; plan for link building before targeting this topic",
				authorityRatio*100),
		})
	}
	if avgQuality > 85 {
		recs = append(recs, Recommendation{
			Priority: PriorityHigh,
			Message:  fmt.Sprintf("competitor content quality averages %.0f/100; only exceptional content will displace it", avgQuality),
		})
	}
	if avgWords > 4000 {
		recs = append(recs, Recommendation{
			Priority: PriorityMedium,
			Message:  fmt.Sprintf("competitors average %.0f words; budget for long-form production", avgWords),
		})
	}
	if freshRatio > 0.5 {
		recs = append(recs, Recommendation{
			Priority: PriorityHigh,
			Message:  "most ranking content is under 90 days old; schedule regular refreshes after publication",
		})
	}

	recs = append(recs,
		Recommendation{
			Priority: PriorityMedium,
			Message: fmt.Sprintf("target %d+ words, %d+ headings and %d+ images to beat the current average",
				score.TargetWordCount, score.TargetHeadingCount, score.TargetImageCount),
		},
		Recommendation{
			Priority: PriorityLow,
			Message:  fmt.Sprintf("aim for a quality score of %.0f or better", score.TargetQualityScore),
		},
	)

	return recs
}

func bandAssessment(difficulty float64) Recommendation {
	switch {
	case difficulty >= 80:
		return Recommendation{PriorityCritical, fmt.Sprintf("difficulty %.0f/100: extremely competitive; consider narrower long-tail variants", difficulty)}
	case difficulty >= 60:
		return Recommendation{PriorityHigh, fmt.Sprintf("difficulty %.0f/100: strong competition; a differentiated angle is required", difficulty)}
	case difficulty >= 40:
		return Recommendation{PriorityMedium, fmt.Sprintf("difficulty %.0f/100: moderate competition; winnable with above-average content", difficulty)}
	default:
		return Recommendation{PriorityLow, fmt.Sprintf("difficulty %.0f/100: low competition; a solid article should rank", difficulty)}
	}
}

// competitionCurve maps average competitor quality (0-100) onto [0,1].
func competitionCurve(avgQuality float64) float64 {
	switch {
	case avgQuality >= 80:
		return 1.0
	case avgQuality >= 60:
		return 0.6 + 0.4*(avgQuality-60)/20
	case avgQuality >= 40:
		return 0.3 + 0.3*(avgQuality-40)/20
	default:
		return 0.3 * avgQuality / 40
	}
}

// authorityCurve maps the high-authority proportion onto [0,1].
func authorityCurve(ratio float64) float64 {
	switch {
	case ratio >= 0.8:
		return 1.0
	case ratio >= 0.6:
		return 0.8 + (ratio - 0.6)
	case ratio >= 0.3:
		return 0.4 + 0.4*(ratio-0.3)/0.3
	default:
		return 0.4 * ratio / 0.3
	}
}

// depthCurve maps average competitor word count onto [0,1].
func depthCurve(avgWords float64) float64 {
	switch {
	case avgWords >= 3000:
		return 1.0
	case avgWords >= 2000:
		return 0.7 + 0.3*(avgWords-2000)/1000
	case avgWords >= 1000:
		return 0.4 + 0.3*(avgWords-1000)/1000
	default:
		return 0.4 * avgWords / 1000
	}
}

// freshnessCurve maps the very-fresh proportion onto [0,1].
func freshnessCurve(ratio float64) float64 {
	switch {
	case ratio >= 0.7:
		return 1.0
	case ratio >= 0.4:
		return 0.6 + 0.4*(ratio-0.4)/0.3
	case ratio >= 0.1:
		return 0.3 + 0.3*(ratio-0.1)/0.3
	default:
		return 3 * ratio
	}
}
