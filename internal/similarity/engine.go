package similarity

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/contentpulse/backend/internal/storage"
	"github.com/contentpulse/backend/internal/storage/models"
	"github.com/contentpulse/backend/pkg/logger"
)

// TopicSource is the slice of the store the engine reads from.
type TopicSource interface {
	GetTopic(id string) (*models.Topic, error)
	ListResearchedTopics() ([]models.Topic, error)
	GetClusterForTopic(topicID string) (*models.Cluster, error)
	GetClusterMembers(clusterID string) ([]models.ClusterMember, error)
}

// RelatedTopic pairs a candidate topic with its similarity to the source.
type RelatedTopic struct {
	Topic          models.Topic
	Similarity     float64
	SharedKeywords []string
}

// Synthesis summarizes what the related research already covers.
type Synthesis struct {
	Related      []RelatedTopic
	KeyFindings  []string
	CommonThemes []string
	UniqueAngles []string
	Summary      string
}

// LinkSuggestion is one internal-link candidate for an article.
type LinkSuggestion struct {
	TopicID string
	Title   string
	Reason  string
}

// fallbackMinSimilarity is used when internal-link suggestion runs out of
// cluster options and falls back to generic similarity.
const fallbackMinSimilarity = 0.2

type Engine struct {
	store TopicSource
}

func NewEngine(store TopicSource) *Engine {
	return &Engine{store: store}
}

// FindRelatedTopics ranks every other topic carrying a research report by
// Jaccard similarity of title keywords against the source topic. Pairs below
// minSimilarity are dropped; ties keep the underlying scan order.
func (e *Engine) FindRelatedTopics(topicID string, limit int, minSimilarity float64) ([]RelatedTopic, error) {
	source, err := e.store.GetTopic(topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to load source topic: %w", err)
	}
	if source == nil {
		return nil, &storage.ValidationError{Reason: fmt.Sprintf("unknown topic %s", topicID)}
	}

	sourceKeywords := ExtractKeywords(source.Title)

	candidates, err := e.store.ListResearchedTopics()
	if err != nil {
		return nil, fmt.Errorf("failed to load researched topics: %w", err)
	}

	var related []RelatedTopic
	for _, candidate := range candidates {
		if candidate.ID == topicID {
			continue
		}

		candidateKeywords := ExtractKeywords(candidate.Title)
		score := Jaccard(sourceKeywords, candidateKeywords)
		if score < minSimilarity {
			continue
		}

		related = append(related, RelatedTopic{
			Topic:          candidate,
			Similarity:     score,
			SharedKeywords: SharedKeywords(sourceKeywords, candidateKeywords),
		})
	}

	sort.SliceStable(related, func(i, j int) bool {
		return related[i].Similarity > related[j].Similarity
	})

	if limit > 0 && len(related) > limit {
		related = related[:limit]
	}

	logger.Debug("Related topics ranked",
		zap.String("topic_id", topicID),
		zap.Int("candidates", len(candidates)),
		zap.Int("related", len(related)),
	)

	return related, nil
}

// Synthesize distills the related research: a few key sentences from each
// report, the themes shared across titles, and one unique angle per top
// related topic.
func (e *Engine) Synthesize(source *models.Topic, related []RelatedTopic) *Synthesis {
	synthesis := &Synthesis{Related: related}

	for _, rel := range related {
		sentences := leadingSentences(rel.Topic.ResearchReport, 3)
		synthesis.KeyFindings = append(synthesis.KeyFindings, sentences...)
	}

	synthesis.CommonThemes = commonThemes(related, 5)

	top := related
	if len(top) > 3 {
		top = top[:3]
	}
	for _, rel := range top {
		shared := rel.SharedKeywords
		if len(shared) > 2 {
			shared = shared[:2]
		}
		if len(shared) == 0 {
			continue
		}
		synthesis.UniqueAngles = append(synthesis.UniqueAngles,
			fmt.Sprintf("%q connects through %s", rel.Topic.Title, strings.Join(shared, " and ")))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d related topics already researched", len(related)))
	if len(synthesis.CommonThemes) > 0 {
		sb.WriteString(fmt.Sprintf("; recurring themes: %s", strings.Join(synthesis.CommonThemes, ", ")))
	}
	if len(synthesis.UniqueAngles) > 0 {
		sb.WriteString(". ")
		sb.WriteString(strings.Join(synthesis.UniqueAngles, ". "))
	}
	synthesis.Summary = sb.String()

	return synthesis
}

// SuggestInternalLinks picks link targets for a topic's article. Cluster
// structure wins over similarity: a spoke links its hub first, then sibling
// spokes; only when cluster options run out does generic similarity fill
// the remainder, capped at max.
func (e *Engine) SuggestInternalLinks(topicID string, max int) ([]LinkSuggestion, error) {
	if max <= 0 {
		return nil, nil
	}

	var suggestions []LinkSuggestion
	suggested := map[string]bool{topicID: true}

	cluster, err := e.store.GetClusterForTopic(topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cluster: %w", err)
	}

	if cluster != nil {
		members, err := e.store.GetClusterMembers(cluster.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load cluster members: %w", err)
		}

		// Hub first, then spokes in position order; the member query
		// already returns them that way.
		for _, member := range members {
			if member.TopicID == topicID || suggested[member.TopicID] {
				continue
			}
			if len(suggestions) >= max {
				return suggestions, nil
			}

			topic, err := e.store.GetTopic(member.TopicID)
			if err != nil {
				return nil, fmt.Errorf("failed to load cluster topic: %w", err)
			}
			if topic == nil {
				continue
			}

			reason := "cluster sibling"
			if member.Role == models.ClusterRoleHub {
				reason = "cluster hub"
			}
			suggestions = append(suggestions, LinkSuggestion{
				TopicID: topic.ID,
				Title:   topic.Title,
				Reason:  reason,
			})
			suggested[topic.ID] = true
		}
	}

	if len(suggestions) < max {
		related, err := e.FindRelatedTopics(topicID, max-len(suggestions)+len(suggested), fallbackMinSimilarity)
		if err != nil {
			return nil, err
		}
		for _, rel := range related {
			if len(suggestions) >= max {
				break
			}
			if suggested[rel.Topic.ID] {
				continue
			}
			suggestions = append(suggestions, LinkSuggestion{
				TopicID: rel.Topic.ID,
				Title:   rel.Topic.Title,
				Reason:  fmt.Sprintf("related topic (similarity %.2f)", rel.Similarity),
			})
			suggested[rel.Topic.ID] = true
		}
	}

	return suggestions, nil
}

// leadingSentences pulls up to n short sentences from the report prefix.
func leadingSentences(report string, n int) []string {
	prefix := report
	if len(prefix) > 600 {
		prefix = prefix[:600]
	}

	var sentences []string
	for _, raw := range strings.Split(prefix, ". ") {
		s := strings.TrimSpace(raw)
		if len(s) < 20 || len(s) > 200 {
			continue
		}
		sentences = append(sentences, s)
		if len(sentences) >= n {
			break
		}
	}
	return sentences
}

// commonThemes returns keywords appearing in at least two related titles,
// most frequent first, capped at limit.
func commonThemes(related []RelatedTopic, limit int) []string {
	frequency := make(map[string]int)
	for _, rel := range related {
		for keyword := range ExtractKeywords(rel.Topic.Title) {
			frequency[keyword]++
		}
	}

	var themes []string
	for keyword, count := range frequency {
		if count >= 2 {
			themes = append(themes, keyword)
		}
	}

	sort.SliceStable(themes, func(i, j int) bool {
		if frequency[themes[i]] != frequency[themes[j]] {
			return frequency[themes[i]] > frequency[themes[j]]
		}
		return themes[i] < themes[j]
	})

	if len(themes) > limit {
		themes = themes[:limit]
	}
	return themes
}
