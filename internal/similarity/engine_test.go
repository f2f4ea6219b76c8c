package similarity

import (
	"errors"
	"testing"

	"github.com/contentpulse/backend/internal/storage"
	"github.com/contentpulse/backend/internal/storage/models"
)

// fakeStore serves the engine from fixtures.
type fakeStore struct {
	topics   map[string]*models.Topic
	clusters map[string]*models.Cluster        // topic id -> cluster
	members  map[string][]models.ClusterMember // cluster id -> members
}

func (f *fakeStore) GetTopic(id string) (*models.Topic, error) {
	return f.topics[id], nil
}

func (f *fakeStore) ListResearchedTopics() ([]models.Topic, error) {
	var out []models.Topic
	for _, topic := range f.topics {
		if topic.ResearchReport != "" {
			out = append(out, *topic)
		}
	}
	return out, nil
}

func (f *fakeStore) GetClusterForTopic(topicID string) (*models.Cluster, error) {
	return f.clusters[topicID], nil
}

func (f *fakeStore) GetClusterMembers(clusterID string) ([]models.ClusterMember, error) {
	return f.members[clusterID], nil
}

func newFakeStore() *fakeStore {
	topics := map[string]*models.Topic{
		"hiking": {
			ID: "hiking", Title: "Hiking trails in Patagonia",
			ResearchReport: "Patagonia trails require planning. The W trek takes five days of steady walking. Permits sell out months ahead of the season.",
		},
		"boots": {
			ID: "boots", Title: "Hiking boots for Patagonia trails",
			ResearchReport: "Boots with ankle support handle scree fields best on long routes.",
		},
		"camping": {
			ID: "camping", Title: "Camping gear for Patagonia",
			ResearchReport: "Wind rated tents are essential in Patagonia every month of the year.",
		},
		"crypto": {
			ID: "crypto", Title: "Cryptocurrency tax rules explained",
			ResearchReport: "Tax treatment differs by jurisdiction in complicated ways for traders.",
		},
		"unresearched": {
			ID: "unresearched", Title: "Hiking trails in Torres del Paine",
		},
	}
	return &fakeStore{
		topics:   topics,
		clusters: map[string]*models.Cluster{},
		members:  map[string][]models.ClusterMember{},
	}
}

func TestFindRelatedTopics(t *testing.T) {
	engine := NewEngine(newFakeStore())

	related, err := engine.FindRelatedTopics("hiking", 10, 0.1)
	if err != nil {
		t.Fatalf("FindRelatedTopics: %v", err)
	}

	for _, rel := range related {
		if rel.Topic.ID == "hiking" {
			t.Error("source topic returned as its own relative")
		}
		if rel.Topic.ID == "unresearched" {
			t.Error("topic without research report returned")
		}
		if rel.Topic.ID == "crypto" {
			t.Error("unrelated topic passed the similarity floor")
		}
		if rel.Similarity < 0.1 || rel.Similarity > 1 {
			t.Errorf("similarity %v out of range", rel.Similarity)
		}
	}

	if len(related) != 2 {
		t.Fatalf("got %d related topics, want 2 (boots, camping)", len(related))
	}
	// Descending similarity; boots shares both "hiking" and "trails".
	if related[0].Topic.ID != "boots" {
		t.Errorf("first relative = %s, want boots", related[0].Topic.ID)
	}
	if related[0].Similarity < related[1].Similarity {
		t.Error("related topics not sorted by descending similarity")
	}
	if len(related[0].SharedKeywords) == 0 {
		t.Error("shared keywords missing")
	}
}

func TestFindRelatedTopicsUnknownSource(t *testing.T) {
	engine := NewEngine(newFakeStore())

	_, err := engine.FindRelatedTopics("no-such-topic", 10, 0.1)
	var invalid *storage.ValidationError
	if !errors.As(err, &invalid) {
		t.Errorf("error = %v, want ValidationError", err)
	}
}

func TestFindRelatedTopicsLimit(t *testing.T) {
	engine := NewEngine(newFakeStore())

	related, err := engine.FindRelatedTopics("hiking", 1, 0.1)
	if err != nil {
		t.Fatalf("FindRelatedTopics: %v", err)
	}
	if len(related) != 1 {
		t.Errorf("limit ignored: got %d topics", len(related))
	}
}

func TestSynthesize(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store)

	related, err := engine.FindRelatedTopics("hiking", 10, 0.1)
	if err != nil {
		t.Fatalf("FindRelatedTopics: %v", err)
	}

	synthesis := engine.Synthesize(store.topics["hiking"], related)
	if synthesis.Summary == "" {
		t.Error("empty synthesis summary")
	}
	if len(synthesis.KeyFindings) == 0 {
		t.Error("no key findings extracted from research reports")
	}
	for _, theme := range synthesis.CommonThemes {
		if theme == "the" || theme == "for" {
			t.Errorf("stop-word %q surfaced as a theme", theme)
		}
	}
}

func TestSuggestInternalLinksPrefersCluster(t *testing.T) {
	store := newFakeStore()
	cluster := &models.Cluster{ID: "cluster-1", Name: "Patagonia", HubTopicID: "hiking"}
	store.clusters["boots"] = cluster
	store.members["cluster-1"] = []models.ClusterMember{
		{ClusterID: "cluster-1", TopicID: "hiking", Role: models.ClusterRoleHub, Position: 0},
		{ClusterID: "cluster-1", TopicID: "boots", Role: models.ClusterRoleSpoke, Position: 1},
		{ClusterID: "cluster-1", TopicID: "camping", Role: models.ClusterRoleSpoke, Position: 2},
	}
	engine := NewEngine(store)

	links, err := engine.SuggestInternalLinks("boots", 5)
	if err != nil {
		t.Fatalf("SuggestInternalLinks: %v", err)
	}
	if len(links) < 2 {
		t.Fatalf("got %d suggestions, want at least hub and sibling", len(links))
	}
	if links[0].TopicID != "hiking" || links[0].Reason != "cluster hub" {
		t.Errorf("first suggestion = %+v, want the cluster hub", links[0])
	}
	if links[1].TopicID != "camping" {
		t.Errorf("second suggestion = %+v, want the sibling spoke", links[1])
	}
	for _, link := range links {
		if link.TopicID == "boots" {
			t.Error("topic suggested as a link to itself")
		}
	}
}

func TestSuggestInternalLinksFallsBackToSimilarity(t *testing.T) {
	engine := NewEngine(newFakeStore())

	// No cluster membership; similarity fills in.
	links, err := engine.SuggestInternalLinks("hiking", 5)
	if err != nil {
		t.Fatalf("SuggestInternalLinks: %v", err)
	}
	if len(links) == 0 {
		t.Fatal("no fallback suggestions")
	}
	seen := map[string]bool{}
	for _, link := range links {
		if seen[link.TopicID] {
			t.Errorf("duplicate suggestion for %s", link.TopicID)
		}
		seen[link.TopicID] = true
	}

	none, err := engine.SuggestInternalLinks("hiking", 0)
	if err != nil {
		t.Fatalf("SuggestInternalLinks(0): %v", err)
	}
	if none != nil {
		t.Errorf("max 0 returned %v", none)
	}
}
