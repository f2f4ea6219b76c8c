package models

import "time"

// Document lifecycle statuses.
const (
	DocumentStatusNew       = "new"
	DocumentStatusProcessed = "processed"
	DocumentStatusRejected  = "rejected"
)

// Topic statuses. The progression discovered -> validated -> researched ->
// drafted -> published -> archived is a convention, not enforced by the store.
const (
	TopicStatusDiscovered = "discovered"
	TopicStatusValidated  = "validated"
	TopicStatusResearched = "researched"
	TopicStatusDrafted    = "drafted"
	TopicStatusPublished  = "published"
	TopicStatusArchived   = "archived"
)

// Document is a fetched reference page kept for research.
type Document struct {
	ID               string
	Source           string
	SourceURL        string
	Title            string
	Content          string
	Summary          string
	Language         string
	Domain           string
	Market           string
	Vertical         string
	ContentHash      string
	CanonicalURL     string
	PublishedAt      *time.Time
	FetchedAt        time.Time
	Author           string
	Entities         []string
	Keywords         []string
	ReliabilityScore float64
	Paywall          bool
	Status           string
}

// Topic is a single editorial unit tracked from discovery to publication.
type Topic struct {
	ID               string
	Title            string
	Description      string
	Source           string
	SourceURL        string
	DiscoveredAt     time.Time
	Domain           string
	Market           string
	Language         string
	Intent           string
	EngagementScore  float64
	TrendingScore    float64
	Priority         int
	ContentScore     *float64
	ResearchReport   string
	Citations        []string
	WordCount        int
	MinhashSignature string
	Status           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	PublishedAt      *time.Time
}

// SERPResult is one ranked position inside one search snapshot. Snapshots
// accumulate over time; rows are never overwritten.
type SERPResult struct {
	ID          int64
	TopicID     string
	SearchQuery string
	Position    int
	URL         string
	Title       string
	Snippet     string
	Domain      string
	SearchedAt  time.Time
}

// ContentScore is a quality assessment of one URL. Globally unique by URL;
// a later assessment replaces the earlier one in place.
type ContentScore struct {
	ID           int64
	URL          string
	TopicID      *string
	QualityScore float64

	WordCountScore   float64
	ReadabilityScore float64
	KeywordScore     float64
	StructureScore   float64
	EntityScore      float64
	FreshnessScore   float64

	WordCount      int
	ReadingEase    float64
	KeywordDensity float64
	HeadingCount   int
	ListCount      int
	ImageCount     int
	EntityCount    int
	EntityDensity  float64
	PublishedAt    *time.Time
	ContentHash    string

	FetchedAt time.Time
	UpdatedAt time.Time
}

// DifficultyScore captures how hard it is to rank for a topic. One row per
// topic, fully replaced on re-analysis.
type DifficultyScore struct {
	ID              int64
	TopicID         string
	DifficultyScore float64

	CompetitionScore  float64
	AuthorityScore    float64
	ContentDepthScore float64
	FreshnessScore    float64

	TargetWordCount    int
	TargetHeadingCount int
	TargetImageCount   int
	TargetQualityScore float64

	AvgCompetitorWords   float64
	AvgCompetitorQuality float64
	HighAuthorityRatio   float64

	FreshnessRequirement string
	EstimatedRankingTime string
	AnalyzedAt           time.Time
	UpdatedAt            time.Time
}

// Cluster is a hub-and-spoke group of topics cross-linked for topical authority.
type Cluster struct {
	ID          string
	Name        string
	Description string
	HubTopicID  string
	CreatedAt   time.Time
}

// Cluster member roles.
const (
	ClusterRoleHub   = "hub"
	ClusterRoleSpoke = "spoke"
)

// ClusterMember ties a topic into a cluster with a role and ordering.
type ClusterMember struct {
	ClusterID string
	TopicID   string
	Role      string
	Position  int
}

// Article is a generated draft written back by the text-generation subsystem.
type Article struct {
	ID           string
	TopicID      string
	Title        string
	Content      string
	WordCount    int
	Status       string
	PublishedURL string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// APICost records the token usage and cost of one external API call.
type APICost struct {
	ID               int64
	Provider         string
	Operation        string
	Model            string
	PromptTokens     int
	CompletionTokens int
	CostUSD          float64
	TopicID          *string
	CreatedAt        time.Time
}
