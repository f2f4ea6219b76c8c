package content

import "time"

// Component weights for the combined quality score. They must sum to 1.0.
var weights = map[string]float64{
	"word_count":  0.15,
	"readability": 0.20,
	"keyword":     0.20,
	"structure":   0.15,
	"entity":      0.15,
	"freshness":   0.15,
}

// wordCountScore maps an article length onto [0,1]. The optimal band is
// 1500-3000 words; very long content degrades gently and floors at 0.8.
func wordCountScore(words int) float64 {
	n := float64(words)
	switch {
	case n <= 0:
		return 0
	case n < 300:
		return 0.3 * n / 300
	case n < 1500:
		return 0.3 + 0.7*(n-300)/1200
	case n <= 3000:
		return 1.0
	case n <= 5000:
		return 1.0 - 0.2*(n-3000)/2000
	default:
		return 0.8
	}
}

// readabilityScore maps Flesch reading ease onto [0,1]. 60-80 is the sweet
// spot for web content; both academic prose and oversimplified text lose
// points.
func readabilityScore(flesch float64) float64 {
	switch {
	case flesch < 0:
		return 0.2
	case flesch < 30:
		return 0.2 + 0.3*flesch/30
	case flesch < 60:
		return 0.5 + 0.5*(flesch-30)/30
	case flesch <= 80:
		return 1.0
	case flesch <= 100:
		return 1.0 - 0.3*(flesch-80)/20
	default:
		return 0.7
	}
}

// keywordScore maps target-keyword density (percent) onto [0,1]. Without a
// target keyword the sub-score is a neutral 0.5. 1.5-2.5% is optimal;
// higher densities read as stuffing.
func keywordScore(density float64, hasKeyword bool) float64 {
	if !hasKeyword {
		return 0.5
	}
	switch {
	case density <= 0:
		return 0.2
	case density < 1.5:
		return 0.2 + 0.8*density/1.5
	case density <= 2.5:
		return 1.0
	case density <= 4.5:
		return 1.0 - 0.7*(density-2.5)/2
	default:
		return 0.3
	}
}

// structureScore rewards documents with a usable outline: headings weigh
// double against lists and images.
func structureScore(headings, lists, images int) float64 {
	h := minf(float64(headings)/5, 1)
	l := minf(float64(lists)/3, 1)
	i := minf(float64(images)/3, 1)
	return 0.5*h + 0.25*l + 0.25*i
}

// entityScore maps named-entity density (entities per 100 words) onto [0,1].
// 1-3 per 100 words signals substantive coverage.
func entityScore(density float64) float64 {
	switch {
	case density <= 0:
		return 0.3
	case density < 1:
		return 0.3 + 0.7*density
	case density <= 3:
		return 1.0
	case density <= 6:
		return 1.0 - 0.5*(density-3)/3
	default:
		return 0.5
	}
}

// freshnessScore maps content age onto [0,1]. Unknown publish dates get a
// neutral 0.5 rather than a penalty.
func freshnessScore(publishedAt *time.Time, now time.Time) float64 {
	if publishedAt == nil {
		return 0.5
	}

	age := now.Sub(*publishedAt).Hours() / 24
	switch {
	case age <= 90:
		return 1.0
	case age <= 365:
		return 1.0 - 0.3*(age-90)/275
	case age <= 730:
		return 0.7 - 0.3*(age-365)/365
	case age <= 1095:
		return 0.4 - 0.2*(age-730)/365
	default:
		return 0.2
	}
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
