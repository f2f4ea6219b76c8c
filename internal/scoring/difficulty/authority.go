package difficulty

import "strings"

// Authority is the qualitative bucket assigned to a ranking domain.
type Authority string

const (
	AuthorityHigh       Authority = "high"
	AuthorityMediumHigh Authority = "medium-high"
	AuthorityMedium     Authority = "medium"
	AuthorityLow        Authority = "low"
)

// highAuthorityDomains are household names that dominate most verticals.
var highAuthorityDomains = map[string]bool{
	"wikipedia.org":   true,
	"nytimes.com":     true,
	"theguardian.com": true,
	"bbc.com":         true,
	"bbc.co.uk":       true,
	"cnn.com":         true,
	"forbes.com":      true,
	"reuters.com":     true,
	"bloomberg.com":   true,
	"harvard.edu":     true,
	"nature.com":      true,
	"who.int":         true,
	"amazon.com":      true,
	"youtube.com":     true,
	"google.com":      true,
}

// mediumHighDomains carry strong topical authority without the blanket
// dominance of the list above.
var mediumHighDomains = map[string]bool{
	"medium.com":       true,
	"reddit.com":       true,
	"linkedin.com":     true,
	"techcrunch.com":   true,
	"wired.com":        true,
	"theverge.com":     true,
	"healthline.com":   true,
	"webmd.com":        true,
	"investopedia.com": true,
	"hubspot.com":      true,
	"shopify.com":      true,
	"semrush.com":      true,
	"moz.com":          true,
}

// ClassifyAuthority buckets a domain when the snapshot carries no explicit
// tag. Government and academic registrations count as high authority.
func ClassifyAuthority(domain string) Authority {
	domain = strings.ToLower(strings.TrimPrefix(domain, "www."))

	if highAuthorityDomains[domain] {
		return AuthorityHigh
	}
	if strings.HasSuffix(domain, ".gov") || strings.HasSuffix(domain, ".edu") ||
		strings.Contains(domain, ".gov.") || strings.Contains(domain, ".edu.") {
		return AuthorityHigh
	}
	if mediumHighDomains[domain] {
		return AuthorityMediumHigh
	}
	// Country-code news portals and large publishers tend to have subdomains
	// of the listed sites.
	for known := range highAuthorityDomains {
		if strings.HasSuffix(domain, "."+known) {
			return AuthorityHigh
		}
	}
	for known := range mediumHighDomains {
		if strings.HasSuffix(domain, "."+known) {
			return AuthorityMediumHigh
		}
	}

	return AuthorityMedium
}
