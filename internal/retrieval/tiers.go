package retrieval

import (
	"strings"

	"incident-verifier/internal/verify"
)

// Domain lists used for credibility classification. Matching is substring
// based so subdomains and article URLs classify the same as the bare domain.
var (
	tier1Domains = []string{
		"reuters.com", "bbc.com", "cnn.com", "apnews.com", "afp.com",
		"bloomberg.com", "theguardian.com", "nytimes.com", "washingtonpost.com",
		"aljazeera.com", "ft.com", "economist.com",
	}

	tier2Domains = []string{
		"thehindu.com", "indianexpress.com", "ndtv.com", "timesofindia.com",
		"hindustantimes.com", "scroll.in", "thequint.com", "theprint.in",
		"news18.com", "firstpost.com", "deccanherald.com",
	}

	tier3Domains = []string{
		"dtnext.in", "dinamalar.com", "thanthi.com", "dinamani.com",
		"maalaimalar.com", "newstamil.com", "polimer.com", "puthiyathalaimurai.com",
	}

	socialDomains = []string{
		"twitter.com", "x.com", "instagram.com", "facebook.com",
		"youtube.com", "reddit.com", "linkedin.com",
	}
)

var tierScores = map[verify.CredibilityTier]int{
	verify.Tier1Global:   100,
	verify.Tier2National: 80,
	verify.Tier3Regional: 60,
	verify.SocialMedia:   40,
	verify.TierUnknown:   10,
}

// DomainTier classifies a URL or domain into a credibility tier.
func DomainTier(url string) verify.CredibilityTier {
	lowered := strings.ToLower(url)

	for _, domain := range tier1Domains {
		if strings.Contains(lowered, domain) {
			return verify.Tier1Global
		}
	}
	for _, domain := range tier2Domains {
		if strings.Contains(lowered, domain) {
			return verify.Tier2National
		}
	}
	for _, domain := range tier3Domains {
		if strings.Contains(lowered, domain) {
			return verify.Tier3Regional
		}
	}
	for _, domain := range socialDomains {
		if strings.Contains(lowered, domain) {
			return verify.SocialMedia
		}
	}
	return verify.TierUnknown
}

// TierScore converts a credibility tier to its numeric ranking score.
func TierScore(tier verify.CredibilityTier) int {
	if score, ok := tierScores[tier]; ok {
		return score
	}
	return tierScores[verify.TierUnknown]
}
