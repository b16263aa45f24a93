package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incident-verifier/internal/clients"
	"incident-verifier/internal/verify"
)

func TestDomainTier(t *testing.T) {
	assert.Equal(t, verify.Tier1Global, DomainTier("reuters.com"))
	assert.Equal(t, verify.Tier1Global, DomainTier("https://www.bbc.com/news/article"))
	assert.Equal(t, verify.Tier2National, DomainTier("thehindu.com"))
	assert.Equal(t, verify.Tier3Regional, DomainTier("dinamalar.com"))
	assert.Equal(t, verify.SocialMedia, DomainTier("https://x.com/user/status/1"))
	assert.Equal(t, verify.TierUnknown, DomainTier("random-blog.example"))
}

func TestTierScore_Ordering(t *testing.T) {
	assert.Greater(t, TierScore(verify.Tier1Global), TierScore(verify.Tier2National))
	assert.Greater(t, TierScore(verify.Tier2National), TierScore(verify.Tier3Regional))
	assert.Greater(t, TierScore(verify.Tier3Regional), TierScore(verify.SocialMedia))
	assert.Greater(t, TierScore(verify.SocialMedia), TierScore(verify.TierUnknown))
}

func TestSortByCredibility(t *testing.T) {
	items := []verify.EvidenceItem{
		{SourceDomain: "x.com", Credibility: verify.SocialMedia},
		{SourceDomain: "reuters.com", Credibility: verify.Tier1Global},
		{SourceDomain: "ndtv.com", Credibility: verify.Tier2National},
	}

	SortByCredibility(items)

	assert.Equal(t, "reuters.com", items[0].SourceDomain)
	assert.Equal(t, "ndtv.com", items[1].SourceDomain)
	assert.Equal(t, "x.com", items[2].SourceDomain)
}

func TestAnalyzeOccurrences_OriginalSource(t *testing.T) {
	occurrences := []verify.EvidenceItem{
		{SourceDomain: "x.com", Credibility: verify.SocialMedia},
		{SourceDomain: "bbc.com", Credibility: verify.Tier1Global},
	}

	result := analyzeOccurrences(occurrences)

	require.NotNil(t, result.OriginalSource)
	assert.Equal(t, "bbc.com", result.OriginalSource.SourceDomain)
	assert.False(t, result.ReuseDetected)
	// Input order is preserved in the occurrence list.
	assert.Equal(t, "x.com", result.AllOccurrences[0].SourceDomain)
}

func TestAnalyzeOccurrences_ReuseDetected(t *testing.T) {
	occurrences := make([]verify.EvidenceItem, 5)
	for i := range occurrences {
		occurrences[i] = verify.EvidenceItem{SourceDomain: "blog.example", Credibility: verify.TierUnknown}
	}

	result := analyzeOccurrences(occurrences)

	assert.True(t, result.ReuseDetected)
}

func TestAnalyzeOccurrences_Empty(t *testing.T) {
	result := analyzeOccurrences(nil)

	assert.Nil(t, result.OriginalSource)
	assert.False(t, result.ReuseDetected)
	assert.Empty(t, result.AllOccurrences)
}

func TestOfflineRetriever_FiltersAndSorts(t *testing.T) {
	retriever := NewOfflineRetriever()
	retriever.Items = []verify.EvidenceItem{
		{SourceDomain: "x.com", Title: "flood video", Credibility: verify.SocialMedia},
		{SourceDomain: "reuters.com", Title: "Chennai flood coverage", Credibility: verify.Tier1Global},
		{SourceDomain: "bbc.com", Title: "Election results", Credibility: verify.Tier1Global},
	}

	items := retriever.RetrieveEvidence(context.Background(), "chennai flood", 10, "", "")

	require.Len(t, items, 2)
	assert.Equal(t, "reuters.com", items[0].SourceDomain)
	assert.Equal(t, "x.com", items[1].SourceDomain)
}

func TestOfflineRetriever_RespectsMaxItems(t *testing.T) {
	retriever := NewOfflineRetriever()
	for i := 0; i < 10; i++ {
		retriever.Items = append(retriever.Items, verify.EvidenceItem{
			SourceDomain: "news.example", Title: "flood"})
	}

	items := retriever.RetrieveEvidence(context.Background(), "flood", 3, "", "")

	assert.Len(t, items, 3)
}

type failingSearchClient struct{}

func (failingSearchClient) Search(context.Context, string, int) (*clients.SearchResponse, error) {
	return nil, assert.AnError
}

func (failingSearchClient) ImageSearch(context.Context, string, int) (*clients.ImageSearchResponse, error) {
	return nil, assert.AnError
}

func (failingSearchClient) NewsSearch(context.Context, string, int) (*clients.NewsSearchResponse, error) {
	return nil, assert.AnError
}

func (failingSearchClient) LensSearch(context.Context, string) (*clients.LensResponse, error) {
	return nil, assert.AnError
}

func TestLiveRetriever_SearchFailureReturnsEmpty(t *testing.T) {
	retriever := NewLiveRetriever(failingSearchClient{})

	items := retriever.RetrieveEvidence(context.Background(), "flood", 10, "Chennai", "flood")
	assert.Empty(t, items)

	result := retriever.ReverseSearch(context.Background(), "https://host/img.jpg")
	assert.Empty(t, result.AllOccurrences)
	assert.Nil(t, result.OriginalSource)
}

type cannedSearchClient struct {
	images *clients.ImageSearchResponse
	lens   *clients.LensResponse
}

func (c cannedSearchClient) Search(context.Context, string, int) (*clients.SearchResponse, error) {
	return &clients.SearchResponse{}, nil
}

func (c cannedSearchClient) ImageSearch(context.Context, string, int) (*clients.ImageSearchResponse, error) {
	return c.images, nil
}

func (c cannedSearchClient) NewsSearch(context.Context, string, int) (*clients.NewsSearchResponse, error) {
	return &clients.NewsSearchResponse{}, nil
}

func (c cannedSearchClient) LensSearch(context.Context, string) (*clients.LensResponse, error) {
	return c.lens, nil
}

func TestLiveRetriever_ClassifiesAndSorts(t *testing.T) {
	client := cannedSearchClient{
		images: &clients.ImageSearchResponse{
			Images: []clients.ImageResult{
				{Title: "tweet", Domain: "x.com", Link: "https://x.com/1"},
				{Title: "wire photo", Domain: "reuters.com", Link: "https://reuters.com/1"},
			},
		},
	}
	retriever := NewLiveRetriever(client)

	items := retriever.RetrieveEvidence(context.Background(), "chennai flood", 10, "", "")

	require.Len(t, items, 2)
	assert.Equal(t, "reuters.com", items[0].SourceDomain)
	assert.Equal(t, verify.Tier1Global, items[0].Credibility)
	assert.Equal(t, verify.SocialMedia, items[1].Credibility)
}

func TestLiveRetriever_ReverseSearchPicksOriginal(t *testing.T) {
	client := cannedSearchClient{
		lens: &clients.LensResponse{
			Organic: []clients.LensResult{
				{Title: "viral post", Source: "instagram.com", Link: "https://instagram.com/p/1"},
				{Title: "original report", Source: "bbc.com", Link: "https://bbc.com/news/1"},
			},
		},
	}
	retriever := NewLiveRetriever(client)

	result := retriever.ReverseSearch(context.Background(), "https://host/img.jpg")

	require.NotNil(t, result.OriginalSource)
	assert.Equal(t, "bbc.com", result.OriginalSource.SourceDomain)
	assert.Len(t, result.AllOccurrences, 2)
}
