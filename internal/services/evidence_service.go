package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"incident-verifier/internal/clients"
	"incident-verifier/internal/imagemeta"
	"incident-verifier/internal/logger"
	"incident-verifier/internal/retrieval"
	"incident-verifier/internal/verify"
)

// EvidenceCollectorInterface defines the interface for external evidence
// collection
type EvidenceCollectorInterface interface {
	Collect(ctx context.Context, claimText, topic string) verify.ExternalEvidence
}

// EvidenceCollector fans out to the news, fact-check, knowledge-base, and
// web buckets in parallel. Each bucket gets a bounded timeout; a failed or
// timed-out bucket is returned empty, never as an error.
type EvidenceCollector struct {
	search    clients.SearchClientInterface
	factCheck clients.FactCheckClientInterface
	knowledge clients.KnowledgeClientInterface

	bucketTimeout time.Duration
	maxResults    int
}

// NewEvidenceCollector creates a collector over the external clients.
func NewEvidenceCollector(
	search clients.SearchClientInterface,
	factCheck clients.FactCheckClientInterface,
	knowledge clients.KnowledgeClientInterface,
	bucketTimeout time.Duration,
) *EvidenceCollector {
	return &EvidenceCollector{
		search:        search,
		factCheck:     factCheck,
		knowledge:     knowledge,
		bucketTimeout: bucketTimeout,
		maxResults:    10,
	}
}

// Collect gathers all evidence buckets for a claim. The topic is the short
// form used for knowledge-base lookup, typically "<location> <event type>".
func (c *EvidenceCollector) Collect(ctx context.Context, claimText, topic string) verify.ExternalEvidence {
	var evidence verify.ExternalEvidence

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		evidence.News = c.collectNews(groupCtx, claimText)
		return nil
	})
	group.Go(func() error {
		evidence.FactChecks = c.collectFactChecks(groupCtx, claimText)
		return nil
	})
	group.Go(func() error {
		evidence.Knowledge = c.collectKnowledge(groupCtx, topic)
		return nil
	})
	group.Go(func() error {
		evidence.Web = c.collectWeb(groupCtx, claimText)
		return nil
	})

	_ = group.Wait()
	return evidence
}

func (c *EvidenceCollector) collectNews(ctx context.Context, claimText string) []verify.NewsHit {
	bucketCtx, cancel := context.WithTimeout(ctx, c.bucketTimeout)
	defer cancel()

	response, err := c.search.NewsSearch(bucketCtx, claimText, c.maxResults)
	if err != nil {
		c.logBucketFailure("news", err)
		return nil
	}

	hits := make([]verify.NewsHit, 0, len(response.News))
	for _, result := range response.News {
		tier := retrieval.DomainTier(result.Link)
		if tier == verify.TierUnknown {
			tier = retrieval.DomainTier(result.Source)
		}
		hit := verify.NewsHit{
			Title:    result.Title,
			Source:   result.Source,
			URL:      result.Link,
			Credible: tier == verify.Tier1Global || tier == verify.Tier2National,
			Tier:     tier,
		}
		if published, ok := imagemeta.ParseDate(result.Date); ok {
			hit.PublishedAt = &published
		}
		hits = append(hits, hit)
	}
	return hits
}

func (c *EvidenceCollector) collectFactChecks(ctx context.Context, claimText string) []verify.FactCheckFinding {
	bucketCtx, cancel := context.WithTimeout(ctx, c.bucketTimeout)
	defer cancel()

	findings, err := c.factCheck.CheckClaim(bucketCtx, claimText)
	if err != nil {
		c.logBucketFailure("factcheck", err)
		return nil
	}
	return findings
}

func (c *EvidenceCollector) collectKnowledge(ctx context.Context, topic string) verify.KnowledgeHit {
	bucketCtx, cancel := context.WithTimeout(ctx, c.bucketTimeout)
	defer cancel()

	hit, err := c.knowledge.Lookup(bucketCtx, topic)
	if err != nil {
		c.logBucketFailure("knowledge", err)
		return verify.KnowledgeHit{}
	}
	return hit
}

func (c *EvidenceCollector) collectWeb(ctx context.Context, claimText string) []verify.WebHit {
	bucketCtx, cancel := context.WithTimeout(ctx, c.bucketTimeout)
	defer cancel()

	response, err := c.search.Search(bucketCtx, claimText, c.maxResults)
	if err != nil {
		c.logBucketFailure("web", err)
		return nil
	}

	hits := make([]verify.WebHit, 0, len(response.Organic))
	for _, result := range response.Organic {
		hits = append(hits, verify.WebHit{
			Title:   result.Title,
			Snippet: result.Snippet,
			URL:     result.Link,
		})
	}
	return hits
}

func (c *EvidenceCollector) logBucketFailure(bucket string, err error) {
	aggErr := verify.NewAggregationError(bucket, err)
	logger.Log.WithFields(map[string]interface{}{
		"bucket": bucket,
		"error":  aggErr.Error(),
	}).Warn("Evidence bucket failed, continuing with empty bucket")
}
