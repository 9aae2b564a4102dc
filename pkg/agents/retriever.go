package agents

import (
	"context"
	"fmt"
	"log"
	"time"

	"agentic-bi-be/pkg/retrieval"

	"github.com/patrickmn/go-cache"
)

// RetrieverAgent selects the retrieval path by intent and produces one
// immutable RetrievalBatch per call. Descriptive queries take the
// multimodal path; analytical intents (diagnostic, predictive,
// prescriptive) take the hybrid-weighted text path.
type RetrieverAgent struct {
	hybrid       *retrieval.HybridRetriever
	multimodal   *retrieval.MultimodalRetriever
	fusionMethod retrieval.FusionMethod
	topK         int
	resultCache  *cache.Cache
	logger       *log.Logger
}

func NewRetrieverAgent(
	hybrid *retrieval.HybridRetriever,
	multimodal *retrieval.MultimodalRetriever,
	fusionMethod retrieval.FusionMethod,
	topK int,
	logger *log.Logger,
) *RetrieverAgent {
	if topK <= 0 {
		topK = 10
	}
	return &RetrieverAgent{
		hybrid:       hybrid,
		multimodal:   multimodal,
		fusionMethod: fusionMethod,
		topK:         topK,
		// Identical query+intent pairs within a short window reuse the batch
		resultCache: cache.New(2*time.Minute, 10*time.Minute),
		logger:      logger,
	}
}

// Retrieve runs the intent-appropriate retrieval path. Backend failure
// degrades to a failed batch; empty results are valid, not an error.
func (a *RetrieverAgent) Retrieve(ctx context.Context, query string, queryVector []float32, intent string) retrieval.RetrievalBatch {
	cacheKey := fmt.Sprintf("%s|%s", intent, query)
	if cached, found := a.resultCache.Get(cacheKey); found {
		return cached.(retrieval.RetrievalBatch)
	}

	var batch retrieval.RetrievalBatch
	switch intent {
	case IntentDiagnostic, IntentPredictive, IntentPrescriptive:
		batch = a.retrieveHybrid(ctx, query, queryVector)
	default:
		batch = a.retrieveMultimodal(ctx, query, queryVector)
	}

	if batch.Strategy != retrieval.StrategyFailed {
		a.resultCache.Set(cacheKey, batch, cache.DefaultExpiration)
	}
	return batch
}

func (a *RetrieverAgent) retrieveHybrid(ctx context.Context, query string, queryVector []float32) retrieval.RetrievalBatch {
	results, err := a.hybrid.Search(ctx, query, queryVector, a.topK, nil)
	if err != nil && len(results) == 0 {
		a.logger.Printf("[ERROR] Hybrid retrieval failed: %v", err)
		return retrieval.FailedBatch()
	}

	return retrieval.RetrievalBatch{
		Chunks:         results,
		TotalRetrieved: len(results),
		Strategy:       retrieval.StrategyHybrid,
	}
}

func (a *RetrieverAgent) retrieveMultimodal(ctx context.Context, query string, queryVector []float32) retrieval.RetrievalBatch {
	results, reranked, err := a.multimodal.Retrieve(ctx, query, queryVector, a.topK, a.fusionMethod)
	if err != nil {
		a.logger.Printf("[ERROR] Multimodal retrieval failed: %v", err)
		return retrieval.FailedBatch()
	}

	return retrieval.RetrievalBatch{
		Chunks:         results,
		TotalRetrieved: len(results),
		Strategy:       retrieval.StrategyMultimodal,
		Reranked:       reranked,
	}
}
