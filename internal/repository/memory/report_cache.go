package memory

import (
	"time"

	"agentic-bi-be/pkg/workflow"

	"github.com/patrickmn/go-cache"
)

// ReportCache keeps the most recent report per conversation so clients
// can re-fetch the last result without re-running the workflow.
type ReportCache struct {
	cache *cache.Cache
}

func NewReportCache() *ReportCache {
	// Reports expire after an hour; expired entries are purged every
	// 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &ReportCache{
		cache: c,
	}
}

func (r *ReportCache) Save(conversationId string, report *workflow.Report) {
	r.cache.Set(conversationId, report, cache.DefaultExpiration)
}

func (r *ReportCache) Get(conversationId string) (*workflow.Report, bool) {
	if x, found := r.cache.Get(conversationId); found {
		return x.(*workflow.Report), true
	}
	return nil, false
}

func (r *ReportCache) Delete(conversationId string) {
	r.cache.Delete(conversationId)
}
