package observed

import (
	"context"
	"time"

	insightDomain "github.com/davicafu/insightdash/internal/insight/domain"
	sharedDomain "github.com/davicafu/insightdash/internal/shared/domain"
	sharedQuery "github.com/davicafu/insightdash/internal/shared/infra/platform/query"
)

// QueryObserver recibe la duración y el resultado de cada consulta.
type QueryObserver interface {
	ObserveStoreQuery(op string, elapsed time.Duration, err error)
}

// InsightReader decora otro InsightReader midiendo cada llamada.
type InsightReader struct {
	next     insightDomain.InsightReader
	observer QueryObserver
}

func NewInsightReader(next insightDomain.InsightReader, observer QueryObserver) *InsightReader {
	return &InsightReader{next: next, observer: observer}
}

func (r *InsightReader) Find(ctx context.Context, criteria sharedDomain.Criteria, pagination sharedQuery.OffsetPagination) ([]*insightDomain.Insight, error) {
	start := time.Now()
	records, err := r.next.Find(ctx, criteria, pagination)
	r.observer.ObserveStoreQuery("find", time.Since(start), err)
	return records, err
}

func (r *InsightReader) Count(ctx context.Context, criteria sharedDomain.Criteria) (int, error) {
	start := time.Now()
	total, err := r.next.Count(ctx, criteria)
	r.observer.ObserveStoreQuery("count", time.Since(start), err)
	return total, err
}

var _ insightDomain.InsightReader = (*InsightReader)(nil)
