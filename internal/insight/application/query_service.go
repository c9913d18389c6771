package application

import (
	"context"

	insightDomain "github.com/davicafu/insightdash/internal/insight/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// QueryService resuelve la consulta filtrada y paginada del dashboard.
type QueryService struct {
	reader insightDomain.InsightReader
	limits insightDomain.PageLimits
	log    *zap.Logger
}

// NewQueryService es el constructor del servicio de consulta.
func NewQueryService(reader insightDomain.InsightReader, limits insightDomain.PageLimits, log *zap.Logger) *QueryService {
	if limits.Default <= 0 {
		limits.Default = insightDomain.DefaultLimit
	}
	return &QueryService{reader: reader, limits: limits, log: log}
}

// Limits devuelve los límites de página con los que opera el servicio.
func (s *QueryService) Limits() insightDomain.PageLimits {
	return s.limits
}

// FetchPage valida filtros y paginación y, sólo si son correctos, consulta el
// almacén. El total y la página se piden en paralelo.
func (s *QueryService) FetchPage(ctx context.Context, filters map[string]string, page, limit int) (*insightDomain.Page, error) {
	filter, err := insightDomain.ParseFilter(filters)
	if err != nil {
		return nil, err
	}
	req, err := insightDomain.NewPageRequest(page, limit, s.limits)
	if err != nil {
		return nil, err
	}

	criteria := filter.Criteria()

	var (
		total   int
		records []*insightDomain.Insight
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var errCount error
		total, errCount = s.reader.Count(gctx, criteria)
		return errCount
	})
	g.Go(func() error {
		var errFind error
		records, errFind = s.reader.Find(gctx, criteria, req.Pagination())
		return errFind
	})

	if err := g.Wait(); err != nil {
		s.log.Error("Failed to fetch insights page",
			zap.Any("filters", filters),
			zap.Int("page", req.Page),
			zap.Int("limit", req.Limit),
			zap.Error(err),
		)
		return nil, &insightDomain.StoreUnavailableError{Op: "fetch page", Err: err}
	}

	return insightDomain.NewPage(records, total, req), nil
}
