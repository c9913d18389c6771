package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	insightDomain "github.com/davicafu/insightdash/internal/insight/domain"
	sharedDomain "github.com/davicafu/insightdash/internal/shared/domain"
	sharedQuery "github.com/davicafu/insightdash/internal/shared/infra/platform/query"
)

// InsightRepoMemory guarda los registros en memoria, en orden de inserción.
// Útil para desarrollo local y para tests de los servicios.
type InsightRepoMemory struct {
	mu       sync.RWMutex
	insights []*insightDomain.Insight
}

func NewInsightRepoMemory() *InsightRepoMemory {
	return &InsightRepoMemory{}
}

// InsertMany copia los registros; modificar el slice de entrada después no afecta al repo.
func (r *InsightRepoMemory) InsertMany(ctx context.Context, insights []*insightDomain.Insight) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for _, in := range insights {
		cp := *in
		cp.Topics = append([]string(nil), in.Topics...)
		cp.CreatedAt = now
		r.insights = append(r.insights, &cp)
	}
	return len(insights), nil
}

func (r *InsightRepoMemory) Find(ctx context.Context, criteria sharedDomain.Criteria, pagination sharedQuery.OffsetPagination) ([]*insightDomain.Insight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	conds := sharedDomain.Conditions(criteria)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		out     []*insightDomain.Insight
		skipped int
	)
	for _, in := range r.insights {
		ok, err := matchAll(in, conds)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if skipped < pagination.Offset {
			skipped++
			continue
		}
		if pagination.Limit > 0 && len(out) >= pagination.Limit {
			break
		}
		out = append(out, in.Projected())
	}
	return out, nil
}

func (r *InsightRepoMemory) Count(ctx context.Context, criteria sharedDomain.Criteria) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	conds := sharedDomain.Conditions(criteria)

	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, in := range r.insights {
		ok, err := matchAll(in, conds)
		if err != nil {
			return 0, err
		}
		if ok {
			total++
		}
	}
	return total, nil
}

// Close no libera nada; existe para compartir ciclo de vida con los otros almacenes.
func (r *InsightRepoMemory) Close(ctx context.Context) error {
	return nil
}

// --- Lógica de filtrado ---

func matchAll(in *insightDomain.Insight, conds []sharedDomain.Criterion) (bool, error) {
	for _, c := range conds {
		ok, err := match(in, c)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func match(in *insightDomain.Insight, c sharedDomain.Criterion) (bool, error) {
	switch c.Op {
	case sharedDomain.OpAny:
		for _, sub := range c.Any {
			ok, err := match(in, sub)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil

	case sharedDomain.OpIn:
		want, ok := c.Value.([]string)
		if !ok {
			return false, fmt.Errorf("memory: %s IN expects []string, got %T", c.Field, c.Value)
		}
		v, ok := textField(in, c.Field)
		return ok && contains(want, v), nil

	case sharedDomain.OpContainsAny:
		want, ok := c.Value.([]string)
		if !ok {
			return false, fmt.Errorf("memory: %s CONTAINS_ANY expects []string, got %T", c.Field, c.Value)
		}
		if c.Field != insightDomain.FieldTopics {
			return false, fmt.Errorf("memory: %s is not a list field", c.Field)
		}
		for _, t := range in.Topics {
			if contains(want, t) {
				return true, nil
			}
		}
		return false, nil
	}

	if s, ok := c.Value.(string); ok {
		v, known := textField(in, c.Field)
		if !known {
			return false, fmt.Errorf("memory: unknown text field %q", c.Field)
		}
		return compareText(v, s, c.Op)
	}

	want, ok := toFloat(c.Value)
	if !ok {
		return false, fmt.Errorf("memory: unsupported value %T for %s", c.Value, c.Field)
	}
	v, known, present := numberField(in, c.Field)
	if !known {
		return false, fmt.Errorf("memory: unknown numeric field %q", c.Field)
	}
	if !present {
		return false, nil
	}
	return compareNumber(v, want, c.Op)
}

func compareText(v, want string, op sharedDomain.Operator) (bool, error) {
	switch op {
	case sharedDomain.OpEq:
		return v == want, nil
	case sharedDomain.OpGt:
		return v > want, nil
	case sharedDomain.OpGte:
		return v >= want, nil
	case sharedDomain.OpLt:
		return v < want, nil
	case sharedDomain.OpLte:
		return v <= want, nil
	}
	return false, fmt.Errorf("memory: unsupported operator %q", op)
}

func compareNumber(v, want float64, op sharedDomain.Operator) (bool, error) {
	switch op {
	case sharedDomain.OpEq:
		return v == want, nil
	case sharedDomain.OpGt:
		return v > want, nil
	case sharedDomain.OpGte:
		return v >= want, nil
	case sharedDomain.OpLt:
		return v < want, nil
	case sharedDomain.OpLte:
		return v <= want, nil
	}
	return false, fmt.Errorf("memory: unsupported operator %q", op)
}

func textField(in *insightDomain.Insight, field string) (string, bool) {
	switch field {
	case insightDomain.FieldCountry:
		return in.Country, true
	case insightDomain.FieldRegion:
		return in.Region, true
	case insightDomain.FieldCity:
		return in.City, true
	case insightDomain.FieldSector:
		return in.Sector, true
	case insightDomain.FieldSource:
		return in.Source, true
	case insightDomain.FieldPestle:
		return in.Pestle, true
	case insightDomain.FieldSwot:
		return in.Swot, true
	case insightDomain.FieldTopic:
		return in.Topic, true
	case insightDomain.FieldPublished:
		return in.Published, true
	case insightDomain.FieldTitle:
		return in.Title, true
	case insightDomain.FieldInsight:
		return in.Insight, true
	case insightDomain.FieldURL:
		return in.URL, true
	case insightDomain.FieldImpact:
		return in.Impact, true
	case insightDomain.FieldAdded:
		return in.Added, true
	}
	return "", false
}

// numberField devuelve (valor, campo conocido, valor presente).
func numberField(in *insightDomain.Insight, field string) (float64, bool, bool) {
	var p *float64
	switch field {
	case insightDomain.FieldEndYear:
		return intPtr(in.EndYear)
	case insightDomain.FieldStartYear:
		return intPtr(in.StartYear)
	case insightDomain.FieldIntensity:
		p = in.Intensity
	case insightDomain.FieldLikelihood:
		p = in.Likelihood
	case insightDomain.FieldRelevance:
		p = in.Relevance
	default:
		return 0, false, false
	}
	if p == nil {
		return 0, true, false
	}
	return *p, true, true
}

func intPtr(p *int) (float64, bool, bool) {
	if p == nil {
		return 0, true, false
	}
	return float64(*p), true, true
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// Verificación estática
var (
	_ insightDomain.InsightReader = (*InsightRepoMemory)(nil)
	_ insightDomain.InsightWriter = (*InsightRepoMemory)(nil)
)
