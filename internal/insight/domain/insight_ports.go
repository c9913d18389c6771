package domain

import (
	"context"

	sharedDomain "github.com/davicafu/insightdash/internal/shared/domain"
	sharedQuery "github.com/davicafu/insightdash/internal/shared/infra/platform/query"
)

// ---------- Interfaces (Ports) ----------

// InsightReader es el lado de lectura del almacén.
type InsightReader interface {
	// Find devuelve los registros que cumplen 'criteria', en orden de inserción,
	// proyectados a ProjectedFields.
	Find(ctx context.Context, criteria sharedDomain.Criteria, pagination sharedQuery.OffsetPagination) ([]*Insight, error)

	// Count devuelve el total de registros que cumplen 'criteria', sin paginar.
	Count(ctx context.Context, criteria sharedDomain.Criteria) (int, error)
}

// InsightWriter sólo lo usa la importación; no hay actualización ni borrado.
type InsightWriter interface {
	// InsertMany inserta los registros asignándoles identidad nueva y devuelve
	// cuántos se insertaron.
	InsertMany(ctx context.Context, insights []*Insight) (int, error)
}
