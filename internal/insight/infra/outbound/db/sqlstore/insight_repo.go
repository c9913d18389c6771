package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// --- Importaciones del dominio y compartidas ---
	insightDomain "github.com/davicafu/insightdash/internal/insight/domain"
	sharedDomain "github.com/davicafu/insightdash/internal/shared/domain"
	sharedQuery "github.com/davicafu/insightdash/internal/shared/infra/platform/query"

	_ "github.com/jackc/pgx/v5/stdlib" // Driver de PostgreSQL
	// _ "github.com/mattn/go-sqlite3" // better performance but requires gcc
	_ "modernc.org/sqlite"
)

// InsightRepoSQL implementa InsightReader e InsightWriter sobre database/sql.
// Los topics viven en la tabla hija insight_topics.
type InsightRepoSQL struct {
	db      *sql.DB
	dialect Dialect
}

// NewInsightRepoSQL es el constructor del repositorio.
func NewInsightRepoSQL(db *sql.DB, dialect Dialect) *InsightRepoSQL {
	return &InsightRepoSQL{db: db, dialect: dialect}
}

// ------------------ Inicialización del Esquema ------------------

// InitSchema crea las tablas 'insights' e 'insight_topics' si no existen.
func (r *InsightRepoSQL) InitSchema(ctx context.Context) error {
	for _, stmt := range r.dialect.schema() {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to init %s schema: %w", r.dialect.Name, err)
		}
	}
	return nil
}

// ------------------ Escritura (sólo importación) ------------------

// InsertMany inserta el lote en una transacción: o entra entero o no entra.
func (r *InsightRepoSQL) InsertMany(ctx context.Context, insights []*insightDomain.Insight) (int, error) {
	if len(insights) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback() // Se ignora si el Commit() es exitoso

	insertInsight := `INSERT INTO insights (country, region, city, sector, source, pestle, swot, topic,
		end_year, start_year, published, intensity, likelihood, relevance,
		title, insight, url, impact, added, created_at)
		VALUES (` + strings.Join(r.placeholders(20, 1), ", ") + `) RETURNING id`
	insertTopic := `INSERT INTO insight_topics (insight_id, position, topic) VALUES (` +
		strings.Join(r.placeholders(3, 1), ", ") + `)`

	now := time.Now().UTC()
	for _, in := range insights {
		var id int64
		err := tx.QueryRowContext(ctx, insertInsight,
			in.Country, in.Region, in.City, in.Sector, in.Source, in.Pestle, in.Swot, in.Topic,
			nullInt(in.EndYear), nullInt(in.StartYear), in.Published,
			nullFloat(in.Intensity), nullFloat(in.Likelihood), nullFloat(in.Relevance),
			in.Title, in.Insight, in.URL, in.Impact, in.Added, now,
		).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("insert insight: %w", err)
		}

		for pos, topic := range in.Topics {
			if _, err := tx.ExecContext(ctx, insertTopic, id, pos, topic); err != nil {
				return 0, fmt.Errorf("insert insight topic: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insights: %w", err)
	}
	return len(insights), nil
}

// ------------------ Lectura ------------------

var selectColumns = strings.Join(insightDomain.ProjectedFields, ", ")

// Find recupera una página de registros en orden de inserción.
func (r *InsightRepoSQL) Find(ctx context.Context, criteria sharedDomain.Criteria, pagination sharedQuery.OffsetPagination) ([]*insightDomain.Insight, error) {
	whereSQL, args, err := r.applyCriteria(criteria)
	if err != nil {
		return nil, err
	}

	query := "SELECT " + selectColumns + " FROM insights"
	if whereSQL != "" {
		query += " WHERE " + whereSQL
	}
	query += " ORDER BY id ASC"

	if pagination.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %s OFFSET %s", r.dialect.Placeholder(len(args)+1), r.dialect.Placeholder(len(args)+2))
		args = append(args, pagination.Limit, pagination.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query insights: %w", err)
	}
	defer rows.Close()

	var insights []*insightDomain.Insight
	for rows.Next() {
		in, err := scanInsight(rows)
		if err != nil {
			return nil, err
		}
		insights = append(insights, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate insights: %w", err)
	}

	return insights, nil
}

// Count devuelve el total de registros que cumplen el criterio.
func (r *InsightRepoSQL) Count(ctx context.Context, criteria sharedDomain.Criteria) (int, error) {
	whereSQL, args, err := r.applyCriteria(criteria)
	if err != nil {
		return 0, err
	}

	query := "SELECT COUNT(*) FROM insights"
	if whereSQL != "" {
		query += " WHERE " + whereSQL
	}

	var total int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count insights: %w", err)
	}
	return total, nil
}

// Close cierra el pool de conexiones.
func (r *InsightRepoSQL) Close(ctx context.Context) error {
	return r.db.Close()
}

// ------------------ Traducción de criterios ------------------

// columnas filtrables; evita inyectar nombres arbitrarios en el SQL.
var filterableColumns = map[string]bool{
	insightDomain.FieldCountry: true, insightDomain.FieldRegion: true, insightDomain.FieldCity: true,
	insightDomain.FieldSector: true, insightDomain.FieldSource: true, insightDomain.FieldPestle: true,
	insightDomain.FieldSwot: true, insightDomain.FieldTopic: true, insightDomain.FieldEndYear: true,
	insightDomain.FieldStartYear: true, insightDomain.FieldPublished: true, insightDomain.FieldIntensity: true,
	insightDomain.FieldLikelihood: true, insightDomain.FieldRelevance: true, insightDomain.FieldTitle: true,
	insightDomain.FieldInsight: true, insightDomain.FieldURL: true, insightDomain.FieldImpact: true,
	insightDomain.FieldAdded: true,
}

// applyCriteria traduce criterios a una cláusula WHERE con sus argumentos.
func (r *InsightRepoSQL) applyCriteria(criteria sharedDomain.Criteria) (string, []interface{}, error) {
	var (
		clauses []string
		args    []interface{}
	)
	for _, c := range sharedDomain.Conditions(criteria) {
		clause, err := r.conditionSQL(c, &args)
		if err != nil {
			return "", nil, err
		}
		clauses = append(clauses, clause)
	}
	return strings.Join(clauses, " AND "), args, nil
}

func (r *InsightRepoSQL) conditionSQL(c sharedDomain.Criterion, args *[]interface{}) (string, error) {
	switch c.Op {
	case sharedDomain.OpAny:
		var alternatives []string
		for _, sub := range c.Any {
			clause, err := r.conditionSQL(sub, args)
			if err != nil {
				return "", err
			}
			alternatives = append(alternatives, clause)
		}
		if len(alternatives) == 0 {
			return "1 = 0", nil
		}
		return "(" + strings.Join(alternatives, " OR ") + ")", nil

	case sharedDomain.OpIn:
		if !filterableColumns[c.Field] {
			return "", fmt.Errorf("sqlstore: unknown column %q", c.Field)
		}
		list, err := r.inList(c, args)
		if err != nil || list == "" {
			return "1 = 0", err
		}
		return c.Field + " IN (" + list + ")", nil

	case sharedDomain.OpContainsAny:
		if c.Field != insightDomain.FieldTopics {
			return "", fmt.Errorf("sqlstore: %q is not a list column", c.Field)
		}
		list, err := r.inList(c, args)
		if err != nil || list == "" {
			return "1 = 0", err
		}
		return "EXISTS (SELECT 1 FROM insight_topics t WHERE t.insight_id = insights.id AND t.topic IN (" + list + "))", nil

	case sharedDomain.OpEq, sharedDomain.OpGt, sharedDomain.OpGte, sharedDomain.OpLt, sharedDomain.OpLte:
		if !filterableColumns[c.Field] {
			return "", fmt.Errorf("sqlstore: unknown column %q", c.Field)
		}
		*args = append(*args, c.Value)
		return fmt.Sprintf("%s %s %s", c.Field, c.Op, r.dialect.Placeholder(len(*args))), nil
	}
	return "", fmt.Errorf("sqlstore: unsupported operator %q", c.Op)
}

func (r *InsightRepoSQL) inList(c sharedDomain.Criterion, args *[]interface{}) (string, error) {
	values, ok := c.Value.([]string)
	if !ok {
		return "", fmt.Errorf("sqlstore: %s %s expects []string, got %T", c.Field, c.Op, c.Value)
	}
	marks := make([]string, 0, len(values))
	for _, v := range values {
		*args = append(*args, v)
		marks = append(marks, r.dialect.Placeholder(len(*args)))
	}
	return strings.Join(marks, ", "), nil
}

// ------------------ Helpers ------------------

func (r *InsightRepoSQL) placeholders(n, start int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = r.dialect.Placeholder(start + i)
	}
	return out
}

func scanInsight(rows *sql.Rows) (*insightDomain.Insight, error) {
	var (
		in                               insightDomain.Insight
		endYear, startYear               sql.NullInt64
		intensity, relevance, likelihood sql.NullFloat64
	)
	// Mismo orden que insightDomain.ProjectedFields.
	err := rows.Scan(
		&endYear, &intensity, &in.Sector, &in.Topic, &in.Insight, &in.URL,
		&in.Region, &startYear, &in.Impact, &in.Added, &in.Published, &in.Country,
		&relevance, &in.Pestle, &in.Source, &in.Title, &likelihood,
	)
	if err != nil {
		return nil, fmt.Errorf("db scan error: %w", err)
	}

	in.EndYear = intFromNull(endYear)
	in.StartYear = intFromNull(startYear)
	in.Intensity = floatFromNull(intensity)
	in.Likelihood = floatFromNull(likelihood)
	in.Relevance = floatFromNull(relevance)
	return &in, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func intFromNull(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func floatFromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// Verificación en tiempo de compilación.
var (
	_ insightDomain.InsightReader = (*InsightRepoSQL)(nil)
	_ insightDomain.InsightWriter = (*InsightRepoSQL)(nil)
)
