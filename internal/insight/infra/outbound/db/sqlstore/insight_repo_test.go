package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	insightDomain "github.com/davicafu/insightdash/internal/insight/domain"
	sharedDomain "github.com/davicafu/insightdash/internal/shared/domain"
	sharedQuery "github.com/davicafu/insightdash/internal/shared/infra/platform/query"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

// setupSQLiteRepo abre una base SQLite en memoria con el esquema creado.
func setupSQLiteRepo(t *testing.T) *InsightRepoSQL {
	t.Helper()
	db, err := sql.Open(SQLite.DriverName, ":memory:")
	require.NoError(t, err)
	// Cada conexión a ":memory:" es una base distinta.
	db.SetMaxOpenConns(1)

	repo := NewInsightRepoSQL(db, SQLite)
	require.NoError(t, repo.InitSchema(context.Background()))
	t.Cleanup(func() { _ = repo.Close(context.Background()) })
	return repo
}

func TestInsightRepoSQL_InsertFindCount(t *testing.T) {
	repo := setupSQLiteRepo(t)
	ctx := context.Background()

	n, err := repo.InsertMany(ctx, []*insightDomain.Insight{
		{Country: "India", Region: "Asia", City: "Delhi", Topic: "gas", Topics: []string{"oil", "gas"},
			EndYear: intp(2030), Intensity: floatp(6), Title: "first", Pestle: "Economic"},
		{Country: "India", Region: "Asia", Topics: []string{"solar"}, EndYear: intp(2020), Title: "second"},
		{Country: "Mexico", Topic: "energy", Title: "third"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := repo.Find(ctx, insightDomain.FieldEqualsCriteria{Field: insightDomain.FieldCountry, Value: "India"}, sharedQuery.OffsetPagination{Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Title)
	assert.Equal(t, 2030, *got[0].EndYear)
	assert.Equal(t, 6.0, *got[0].Intensity)
	assert.Nil(t, got[0].Likelihood)
	assert.Empty(t, got[0].City, "city no se proyecta")
	assert.Nil(t, got[0].Topics)

	total, err := repo.Count(ctx, insightDomain.EndYearFromCriteria{Year: 2025})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	total, err = repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestInsightRepoSQL_TopicsMatchesTopicOrTopicsList(t *testing.T) {
	repo := setupSQLiteRepo(t)
	ctx := context.Background()

	_, err := repo.InsertMany(ctx, []*insightDomain.Insight{
		{Country: "A", Topics: []string{"oil", "gas"}},
		{Country: "B", Topics: []string{"solar"}},
		{Country: "C", Topic: "energy"},
	})
	require.NoError(t, err)

	criteria := insightDomain.TopicsAnyCriteria{Topics: insightDomain.SplitTopics("energy, oil")}
	got, err := repo.Find(ctx, criteria, sharedQuery.OffsetPagination{Limit: 10})
	require.NoError(t, err)

	var countries []string
	for _, in := range got {
		countries = append(countries, in.Country)
	}
	assert.Equal(t, []string{"A", "C"}, countries)
}

func TestInsightRepoSQL_Pagination(t *testing.T) {
	repo := setupSQLiteRepo(t)
	ctx := context.Background()

	var insights []*insightDomain.Insight
	for i := 0; i < 25; i++ {
		insights = append(insights, &insightDomain.Insight{Country: "Nigeria", Title: fmt.Sprintf("t%02d", i)})
	}
	_, err := repo.InsertMany(ctx, insights)
	require.NoError(t, err)

	page, err := repo.Find(ctx, nil, sharedQuery.FromPage(2, 10))
	require.NoError(t, err)
	require.Len(t, page, 10)
	assert.Equal(t, "t10", page[0].Title)
	assert.Equal(t, "t19", page[9].Title)

	empty, err := repo.Find(ctx, insightDomain.FieldEqualsCriteria{Field: insightDomain.FieldCountry, Value: "Mexico"}, sharedQuery.FromPage(1, 10))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestInsightRepoSQL_RejectsUnknownColumn(t *testing.T) {
	repo := setupSQLiteRepo(t)

	_, err := repo.Count(context.Background(), insightDomain.FieldEqualsCriteria{Field: "country; DROP TABLE insights", Value: "x"})

	assert.Error(t, err)
}

func TestInsightRepoSQL_InsertIsAtomic(t *testing.T) {
	repo := setupSQLiteRepo(t)
	ctx := context.Background()

	// El CHECK del esquema rechaza intensity negativa: el lote entero se descarta.
	_, err := repo.InsertMany(ctx, []*insightDomain.Insight{
		{Country: "Peru"},
		{Country: "Chile", Intensity: floatp(-1)},
	})
	require.Error(t, err)

	total, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestApplyCriteria_PostgresPlaceholders(t *testing.T) {
	repo := NewInsightRepoSQL(nil, Postgres)
	crit := sharedDomain.And(
		insightDomain.FieldEqualsCriteria{Field: insightDomain.FieldCountry, Value: "India"},
		insightDomain.TopicsAnyCriteria{Topics: []string{"oil", "gas"}},
	)

	where, args, err := repo.applyCriteria(crit)

	require.NoError(t, err)
	assert.Equal(t,
		"country = $1 AND (topic IN ($2, $3) OR EXISTS (SELECT 1 FROM insight_topics t WHERE t.insight_id = insights.id AND t.topic IN ($4, $5)))",
		where)
	assert.Equal(t, []interface{}{"India", "oil", "gas", "oil", "gas"}, args)
}

func TestApplyCriteria_SQLitePlaceholders(t *testing.T) {
	repo := NewInsightRepoSQL(nil, SQLite)

	where, args, err := repo.applyCriteria(insightDomain.EndYearFromCriteria{Year: 2020})

	require.NoError(t, err)
	assert.Equal(t, "end_year >= ?", where)
	assert.Equal(t, []interface{}{2020}, args)
}

// --- Integración con PostgreSQL (requiere DATABASE_URL) ---

func TestInsightPostgresIntegration(t *testing.T) {
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		t.Skip("DATABASE_URL no está configurada, saltando test de integración con Postgres")
	}

	db, err := sql.Open(Postgres.DriverName, connStr)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	repo := NewInsightRepoSQL(db, Postgres)
	require.NoError(t, repo.InitSchema(ctx))
	// ❗ Limpiar las tablas antes del test para asegurar el aislamiento
	_, err = db.Exec(`TRUNCATE TABLE insight_topics, insights RESTART IDENTITY`)
	require.NoError(t, err)

	_, err = repo.InsertMany(ctx, []*insightDomain.Insight{
		{Country: "India", Topics: []string{"oil"}, EndYear: intp(2030)},
		{Country: "India", Topics: []string{"solar"}},
	})
	require.NoError(t, err)

	f, err := insightDomain.ParseFilter(map[string]string{"country": "India", "topics": "energy, oil", "endYear": "2025"})
	require.NoError(t, err)

	total, err := repo.Count(ctx, f.Criteria())
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	got, err := repo.Find(ctx, f.Criteria(), sharedQuery.FromPage(1, 10))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2030, *got[0].EndYear)
}
