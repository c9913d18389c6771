package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	insightDomain "github.com/davicafu/insightdash/internal/insight/domain"
	sharedDomain "github.com/davicafu/insightdash/internal/shared/domain"
	sharedQuery "github.com/davicafu/insightdash/internal/shared/infra/platform/query"
)

func intp(v int) *int { return &v }

func seed(t *testing.T, repo *InsightRepoMemory, insights ...*insightDomain.Insight) {
	t.Helper()
	n, err := repo.InsertMany(context.Background(), insights)
	require.NoError(t, err)
	require.Equal(t, len(insights), n)
}

func TestInsightRepoMemory_FindFiltersAndProjects(t *testing.T) {
	repo := NewInsightRepoMemory()
	seed(t, repo,
		&insightDomain.Insight{Country: "India", Region: "Asia", City: "Delhi", Topics: []string{"oil", "gas"}, EndYear: intp(2030)},
		&insightDomain.Insight{Country: "India", Region: "Asia", Topics: []string{"solar"}, EndYear: intp(2020)},
		&insightDomain.Insight{Country: "Mexico", Region: "Central America", Topic: "oil"},
	)

	criteria := sharedDomain.And(
		insightDomain.FieldEqualsCriteria{Field: insightDomain.FieldCountry, Value: "India"},
		insightDomain.EndYearFromCriteria{Year: 2025},
	)
	got, err := repo.Find(context.Background(), criteria, sharedQuery.OffsetPagination{Limit: 10})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2030, *got[0].EndYear)
	assert.Empty(t, got[0].City, "los campos no proyectados no se exponen")
	assert.Nil(t, got[0].Topics)
}

func TestInsightRepoMemory_TopicsMatchTopicOrTopicsList(t *testing.T) {
	repo := NewInsightRepoMemory()
	seed(t, repo,
		&insightDomain.Insight{Country: "A", Topics: []string{"oil", "gas"}},
		&insightDomain.Insight{Country: "B", Topics: []string{"solar"}},
		&insightDomain.Insight{Country: "C", Topic: "energy"},
	)

	criteria := insightDomain.TopicsAnyCriteria{Topics: insightDomain.SplitTopics("energy, oil")}
	got, err := repo.Find(context.Background(), criteria, sharedQuery.OffsetPagination{Limit: 10})
	require.NoError(t, err)

	var countries []string
	for _, in := range got {
		countries = append(countries, in.Country)
	}
	assert.Equal(t, []string{"A", "C"}, countries)

	total, err := repo.Count(context.Background(), criteria)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestInsightRepoMemory_PaginationKeepsInsertionOrder(t *testing.T) {
	repo := NewInsightRepoMemory()
	var insights []*insightDomain.Insight
	for i := 0; i < 25; i++ {
		insights = append(insights, &insightDomain.Insight{Country: "Nigeria", Title: fmt.Sprintf("t%02d", i)})
	}
	seed(t, repo, insights...)

	got, err := repo.Find(context.Background(), nil, sharedQuery.FromPage(2, 10))
	require.NoError(t, err)
	require.Len(t, got, 10)
	assert.Equal(t, "t10", got[0].Title)
	assert.Equal(t, "t19", got[9].Title)

	last, err := repo.Find(context.Background(), nil, sharedQuery.FromPage(3, 10))
	require.NoError(t, err)
	assert.Len(t, last, 5)

	beyond, err := repo.Find(context.Background(), nil, sharedQuery.FromPage(4, 10))
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestInsightRepoMemory_MissingEndYearNeverMatches(t *testing.T) {
	repo := NewInsightRepoMemory()
	seed(t, repo, &insightDomain.Insight{Country: "Chile"})

	total, err := repo.Count(context.Background(), insightDomain.EndYearFromCriteria{Year: 0})

	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestInsightRepoMemory_UnknownFieldIsAnError(t *testing.T) {
	repo := NewInsightRepoMemory()
	seed(t, repo, &insightDomain.Insight{Country: "Chile"})

	_, err := repo.Count(context.Background(), insightDomain.FieldEqualsCriteria{Field: "nope", Value: "x"})

	assert.Error(t, err)
}

func TestInsightRepoMemory_CancelledContext(t *testing.T) {
	repo := NewInsightRepoMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Find(ctx, nil, sharedQuery.OffsetPagination{Limit: 1})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = repo.Count(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInsightRepoMemory_InsertCopiesInput(t *testing.T) {
	repo := NewInsightRepoMemory()
	in := &insightDomain.Insight{Country: "Peru", Topic: "copper"}
	seed(t, repo, in)

	in.Country = "Bolivia"

	total, err := repo.Count(context.Background(), insightDomain.FieldEqualsCriteria{Field: insightDomain.FieldCountry, Value: "Peru"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}
