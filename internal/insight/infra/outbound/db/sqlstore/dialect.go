package sqlstore

import (
	"fmt"
	"strconv"

	sharedUtils "github.com/davicafu/insightdash/internal/shared/infra/utils"
)

// Dialect recoge las diferencias de SQL entre SQLite y PostgreSQL.
type Dialect struct {
	Name       string
	DriverName string
	numbered   bool // $1, $2... en lugar de ?
	idColumn   string
	floatType  string
	timeType   string
}

var (
	SQLite = Dialect{
		Name:       "sqlite",
		DriverName: "sqlite",
		idColumn:   "id INTEGER PRIMARY KEY AUTOINCREMENT",
		floatType:  "REAL",
		timeType:   "DATETIME",
	}
	Postgres = Dialect{
		Name:       "postgres",
		DriverName: "pgx",
		numbered:   true,
		idColumn:   "id BIGSERIAL PRIMARY KEY",
		floatType:  "DOUBLE PRECISION",
		timeType:   "TIMESTAMP WITH TIME ZONE",
	}
)

// Placeholder devuelve el marcador del argumento n (1-based).
func (d Dialect) Placeholder(n int) string {
	return sharedUtils.Ternary(d.numbered, "$"+strconv.Itoa(n), "?")
}

func (d Dialect) schema() []string {
	return []string{
		fmt.Sprintf(`
    CREATE TABLE IF NOT EXISTS insights (
        %s,
        country TEXT NOT NULL,
        region TEXT NOT NULL DEFAULT '',
        city TEXT NOT NULL DEFAULT '',
        sector TEXT NOT NULL DEFAULT '',
        source TEXT NOT NULL DEFAULT '',
        pestle TEXT NOT NULL DEFAULT '',
        swot TEXT NOT NULL DEFAULT '',
        topic TEXT NOT NULL DEFAULT '',
        end_year INTEGER CHECK (end_year >= 0),
        start_year INTEGER,
        published TEXT NOT NULL DEFAULT '',
        intensity %[2]s CHECK (intensity >= 0),
        likelihood %[2]s CHECK (likelihood >= 0),
        relevance %[2]s CHECK (relevance >= 0),
        title TEXT NOT NULL DEFAULT '',
        insight TEXT NOT NULL DEFAULT '',
        url TEXT NOT NULL DEFAULT '',
        impact TEXT NOT NULL DEFAULT '',
        added TEXT NOT NULL DEFAULT '',
        created_at %[3]s NOT NULL
    )`, d.idColumn, d.floatType, d.timeType),
		`
    CREATE TABLE IF NOT EXISTS insight_topics (
        insight_id BIGINT NOT NULL REFERENCES insights(id),
        position INTEGER NOT NULL,
        topic TEXT NOT NULL,
        PRIMARY KEY (insight_id, position)
    )`,
		`CREATE INDEX IF NOT EXISTS idx_insight_topics_topic ON insight_topics (topic)`,
		`CREATE INDEX IF NOT EXISTS idx_insights_country ON insights (country)`,
	}
}
