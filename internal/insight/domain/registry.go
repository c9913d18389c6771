package domain

import (
	"time"

	"github.com/google/uuid"
)

// Las constantes de los tipos de evento se definen aquí, como valores string.
const (
	InsightsImported = "insight.imported"
)

const InsightTopic = "insight"

// ImportReport resume una ejecución de la importación.
type ImportReport struct {
	BatchID          uuid.UUID `json:"batch_id"`
	Read             int       `json:"read"`
	Inserted         int       `json:"inserted"`
	SkippedNoCountry int       `json:"skipped_no_country"`
	SkippedInvalid   int       `json:"skipped_invalid"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
}
