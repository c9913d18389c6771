package events

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	insightDomain "github.com/davicafu/insightdash/internal/insight/domain"
	sharedEvents "github.com/davicafu/insightdash/internal/shared/events"
)

// ImportObserver recibe los recuentos de cada importación anunciada en el bus.
type ImportObserver interface {
	ObserveImport(inserted, skippedNoCountry, skippedInvalid int)
}

// ImportConsumer escucha insight.imported, que publica el comando de importación,
// y lo registra en el servidor.
type ImportConsumer struct {
	observer ImportObserver
	log      *zap.Logger
}

// NewImportConsumer es el constructor. 'observer' puede ser nil.
func NewImportConsumer(observer ImportObserver, log *zap.Logger) *ImportConsumer {
	return &ImportConsumer{observer: observer, log: log}
}

// HandleMessage es el punto de entrada para un nuevo mensaje/evento.
func (c *ImportConsumer) HandleMessage(ctx context.Context, key string, payload []byte) {
	var base sharedEvents.IntegrationEvent
	if err := json.Unmarshal(payload, &base); err != nil {
		c.log.Warn("Failed to unmarshal integration event for insight", zap.String("key", key), zap.Error(err))
		return
	}

	switch base.Type {
	case insightDomain.InsightsImported:
		var report insightDomain.ImportReport
		if err := json.Unmarshal(base.Data, &report); err != nil {
			c.log.Warn("Failed to unmarshal import report", zap.String("key", key), zap.Error(err))
			return
		}
		c.log.Info("📦 Insight import announced",
			zap.String("batch_id", report.BatchID.String()),
			zap.Int("inserted", report.Inserted),
			zap.Int("skipped_no_country", report.SkippedNoCountry),
			zap.Int("skipped_invalid", report.SkippedInvalid),
		)
		if c.observer != nil {
			c.observer.ObserveImport(report.Inserted, report.SkippedNoCountry, report.SkippedInvalid)
		}

	default:
		c.log.Warn("Unknown insight event type", zap.String("type", base.Type), zap.String("key", key))
	}
}
