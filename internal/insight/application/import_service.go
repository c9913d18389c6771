package application

import (
	"context"
	"errors"
	"time"

	insightDomain "github.com/davicafu/insightdash/internal/insight/domain"
	sharedEvents "github.com/davicafu/insightdash/internal/shared/events"
	sharedBus "github.com/davicafu/insightdash/internal/shared/infra/platform/bus"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultBatchSize = 500

// ImportService carga el volcado JSON en el almacén.
type ImportService struct {
	writer    insightDomain.InsightWriter
	bus       sharedBus.EventBus
	batchSize int
	log       *zap.Logger
}

// NewImportService es el constructor. 'bus' puede ser nil.
func NewImportService(writer insightDomain.InsightWriter, bus sharedBus.EventBus, batchSize int, log *zap.Logger) *ImportService {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &ImportService{writer: writer, bus: bus, batchSize: batchSize, log: log}
}

// Import descarta las filas sin país, omite las que rompen invariantes e
// inserta el resto por lotes. Al terminar publica insight.imported.
// Si falla un lote, el informe refleja lo insertado hasta ese momento.
func (s *ImportService) Import(ctx context.Context, rows []map[string]interface{}) (*insightDomain.ImportReport, error) {
	report := &insightDomain.ImportReport{
		BatchID:   uuid.New(),
		Read:      len(rows),
		StartedAt: time.Now().UTC(),
	}

	batch := make([]*insightDomain.Insight, 0, s.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := s.writer.InsertMany(ctx, batch)
		report.Inserted += n
		batch = batch[:0]
		return err
	}

	for i, raw := range rows {
		// La identidad la asigna el almacén.
		delete(raw, "_id")

		if !insightDomain.HasCountry(raw) {
			report.SkippedNoCountry++
			continue
		}
		in, err := insightDomain.NewInsightFromRaw(raw)
		if err != nil {
			if !errors.Is(err, insightDomain.ErrInvalidInsight) {
				return report, err
			}
			report.SkippedInvalid++
			s.log.Warn("Skipping invalid insight row", zap.Int("row", i), zap.Error(err))
			continue
		}

		batch = append(batch, in)
		if len(batch) == s.batchSize {
			if err := flush(); err != nil {
				return report, &insightDomain.StoreUnavailableError{Op: "import", Err: err}
			}
		}
	}
	if err := flush(); err != nil {
		return report, &insightDomain.StoreUnavailableError{Op: "import", Err: err}
	}
	report.FinishedAt = time.Now().UTC()

	s.log.Info("✅ Insights imported",
		zap.String("batch_id", report.BatchID.String()),
		zap.Int("read", report.Read),
		zap.Int("inserted", report.Inserted),
		zap.Int("skipped_no_country", report.SkippedNoCountry),
		zap.Int("skipped_invalid", report.SkippedInvalid),
	)

	s.publish(ctx, report)
	return report, nil
}

// publish notifica el resultado; un fallo aquí no invalida la importación.
func (s *ImportService) publish(ctx context.Context, report *insightDomain.ImportReport) {
	if s.bus == nil {
		return
	}
	evt, err := sharedEvents.NewIntegrationEvent(insightDomain.InsightsImported, report.BatchID.String(), report)
	if err != nil {
		s.log.Error("Failed to build import event", zap.Error(err))
		return
	}
	if err := s.bus.Publish(ctx, evt); err != nil {
		s.log.Warn("⚠️ Failed to publish import event",
			zap.String("batch_id", report.BatchID.String()),
			zap.Error(err),
		)
	}
}
