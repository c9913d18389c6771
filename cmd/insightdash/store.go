package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/davicafu/insightdash/internal/config"
	insightDomain "github.com/davicafu/insightdash/internal/insight/domain"
	"github.com/davicafu/insightdash/internal/insight/infra/outbound/db/memory"
	insightMongo "github.com/davicafu/insightdash/internal/insight/infra/outbound/db/mongodb"
	"github.com/davicafu/insightdash/internal/insight/infra/outbound/db/sqlstore"
	sharedEvents "github.com/davicafu/insightdash/internal/shared/infra/events"
	sharedBus "github.com/davicafu/insightdash/internal/shared/infra/platform/bus"
	sharedUtils "github.com/davicafu/insightdash/internal/shared/infra/utils"
)

const (
	connectAttempts = 5
	connectDelay    = 500 * time.Millisecond
)

// insightStore agrupa los puertos que ofrece cualquier adaptador de almacén.
type insightStore interface {
	insightDomain.InsightReader
	insightDomain.InsightWriter
	Close(ctx context.Context) error
}

// openStore abre el almacén configurado. La conexión se reintenta un número
// acotado de veces; después ya no hay reintentos.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (insightStore, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Warn("⚠️ Usando almacén en memoria: los datos no se persisten")
		return memory.NewInsightRepoMemory(), nil

	case config.DriverMongoDB:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		var repo *insightMongo.InsightRepoMongoDB
		err = sharedUtils.Retry(ctx, connectAttempts, connectDelay, func() error {
			var errPing error
			repo, errPing = insightMongo.NewInsightRepoMongoDB(ctx, client, cfg.MongoDatabase, cfg.MongoColl)
			return errPing
		})
		if err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		log.Info("✅ MongoDB conectado", zap.String("database", cfg.MongoDatabase), zap.String("collection", cfg.MongoColl))
		return repo, nil

	case config.DriverSQLite, config.DriverPostgres:
		dialect, dsn := sqlstore.SQLite, cfg.SQLitePath
		if cfg.StoreDriver == config.DriverPostgres {
			dialect, dsn = sqlstore.Postgres, cfg.DatabaseURL
		}
		db, err := sql.Open(dialect.DriverName, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", dialect.Name, err)
		}
		if dialect.Name == sqlstore.SQLite.Name {
			// SQLite serializa las escrituras; una conexión evita "database is locked".
			db.SetMaxOpenConns(1)
		}
		if err := sharedUtils.Retry(ctx, connectAttempts, connectDelay, func() error { return db.PingContext(ctx) }); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping %s: %w", dialect.Name, err)
		}

		repo := sqlstore.NewInsightRepoSQL(db, dialect)
		if err := repo.InitSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		log.Info("✅ Almacén SQL listo", zap.String("dialect", dialect.Name))
		return repo, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// openEventBus devuelve el bus de eventos y su función de cierre. Con el bus en
// memoria, 'handler' queda suscrito y el cierre espera a que procese lo publicado.
func openEventBus(cfg *config.Config, handler sharedEvents.MessageHandler, log *zap.Logger) (sharedBus.EventBus, func() error) {
	if cfg.UseKafka {
		log.Info("🚀 Usando Kafka como bus de eventos", zap.String("topic", cfg.KafkaTopic))
		writer := &kafka.Writer{
			Addr:     kafka.TCP(cfg.KafkaBrokers...),
			Topic:    cfg.KafkaTopic,
			Balancer: &kafka.Hash{},
		}
		return sharedEvents.NewKafkaPublisher(writer, log), writer.Close
	}

	bus := sharedEvents.NewInMemoryEventBus(insightDomain.InsightTopic)
	log.Info("⚡️Usando bus de eventos en memoria (canales de Go)", zap.String("topic", bus.Topic()))

	// Context propio: el listener debe vaciar el canal aunque se cancele el comando.
	done := sharedEvents.BackgroundConsumerChan(context.Background(), bus.Subscribe(10), handler)
	return bus, func() error {
		bus.Close()
		<-done
		return nil
	}
}
