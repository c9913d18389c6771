package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/davicafu/insightdash/internal/config"
	"github.com/davicafu/insightdash/internal/insight/application"
	insightDomain "github.com/davicafu/insightdash/internal/insight/domain"
	insightEvents "github.com/davicafu/insightdash/internal/insight/infra/inbound/events"
	insightHttp "github.com/davicafu/insightdash/internal/insight/infra/inbound/http"
	"github.com/davicafu/insightdash/internal/insight/infra/outbound/db/observed"
	sharedEvents "github.com/davicafu/insightdash/internal/shared/infra/events"
	"github.com/davicafu/insightdash/internal/shared/infra/platform/metrics"
	"github.com/davicafu/insightdash/internal/shared/infra/platform/web"
	"github.com/davicafu/insightdash/pkg/utils"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP query API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	// ---------------- DB ----------------
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Warn("Failed to close store", zap.Error(err))
		}
	}()

	// -------------- Metrics ---------------
	m := metrics.New("insightdash")

	// --------------- Servicio --------------
	limits := insightDomain.PageLimits{Default: cfg.DefaultLimit, Max: cfg.MaxLimit}
	queryService := application.NewQueryService(observed.NewInsightReader(store, m), limits, log)

	// ---------------- Events ---------------
	if cfg.UseKafka {
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.KafkaBrokers,
			Topic:    cfg.KafkaTopic,
			GroupID:  "insightdash-server",
			MinBytes: 1,
			MaxBytes: 10e6, // 10MB
		})
		defer reader.Close()

		consumerCtx, cancelConsumer := context.WithCancel(ctx)
		consumer := sharedEvents.NewConsumerAdapter(reader, insightEvents.NewImportConsumer(m, log), log)
		consumer.Start(consumerCtx)
		defer func() {
			cancelConsumer()
			<-consumer.Done()
		}()
	}

	// ---------------- HTTP ----------------
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), web.RequestID(), web.AccessLog(log), web.CORS(), m.Middleware(), web.Timeout(cfg.RequestTimeout))

	insightHttp.RegisterInsightRoutes(router, insightHttp.NewInsightHandler(queryService, log))

	router.GET("/health", func(c *gin.Context) {
		utils.SendSuccess(c, http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("🚀 Server running", zap.String("url", "http://localhost:"+cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("failed to start server", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("🛑 Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	return nil
}
