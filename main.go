package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sanjigen3D/logisticaint-app-sub000/api"
	"github.com/sanjigen3D/logisticaint-app-sub000/carriers"
	"github.com/sanjigen3D/logisticaint-app-sub000/config"
	"github.com/sanjigen3D/logisticaint-app-sub000/db"
	"github.com/sanjigen3D/logisticaint-app-sub000/events"
	"github.com/sanjigen3D/logisticaint-app-sub000/internal/logging"
	"github.com/sanjigen3D/logisticaint-app-sub000/internal/telemetry"
	"github.com/sanjigen3D/logisticaint-app-sub000/seeder"
	"github.com/sanjigen3D/logisticaint-app-sub000/services"
	"github.com/sanjigen3D/logisticaint-app-sub000/utils"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	config.LoadEnv()
	logging.InitLogging()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	shutdownTracing, err := telemetry.InitTracing()
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer shutdownTracing()

	shutdownMetrics, err := telemetry.InitMetrics()
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer shutdownMetrics()

	stopProfiling, err := telemetry.InitProfiling()
	if err != nil {
		slog.Warn("profiling disabled", "error", err)
	} else {
		defer stopProfiling()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting itinerary server", "port", cfg.Server.Port)

	database, err := db.InitDB(ctx, cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer database.Close()

	if cfg.Seeder.Enabled {
		metrics, err := seeder.SeedLocations(ctx, database, cfg.Seeder.CSVPath, cfg.Seeder.BatchSize, false)
		if err != nil {
			return fmt.Errorf("seed locations: %w", err)
		}
		slog.Info("seeding completed",
			"total", metrics.TotalRecords,
			"skipped", metrics.SkippedRecords,
			"processing", metrics.ProcessingDuration,
			"database", metrics.DatabaseDuration,
		)
	}

	session := carriers.StaticSession(cfg.Carriers.SessionToken)
	sources, tracker := buildCarriers(cfg.Carriers, session)

	notifier, closeNotifier := buildNotifier(cfg.Kafka)
	defer closeNotifier()

	aggregator := services.NewItineraryAggregator(sources,
		services.WithNotifier(notifier),
		services.WithSourceTimeout(cfg.Carriers.SearchTimeout),
	)
	registry := services.NewVesselRegistry(database, utils.NewVesselFetcher(database))

	var ais *services.AISStreamManager
	if cfg.AIS.Enabled {
		ais, err = startAISStreaming(ctx, cfg.AIS, database)
		if err != nil {
			return err
		}
	}

	router := api.NewRouter(api.Deps{
		Searcher:    aggregator,
		Tracker:     tracker,
		Recorder:    registry,
		DB:          database,
		Pinger:      database,
		Location:    cfg.Calendar.Location(),
		ArchiveDir:  cfg.AIS.ArchiveDir,
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      slog.Default(),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown", "error", err)
	}

	aggregator.Wait()
	registry.Wait()
	if ais != nil {
		ais.Wait()
	}
	return nil
}

// buildCarriers creates a client per enabled carrier. Disabled carriers are
// left out of the search and answer tracking requests as unknown.
func buildCarriers(cfg config.CarriersConfig, session carriers.Session) ([]services.RouteSource, *services.TrackingService) {
	var (
		sources []services.RouteSource
		zim     services.ZimTracker
		maersk  services.MaerskTracker
		hapag   services.HapagTracker
	)

	clientConfig := func(c config.CarrierConfig) carriers.Config {
		return carriers.Config{BaseURL: c.BaseURL, APIKey: c.APIKey, Timeout: c.Timeout}
	}

	if cfg.Zim.Enabled {
		c := carriers.NewZimClient(clientConfig(cfg.Zim), session)
		sources = append(sources, carriers.NewZimSource(c))
		zim = c
	}
	if cfg.Maersk.Enabled {
		c := carriers.NewMaerskClient(clientConfig(cfg.Maersk), session)
		sources = append(sources, carriers.NewMaerskSource(c))
		maersk = c
	}
	if cfg.Hapag.Enabled {
		c := carriers.NewHapagClient(clientConfig(cfg.Hapag), session)
		sources = append(sources, carriers.NewHapagSource(c))
		hapag = c
	}

	slog.Info("carriers configured", "count", len(sources))
	return sources, services.NewTrackingService(zim, maersk, hapag)
}

func buildNotifier(cfg config.KafkaConfig) (services.Notifier, func()) {
	if len(cfg.Brokers) == 0 {
		return services.LogNotifier{Logger: slog.Default()}, func() {}
	}

	notifier := events.NewKafkaNotifier(events.NewKafkaProducer(cfg.Brokers, cfg.Topic))
	slog.Info("publishing itinerary events", "brokers", cfg.Brokers, "topic", cfg.Topic)
	return notifier, func() {
		if err := notifier.Close(); err != nil {
			slog.Error("close kafka notifier", "error", err)
		}
	}
}

func startAISStreaming(ctx context.Context, cfg config.AISConfig, database *sql.DB) (*services.AISStreamManager, error) {
	vessels, err := db.GetTopVessels(ctx, database, cfg.TopN)
	if err != nil {
		return nil, err
	}
	slog.Info("found vessels to track", "count", len(vessels))

	mmsis := make([]string, 0, len(vessels))
	for _, v := range vessels {
		if v.MMSI != "" {
			mmsis = append(mmsis, v.MMSI)
		}
	}
	if len(mmsis) == 0 {
		slog.Info("no vessels found, skipping AIS streaming")
		return nil, nil
	}

	manager := services.NewAISStreamManager(services.AISStreamConfig{
		URL:        cfg.URL,
		APIKey:     cfg.APIKey,
		ArchiveDir: cfg.ArchiveDir,
	}, database)
	if err := manager.StartStreaming(ctx, mmsis); err != nil {
		return nil, err
	}
	return manager, nil
}
