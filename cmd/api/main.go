package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ministryofjustice/hmpps-manage-prison-visits-orchestration-sub001/internal/api/router"
	"github.com/ministryofjustice/hmpps-manage-prison-visits-orchestration-sub001/internal/app/bootstrap"
	"github.com/ministryofjustice/hmpps-manage-prison-visits-orchestration-sub001/internal/availability"
	"github.com/ministryofjustice/hmpps-manage-prison-visits-orchestration-sub001/internal/clients/alerts"
	"github.com/ministryofjustice/hmpps-manage-prison-visits-orchestration-sub001/internal/clients/contactregistry"
	"github.com/ministryofjustice/hmpps-manage-prison-visits-orchestration-sub001/internal/clients/govuk"
	"github.com/ministryofjustice/hmpps-manage-prison-visits-orchestration-sub001/internal/clients/prisonapi"
	"github.com/ministryofjustice/hmpps-manage-prison-visits-orchestration-sub001/internal/clients/visitscheduler"
	appconfig "github.com/ministryofjustice/hmpps-manage-prison-visits-orchestration-sub001/internal/config"
	"github.com/ministryofjustice/hmpps-manage-prison-visits-orchestration-sub001/internal/http/handlers"
	"github.com/ministryofjustice/hmpps-manage-prison-visits-orchestration-sub001/internal/observability/metrics"
	"github.com/ministryofjustice/hmpps-manage-prison-visits-orchestration-sub001/pkg/logging"
)

func main() {
	// .env is optional; real environments inject config directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting visit availability orchestration server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	// Optional Redis, used only for GOV.UK holiday caching.
	redisClient := bootstrap.BuildRedisClient(context.Background(), cfg, logger, true)

	// Collaborator clients
	scheduler := visitscheduler.NewClient(cfg.VisitSchedulerBaseURL, cfg.APIAuthToken, logger)
	prisonAPI := prisonapi.NewClient(cfg.PrisonAPIBaseURL, cfg.APIAuthToken, logger)
	contacts := contactregistry.NewClient(cfg.ContactRegistryBaseURL, cfg.APIAuthToken, logger)
	alertsAPI := alerts.NewClient(cfg.AlertsAPIBaseURL, cfg.APIAuthToken, logger)
	holidays := govuk.NewClient(cfg.GovUKBaseURL, redisClient, cfg.HolidayCacheTTL, logger)

	review := availability.NewReviewSignal(alertsAPI, contacts,
		cfg.ReviewAlertCodes, cfg.ReviewRestrictionTypes, logger)

	availabilityMetrics := metrics.NewAvailabilityMetrics(prometheus.DefaultRegisterer)

	service := availability.NewService(availability.Deps{
		Sessions:     scheduler,
		Prisons:      scheduler,
		Restrictions: prisonAPI,
		Visitors:     contacts,
		Appointments: prisonAPI,
		Exclusions:   scheduler,
		Holidays:     holidays,
		Review:       review,
	}, availability.Policy{
		HigherPrioritySubTypes:  cfg.HigherPriorityEventSubTypes,
		ReviewHolidayBufferDays: cfg.ReviewHolidayBufferDays,
		CollaboratorTimeout:     cfg.CollaboratorTimeout,
	}, logger, availabilityMetrics)

	r := router.New(&router.Config{
		Logger:              logger,
		AvailabilityHandler: handlers.NewAvailabilityHandler(service, logger),
		VisitsHandler:       handlers.NewVisitsHandler(scheduler, logger),
		MetricsHandler:      promhttp.Handler(),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if redisClient != nil {
		_ = redisClient.Close()
	}

	logger.Info("server stopped")
}
