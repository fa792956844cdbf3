package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/Alturino/storefront/internal/backend"
	"github.com/Alturino/storefront/internal/common/constants"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/infra"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/middleware"
	"github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/server"
	"github.com/Alturino/storefront/listing/internal/controller"
	listingOtel "github.com/Alturino/storefront/listing/internal/otel"
	"github.com/Alturino/storefront/listing/internal/service"
)

func RunListingService(c context.Context) {
	c, span := listingOtel.Tracer.Start(c, "RunListingService")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.AppListingService).
		Str(log.KeyTag, "main RunListingService").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "init config").Logger()
	logger.Info().Msg("initializing config")
	c = logger.WithContext(c)
	cfg := config.InitConfig(c, constants.AppListingService)
	logger.Info().Msg("initialized config")

	logger = logger.With().Str(log.KeyProcess, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := mux.NewRouter()
	router.Use(otelmux.Middleware(constants.AppListingService), middleware.Logging, middleware.RecoverPanic)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	logger.Info().Msg("initialized router")

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	otelShutdowns, err := otel.InitOtelSdk(c, constants.AppListingService, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		logger.Info().Msg("shutting down otel")
		shutdownCtx, cancel := context.WithTimeout(logger.WithContext(context.Background()), 10*time.Second)
		defer cancel()
		if err := otel.ShutdownOtel(shutdownCtx, otelShutdowns); err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown otel")
	}()
	logger.Info().Msg("initialized otel sdk")

	// a non-positive ttl disables the catalog cache
	var cache *redis.Client
	if cfg.Backend.ListCacheTTL > 0 {
		logger = logger.With().Str(log.KeyProcess, "initializing cache").Logger()
		logger.Info().Msg("initializing cache")
		c = logger.WithContext(c)
		cache = infra.NewCacheClient(c, cfg.Cache)
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Error().Err(err).Msg("failed closing cache")
			}
		}()
		logger.Info().Msg("initialized cache")
	}

	logger = logger.With().Str(log.KeyProcess, "initializing listing service").Logger()
	logger.Info().Msg("initializing listing service")
	backendClient := backend.NewClient(cfg.Backend)
	listingService := service.NewListingService(backendClient, cache, cfg.Backend.ListCacheTTL)
	logger.Info().Msg("initialized listing service")

	logger = logger.With().Str(log.KeyProcess, "initializing listing controller").Logger()
	logger.Info().Msg("initializing listing controller")
	controller.AttachListingController(router, listingService, cfg.Application.SecretKey, backendClient)
	logger.Info().Msg("initialized listing controller")

	server.Serve(c, logger, span, cfg.Application, router)
}
