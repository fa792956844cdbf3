package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/Alturino/storefront/cart/internal/controller"
	"github.com/Alturino/storefront/cart/internal/mirror"
	cartOtel "github.com/Alturino/storefront/cart/internal/otel"
	"github.com/Alturino/storefront/cart/internal/service"
	"github.com/Alturino/storefront/internal/backend"
	"github.com/Alturino/storefront/internal/common/constants"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/infra"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/middleware"
	"github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/server"
)

// openMirror returns the configured mirror driver and a function releasing
// whatever connection it holds.
func openMirror(c context.Context, cfg *config.Config) (mirror.Mirror, func(), error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "main openMirror").
		Str(log.KeyMirrorDriver, cfg.Mirror.Driver).
		Logger()

	switch cfg.Mirror.Driver {
	case config.MirrorDriverMemory:
		return mirror.NewMemory(), func() {}, nil
	case config.MirrorDriverFile:
		m, err := mirror.NewFile(cfg.Mirror.Directory)
		if err != nil {
			return nil, nil, err
		}
		return m, func() {}, nil
	case config.MirrorDriverRedis:
		cache := infra.NewCacheClient(c, cfg.Cache)
		return mirror.NewRedis(cache), func() {
			if err := cache.Close(); err != nil {
				logger.Error().Err(err).Msg("failed closing cache")
			}
		}, nil
	case config.MirrorDriverPostgres:
		pool := infra.NewDatabaseClient(c, cfg.Database)
		return mirror.NewPostgres(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown mirror driver=%s", cfg.Mirror.Driver)
	}
}

func RunCartService(c context.Context) {
	c, span := cartOtel.Tracer.Start(c, "RunCartService")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.AppCartService).
		Str(log.KeyTag, "main RunCartService").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "init config").Logger()
	logger.Info().Msg("initializing config")
	c = logger.WithContext(c)
	cfg := config.InitConfig(c, constants.AppCartService)
	logger.Info().Msg("initialized config")

	logger = logger.With().Str(log.KeyProcess, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := mux.NewRouter()
	router.Use(otelmux.Middleware(constants.AppCartService), middleware.Logging, middleware.RecoverPanic)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	logger.Info().Msg("initialized router")

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	otelShutdowns, err := otel.InitOtelSdk(c, constants.AppCartService, cfg.Otel)
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

	logger = logger.With().Str(log.KeyProcess, "initializing mirror").Logger()
	logger.Info().Str(log.KeyMirrorDriver, cfg.Mirror.Driver).Msg("initializing mirror")
	c = logger.WithContext(c)
	cartMirror, closeMirror, err := openMirror(c, cfg)
	if err != nil {
		err = fmt.Errorf("failed initializing mirror with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		logger.Info().Msg("closing mirror")
		closeMirror()
		logger.Info().Msg("closed mirror")
	}()
	logger.Info().Msg("initialized mirror")

	logger = logger.With().Str(log.KeyProcess, "initializing cart service").Logger()
	logger.Info().Msg("initializing cart service")
	backendClient := backend.NewClient(cfg.Backend)
	cartService := service.NewCartService(cartMirror, cfg.Mirror.KeyPrefix, backendClient)
	logger.Info().Msg("initialized cart service")

	logger = logger.With().Str(log.KeyProcess, "initializing cart controller").Logger()
	logger.Info().Msg("initializing cart controller")
	controller.AttachCartController(router, cartService, cfg.Application.SecretKey)
	logger.Info().Msg("initialized cart controller")

	server.Serve(c, logger, span, cfg.Application, router)
}
