package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/oponion/oponion-api/internal/config"
	"github.com/oponion/oponion-api/internal/delivery/http/v1"
	"github.com/oponion/oponion-api/internal/services"
)

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	v1.RegisterRoutes(router, newV1Handler())

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: router,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

func newV1Handler() v1.Handler {
	jwtCfg := config.Global().JWT
	store := globalStore

	return v1.New(globalLogger, globalCatalog, v1.Services{
		Auth: services.NewAuthService(
			globalLogger,
			store,
			store,
			nil,
			jwtCfg.Issuer,
			[]byte(jwtCfg.SigningKey),
			jwtCfg.AccessTokenTTL,
			jwtCfg.RefreshTokenTTL,
		),
		Sessions:    services.NewSessionService(globalLogger, store),
		Users:       services.NewUserService(globalLogger, store),
		Projects:    services.NewProjectService(globalLogger, store),
		Tasks:       services.NewTaskService(globalLogger, store, store),
		Invitations: services.NewInvitationService(globalLogger, store, store, store, globalNotifier),
		TimeEntries: services.NewTimeEntryService(globalLogger, store, store, store),
	})
}
