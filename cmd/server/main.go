package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vidtube/backend/core"
	"github.com/vidtube/backend/modules/session"
	"github.com/vidtube/backend/modules/subscription"
	"github.com/vidtube/backend/modules/user"
	"github.com/vidtube/backend/pkg/blob"
	"github.com/vidtube/backend/pkg/config"
	"github.com/vidtube/backend/pkg/cookie"
	"github.com/vidtube/backend/pkg/logger"
	"github.com/vidtube/backend/pkg/mongo"
	"github.com/vidtube/backend/pkg/requestid"
)

type serverConfig struct {
	Addr            string        `env:"SERVER_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var logCfg logger.Config
	config.MustLoad(&logCfg)
	log := logger.NewFromConfig(logCfg, logger.WithService("vidtube"))

	var srvCfg serverConfig
	var mongoCfg mongo.Config
	var sessionCfg session.Config
	var cookieCfg cookie.Config
	var s3Cfg blob.S3Config
	config.MustLoad(&srvCfg)
	config.MustLoad(&mongoCfg)
	config.MustLoad(&sessionCfg)
	config.MustLoad(&cookieCfg)
	config.MustLoad(&s3Cfg)

	db, err := mongo.NewWithDatabase(ctx, mongoCfg)
	if err != nil {
		log.Error("mongo connection failed", logger.Error(err))
		os.Exit(1)
	}
	defer func() {
		_ = db.Client().Disconnect(context.Background())
	}()

	if err := user.EnsureIndexes(ctx, db); err != nil {
		log.Error("index bootstrap failed", logger.Error(err))
		os.Exit(1)
	}

	media, err := blob.NewS3Storage(ctx, s3Cfg)
	if err != nil {
		log.Error("media storage init failed", logger.Error(err))
		os.Exit(1)
	}

	users := user.NewRepository(db)
	subs := subscription.NewRepository(db)

	tokens, err := session.NewTokenService(sessionCfg, users)
	if err != nil {
		log.Error("token service init failed", logger.Error(err))
		os.Exit(1)
	}

	cookies := cookie.NewFromConfig(cookieCfg)
	userSvc := user.NewService(users, media, log)
	sessions := session.NewWorkflow(users, tokens, log)

	identityFn := func(r *http.Request) (bson.ObjectID, bool) {
		return session.UserIDFromContext(r.Context())
	}
	auth := session.Middleware(tokens, cookies)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(chimiddleware.Recoverer)

	health := mongo.Healthcheck(db.Client())
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := health(req.Context()); err != nil {
			core.WriteError(w, core.Internal("service unhealthy", err))
			return
		}
		core.WriteJSON(w, http.StatusOK, struct{}{}, "ok")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/users", user.NewHandler(userSvc, identityFn).Routes(auth))
		r.Mount("/sessions", session.NewHandler(sessions, tokens, cookies).Routes(auth))
		r.Mount("/subscriptions", subscription.NewHandler(subs, identityFn).Routes(auth))
	})

	srv := &http.Server{
		Addr:         srvCfg.Addr,
		Handler:      r,
		ReadTimeout:  srvCfg.ReadTimeout,
		WriteTimeout: srvCfg.WriteTimeout,
	}

	go func() {
		log.Info("server listening", "addr", srvCfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), srvCfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", logger.Error(err))
	}
	log.Info("server stopped")
}
