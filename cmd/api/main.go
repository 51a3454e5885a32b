package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"openmat-france/backend/internal/config"
	"openmat-france/backend/internal/domain/favorites"
	"openmat-france/backend/internal/domain/openmat"
	"openmat-france/backend/internal/firebase"
	"openmat-france/backend/internal/geocode"
	"openmat-france/backend/internal/handlers"
	apihttp "openmat-france/backend/internal/http"
	"openmat-france/backend/internal/logging"
	"openmat-france/backend/internal/offline"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	clients, err := firebase.NewClients(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("firebase clients init failed")
	}
	defer clients.Close()

	mirror, err := offline.NewStore(cfg.OfflineDBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("offline store init failed")
	}
	defer mirror.Close()

	// Repositories
	openMatRepo := openmat.NewRepo(clients.Firestore)
	favoritesRepo := favorites.NewRepo(clients.Firestore)

	// Services
	openMatSvc := openmat.NewService(openMatRepo, mirror, log)
	favoritesSvc := favorites.NewService(favoritesRepo, openMatSvc, log)
	suggester := geocode.NewSuggester(geocode.NewClient(cfg.GeocodeBaseURL))
	uploads := handlers.NewUploads(cfg, clients)

	// Warm the mirror so offline reads have something to serve from the
	// first outage onward.
	if err := openMatSvc.SyncMirror(ctx); err != nil {
		log.Warn().Err(err).Msg("startup mirror sync failed")
	}

	// Re-sync whenever connectivity comes back.
	monitor := offline.NewMonitor(cfg.HealthProbeURL, cfg.ProbeInterval, log)
	unsubscribe := monitor.Subscribe(func(online bool) {
		if !online {
			return
		}
		syncCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := openMatSvc.SyncMirror(syncCtx); err != nil {
			log.Warn().Err(err).Msg("post-reconnect mirror sync failed")
		}
	})
	defer unsubscribe()
	monitor.Start(ctx)
	defer monitor.Stop()

	router := apihttp.NewRouter(apihttp.RouterDeps{
		Cfg:          cfg,
		Log:          log,
		AuthClient:   clients.Auth,
		OpenMatSvc:   openMatSvc,
		FavoritesSvc: favoritesSvc,
		Uploads:      uploads,
		Suggester:    suggester,
		Preferences:  mirror,
		Monitor:      monitor,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Port).Str("project", cfg.ProjectID).Msg("API listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen failed")
		}
	}()

	stop := make(chan os.Signal, 2)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info().Msg("shutting down")
	_ = srv.Shutdown(ctxShutdown)
}
