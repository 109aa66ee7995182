package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"CoffeeStore-App/internal/application"
	"CoffeeStore-App/internal/config"
	domainrepo "CoffeeStore-App/internal/domain/repository"
	"CoffeeStore-App/internal/handler"
	"CoffeeStore-App/internal/infrastructure/database"
	"CoffeeStore-App/internal/infrastructure/firestore"
	"CoffeeStore-App/internal/infrastructure/httpc"
	"CoffeeStore-App/internal/infrastructure/places"
	"CoffeeStore-App/internal/logger"
	"CoffeeStore-App/internal/repository"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("設定の読み込みに失敗", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logger.New(logger.Options{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		AddSource: cfg.Log.AddSource,
		Env:       cfg.Env,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storesRepo, closeStore, err := newCoffeeStoresRepository(ctx, cfg)
	if err != nil {
		slog.Error("レコードストアの初期化に失敗", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	healthCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = storesRepo.HealthCheck(healthCtx)
	cancel()
	if err != nil {
		slog.Error("レコードストアのヘルスチェック失敗", "error", err)
		os.Exit(1)
	}
	slog.Info("✅ record store ready", "backend", cfg.Store.Backend, "atomic_increment", storesRepo.AtomicIncrement())
	if !storesRepo.AtomicIncrement() {
		slog.Warn("record store increments votes with read-then-write; concurrent votes from other processes may be lost")
	}

	httpClient := httpc.New(cfg.HTTPTimeout())

	placesProvider, err := newPlacesProvider(cfg, httpClient)
	if err != nil {
		slog.Error("Places APIの初期化に失敗", "backend", cfg.Places.Backend, "error", err)
		os.Exit(1)
	}

	var photosProvider domainrepo.PhotosProvider
	if cfg.Places.UnsplashAccessKey != "" {
		photosProvider = places.NewUnsplashPhotosProvider(cfg.Places.UnsplashAccessKey, "", httpClient)
	}

	placesCache, closeCache := newPlacesCache(ctx, cfg)
	defer closeCache()

	placesService := application.NewPlacesService(placesProvider, photosProvider, placesCache, application.PlacesOptions{
		DefaultLatLong: cfg.Places.DefaultLatLong,
		DefaultLimit:   cfg.Places.DefaultLimit,
		CacheTTL:       cfg.CacheTTL(),
	})
	storeService := application.NewCoffeeStoreService(storesRepo)
	voteService := application.NewVoteService(storesRepo)

	gin.SetMode(cfg.Server.GinMode)
	coffeeStoreHandler := handler.NewCoffeeStoreHandler(placesService, storeService, voteService)
	router := handler.NewRouter(coffeeStoreHandler, storesRepo)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("CoffeeStore-App server starting", "addr", cfg.Addr())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server closed", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// newCoffeeStoresRepository 設定されたバックエンドのレコードストアを作成する
func newCoffeeStoresRepository(ctx context.Context, cfg *config.Config) (domainrepo.CoffeeStoresRepository, func(), error) {
	noop := func() {}

	switch cfg.Store.Backend {
	case "supabase":
		client, err := database.NewSupabaseClient(cfg.Store.SupabaseURL, cfg.Store.SupabaseAnonKey)
		if err != nil {
			return nil, noop, err
		}
		return repository.NewSupabaseCoffeeStoresRepository(client), noop, nil

	case "postgres", "sqlite":
		var (
			client *database.SQLClient
			err    error
		)
		if cfg.Store.Backend == "postgres" {
			client, err = database.NewPostgreSQLClientWithRetry(cfg.Store.DatabaseURL, 5, 2*time.Second)
		} else {
			client, err = database.NewSQLiteClient(cfg.Store.SQLitePath)
		}
		if err != nil {
			return nil, noop, err
		}
		if err := database.CreateSchema(ctx, client); err != nil {
			client.Close()
			return nil, noop, err
		}
		return repository.NewSQLCoffeeStoresRepository(client), func() { client.Close() }, nil

	default:
		return repository.NewMemoryCoffeeStoresRepository(), noop, nil
	}
}

// newPlacesProvider 設定された周辺検索バックエンドを作成する
func newPlacesProvider(cfg *config.Config, httpClient *http.Client) (domainrepo.PlacesProvider, error) {
	if cfg.Places.Backend == "elastic" {
		return places.NewElasticPlacesProvider(cfg.Places.ElasticURL, cfg.Places.ElasticIndex)
	}
	return places.NewFoursquarePlacesProvider(cfg.Places.FoursquareAPIKey, cfg.Places.FoursquareBaseURL, cfg.Places.Query, httpClient), nil
}

// newPlacesCache Firestoreが設定されていればFirestore、なければプロセス内キャッシュを使う
func newPlacesCache(ctx context.Context, cfg *config.Config) (domainrepo.PlacesCacheRepository, func()) {
	if cfg.Cache.FirestoreProjectID == "" {
		return repository.NewMemoryPlacesCacheRepository(), func() {}
	}

	client, err := firestore.NewFirestoreClient(ctx, cfg.Cache.FirestoreProjectID, cfg.Cache.CredentialsFile)
	if err != nil {
		slog.Warn("Firestore初期化失敗、プロセス内キャッシュを使用します", "error", err)
		return repository.NewMemoryPlacesCacheRepository(), func() {}
	}
	return repository.NewFirestorePlacesCacheRepository(client.GetClient()), func() { client.Close() }
}
