// Package server wires the MealMate backend together: storage, the user
// directory, the recipe catalogue, the chat hub and the HTTP API, and runs
// them until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/mealmate/internal/logging"
	"github.com/dmitrijs2005/mealmate/internal/server/chat"
	"github.com/dmitrijs2005/mealmate/internal/server/config"
	"github.com/dmitrijs2005/mealmate/internal/server/images"
	"github.com/dmitrijs2005/mealmate/internal/server/recipes"
	"github.com/dmitrijs2005/mealmate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/mealmate/internal/server/rest"
	"github.com/dmitrijs2005/mealmate/internal/server/services"
	"github.com/redis/go-redis/v9"
)

const recipeCachePrefix = "mealmate:recipes:"

var openDB = sql.Open

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	redis   *redis.Client
	hub     *chat.Hub
	handler http.Handler
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogBackend)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := openDB("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	store, err := images.New(ctx, c)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("image store init error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	lookup, err := app.newRecipeLookup(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	app.hub = chat.NewHub(chat.HubConfig{
		SendBuffer:     c.ChatSendBufferSize,
		AllowedOrigins: c.CORSAllowedOrigins,
	}, chat.NewMemoryLog(), logger)

	app.handler = rest.NewRouter(rest.Deps{
		Directory:          services.NewUserService(db, rm, store, c),
		Recipes:            lookup,
		Chat:               app.hub,
		Logger:             logger,
		SecretKey:          []byte(c.SecretKey),
		CORSAllowedOrigins: c.CORSAllowedOrigins,
	})

	return app, nil
}

// newRecipeLookup puts a cache in front of TheMealDB: Redis when an address
// is configured, process memory otherwise.
func (app *App) newRecipeLookup(ctx context.Context) (recipes.Lookup, error) {
	var cache recipes.Cache = recipes.NewMemoryCache()

	if app.config.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: app.config.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("redis init error: %w", err)
		}
		app.redis = client
		cache = recipes.NewRedisCache(client, recipeCachePrefix)
	}

	client := recipes.NewMealDBClient(app.config.RecipeAPIBaseURL, nil)
	return recipes.NewCachedLookup(client, cache, app.config.RecipeCacheTTL, app.logger), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := rest.NewHTTPServer(app.config.HTTPAddr, app.handler, app.config.ShutdownTimeout, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	go app.hub.Run()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.hub.Shutdown(app.config.ShutdownTimeout); err != nil {
		app.logger.Error(ctx, "chat shutdown", "error", err)
	}
	app.close(ctx)
	app.logger.Info(ctx, "App stopped")
}

func (app *App) close(ctx context.Context) {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error(ctx, "redis close", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close", "error", err)
	}
	if s, ok := app.logger.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
}
