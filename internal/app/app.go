package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	"github.com/linemk/airbatu-shop/internal/config"
	"github.com/linemk/airbatu-shop/internal/storage/cartstore"
	"github.com/redis/go-redis/v9"
)

const (
	CartDriverMemory = "memory"
	CartDriverRedis  = "redis"
)

type App struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *sql.DB
	Carts  cartstore.Store
	// Redis заполнен только для cart_store.driver = redis
	Redis *redis.Client
}

// NewApp создаёт новый экземпляр App: подключение к БД и хранилище корзин
func NewApp(log *slog.Logger, cfg *config.Config) (*App, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	app := &App{
		Config: cfg,
		Logger: log,
		DB:     db,
	}

	if err := app.setupCartStore(); err != nil {
		db.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) setupCartStore() error {
	cfg := a.Config.CartStore

	switch cfg.Driver {
	case CartDriverMemory, "":
		a.Carts = cartstore.NewMemoryStore(cfg.TTL)
	case CartDriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return fmt.Errorf("failed to ping redis: %w", err)
		}
		a.Redis = client
		a.Carts = cartstore.NewRedisStore(client, cfg.TTL)
	default:
		return fmt.Errorf("unknown cart store driver %q", cfg.Driver)
	}

	a.Logger.Info("cart store ready", slog.String("driver", cfg.Driver))
	return nil
}

// RunBackground запускает фоновые задачи хранилищ до отмены ctx
func (a *App) RunBackground(ctx context.Context) {
	if mem, ok := a.Carts.(*cartstore.MemoryStore); ok {
		go mem.RunSweeper(ctx, 10*time.Minute)
	}
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Error("failed to close redis", slog.Any("error", err))
		}
	}
	if err := a.DB.Close(); err != nil {
		a.Logger.Error("failed to close database", slog.Any("error", err))
	}
}
