package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/linemk/airbatu-shop/internal/app"
	"github.com/linemk/airbatu-shop/internal/app/handlers"
	"github.com/linemk/airbatu-shop/internal/config"
	security "github.com/linemk/airbatu-shop/internal/jwt-new"
	"github.com/linemk/airbatu-shop/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/airbatu-shop/internal/lib/logger"
	"github.com/linemk/airbatu-shop/internal/lib/logger/handlers/urllog"
	"github.com/linemk/airbatu-shop/internal/live"
	"github.com/linemk/airbatu-shop/internal/pickup"
	"github.com/linemk/airbatu-shop/internal/recommend"
	"github.com/linemk/airbatu-shop/internal/service"
	"github.com/linemk/airbatu-shop/internal/storage"
	"github.com/pkg/errors"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом, подключением к БД и хранилищем корзин
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.Close()

	scheduler, err := pickup.NewScheduler(cfg.Shop)
	if err != nil {
		panic(errors.Wrap(err, "invalid shop hours"))
	}

	// фоновые задачи живут до сигнала остановки
	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	hub := live.NewHub(log)
	go hub.Run(bgCtx)
	application.RunBackground(bgCtx)

	gemini := recommend.NewGeminiClient(
		&http.Client{Timeout: cfg.Recommendation.Timeout},
		cfg.Recommendation.APIKey,
		cfg.Recommendation.BaseURL,
		cfg.Recommendation.Model,
	)
	advisor := recommend.NewAdvisor(log, gemini, cfg.Recommendation.Timeout, scheduler.Now)
	go advisor.Warmup(bgCtx, cfg.Recommendation.WarmupDelay)

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	// реализация слоев по работе с БД по каждому направлению
	productRepo := storage.NewProductRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)

	shop := service.NewShopStatus(cfg.Shop.OpenOnStart)
	catalogService := service.NewCatalogService(log, productRepo, scheduler, shop, cfg.Shop)
	cartService := service.NewCartService(log, application.Carts, productRepo, scheduler, shop)
	checkoutService := service.NewCheckoutService(log, application.DB, application.Carts, productRepo, orderRepo, scheduler, shop, hub, cfg.Shop)
	orderService := service.NewOrderService(log, orderRepo, cfg.Shop)
	staffService := service.NewStaffService(log, service.StaffDeps{
		ProductRepo:  productRepo,
		OrderRepo:    orderRepo,
		Shop:         shop,
		Events:       hub,
		PasscodeHash: []byte(cfg.Staff.PasscodeHash),
		JWTSecret:    cfg.JWT.Secret,
		TokenTTL:     time.Duration(cfg.JWT.TokenTTL) * time.Minute,
		RestockLevel: cfg.Shop.RestockLevel,
	})

	router.Route("/api", func(r chi.Router) {
		// витрина
		r.Get("/shop", handlers.ShopHandler(log, catalogService))
		r.Get("/products", handlers.ProductsHandler(log, catalogService))
		r.Get("/recommendation", handlers.RecommendationHandler(log, advisor))

		// корзина и оформление
		r.Post("/carts", handlers.CreateCartHandler(log, cartService))
		r.Route("/carts/{id}", func(r chi.Router) {
			r.Get("/", handlers.GetCartHandler(log, cartService))
			r.Post("/items", handlers.AddItemHandler(log, cartService))
			r.Patch("/items/{productID}", handlers.UpdateQuantityHandler(log, cartService))
			r.Put("/slot", handlers.SelectSlotHandler(log, cartService))
			r.Put("/customer", handlers.CustomerHandler(log, cartService))
			r.Post("/checkout", handlers.CheckoutHandler(log, checkoutService))
		})

		// отслеживание заказов
		r.Get("/orders", handlers.FindOrdersHandler(log, orderService))
		r.Get("/orders/live", handlers.LiveBoardHandler(log, orderService))
		r.Get("/orders/{id}", handlers.ReceiptHandler(log, orderService))
		r.Handle("/live", hub)

		// панель персонала
		r.Post("/staff/login", handlers.StaffLoginHandler(log, staffService))
		r.Group(func(r chi.Router) {
			r.Use(jwtmiddleware.NewJWTMiddleware(cfg.JWT.Secret, security.StaffSubject))
			r.Get("/staff/orders", handlers.StaffOrdersHandler(log, staffService))
			r.Delete("/staff/orders/closed", handlers.ClearOrdersHandler(log, staffService))
			r.Patch("/staff/orders/{id}", handlers.UpdateOrderStatusHandler(log, staffService))
			r.Patch("/staff/products/{id}/stock", handlers.AdjustStockHandler(log, staffService))
			r.Post("/staff/products/restock", handlers.RestockHandler(log, staffService))
			r.Put("/staff/shop", handlers.ShopStatusHandler(log, staffService))
		})
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	stopBackground()
	log.Info("server gracefully stopped")
}
