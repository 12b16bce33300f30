package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/luxebite/luxebite-backend/internal/auth"
	"github.com/luxebite/luxebite-backend/internal/cart"
	"github.com/luxebite/luxebite-backend/internal/config"
	"github.com/luxebite/luxebite-backend/internal/database"
	"github.com/luxebite/luxebite-backend/internal/kvstore"
	"github.com/luxebite/luxebite-backend/internal/logging"
	"github.com/luxebite/luxebite-backend/internal/menu"
	"github.com/luxebite/luxebite-backend/internal/metrics"
	"github.com/luxebite/luxebite-backend/internal/order"
	"github.com/luxebite/luxebite-backend/internal/tracking"
	"github.com/luxebite/luxebite-backend/internal/user"
)

const bodyLimit = 1 << 20

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.IsProduction())
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector()

	store, closeStore := openStore(ctx, cfg, logger)
	defer closeStore()

	db := openDB(cfg, logger)
	if db != nil {
		defer db.Close()
	}

	items, err := menu.DefaultCatalog()
	if err != nil {
		logger.WithError(err).Fatal("load catalog")
	}
	catalog := menu.NewInMemoryRepository(items)
	menuService := menu.NewService(catalog)

	var (
		userRepo  user.Repository
		orderRepo order.Repository
	)
	if db != nil {
		userRepo = user.NewPostgresRepository(db)
		orderRepo = order.NewPostgresRepository(db)
	} else {
		userRepo = user.NewInMemoryRepository(nil)
		orderRepo = order.NewKVRepository(store)
	}
	userService := user.NewService(userRepo)

	cartService := cart.NewService(cart.NewKVRepository(store), menuService)
	cartService.OnItemAdded(func(cartID string, line cart.Line) {
		collector.CartItemAdded()
		logger.WithFields(logrus.Fields{
			"cart_id":  cartID,
			"item_id":  line.ID,
			"quantity": line.Quantity,
		}).Debug("item added to cart")
	})

	orderService := order.NewService(orderRepo, cartService, menuService, collector, logger)
	simulator := tracking.NewSimulator(ctx, orderService, tracking.RealClock{}, cfg.TrackingInterval, collector, logger)

	gate, sessionMiddleware := newGate(cfg, userService, store, logger)
	authHandler := auth.NewHandler(gate, collector, logger)
	if cfg.AuthProvider == "delegated" {
		authHandler.WithEventsSecret(cfg.AuthEventsSecret)
	}

	app := fiber.New(fiber.Config{
		AppName:      "LuxeBite",
		BodyLimit:    bodyLimit,
		Immutable:    true,
		ErrorHandler: errorHandler(logger),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logging.RequestLogger(logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins(),
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Cart-ID",
		ExposeHeaders:    "X-Cart-ID",
		AllowCredentials: cfg.AllowOrigins() != "*",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "LuxeBite API is running"})
	})
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(collector.Handler()))

	for _, mw := range sessionMiddleware {
		app.Use(mw)
	}

	orderHandler := order.NewHandler(orderService)

	menu.NewHandler(menuService).WithOption("paymentMethods", order.PaymentMethods).RegisterPublicRoutes(app)
	cart.NewHandler(cartService).RegisterPublicRoutes(app)
	authHandler.RegisterPublicRoutes(app)
	orderHandler.RegisterPublicRoutes(app)

	app.Use(auth.RequireSession)

	authHandler.RegisterProtectedRoutes(app)
	user.NewHandler(userService).RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)
	tracking.NewHandler(simulator).RegisterProtectedRoutes(app)

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.WithError(err).Error("shutdown")
		}
	}()

	logger.WithFields(logrus.Fields{
		"addr":          cfg.Addr(),
		"env":           cfg.Env,
		"auth_provider": cfg.AuthProvider,
		"postgres":      db != nil,
		"redis":         cfg.RedisAddr != "",
	}).Info("LuxeBite server listening")
	if err := app.Listen(cfg.Addr()); err != nil {
		logger.WithError(err).Error("server stopped")
	}
	simulator.Stop()
}

// openStore uses Redis when REDIS_ADDR is set and an in-process store
// otherwise. Sessions and carts then live only as long as the process.
func openStore(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) (kvstore.Store, func()) {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set, sessions and carts are kept in memory")
		return kvstore.NewMemoryStore(), func() {}
	}

	redisStore := kvstore.NewRedisStore(cfg.RedisAddr)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := redisStore.Ping(pingCtx); err != nil {
		logger.WithError(err).Fatal("connect redis")
	}
	return redisStore, func() {
		if err := redisStore.Close(); err != nil {
			logger.WithError(err).Warn("close redis")
		}
	}
}

func openDB(cfg config.Config, logger logrus.FieldLogger) *sql.DB {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, users are kept in memory and orders in the key-value store")
		return nil
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("connect postgres")
	}
	if err := database.EnsureSchema(db); err != nil {
		logger.WithError(err).Fatal("ensure schema")
	}
	return db
}

// newGate returns the configured auth gate and the middleware that resolves
// its sessions.
func newGate(cfg config.Config, users *user.Service, store kvstore.Store, logger logrus.FieldLogger) (auth.Gate, []fiber.Handler) {
	if cfg.AuthProvider == "delegated" {
		if cfg.AuthProviderURL == "" {
			logger.Fatal("AUTH_PROVIDER=delegated needs AUTH_PROVIDER_URL")
		}
		gate := auth.NewDelegatedGate(cfg.AuthProviderURL, cfg.AuthProviderAPIKey, &http.Client{Timeout: 10 * time.Second})
		return gate, []fiber.Handler{auth.Middleware(gate)}
	}

	secret := cfg.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		logger.Warn("JWT_SECRET not set, sessions will not survive a restart")
	}
	gate := auth.NewLocalGate(users, store, secret)
	return gate, []fiber.Handler{gate.TokenValidator(), auth.Middleware(gate)}
}

func errorHandler(logger logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "internal server error"
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}
		if code >= fiber.StatusInternalServerError {
			logger.WithError(err).WithFields(logrus.Fields{
				"method": c.Method(),
				"path":   c.Path(),
			}).Error("request failed")
		}
		return c.Status(code).JSON(fiber.Map{"message": message})
	}
}
