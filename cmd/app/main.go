package main

import (
	"context"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/wichananm65/juice-shop-backend/internal/address"
	"github.com/wichananm65/juice-shop-backend/internal/admin"
	"github.com/wichananm65/juice-shop-backend/internal/auth"
	"github.com/wichananm65/juice-shop-backend/internal/cart"
	"github.com/wichananm65/juice-shop-backend/internal/category"
	"github.com/wichananm65/juice-shop-backend/internal/config"
	"github.com/wichananm65/juice-shop-backend/internal/database"
	"github.com/wichananm65/juice-shop-backend/internal/mail"
	"github.com/wichananm65/juice-shop-backend/internal/media"
	"github.com/wichananm65/juice-shop-backend/internal/order"
	"github.com/wichananm65/juice-shop-backend/internal/product"
	"github.com/wichananm65/juice-shop-backend/internal/ratelimit"
	"github.com/wichananm65/juice-shop-backend/internal/recommended"
	"github.com/wichananm65/juice-shop-backend/internal/review"
	"github.com/wichananm65/juice-shop-backend/internal/user"
	"github.com/wichananm65/juice-shop-backend/internal/wishlist"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	ctx := context.Background()
	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	var (
		revocations auth.Revocations
		authLimit   fiber.Handler
		rdb         *redis.Client
	)
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("connect redis: %v", err)
		}
		revocations = auth.NewRedisRevocations(rdb, "juice:revoked:")
		authLimit = ratelimit.PerIP(ratelimit.NewSlidingWindow(rdb, "juice:ratelimit:", cfg.AuthRateLimit, cfg.AuthRateWindow))
	} else {
		log.Warn("REDIS_ADDR not set, token revocations and rate limits are kept in memory")
		revocations = auth.NewMemoryRevocations()
		authLimit = ratelimit.Local(cfg.AuthRateLimit, cfg.AuthRateWindow)
	}

	var mailer mail.Dispatcher = mail.LogDispatcher{}
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPDispatcher(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	}
	images := media.NewLocalStorage(cfg.UploadDir, cfg.PublicBaseURL)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL, cfg.ResetTokenTTL)

	productRepo := product.NewPostgresRepository(db)
	productService := product.NewService(productRepo)
	cartService := cart.NewService(cart.NewPostgresRepository(db), productService)
	addressService := address.NewService(address.NewPostgresRepository(db))
	orderService := order.NewService(order.NewPostgresRepository(db), addressService, cartService)
	reviewRepo := review.NewPostgresRepository(db)
	reviewService := review.NewService(reviewRepo, productService, orderService, review.NewAggregator(reviewRepo, productService))

	userService := user.NewService(user.NewPostgresRepository(db), tokens, revocations, mailer, cfg.PublicBaseURL+"/reset-password", orderService)
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := userService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatalf("seed admin: %v", err)
		}
	}
	authn := auth.NewGate(tokens.Secret(), revocations, userService).Handler()

	app := fiber.New(fiber.Config{
		AppName:   "juice-shop-backend",
		BodyLimit: 16 * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
	}))

	app.Static("/uploads", cfg.UploadDir)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "connected!"})
	})

	userHandler := user.NewHandler(userService, images)
	userHandler.RegisterPublicRoutes(app, authLimit)
	userHandler.RegisterProtectedRoutes(app, authn)

	// top-rated must be registered ahead of the product detail route
	recommended.NewHandler(recommended.NewService(recommended.NewPostgresRepository(db))).RegisterPublicRoutes(app)
	category.NewHandler(category.NewService(category.NewPostgresRepository(db))).RegisterPublicRoutes(app)

	productHandler := product.NewHandler(productService, images)
	productHandler.RegisterPublicRoutes(app)
	productHandler.RegisterProtectedRoutes(app, authn)

	reviewHandler := review.NewHandler(reviewService, images)
	reviewHandler.RegisterPublicRoutes(app)
	reviewHandler.RegisterProtectedRoutes(app, authn)

	cart.NewHandler(cartService).RegisterProtectedRoutes(app, authn)
	address.NewHandler(addressService).RegisterProtectedRoutes(app, authn)
	order.NewHandler(orderService).RegisterProtectedRoutes(app, authn)
	wishlist.NewHandler(wishlist.NewService(wishlist.NewPostgresRepository(db), productService)).RegisterProtectedRoutes(app, authn)
	admin.NewHandler(admin.NewService(userService, orderService, productService, reviewService)).RegisterProtectedRoutes(app, authn)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Page not found!"})
	})

	go func() {
		log.Infof("listening on %s", cfg.Addr)
		if err := app.Listen(cfg.Addr); err != nil {
			log.Errorf("server stopped: %v", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(ctx, cfg.ShutdownTimeout, map[string]gfshutdown.Operation{
		"http": func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
		"database": func(context.Context) error {
			return db.Close()
		},
		"redis": func(context.Context) error {
			if rdb == nil {
				return nil
			}
			return rdb.Close()
		},
	})
	code := <-wait
	log.Infof("exited with code %d", code)
	os.Exit(code)
}
