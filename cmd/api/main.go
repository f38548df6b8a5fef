package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/events"
	"storefront/internal/gateway/asset"
	"storefront/internal/gateway/mail"
	"storefront/internal/gateway/payment"
	"storefront/internal/httpserver"
	"storefront/internal/metrics"
	cartrepo "storefront/internal/repository/cart"
	categoryrepo "storefront/internal/repository/category"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	tokenrepo "storefront/internal/repository/token"
	userrepo "storefront/internal/repository/user"
	wishlistrepo "storefront/internal/repository/wishlist"
	cartsvc "storefront/internal/service/cart"
	catalogsvc "storefront/internal/service/catalog"
	ordersvc "storefront/internal/service/order"
	usersvc "storefront/internal/service/user"
	wishlistsvc "storefront/internal/service/wishlist"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	var products productrepo.Repository = productrepo.NewPostgres(dbpool, logger)
	if cfg.Redis.Enabled() {
		rdb := cache.NewRedisClient(cfg.Redis)
		defer rdb.Close()
		products = productrepo.NewCached(products, cache.NewProductCache(rdb, cfg.Redis.TTL, logger), logger)
		logger.Printf("product cache enabled addr=%s", cfg.Redis.Addr)
	}

	var mailer mail.Mailer = mail.NewLogMailer(logger)
	if cfg.SMTP.Enabled() {
		mailer = mail.NewSMTPMailer(cfg.SMTP, cfg.GatewayTimeout)
	} else {
		logger.Printf("SMTP_HOST not set, emails are logged only")
	}

	var assets asset.Store = asset.Unconfigured{}
	if cfg.Cloudinary.Enabled() {
		store, err := asset.NewCloudinary(cfg.Cloudinary, cfg.GatewayTimeout)
		if err != nil {
			logger.Fatalf("init cloudinary: %v", err)
		}
		assets = store
	} else {
		logger.Printf("cloudinary not configured, uploads are rejected")
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.Kafka.Enabled() {
		publisher = events.NewKafkaPublisher(cfg.Kafka)
		logger.Printf("order events enabled topic=%s", cfg.Kafka.OrderTopic)
	}
	defer publisher.Close()

	users := userrepo.NewPostgres(dbpool, logger)
	carts := cartrepo.NewPostgres(dbpool, logger)
	tokens := usersvc.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	userService := usersvc.New(users, tokenrepo.NewPostgres(dbpool), tokens, mailer, cfg.PublicBaseURL, logger)
	catalogService := catalogsvc.New(products, categoryrepo.NewPostgres(dbpool), assets, logger)
	cartService := cartsvc.New(carts)
	orderService := ordersvc.New(
		orderrepo.NewPostgres(dbpool, logger),
		carts,
		users,
		payment.NewRazorpay(cfg.Razorpay, cfg.GatewayTimeout),
		mailer,
		publisher,
		ordersvc.Options{Currency: cfg.Currency, NotifyTimeout: cfg.GatewayTimeout},
		logger,
	)
	wishlistService := wishlistsvc.New(wishlistrepo.NewPostgres(dbpool))

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Users:       userService,
		Tokens:      tokens,
		Catalog:     catalogService,
		Carts:       cartService,
		Orders:      orderService,
		Wishlist:    wishlistService,
		Metrics:     metrics.New("api"),
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
