package main // Entry point package

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/config"
	"github.com/iliyamo/restaurant-table-reservation/internal/database"
	"github.com/iliyamo/restaurant-table-reservation/internal/engine"
	"github.com/iliyamo/restaurant-table-reservation/internal/handler"
	"github.com/iliyamo/restaurant-table-reservation/internal/middleware"
	"github.com/iliyamo/restaurant-table-reservation/internal/queue"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
	"github.com/iliyamo/restaurant-table-reservation/internal/router"
	queue_publisher "github.com/iliyamo/restaurant-table-reservation/internal/service"
)

func main() {
	// A .env file is optional; real deployments inject the environment.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client turns rate limiting and response
	// caching into no-ops.
	rdb := config.NewRedisClient()

	store := repository.NewStore(db)
	eng := engine.New(store,
		engine.WithNotifier(queue_publisher.NewNotifier()),
		engine.WithOfferTTL(time.Duration(cfg.OfferTTLMin)*time.Minute),
	)
	defer eng.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	restaurants := repository.NewRestaurantRepo(db)
	tables := repository.NewTableRepo(db)
	hours := repository.NewHoursRepo(db)
	bookings := repository.NewBookingRepo(db)
	waitlist := repository.NewWaitlistRepo(db)

	auth := handler.NewAuthHandler(cfg, users, tokens)
	owner := handler.NewOwnerHandler(restaurants, tables, hours, bookings, waitlist)
	owner.Promoter = eng
	booking := handler.NewBookingHandler(eng, restaurants, bookings, waitlist)

	// Consume booking and waitlist events into the audit log.  The
	// consumer reconnects on its own; a fatal setup error only kills
	// the goroutine, never the API.
	go func() {
		if err := queue.StartEventConsumer(); err != nil {
			log.Printf("event consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth, cfg.JWTSecret)
	router.RegisterOwner(e, owner, booking, cfg.JWTSecret)
	router.RegisterCustomer(e, booking, cfg.JWTSecret)
	router.RegisterPublic(e, booking, limiter, cache)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
