package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/parkwell/parking-backend/internal/config"
	"github.com/parkwell/parking-backend/internal/database"
	"github.com/parkwell/parking-backend/internal/handler"
	"github.com/parkwell/parking-backend/internal/queue"
	"github.com/parkwell/parking-backend/internal/repository"
	"github.com/parkwell/parking-backend/internal/router"
	"github.com/parkwell/parking-backend/internal/service"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("database: %v", err)
	}
	cancel()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, rate limiting and caching disabled")
	}

	users := repository.NewUserRepo(db)
	lots := repository.NewLotRepo(db)
	spots := repository.NewSpotRepo(db)
	bookings := repository.NewBookingRepo(db)
	billings := repository.NewBillingRepo(db)

	engine := service.NewBookingEngine(spots, users, bookings, queue.NewPublisher())

	// Background consumer appends billing events to logs/billing.log.
	// It reconnects on its own; a dead broker never blocks the API.
	go func() {
		if err := queue.StartBillingConsumer(); err != nil {
			log.Printf("billing consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Deps{
		Cfg:     cfg,
		Redis:   rdb,
		Auth:    handler.NewAuthHandler(cfg, users),
		Booking: handler.NewBookingHandler(engine, users, bookings, billings),
		Admin:   handler.NewAdminHandler(lots, spots, users, billings),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
