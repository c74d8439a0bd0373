package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-seat-booking/internal/config"
	"github.com/iliyamo/movie-seat-booking/internal/database"
	"github.com/iliyamo/movie-seat-booking/internal/handler"
	"github.com/iliyamo/movie-seat-booking/internal/queue"
	"github.com/iliyamo/movie-seat-booking/internal/repository"
	"github.com/iliyamo/movie-seat-booking/internal/router"
	"github.com/iliyamo/movie-seat-booking/internal/service"
	"github.com/iliyamo/movie-seat-booking/internal/worker"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and response caching disabled")
	}

	store := repository.NewStore(db)
	showRepo := repository.NewShowRepo(db)
	seatRepo := repository.NewSeatRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	waitlistRepo := repository.NewWaitlistRepo(db)

	publisher := queue.NewPublisher(cfg.AMQPURL)
	waitlistSvc := service.NewWaitlistService(store, showRepo, waitlistRepo, publisher, cfg.NotifyTTL)
	bookingSvc := service.NewBookingService(store, showRepo, seatRepo, bookingRepo, waitlistRepo, waitlistSvc, publisher)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go queue.StartConsumer(cfg.AMQPURL)
	go worker.NewReclaimer(waitlistRepo, waitlistSvc, cfg.ReclaimInterval).Run(ctx)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterPublic(e,
		handler.NewSeatHandler(showRepo, seatRepo),
		handler.NewArrangementHandler(showRepo, seatRepo),
		rdb,
	)
	router.RegisterCustomer(e,
		handler.NewBookingHandler(bookingRepo, bookingSvc),
		handler.NewWaitlistHandler(waitlistSvc),
		cfg.JWTSecret,
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	go func() {
		<-ctx.Done()
		_ = e.Shutdown(context.Background())
	}()
	if err := e.Start(addr); err != nil {
		log.Printf("server stopped: %v", err)
	}
}
