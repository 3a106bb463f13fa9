package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/baltgc/gomotel/internal/config"
	"github.com/baltgc/gomotel/internal/database"
	"github.com/baltgc/gomotel/internal/gateway"
	"github.com/baltgc/gomotel/internal/handler"
	"github.com/baltgc/gomotel/internal/jobs"
	"github.com/baltgc/gomotel/internal/queue"
	"github.com/baltgc/gomotel/internal/repository"
	"github.com/baltgc/gomotel/internal/router"
	"github.com/baltgc/gomotel/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil if Redis is unreachable; features degrade

	motels := repository.NewMotelRepo(db)
	rooms := repository.NewRoomRepo(db)
	reservations := repository.NewReservationRepo(db)
	payments := repository.NewPaymentRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	mp := gateway.NewClient(cfg.MPBaseURL, cfg.MPAccessToken, cfg.MPTimeout)
	publisher := queue.NewPublisherFromEnv()

	booking := service.NewBookingService(motels, rooms, reservations, publisher)
	paymentSvc := service.NewPaymentService(payments, reservations, mp, publisher)
	webhooks := service.NewWebhookService(payments, mp, paymentSvc)

	motelHandler := handler.NewMotelHandler(motels)
	h := router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, users, tokens),
		Motels:       motelHandler,
		Rooms:        handler.NewRoomHandler(rooms, motelHandler, booking, cfg.Currency),
		Reservations: handler.NewReservationHandler(booking, motels),
		Payments:     handler.NewPaymentHandler(paymentSvc, booking),
		Webhooks:     handler.NewWebhookHandler(webhooks),
	}

	go func() {
		if err := queue.StartEventConsumer(); err != nil {
			log.Printf("event consumer stopped: %v", err)
		}
	}()

	sweeper := jobs.StartNoShowSweeper(booking)
	defer sweeper.Stop()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, h, cfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
