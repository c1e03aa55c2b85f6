package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/rideloop/carpool/internal/config"
	"github.com/rideloop/carpool/internal/database"
	"github.com/rideloop/carpool/internal/handler"
	"github.com/rideloop/carpool/internal/queue"
	"github.com/rideloop/carpool/internal/repository"
	"github.com/rideloop/carpool/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: with a nil client the cache and rate limiter
	// degrade to pass-through.
	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	drivers := repository.NewDriverRepo(db)
	passengers := repository.NewPassengerRepo(db)
	vehicles := repository.NewVehicleRepo(db)
	trips := repository.NewTripRepo(db)
	requests := repository.NewTripRequestRepo(db)

	authH := handler.NewAuthHandler(cfg, users, tokens, drivers, passengers)
	vehicleH := handler.NewVehicleHandler(users, drivers, vehicles)
	driverH := handler.NewDriverHandler(trips, requests, drivers)
	requestH := handler.NewRequestHandler(trips, requests)
	passengerH := handler.NewPassengerHandler(trips, requests, passengers)

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, passengerH, rdb)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterDriver(e, vehicleH, driverH, requestH, cfg.JWTSecret, rdb)
	router.RegisterPassenger(e, passengerH, cfg.JWTSecret, rdb)

	go func() {
		if err := queue.StartSeatConsumer(); err != nil {
			log.Printf("seat-consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
