package main // Entry point package

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Luca-HyeongRok/Reservation-Management-API/internal/clock"
	"github.com/Luca-HyeongRok/Reservation-Management-API/internal/config"
	"github.com/Luca-HyeongRok/Reservation-Management-API/internal/database"
	"github.com/Luca-HyeongRok/Reservation-Management-API/internal/handler"
	appmw "github.com/Luca-HyeongRok/Reservation-Management-API/internal/middleware"
	"github.com/Luca-HyeongRok/Reservation-Management-API/internal/queue"
	"github.com/Luca-HyeongRok/Reservation-Management-API/internal/repository"
	"github.com/Luca-HyeongRok/Reservation-Management-API/internal/router"
	"github.com/Luca-HyeongRok/Reservation-Management-API/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real environment variables win

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	schemaCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = database.EnsureSchema(schemaCtx, db)
	cancel()
	if err != nil {
		log.Fatalf("schema: %v", err)
	}

	repo := repository.NewReservationRepo(db)

	// Event publishing stays off unless a broker URL is configured.
	var events service.EventPublisher
	if p := queue.NewPublisher(cfg.RabbitMQURL); p != nil {
		events = p
		log.Printf("event publishing enabled")
	}

	svc := service.NewReservationService(repo, clock.NewSystem(), events)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	// Redis is optional; without it the API runs unlimited and uncached.
	var apiMW []echo.MiddlewareFunc
	if rdb := config.NewRedisClient(); rdb != nil {
		apiMW = append(apiMW,
			appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
			appmw.NewRedisCache(config.LoadCacheConfig(), rdb),
		)
		log.Printf("redis connected: rate limiting and response cache enabled")
	} else {
		log.Printf("redis unavailable: rate limiting and response cache disabled")
	}

	router.RegisterRoutes(e)
	router.RegisterReservations(e, handler.NewReservationHandler(svc), apiMW...)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
