// Command consumer runs the reservation audit logger. It consumes the
// lifecycle queues and appends one line per event to the audit log, and
// is deployed separately from the API server.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Luca-HyeongRok/Reservation-Management-API/internal/queue"
)

func main() {
	_ = godotenv.Load() // .env is optional; real environment variables win

	url := os.Getenv("RABBITMQ_URL")
	if url == "" {
		log.Fatal("RABBITMQ_URL is required")
	}
	logPath := os.Getenv("AUDIT_LOG_PATH") // empty picks the default path

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("audit consumer starting")
	if err := queue.NewConsumer(url, logPath).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("consumer: %v", err)
	}
	log.Printf("audit consumer stopped")
}
