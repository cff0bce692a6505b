package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"entangle_backend/internal/repository"
	"entangle_backend/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// One-shot sweep of empty sessions older than the grace period. Meant for a
// cron job; the app runs the same sweep on a ticker.
func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	grace := 2 * time.Minute
	if v := os.Getenv("CLEANUP_GRACE_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			grace = d
		}
	}

	cleanup := service.NewCleanupService(
		repository.NewSessionRepository(db),
		repository.NewSeatRepository(db),
		repository.NewIntentRepository(db),
		grace,
	)
	deleted, err := cleanup.Sweep(context.Background())
	if err != nil {
		log.Fatalf("cleanup failed: %v", err)
	}
	fmt.Printf("deleted %d empty sessions\n", deleted)
}
