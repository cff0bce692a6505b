package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"entangle_backend/internal/domain"
	"entangle_backend/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// Seeds an even split of male/female test profiles for local play.
func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	count := flag.Int("count", 10, "number of test profiles to create")
	flag.Parse()

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	profiles := repository.NewProfileRepository(db)
	for i := 0; i < *count; i++ {
		gender := domain.GenderMale
		if i%2 == 1 {
			gender = domain.GenderFemale
		}
		p := &domain.Profile{
			DisplayName: fmt.Sprintf("test_%s_%02d", gender, i+1),
			Gender:      gender,
		}
		if err := profiles.Create(context.Background(), p); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				continue
			}
			log.Fatalf("create profile: %v", err)
		}
		fmt.Printf("created profile id=%d name=%s\n", p.ID, p.DisplayName)
	}
}
