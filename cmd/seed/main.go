package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"pulsechat/internal/auth"
	"pulsechat/internal/config"
	"pulsechat/internal/database"
	"pulsechat/internal/model"
)

const seedPassword = "123456"

type seedUser struct {
	email    string
	fullName string
	pic      string
}

var seedUsers = []seedUser{
	{"emma.thompson@example.com", "Emma Thompson", "women/1.jpg"},
	{"olivia.miller@example.com", "Olivia Miller", "women/2.jpg"},
	{"sophia.davis@example.com", "Sophia Davis", "women/3.jpg"},
	{"ava.wilson@example.com", "Ava Wilson", "women/4.jpg"},
	{"isabella.brown@example.com", "Isabella Brown", "women/5.jpg"},
	{"james.anderson@example.com", "James Anderson", "men/1.jpg"},
	{"william.clark@example.com", "William Clark", "men/2.jpg"},
	{"benjamin.taylor@example.com", "Benjamin Taylor", "men/3.jpg"},
	{"lucas.moore@example.com", "Lucas Moore", "men/4.jpg"},
	{"henry.jackson@example.com", "Henry Jackson", "men/5.jpg"},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  .env file not found, using default values: %v", err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, err := database.Init(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}
	defer store.Close()

	hash, err := auth.HashPassword(seedPassword)
	if err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}

	created := 0
	for _, s := range seedUsers {
		now := time.Now().UTC().Truncate(time.Millisecond)
		u := &model.User{
			ID:           model.NewID(),
			FullName:     s.fullName,
			Email:        s.email,
			PasswordHash: hash,
			ProfilePic:   "https://randomuser.me/api/portraits/" + s.pic,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		switch err := store.CreateUser(ctx, u); {
		case errors.Is(err, database.ErrDuplicateEmail):
			log.Printf("Skipping %s: already exists", s.email)
		case err != nil:
			log.Fatalf("❌ Failed to seed %s: %v", s.email, err)
		default:
			created++
		}
	}

	fmt.Printf("✅ Database seeded successfully (%d new users)\n", created)
}
