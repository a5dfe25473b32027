package main

import (
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/mathwaksu-byte/MathwaV2/config"
	"github.com/mathwaksu-byte/MathwaV2/database"
)

func main() {
	if err := config.LoadENV(); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}

	env, err := config.Get()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	store, err := database.StartGORM(env)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	separator := strings.Repeat("=", 60)
	log.Info(separator)
	log.Info("MATHWA - Database Seeding")
	log.Info(separator)

	if err := database.RunSeeds(store.DB()); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Info("Seeding completed. The admin account comes from ADMIN_EMAIL and ADMIN_PASSWORD; it is skipped when they are unset.")
}
