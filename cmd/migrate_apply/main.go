package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"creatememe/internal/db"
	"creatememe/internal/logger"
	"creatememe/internal/migrations"
)

func main() {
	apply := flag.Bool("apply", false, "apply pending migrations instead of listing them")
	flag.Parse()

	logger.Init(os.Getenv("LOG_LEVEL"), false)

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}

	ctx := context.Background()
	pool := db.Connect(ctx, dsn)
	defer pool.Close()

	if !*apply {
		pending, err := db.Pending(ctx, pool, migrations.FS)
		if err != nil {
			logger.Fatal("list pending migrations", "error", err)
		}
		if len(pending) == 0 {
			fmt.Println("schema is up to date")
			return
		}
		for _, name := range pending {
			fmt.Println(name)
		}
		return
	}

	applied, err := db.Migrate(ctx, pool, migrations.FS)
	if err != nil {
		logger.Fatal("migration failed", "error", err)
	}
	fmt.Printf("applied %d migration(s)\n", len(applied))
}
