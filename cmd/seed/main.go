package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mytheresa/go-catalog-analytics/app/config"
	"github.com/mytheresa/go-catalog-analytics/app/database"
	"github.com/mytheresa/go-catalog-analytics/app/logging"
	"github.com/mytheresa/go-catalog-analytics/app/seed"
	"github.com/mytheresa/go-catalog-analytics/models"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code once every deferred close has run.
func run() int {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	log, closer, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer closer.Close()

	ctx := context.Background()
	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Error("failed to open database", "error", err)
		return 1
	}
	defer database.Close(db)

	if err := database.Migrate(ctx, db); err != nil {
		log.Error("failed to migrate", "error", err)
		return 1
	}

	result, err := seed.Run(ctx, db, log)
	if err != nil {
		log.Error("failed to seed catalog", "error", err)
		return 1
	}

	categories, err := models.NewCategoriesRepository(db).GetAllCategories(ctx)
	if err != nil {
		log.Error("failed to list categories", "error", err)
		return 1
	}
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}

	log.Info("catalog seeded",
		"categories_created", result.CategoriesCreated,
		"products_created", result.ProductsCreated,
		"categories", names,
	)
	return 0
}
