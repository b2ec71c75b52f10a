package main

import (
	"context"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/craftline/cartengine/api/backend"
	"github.com/craftline/cartengine/api/routes"
	"github.com/craftline/cartengine/pkg/config"
	"github.com/craftline/cartengine/pkg/logger"
	"github.com/craftline/cartengine/pkg/types"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "devserver"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "devserver",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	store := backend.NewStore(seedCatalog()...)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting dev backend")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, store),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "dev backend stopped unexpectedly", err)
		os.Exit(1)
	}
}

func seedCatalog() []types.ProductSummary {
	return []types.ProductSummary{
		{
			ID:             uuid.MustParse("3f1c2f5e-9d50-4c39-8a6a-5b1f0c5f2a01"),
			Title:          "Custom Print Tee",
			UnitPrice:      decimal.NewFromInt(599),
			IsCustomizable: true,
			Sizes:          []string{"S", "M", "L", "XL"},
			Images:         []string{"/uploads/catalog/tee.png"},
		},
		{
			ID:             uuid.MustParse("7a8e6f12-0b3d-4e77-9c44-2d9f8b7e1a02"),
			Title:          "Hand Painted Mug",
			UnitPrice:      decimal.NewFromInt(249),
			IsCustomizable: true,
			Images:         []string{"/uploads/catalog/mug.png"},
		},
		{
			ID:        uuid.MustParse("b25d4c88-6e19-45af-b7d0-84c1f3a9ce03"),
			Title:     "Block Print Tote",
			UnitPrice: decimal.NewFromInt(399),
			Sizes:     []string{"Regular", "Large"},
			Images:    []string{"/uploads/catalog/tote.png"},
		},
		{
			ID:        uuid.MustParse("e90a1d37-44b2-4f6e-a1cb-6f2e8d5b7c04"),
			Title:     "Brass Diya Set",
			UnitPrice: decimal.NewFromInt(999),
			Images:    []string{"/uploads/catalog/diya.png"},
		},
	}
}
