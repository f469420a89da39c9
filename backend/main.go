package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"medstock/m/internal/api"
	"medstock/m/internal/auth"
	"medstock/m/internal/config"
	"medstock/m/internal/currency"
	"medstock/m/internal/database"
	"medstock/m/internal/migrations"
	"medstock/m/internal/seed"
	"medstock/m/internal/store"
	"medstock/m/internal/store/mongostore"
	"medstock/m/internal/store/sqlstore"
)

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	if cfg.StoreDriver == config.DriverMongo {
		return mongostore.Open(ctx, cfg.MongoURL, cfg.DBName, cfg.StoreTimeout)
	}
	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return sqlstore.New(db, cfg.StoreTimeout), nil
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx := context.Background()

	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("store error: %v", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = st.Close(closeCtx)
	}()

	seed.EnsureAdmin(ctx, st, cfg.AdminUsername, cfg.AdminPassword)
	if cfg.SeedCSV != "" {
		seed.LoadProducts(ctx, st, cfg.SeedCSV)
	}

	rates := currency.NewService(currency.NewCache(), currency.Options{
		FiatURL:  cfg.FiatAPIURL,
		MetalURL: cfg.MetalAPIURL,
		TTL:      cfg.CurrencyTTL,
		Timeout:  cfg.RateTimeout,
	})
	handler := api.New(st, auth.NewTokens(cfg.Secret, cfg.JWTTTL), rates, cfg.CORSOrigins)

	log.Printf("medstock server starting on :%s (store: %s)", cfg.HTTPPort, cfg.StoreDriver)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler.Router()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
