package config

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverSQL   = "sql"
	DriverMongo = "mongo"
)

// Config holds application configuration values.
type Config struct {
	Secret   string
	JWTTTL   time.Duration
	HTTPPort string

	StoreDriver  string
	DatabaseDSN  string
	MongoURL     string
	DBName       string
	StoreTimeout time.Duration

	CurrencyTTL time.Duration
	FiatAPIURL  string
	MetalAPIURL string
	RateTimeout time.Duration

	CORSOrigins []string

	SeedCSV       string
	AdminUsername string
	AdminPassword string
}

func defaults(v *viper.Viper) {
	v.SetDefault("SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION_HOURS", 168)
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("STORE_DRIVER", DriverSQL)
	v.SetDefault("DATABASE_DSN", "file:medstock.db")
	v.SetDefault("MONGO_URL", "mongodb://localhost:27017")
	v.SetDefault("DB_NAME", "medstock")
	v.SetDefault("STORE_TIMEOUT", "5s")
	v.SetDefault("CURRENCY_TTL", "1h")
	v.SetDefault("FIAT_API_URL", "https://api.exchangerate-api.com")
	v.SetDefault("METAL_API_URL", "https://api.metalpriceapi.com")
	v.SetDefault("RATE_TIMEOUT", "10s")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("ADMIN_USERNAME", "admin")
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() Config {
	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	cfg := Config{
		Secret:        v.GetString("SECRET"),
		JWTTTL:        time.Duration(v.GetInt("JWT_EXPIRATION_HOURS")) * time.Hour,
		HTTPPort:      v.GetString("HTTP_PORT"),
		StoreDriver:   strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		DatabaseDSN:   v.GetString("DATABASE_DSN"),
		MongoURL:      v.GetString("MONGO_URL"),
		DBName:        v.GetString("DB_NAME"),
		StoreTimeout:  v.GetDuration("STORE_TIMEOUT"),
		CurrencyTTL:   v.GetDuration("CURRENCY_TTL"),
		FiatAPIURL:    v.GetString("FIAT_API_URL"),
		MetalAPIURL:   v.GetString("METAL_API_URL"),
		RateTimeout:   v.GetDuration("RATE_TIMEOUT"),
		CORSOrigins:   splitList(v.GetString("CORS_ORIGINS")),
		SeedCSV:       v.GetString("SEED_CSV"),
		AdminUsername: v.GetString("ADMIN_USERNAME"),
		AdminPassword: v.GetString("ADMIN_PASSWORD"),
	}

	// Validate that port is numeric.
	if _, err := strconv.Atoi(cfg.HTTPPort); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to 8080", cfg.HTTPPort)
		cfg.HTTPPort = "8080"
	}
	if cfg.StoreDriver != DriverSQL && cfg.StoreDriver != DriverMongo {
		log.Printf("unknown STORE_DRIVER %q, defaulting to %s", cfg.StoreDriver, DriverSQL)
		cfg.StoreDriver = DriverSQL
	}
	if cfg.JWTTTL <= 0 {
		cfg.JWTTTL = 168 * time.Hour
	}
	if cfg.Secret == "dev_secret" {
		log.Printf("SECRET not set, using development secret")
	}

	return cfg
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
