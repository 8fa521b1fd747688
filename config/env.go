package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverMemory    = "memory"
	DriverMongo     = "mongo"
	DriverFirestore = "firestore"
)

// AppConfig holds every setting the server reads from the environment.
type AppConfig struct {
	Port             string
	Env              string
	StoreDriver      string
	MongoMode        string
	MongoURI         string
	MongoDatabase    string
	FirestoreProject string
	PasetoSecretKey  []byte
	TokenTTL         time.Duration
	CloudinaryURL    string
	GeminiAPIKey     string
	GeminiModel      string
	GoogleClientID   string
	CatalogPath      string
	CartDir          string
	AllowedOrigins   []string
	PollInterval     time.Duration
}

// Production reports whether detailed errors must be hidden from clients.
func (c *AppConfig) Production() bool {
	return c.Env == "production"
}

// Load reads a .env file when present, then the environment.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &AppConfig{
		Port:             getEnv("PORT", "5000"),
		Env:              getEnv("ENVIRONMENT", "development"),
		StoreDriver:      strings.ToLower(getEnv("STORE_DRIVER", DriverMemory)),
		MongoMode:        getEnv("MONGO_MODE", "local"),
		MongoDatabase:    getEnv("MONGO_DATABASE", "shaaban_furniture"),
		FirestoreProject: getEnv("FIRESTORE_PROJECT_ID", ""),
		CloudinaryURL:    getEnv("CLOUDINARY_URL", ""),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GoogleClientID:   getEnv("GOOGLE_CLIENT_ID", ""),
		CatalogPath:      getEnv("CATALOG_PATH", ""),
		CartDir:          getEnv("CART_DIR", "data/carts"),
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
	}

	switch cfg.StoreDriver {
	case DriverMemory:
	case DriverMongo:
		if cfg.MongoMode == "atlas" {
			cfg.MongoURI = getEnv("MONGO_URI_ATLAS", "")
			if cfg.MongoURI == "" {
				return nil, fmt.Errorf("MONGO_MODE 'atlas' but MONGO_URI_ATLAS is not set")
			}
		} else {
			cfg.MongoURI = getEnv("MONGO_URI_LOCAL", "mongodb://localhost:27017")
		}
	case DriverFirestore:
		if cfg.FirestoreProject == "" {
			return nil, fmt.Errorf("STORE_DRIVER 'firestore' but FIRESTORE_PROJECT_ID is not set")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	key := getEnv("PASETO_SECRET_KEY", "")
	if len(key) != 32 {
		return nil, fmt.Errorf("PASETO_SECRET_KEY must be 32 characters long")
	}
	cfg.PasetoSecretKey = []byte(key)

	var err error
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.PollInterval, err = getDuration("POLL_INTERVAL", 2*time.Second); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, raw)
	}
	return d, nil
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
