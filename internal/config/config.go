package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
)

// Config holds the core runtime configuration.  Each field maps to an
// environment variable; optional concerns (cache, rate limiting, storage,
// queue) have their own loaders in this package.
type Config struct {
	Env          string // application environment (dev, test, prod)
	Port         string // HTTP port to listen on
	DBUser       string
	DBPass       string // may be empty
	DBHost       string
	DBPort       string
	DBName       string
	JWTSecret    string // HMAC secret for access tokens
	AccessTTLMin int    // access token lifetime in minutes
	BcryptCost   int
	Migrate      bool // apply the embedded schema on startup
	SeedUsers    bool // insert the admin and demo accounts when absent
}

// Load reads the core configuration.  Required variables are enforced by
// must() and a missing value stops the process with a fatal log line.
func Load() Config {
	return Config{
		Env:          must("APP_ENV"),
		Port:         must("APP_PORT"),
		DBUser:       must("DB_USER"),
		DBPass:       os.Getenv("DB_PASS"),
		DBHost:       must("DB_HOST"),
		DBPort:       must("DB_PORT"),
		DBName:       must("DB_NAME"),
		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: mustInt("ACCESS_TOKEN_TTL_MIN"),
		BcryptCost:   mustInt("BCRYPT_COST"),
		Migrate:      envBool("DB_MIGRATE", true),
		SeedUsers:    envBool("SEED_USERS", false),
	}
}

// IsProd reports whether the service runs with production settings.
func (c Config) IsProd() bool {
	return c.Env == "prod" || c.Env == "production"
}

// must retrieves the value of a required environment variable.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the value into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
