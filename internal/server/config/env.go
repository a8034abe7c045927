package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables, loading a .env
// file first if one is present in the working directory. Unset variables
// leave the current values untouched.
//
// Recognized variables: ADDRESS, DATABASE_DSN, MONGO_URI, MONGO_DB,
// SESSION_SECRET, BCRYPT_COST.
func parseEnv(config *Config) {
	_ = godotenv.Load() // no .env file is fine

	if v := os.Getenv("ADDRESS"); v != "" {
		config.EndpointAddr = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("MONGO_URI"); v != "" {
		config.MongoURI = v
	}
	if v := os.Getenv("MONGO_DB"); v != "" {
		config.MongoDatabase = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		config.SessionSecret = v
	}
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		if cost, err := strconv.Atoi(v); err == nil {
			config.BcryptCost = cost
		}
	}
}
