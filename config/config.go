package config

import (
	"os"
	"strconv"
)

// Config holds all environment-driven settings. Defaults match local
// development; a .env file is loaded by main before this is read.
type Config struct {
	Port        string
	MongoURI    string
	MongoDBName string
	JWTSecret   string

	RedisAddr     string
	RedisPassword string

	// Per-client daily cap on issue/post creation. Zero disables limiting.
	CreateDailyLimit int
}

func Load() Config {
	return Config{
		Port:             getenv("PORT", "5000"),
		MongoURI:         getenv("MONGODB_URI", "mongodb://localhost:27017/streeteye"),
		MongoDBName:      getenv("MONGODB_DB", "streeteye"),
		JWTSecret:        getenv("JWT_SECRET", "dev_secret_change_me"),
		RedisAddr:        os.Getenv("REDIS_ADDRESS"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		CreateDailyLimit: getint("CREATE_DAILY_LIMIT", 0),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
