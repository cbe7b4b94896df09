package config

import (
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

// Store drivers.
const (
	StoreOxiDB  = "oxidb"
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	HTTPAddr   string
	PublicURL  string
	Store      string
	OxiDBHost  string
	OxiDBPort  int
	PoolSize   int
	MongoURI   string
	MongoDB    string
	RedisAddr  string
	JWTSecret  string
	TokenTTL   time.Duration
	AdminEmail string
	AdminPass  string
	AdminKey   string
	GelfAddr   string
	Debug      bool
}

func Load() *Config {
	return &Config{
		HTTPAddr:   getEnv("FORMCRAFT_ADDR", ":8080"),
		PublicURL:  strings.TrimRight(getEnv("FORMCRAFT_PUBLIC_URL", ""), "/"),
		Store:      getEnv("FORMCRAFT_STORE", StoreOxiDB),
		OxiDBHost:  getEnv("OXIDB_HOST", "127.0.0.1"),
		OxiDBPort:  getEnvInt("OXIDB_PORT", 4444),
		PoolSize:   getEnvInt("FORMCRAFT_POOL_SIZE", 3),
		MongoURI:   getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:    getEnv("MONGO_DB", "formcraft"),
		RedisAddr:  getEnv("REDIS_ADDR", ""),
		JWTSecret:  getEnv("FORMCRAFT_JWT_SECRET", "formcraft-dev-secret-change-me"),
		TokenTTL:   getEnvDuration("FORMCRAFT_TOKEN_TTL", 7*24*time.Hour),
		AdminEmail: getEnv("FORMCRAFT_ADMIN_EMAIL", "admin@formcraft.local"),
		AdminPass:  getEnv("FORMCRAFT_ADMIN_PASS", "admin123"),
		AdminKey:   getEnv("FORMCRAFT_ADMIN_KEY", ""),
		GelfAddr:   getEnv("GELF_ADDR", ""),
		Debug:      getEnv("FORMCRAFT_DEBUG", "") == "true",
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n := 0
	for _, c := range v {
		if c < '0' || c > '9' {
			return fallback
		}
		n = n*10 + int(c-'0')
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
