package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Redis   RedisConfig
	Auth    AuthConfig
	Shopify ShopifyConfig
}

type ServerConfig struct {
	Port       string
	Env        string
	CORSOrigin string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// AuthConfig carries the two token secrets: tokens issued by the LeautoTech
// portal are verified first, then tokens issued by this service itself.
type AuthConfig struct {
	PortalSecret   string
	InternalSecret string
	TokenTTL       time.Duration
}

type ShopifyConfig struct {
	StoreURL    string
	AccessToken string
}

func (c ShopifyConfig) Configured() bool {
	return c.StoreURL != "" && c.AccessToken != ""
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	tokenTTL := 24 * time.Hour
	if v := getEnv("TOKEN_TTL_HOURS", ""); v != "" {
		if hours, err := strconv.Atoi(v); err == nil && hours > 0 {
			tokenTTL = time.Duration(hours) * time.Hour
		}
	}

	return Config{
		Server: ServerConfig{
			Port:       getEnv("PORT", "3000"),
			Env:        getEnv("APP_ENV", "development"),
			CORSOrigin: getEnv("CORS_ORIGIN", "*"),
		},
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "smartshelf"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			PortalSecret:   getEnv("LEAUTOTECH_JWT_SECRET", ""),
			InternalSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:       tokenTTL,
		},
		Shopify: ShopifyConfig{
			StoreURL:    getEnv("SHOPIFY_STORE_URL", ""),
			AccessToken: getEnv("SHOPIFY_ACCESS_TOKEN", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
