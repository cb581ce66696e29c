package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Host        string
	Port        string
	CORSOrigins string
	Database    DatabaseConfig
	Translation TranslationConfig
	Redis       RedisConfig
	Scraper     ScraperConfig
	Scheduler   SchedulerConfig
	Firebase    FirebaseConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

type TranslationConfig struct {
	DictionaryDir string
	URL           string
	Timeout       time.Duration
	CacheSize     int
	CacheTTL      time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type ScraperConfig struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
	Retries       int
}

type SchedulerConfig struct {
	ConfigFile string
}

type FirebaseConfig struct {
	CredentialsPath string
	ProjectID       string
}

// DSN returns the go-sql-driver/mysql data source name for the configured database.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// ServerDSN is the DSN without a schema, used to create the database on first start.
func (d DatabaseConfig) ServerDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/?charset=utf8mb4&parseTime=True&loc=Local",
		d.User, d.Password, d.Host, d.Port)
}

func (c *Config) ListenAddr() string {
	return c.Host + ":" + c.Port
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Host:        getEnv("HOST", "0.0.0.0"),
		Port:        getEnv("PORT", "1136"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			Name:     getEnv("DB_NAME", "khedutbazaar"),
			User:     getEnv("DB_USER", "root"),
			Password: getEnv("DB_PASSWORD", ""),
		},
		Translation: TranslationConfig{
			DictionaryDir: getEnv("DICTIONARY_DIR", ""),
			URL:           getEnv("TRANSLATE_URL", "https://translate.googleapis.com/translate_a/single"),
			Timeout:       getDuration("TRANSLATE_TIMEOUT", 10*time.Second),
			CacheSize:     getInt("TRANSLATION_CACHE_SIZE", 4096),
			CacheTTL:      getDuration("TRANSLATION_CACHE_TTL", 24*time.Hour),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
		},
		Scraper: ScraperConfig{
			BaseURL:       strings.TrimRight(getEnv("SCRAPER_BASE_URL", "https://agriplus.in"), "/"),
			Timeout:       getDuration("SCRAPER_TIMEOUT", 30*time.Second),
			RatePerSecond: getFloat("SCRAPER_RATE", 0.5),
			Retries:       getInt("SCRAPER_RETRIES", 2),
		},
		Scheduler: SchedulerConfig{
			ConfigFile: getEnv("SCHEDULER_CONFIG", "scraping_config.json"),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS", "firebase.json"),
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("❌ Invalid integer for %s=%q, using %d", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func getFloat(key string, defaultValue float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("❌ Invalid number for %s=%q, using %g", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("❌ Invalid duration for %s=%q, using %s", key, raw, defaultValue)
		return defaultValue
	}
	return v
}
