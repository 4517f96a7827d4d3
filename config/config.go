package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultUserAgent is a desktop Chrome string; some sites refuse requests from obvious bots.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

type Settings struct {
	Server  ServerConfig
	Crawler CrawlerConfig
	Images  ImagesConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port            string
	Mode            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type CrawlerConfig struct {
	Backend             string
	UserAgent           string
	Timeout             time.Duration
	MaxBodyBytes        int64
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
	TLSHandshakeTimeout time.Duration
	Debug               bool
}

// ImagesConfig bounds the max_images value accepted from the form and the API.
type ImagesConfig struct {
	Default int
	Min     int
	Max     int
}

type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxAgeDays int
	MaxBackups int
	Compress   bool
}

func Load() *Settings {
	return &Settings{
		Server: ServerConfig{
			Port:            getEnv("PORT", "5000"),
			Mode:            getEnv("GIN_MODE", "release"),
			ReadTimeout:     getDurationEnv("READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Crawler: CrawlerConfig{
			Backend:             getEnv("CRAWLER_BACKEND", "http"),
			UserAgent:           getEnv("USER_AGENT", DefaultUserAgent),
			Timeout:             getDurationEnv("CRAWLER_TIMEOUT", 10*time.Second),
			MaxBodyBytes:        getInt64Env("MAX_BODY_BYTES", 10<<20),
			MaxIdleConns:        getIntEnv("MAX_IDLE_CONNS", 100),
			MaxIdleConnsPerHost: getIntEnv("MAX_IDLE_CONNS_PER_HOST", 10),
			IdleConnTimeout:     getDurationEnv("IDLE_CONN_TIMEOUT", 30*time.Second),
			TLSHandshakeTimeout: getDurationEnv("TLS_HANDSHAKE_TIMEOUT", 10*time.Second),
			Debug:               getBoolEnv("COLLY_DEBUG", false),
		},
		Images: ImagesConfig{
			Default: getIntEnv("DEFAULT_MAX_IMAGES", 20),
			Min:     getIntEnv("MIN_MAX_IMAGES", 1),
			Max:     getIntEnv("MAX_MAX_IMAGES", 100),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  getIntEnv("LOG_MAX_SIZE_MB", 100),
			MaxAgeDays: getIntEnv("LOG_MAX_AGE_DAYS", 28),
			MaxBackups: getIntEnv("LOG_MAX_BACKUPS", 5),
			Compress:   getBoolEnv("LOG_COMPRESS", true),
		},
	}
}

// LoadDotEnv reads the given .env files (".env" when none are given) into the
// process environment. Variables that are already set win. Missing files are
// not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
