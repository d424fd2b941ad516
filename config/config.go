package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"rfid-logbook/internal/repository"
)

type Config struct {
	HTTPAddr string

	// Blob store
	StoreBackend string // file, pocketbase or postgres
	DataDir      string

	// PocketBase External Server
	PocketBaseURL   string // PocketBase server URL (e.g., http://192.168.100.100:8090)
	PocketBaseToken string // Auth token for API access

	DatabaseURL string

	// Scan bus
	NATSURL      string
	NATSToken    string
	NATSSubject  string
	ScanDebounce time.Duration

	// Telegram Bot
	TelegramBotToken string
	AuthorizedChatID string

	ItemsFile     string
	Catalog       []string
	WorkStartTime string // HH:MM:SS, empty disables on-time/late notices
	ImportTimeout time.Duration
	RateLimit     int
	CORSOrigins   []string
	LogDir        string
	Location      *time.Location
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debugf("godotenv.Load() error: %v", err)
	}

	cfg := &Config{
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		StoreBackend:     getEnv("STORE_BACKEND", repository.BackendFile),
		DataDir:          getEnv("DATA_DIR", "./data"),
		PocketBaseURL:    getEnv("POCKETBASE_URL", "http://127.0.0.1:8090"),
		PocketBaseToken:  os.Getenv("POCKETBASE_TOKEN"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		NATSURL:          os.Getenv("NATS_URL"),
		NATSToken:        os.Getenv("NATS_TOKEN"),
		NATSSubject:      getEnv("NATS_SUBJECT", "rfid.scans"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		AuthorizedChatID: os.Getenv("AUTHORIZED_CHAT_ID"),
		ItemsFile:        os.Getenv("ITEMS_FILE"),
		LogDir:           os.Getenv("LOG_DIR"),
		WorkStartTime:    os.Getenv("WORK_START_TIME"),
	}

	var err error
	if cfg.ImportTimeout, err = getDuration("IMPORT_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.ScanDebounce, err = getDuration("SCAN_DEBOUNCE", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = getInt("RATE_LIMIT", 120); err != nil {
		return nil, err
	}

	for _, origin := range strings.Split(getEnv("CORS_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	if cfg.WorkStartTime != "" {
		if _, err := time.Parse("15:04:05", cfg.WorkStartTime); err != nil {
			return nil, fmt.Errorf("invalid WORK_START_TIME: %w", err)
		}
	}

	switch cfg.StoreBackend {
	case repository.BackendFile, repository.BackendPocketBase:
	case repository.BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	cfg.Location = time.Local
	if tz := os.Getenv("TIMEZONE"); tz != "" {
		if cfg.Location, err = time.LoadLocation(tz); err != nil {
			return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
		}
	}

	if cfg.Catalog, err = LoadCatalog(cfg.ItemsFile); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
