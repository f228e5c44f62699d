// internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ============================================
// КОНФИГУРАЦИЯ БАЗЫ ДАННЫХ
// ============================================

// DatabaseConfig - конфигурация PostgreSQL (архив сабмитов и сессии)
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string

	// Включение/отключение БД (бот работает и без архива)
	Enabled bool

	// Настройки пула соединений
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig конфигурация Redis (хранилище сессий)
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int

	Enabled bool

	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// TelegramConfig конфигурация Telegram
type TelegramConfig struct {
	BotToken    string
	Enabled     bool
	PollTimeout int // секунды long-polling
}

// NotionConfig конфигурация Notion API
type NotionConfig struct {
	APIBaseURL   string
	APIVersion   string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthorizeURL string
}

// JournalConfig настройки журнала трейдов
type JournalConfig struct {
	HistoryLimit int           // сколько трейдов держим в локальной истории
	FetchDelay   time.Duration // пауза перед запросом вычисленных полей
	StoreBackend string        // memory | redis | postgres
}

// WebConfig настройки веб-сервера (OAuth callback)
type WebConfig struct {
	Port    int
	Enabled bool
}

// Config общая конфигурация приложения
type Config struct {
	Environment string
	Version     string

	LogPath  string
	LogLevel string
	Debug    bool

	Telegram TelegramConfig
	Notion   NotionConfig
	Journal  JournalConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Web      WebConfig
}

// LoadConfig загружает конфигурацию из .env и переменных окружения
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil {
		fmt.Printf("⚠️  Config file not found, using environment variables\n")
	}

	cfg := &Config{}

	// ======================
	// ОСНОВНЫЕ НАСТРОЙКИ
	// ======================
	cfg.Environment = getEnv("ENVIRONMENT", "production")
	cfg.Version = getEnv("VERSION", "1.0.0")
	cfg.LogPath = getEnv("LOG_PATH", "logs/bot.log")
	cfg.LogLevel = getEnv("LOG_LEVEL", "INFO")
	cfg.Debug = getEnvBool("DEBUG", false)

	// ======================
	// TELEGRAM
	// ======================
	cfg.Telegram.BotToken = getEnv("TELEGRAM_BOT_TOKEN", "")
	cfg.Telegram.Enabled = getEnvBool("TELEGRAM_ENABLED", true)
	cfg.Telegram.PollTimeout = getEnvInt("TELEGRAM_POLL_TIMEOUT", 30)

	// ======================
	// NOTION
	// ======================
	cfg.Notion.APIBaseURL = getEnv("NOTION_API_BASE_URL", "https://api.notion.com")
	cfg.Notion.APIVersion = getEnv("NOTION_API_VERSION", "2022-06-28")
	cfg.Notion.ClientID = getEnv("NOTION_CLIENT_ID", "")
	cfg.Notion.ClientSecret = getEnv("NOTION_CLIENT_SECRET", "")
	cfg.Notion.RedirectURI = getEnv("NOTION_REDIRECT_URI", "")
	cfg.Notion.AuthorizeURL = getEnv("NOTION_AUTHORIZE_URL", "https://api.notion.com/v1/oauth/authorize")

	// ======================
	// ЖУРНАЛ
	// ======================
	cfg.Journal.HistoryLimit = getEnvInt("JOURNAL_HISTORY_LIMIT", 5)
	cfg.Journal.FetchDelay = getEnvDuration("JOURNAL_FETCH_DELAY", 5*time.Second)
	cfg.Journal.StoreBackend = getEnv("JOURNAL_STORE_BACKEND", "memory")

	// ======================
	// БАЗА ДАННЫХ
	// ======================
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "")
	cfg.Database.Password = getEnv("DB_PASSWORD", "")
	cfg.Database.Name = getEnv("DB_NAME", "")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 25)
	cfg.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 10)
	cfg.Database.MaxConnLifetime = getEnvDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute)
	cfg.Database.MaxConnIdleTime = getEnvDuration("DB_MAX_CONN_IDLE_TIME", 10*time.Minute)
	cfg.Database.Enabled = getEnvBool("DB_ENABLED", false)

	// ======================
	// REDIS
	// ======================
	cfg.Redis.Host = getEnv("REDIS_HOST", "localhost")
	cfg.Redis.Port = getEnvInt("REDIS_PORT", 6379)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)
	cfg.Redis.PoolSize = getEnvInt("REDIS_POOL_SIZE", 10)
	cfg.Redis.MinIdleConns = getEnvInt("REDIS_MIN_IDLE_CONNS", 5)
	cfg.Redis.DialTimeout = getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
	cfg.Redis.ReadTimeout = getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second)
	cfg.Redis.WriteTimeout = getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second)
	cfg.Redis.Enabled = getEnvBool("REDIS_ENABLED", false)

	// ======================
	// ВЕБ-СЕРВЕР
	// ======================
	cfg.Web.Port = getEnvInt("WEB_PORT", 5000)
	cfg.Web.Enabled = getEnvBool("WEB_ENABLED", true)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate проверяет обязательные параметры
func (c *Config) validate() error {
	if c.Telegram.Enabled && c.Telegram.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN не задан")
	}
	if c.Web.Enabled {
		if c.Notion.ClientID == "" || c.Notion.ClientSecret == "" {
			return fmt.Errorf("NOTION_CLIENT_ID/NOTION_CLIENT_SECRET не заданы")
		}
		if c.Notion.RedirectURI == "" {
			return fmt.Errorf("NOTION_REDIRECT_URI не задан")
		}
	}
	switch c.Journal.StoreBackend {
	case "memory", "redis", "postgres":
	default:
		return fmt.Errorf("неизвестный JOURNAL_STORE_BACKEND: %s", c.Journal.StoreBackend)
	}
	if c.Journal.StoreBackend == "redis" && !c.Redis.Enabled {
		return fmt.Errorf("JOURNAL_STORE_BACKEND=redis требует REDIS_ENABLED=true")
	}
	if c.Journal.StoreBackend == "postgres" && !c.Database.Enabled {
		return fmt.Errorf("JOURNAL_STORE_BACKEND=postgres требует DB_ENABLED=true")
	}
	if c.Journal.HistoryLimit <= 0 {
		c.Journal.HistoryLimit = 5
	}
	return nil
}

// GetPostgresDSN возвращает строку подключения к PostgreSQL
func (c *Config) GetPostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User,
		c.Database.Password, c.Database.Name, c.Database.SSLMode)
}

// GetRedisAddr возвращает адрес Redis
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// Вспомогательные функции чтения окружения

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
