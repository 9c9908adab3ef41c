package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"time"

	"krisha-parser-service/internal/constants"

	"github.com/joho/godotenv"
)

// RabbitMQConfig хранит конфигурацию для RabbitMQ. Пустой URL отключает событие для обработки фотографий.
type RabbitMQConfig struct {
	URL                string
	ImageJobRoutingKey string
}

// DBconfig хранит конфигурацию для БД
type DBconfig struct {
	URL string
}

type StdoutLogConfig struct {
	Level string
}

type FileLogConfig struct {
	Dir   string
	Level string
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

// SchedulerConfig - когда запускать обход
type SchedulerConfig struct {
	CronSchedule string
	RunOnStart   bool
}

type HTTPConfig struct {
	Port string
}

// CrawlerConfig - настройки работы с сайтом
type CrawlerConfig struct {
	SearchConfigPath string

	FetchRetries    int
	FetchRetryDelay time.Duration
	FetchTimeout    time.Duration
	AdPause         time.Duration

	BrowserHeadless bool
	BrowserExecPath string
	DetailTimeout   time.Duration
	PopupTimeout    time.Duration

	PhotoCDNBase string
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName      string
	Database     DBconfig
	RabbitMQ     RabbitMQConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
	FileLogger   FileLogConfig
	Scheduler    SchedulerConfig
	HTTP         HTTPConfig
	Crawler      CrawlerConfig
}

// LoadConfig загружает конфигурацию из переменных окружения.
// Файл .env необязателен: если его нет, используются только переменные процесса.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath...)
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not load .env file (path: %v): %w", envPath, err)
		}
		log.Printf("Info: .env file not found (path: %v), using process environment\n", envPath)
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "krisha-parser-service")

	cfg.Database.URL = os.Getenv("DATABASE_URL")
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
	cfg.RabbitMQ.ImageJobRoutingKey = getEnvAsString("IMAGE_JOB_ROUTING_KEY", constants.RoutingKeyImageJob)

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")
	cfg.FileLogger.Dir = getEnvAsString("LOG_DIR", "logs")
	cfg.FileLogger.Level = getEnvAsString("FILE_LOG_LEVEL", "info")

	cfg.Scheduler.CronSchedule = getEnvAsString("CRON_SCHEDULE", "10 0 * * *")
	cfg.Scheduler.RunOnStart = getEnvAsBool("RUN_ON_START", false)

	cfg.HTTP.Port = getEnvAsString("HTTP_PORT", "8080")

	cfg.Crawler.SearchConfigPath = getEnvAsString("SEARCH_CONFIG_PATH", "searchConfig.json")
	cfg.Crawler.FetchRetries = getEnvAsInt("FETCH_RETRIES", constants.DefaultFetchRetries)
	cfg.Crawler.FetchRetryDelay = getEnvAsDuration("FETCH_RETRY_DELAY", constants.DefaultFetchRetryDelay)
	cfg.Crawler.FetchTimeout = getEnvAsDuration("FETCH_TIMEOUT", constants.DefaultFetchTimeout)
	cfg.Crawler.AdPause = getEnvAsDuration("AD_PAUSE", constants.DefaultAdPause)
	cfg.Crawler.BrowserHeadless = getEnvAsBool("BROWSER_HEADLESS", true)
	cfg.Crawler.BrowserExecPath = os.Getenv("BROWSER_EXEC_PATH")
	cfg.Crawler.DetailTimeout = getEnvAsDuration("DETAIL_TIMEOUT", constants.DefaultDetailTimeout)
	cfg.Crawler.PopupTimeout = getEnvAsDuration("POPUP_TIMEOUT", constants.DefaultPopupTimeout)
	cfg.Crawler.PhotoCDNBase = getEnvAsString("PHOTO_CDN_BASE", constants.DefaultPhotoCDNBase)

	return cfg, nil
}

// getEnvAsString читает переменную окружения как строку или возвращает значение по умолчанию
func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt читает переменную окружения как int или возвращает значение по умолчанию.
// Если значение есть, но не разбирается, пишет предупреждение.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

// getEnvAsBool читает переменную окружения как bool или возвращает значение по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

// getEnvAsDuration понимает "3s", "1500ms" и просто число миллисекунд
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	if ms, err := strconv.Atoi(valStr); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	valDuration, err := time.ParseDuration(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as duration: %v. Using default value: %s\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valDuration
}
