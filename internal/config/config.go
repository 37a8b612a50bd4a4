// internal/config/config.go
package config

import (
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Store    StoreConfig
	Storage  StorageConfig
	Pipeline PipelineConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// StoreConfig configures the Redis-backed daily data point store.
type StoreConfig struct {
	Enabled       bool
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
}

// StorageConfig configures the optional S3-compatible mirror for model
// artifacts and output tables.
type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// PipelineConfig carries every path and tuning knob the pipeline stages need.
// Components receive this (or a field of it) explicitly; nothing reads paths
// from process-wide state.
type PipelineConfig struct {
	HistoryCSV  string
	ModelPath   string
	ForecastCSV string
	AlertCSV    string

	Holdout             int
	EvalHorizon         int
	ForecastSteps       int
	ThresholdMultiplier float64

	GridMaxP int
	GridMaxD int
	GridMaxQ int
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "release")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 15)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})

		viper.SetDefault("DB_ENABLED", false)
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "stockcast")
		viper.SetDefault("DB_SSLMODE", "disable")

		viper.SetDefault("STORE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("STORE_KEY_PREFIX", "stockcast:datapoint")

		viper.SetDefault("STORAGE_ENABLED", false)
		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_ACCESS_KEY", "")
		viper.SetDefault("STORAGE_SECRET_KEY", "")
		viper.SetDefault("STORAGE_BUCKET", "stockcast")
		viper.SetDefault("STORAGE_REGION", "us-east-1")
		viper.SetDefault("STORAGE_USE_SSL", true)

		viper.SetDefault("PIPELINE_HISTORY_CSV", filepath.Join("data", "processed", "cleaned_sales_data.csv"))
		viper.SetDefault("PIPELINE_MODEL_PATH", filepath.Join("model", "sales_forecast.json"))
		viper.SetDefault("PIPELINE_FORECAST_CSV", filepath.Join("data", "processed", "forecasted_sales.csv"))
		viper.SetDefault("PIPELINE_ALERT_CSV", filepath.Join("data", "processed", "inventory_alerts.csv"))
		viper.SetDefault("PIPELINE_HOLDOUT_DAYS", 30)
		viper.SetDefault("PIPELINE_EVAL_HORIZON", 7)
		viper.SetDefault("PIPELINE_FORECAST_STEPS", 7)
		viper.SetDefault("PIPELINE_THRESHOLD_MULTIPLIER", 1.5)
		viper.SetDefault("PIPELINE_GRID_MAX_P", 5)
		viper.SetDefault("PIPELINE_GRID_MAX_D", 2)
		viper.SetDefault("PIPELINE_GRID_MAX_Q", 2)

		viper.AutomaticEnv()

		ensureDir(filepath.Dir(viper.GetString("PIPELINE_MODEL_PATH")))
		ensureDir(filepath.Dir(viper.GetString("PIPELINE_FORECAST_CSV")))

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Enabled:  viper.GetBool("DB_ENABLED"),
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Store: StoreConfig{
				Enabled:       viper.GetBool("STORE_ENABLED"),
				RedisURL:      viper.GetString("REDIS_URL"),
				RedisHost:     viper.GetString("REDIS_HOST"),
				RedisPort:     viper.GetString("REDIS_PORT"),
				RedisPassword: viper.GetString("REDIS_PASSWORD"),
				RedisDB:       viper.GetInt("REDIS_DB"),
				KeyPrefix:     viper.GetString("STORE_KEY_PREFIX"),
			},
			Storage: StorageConfig{
				Enabled:   viper.GetBool("STORAGE_ENABLED"),
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				Region:    viper.GetString("STORAGE_REGION"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
			Pipeline: PipelineConfig{
				HistoryCSV:          viper.GetString("PIPELINE_HISTORY_CSV"),
				ModelPath:           viper.GetString("PIPELINE_MODEL_PATH"),
				ForecastCSV:         viper.GetString("PIPELINE_FORECAST_CSV"),
				AlertCSV:            viper.GetString("PIPELINE_ALERT_CSV"),
				Holdout:             viper.GetInt("PIPELINE_HOLDOUT_DAYS"),
				EvalHorizon:         viper.GetInt("PIPELINE_EVAL_HORIZON"),
				ForecastSteps:       viper.GetInt("PIPELINE_FORECAST_STEPS"),
				ThresholdMultiplier: viper.GetFloat64("PIPELINE_THRESHOLD_MULTIPLIER"),
				GridMaxP:            viper.GetInt("PIPELINE_GRID_MAX_P"),
				GridMaxD:            viper.GetInt("PIPELINE_GRID_MAX_D"),
				GridMaxQ:            viper.GetInt("PIPELINE_GRID_MAX_Q"),
			},
		}
	})

	return instance
}

func ensureDir(dir string) {
	if dir == "" || dir == "." {
		return
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
