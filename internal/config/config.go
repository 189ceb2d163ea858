package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	TrackerMemory = "memory"
	TrackerRedis  = "redis"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL      string // あればPOSTGRES_*より優先
	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）
	PostgresSSLMode  string // disable/require
	AutoMigrate      bool   // 起動時にAutoMigrateするか

	GoEnv     string // dev/prod
	LogLevel  string // debug/info/warn/error
	LogFormat string // json/console

	DeletionTracker    string        // memory/redis
	RedisAddr          string        // redisのhost:port
	RedisPassword      string        // redisパスワード
	RedisDB            int           // redis DB番号
	DeletionPendingTTL time.Duration // redisの削除中キーの寿命

	CategoriesFile string // カテゴリ定義YAML（空なら組み込み）
}

// .envがあれば読み込んでからLoadする。
func LoadWithDotenv(paths ...string) (Config, error) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", p, err)
		}
	}
	return Load()
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := atoiDefault("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	redisDB, err := atoiDefault("REDIS_DB", 0)
	if err != nil {
		return Config{}, err
	}
	autoMigrate, err := boolDefault("AUTO_MIGRATE", true)
	if err != nil {
		return Config{}, err
	}
	pendingTTL, err := durationDefault("DELETION_PENDING_TTL", 10*time.Minute)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: getenv("PORT", "8080"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),
		AutoMigrate:      autoMigrate,

		GoEnv:     getenv("GO_ENV", "dev"),
		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: os.Getenv("LOG_FORMAT"),

		DeletionTracker:    getenv("DELETION_TRACKER", TrackerMemory),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            redisDB,
		DeletionPendingTTL: pendingTTL,

		CategoriesFile: os.Getenv("CATEGORIES_FILE"),
	}

	//本番はjson、それ以外はconsole
	if cfg.LogFormat == "" {
		cfg.LogFormat = "console"
		if cfg.GoEnv == "prod" {
			cfg.LogFormat = "json"
		}
	}

	//必須チェック
	if cfg.DatabaseURL == "" {
		if cfg.PostgresUser == "" {
			return Config{}, fmt.Errorf("POSTGRES_USER is required")
		}
		if cfg.PostgresPassword == "" {
			return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
		}
		if cfg.PostgresDB == "" {
			return Config{}, fmt.Errorf("POSTGRES_DB is required")
		}
	}
	switch cfg.DeletionTracker {
	case TrackerMemory:
	case TrackerRedis:
		if cfg.RedisAddr == "" {
			return Config{}, fmt.Errorf("REDIS_ADDR is required when DELETION_TRACKER=redis")
		}
	default:
		return Config{}, fmt.Errorf("DELETION_TRACKER must be memory or redis: %q", cfg.DeletionTracker)
	}
	switch cfg.LogFormat {
	case "json", "console":
	default:
		return Config{}, fmt.Errorf("LOG_FORMAT must be json or console: %q", cfg.LogFormat)
	}

	return cfg, nil
}

// gorm/pgx用のDSN
func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func boolDefault(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be bool: %w", key, err)
	}
	return b, nil
}

func durationDefault(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}
