package config

import (
	"errors"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	PostgresStorage = "postgres"
	MemoryStorage   = "memory"
)

// Config - структура для хранения конфигураций приложения
type Config struct {
	ServerAddress string `mapstructure:"SERVER_ADDRESS"`
	PostgresConn  string `mapstructure:"POSTGRES_CONN"`
	PostgresUser  string `mapstructure:"POSTGRES_USERNAME"`
	PostgresPass  string `mapstructure:"POSTGRES_PASSWORD"`
	PostgresHost  string `mapstructure:"POSTGRES_HOST"`
	PostgresPort  string `mapstructure:"POSTGRES_PORT"`
	PostgresDB    string `mapstructure:"POSTGRES_DATABASE"`
	MigrationURL  string `mapstructure:"MIGRATION_URL"`
	StorageDriver string `mapstructure:"STORAGE_DRIVER"`

	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	LoginURL       string        `mapstructure:"LOGIN_URL"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	RedisAddr      string        `mapstructure:"REDIS_ADDR"`
	RedisPassword  string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB        int           `mapstructure:"REDIS_DB"`
	UnreadCacheTTL time.Duration `mapstructure:"UNREAD_CACHE_TTL"`

	MessageRateLimit float64 `mapstructure:"MESSAGE_RATE_LIMIT"`
	MessageRateBurst int     `mapstructure:"MESSAGE_RATE_BURST"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
}

var defaults = map[string]any{
	"SERVER_ADDRESS":     "0.0.0.0:8080",
	"POSTGRES_CONN":      "",
	"POSTGRES_USERNAME":  "",
	"POSTGRES_PASSWORD":  "",
	"POSTGRES_HOST":      "",
	"POSTGRES_PORT":      "",
	"POSTGRES_DATABASE":  "",
	"MIGRATION_URL":      "file://migrations",
	"STORAGE_DRIVER":     PostgresStorage,
	"JWT_SECRET":         "",
	"LOGIN_URL":          "/login",
	"REQUEST_TIMEOUT":    5 * time.Second,
	"REDIS_ADDR":         "",
	"REDIS_PASSWORD":     "",
	"REDIS_DB":           0,
	"UNREAD_CACHE_TTL":   30 * time.Second,
	"MESSAGE_RATE_LIMIT": 1.0,
	"MESSAGE_RATE_BURST": 5,
	"LOG_LEVEL":          "info",
}

// ParseFlags возвращает каталог с файлом app.env из флага --config
func ParseFlags(args []string) (string, error) {
	flags := pflag.NewFlagSet("common-elements", pflag.ContinueOnError)
	path := flags.StringP("config", "c", ".", "directory containing app.env")
	if err := flags.Parse(args); err != nil {
		return "", err
	}
	return *path, nil
}

// LoadConfig загружает конфигурацию из файла и переменных окружения
func LoadConfig(path string) (cfg Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv учитывает только известные ключи, поэтому все ключи получают значения по умолчанию.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		err = nil
	}
	if err = v.Unmarshal(&cfg); err != nil {
		return
	}
	if cfg.PostgresConn == "" {
		cfg.PostgresConn = cfg.PostgresDSN()
	}
	err = cfg.Validate()
	return
}

// PostgresDSN собирает строку подключения из POSTGRES_HOST, POSTGRES_PORT и учетных данных.
// Без POSTGRES_HOST возвращает пустую строку.
func (c Config) PostgresDSN() string {
	if c.PostgresHost == "" {
		return ""
	}
	port := c.PostgresPort
	if port == "" {
		port = "5432"
	}
	dsn := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(c.PostgresHost, port),
		Path:     "/" + c.PostgresDB,
		RawQuery: "sslmode=disable",
	}
	if c.PostgresUser != "" {
		dsn.User = url.UserPassword(c.PostgresUser, c.PostgresPass)
	}
	return dsn.String()
}

// Validate проверяет согласованность конфигурации
func (c Config) Validate() error {
	switch c.StorageDriver {
	case PostgresStorage:
		if c.PostgresConn == "" {
			return errors.New("POSTGRES_CONN or POSTGRES_HOST is required for the postgres storage driver")
		}
	case MemoryStorage:
	default:
		return errors.New("STORAGE_DRIVER must be postgres or memory")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	if c.MessageRateLimit <= 0 || c.MessageRateBurst <= 0 {
		return errors.New("MESSAGE_RATE_LIMIT and MESSAGE_RATE_BURST must be positive")
	}
	return nil
}
