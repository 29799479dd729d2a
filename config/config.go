package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	HTTP      ServerConfig
	MySQL     MySQLConfig
	Log       LogConfig
	AMQP      AMQPConfig
	Webhooks  WebhooksConfig
	Stripe    StripeConfig
	JazzCash  JazzCashConfig
	EasyPaisa EasyPaisaConfig
	PayFast   PayFastConfig
}

type AppConfig struct {
	ServiceName string
}

type ServerConfig struct {
	Host string
	Port string
}

type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
}

type AMQPConfig struct {
	URL      string
	Exchange string
}

type WebhooksConfig struct {
	// AllowMockVerification lets a gateway with missing credentials fall
	// back to mock verification instead of rejecting every delivery.
	// Development affordance only; production deployments leave it unset.
	AllowMockVerification bool
	NotifyTimeout         time.Duration
}

type StripeConfig struct {
	WebhookSecret             string
	SignatureToleranceSeconds int64
}

type JazzCashConfig struct {
	MerchantID    string
	IntegritySalt string
}

type EasyPaisaConfig struct {
	StoreID string
	HashKey string
}

type PayFastConfig struct {
	MerchantID  string
	MerchantKey string
	Passphrase  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}

	return &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "booking-webhooks-service"),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		MySQL: MySQLConfig{
			DSN:             mysqlDSN,
			MaxOpenConns:    getIntEnv("MYSQL_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("MYSQL_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getMinutesEnv("MYSQL_CONN_MAX_LIFETIME_MINUTES", 30*time.Minute),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		AMQP: AMQPConfig{
			URL:      getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_NOTIFICATIONS_EXCHANGE", "notifications"),
		},
		Webhooks: WebhooksConfig{
			AllowMockVerification: getBoolEnv("WEBHOOKS_ALLOW_MOCK_VERIFICATION", false),
			NotifyTimeout:         getSecondsEnv("WEBHOOKS_NOTIFY_TIMEOUT_SECONDS", 5*time.Second),
		},
		Stripe: StripeConfig{
			WebhookSecret:             getEnv("STRIPE_WEBHOOK_SECRET", ""),
			SignatureToleranceSeconds: int64(getIntEnv("STRIPE_SIGNATURE_TOLERANCE_SECONDS", 300)),
		},
		JazzCash: JazzCashConfig{
			MerchantID:    getEnv("JAZZCASH_MERCHANT_ID", ""),
			IntegritySalt: getEnv("JAZZCASH_INTEGRITY_SALT", ""),
		},
		EasyPaisa: EasyPaisaConfig{
			StoreID: getEnv("EASYPAISA_STORE_ID", ""),
			HashKey: getEnv("EASYPAISA_HASH_KEY", ""),
		},
		PayFast: PayFastConfig{
			MerchantID:  getEnv("PAYFAST_MERCHANT_ID", ""),
			MerchantKey: getEnv("PAYFAST_MERCHANT_KEY", ""),
			Passphrase:  getEnv("PAYFAST_PASSPHRASE", ""),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getMinutesEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
