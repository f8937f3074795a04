package utils

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Session   SessionConfig
	Receiver  ReceiverConfig
	Gateway   GatewayConfig
	Email     EmailConfig
	Webhook   WebhookConfig
	Kafka     KafkaConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type SessionConfig struct {
	ExpiryHours int
}

// ReceiverConfig is the single receiving account shown to payers. It is
// configuration, not per-record data.
type ReceiverConfig struct {
	AccountNumber string
	AccountHolder string
	BankName      string
	UpiID         string
}

type GatewayConfig struct {
	KeyID     string
	KeySecret string
	Currency  string
}

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type WebhookConfig struct {
	URL            string
	TimeoutSeconds int
	RetryCount     int
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Enabled bool
	// Rate uses the limiter formatted syntax, e.g. "30-M" for 30 requests
	// per minute.
	Rate string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("SESSION_EXPIRY_HOURS", 24)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("RECEIVER_ACCOUNT_HOLDER", "LearnX")
	viper.SetDefault("GATEWAY_CURRENCY", "INR")
	viper.SetDefault("WEBHOOK_TIMEOUT_SECONDS", 5)
	viper.SetDefault("WEBHOOK_RETRY_COUNT", 2)
	viper.SetDefault("KAFKA_TOPIC", "learnx.payments")
	viper.SetDefault("RATE_LIMIT_ENABLED", true)
	viper.SetDefault("RATE_LIMIT_RATE", "30-M")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	var brokers []string
	if raw := viper.GetString("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Session: SessionConfig{
			ExpiryHours: viper.GetInt("SESSION_EXPIRY_HOURS"),
		},
		Receiver: ReceiverConfig{
			AccountNumber: viper.GetString("RECEIVER_ACCOUNT_NUMBER"),
			AccountHolder: viper.GetString("RECEIVER_ACCOUNT_HOLDER"),
			BankName:      viper.GetString("RECEIVER_BANK_NAME"),
			UpiID:         viper.GetString("RECEIVER_UPI_ID"),
		},
		Gateway: GatewayConfig{
			KeyID:     viper.GetString("RAZORPAY_KEY_ID"),
			KeySecret: viper.GetString("RAZORPAY_KEY_SECRET"),
			Currency:  viper.GetString("GATEWAY_CURRENCY"),
		},
		Email: EmailConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetInt("SMTP_PORT"),
			User:     viper.GetString("SMTP_USER"),
			Password: viper.GetString("SMTP_PASS"),
			From:     viper.GetString("EMAIL_FROM"),
		},
		Webhook: WebhookConfig{
			URL:            viper.GetString("WEBHOOK_URL"),
			TimeoutSeconds: viper.GetInt("WEBHOOK_TIMEOUT_SECONDS"),
			RetryCount:     viper.GetInt("WEBHOOK_RETRY_COUNT"),
		},
		Kafka: KafkaConfig{
			Brokers: brokers,
			Topic:   viper.GetString("KAFKA_TOPIC"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASS"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Enabled: viper.GetBool("RATE_LIMIT_ENABLED"),
			Rate:    viper.GetString("RATE_LIMIT_RATE"),
		},
	}

	return config, nil
}
