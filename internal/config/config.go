package config

import (
	"fmt"
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment string `env:"ENV" env-default:"development"`
	LogLevel    string `env:"LOG_LEVEL"` // пусто - уровень по умолчанию для окружения
	DBDSN       string `env:"DB_DSN" env-required:"true"`
	Timezone    string `env:"BUSINESS_TIMEZONE" env-default:"America/Los_Angeles"`

	HTTPServer
	Redis
	Reminders
	SendGrid
	Twilio
	Telegram
}

type HTTPServer struct {
	Address         string        `env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout         time.Duration `env:"HTTP_TIMEOUT" env-default:"4s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"15s"`
}

type Redis struct {
	Addr string `env:"REDIS_ADDR" env-default:"localhost:6379"`
}

// Reminders расписание фоновых напоминаний (формат cron)
type Reminders struct {
	SessionSchedule string        `env:"REMINDER_SESSION_SCHEDULE" env-default:"*/15 * * * *"`
	PaymentSchedule string        `env:"REMINDER_PAYMENT_SCHEDULE" env-default:"0 9 * * *"`
	SessionWindow   time.Duration `env:"REMINDER_SESSION_WINDOW" env-default:"24h"`
	LockTTL         time.Duration `env:"REMINDER_LOCK_TTL" env-default:"10m"`
}

type SendGrid struct {
	APIKey    string `env:"SENDGRID_API_KEY"`
	FromEmail string `env:"SENDGRID_FROM_EMAIL" env-default:"no-reply@example.com"`
	FromName  string `env:"SENDGRID_FROM_NAME" env-default:"Tutoring Center"`
}

type Twilio struct {
	AccountSID string `env:"TWILIO_ACCOUNT_SID"`
	AuthToken  string `env:"TWILIO_AUTH_TOKEN"`
	FromPhone  string `env:"TWILIO_FROM_PHONE"`
}

type Telegram struct {
	Token string `env:"TELEGRAM_TOKEN"`
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid BUSINESS_TIMEZONE %q: %w", cfg.Timezone, err)
	}

	return &cfg, nil
}

// Location возвращает часовой пояс бизнеса. Значение проверено в Load
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// EmailEnabled true когда задан ключ SendGrid, иначе письма пишутся в консоль
func (c *Config) EmailEnabled() bool {
	return c.SendGrid.APIKey != ""
}

// SMSEnabled true когда заданы учётные данные Twilio
func (c *Config) SMSEnabled() bool {
	return c.Twilio.AccountSID != "" && c.Twilio.AuthToken != "" && c.Twilio.FromPhone != ""
}
