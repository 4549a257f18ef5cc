package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/BurntSushi/toml"
	_ "github.com/joho/godotenv/autoload"
	"github.com/kelseyhightower/envconfig"

	"github.com/m04kA/SMC-AppointmentService/internal/integrations/stripecheckout"
)

// envPrefix префикс переменных окружения с секретами (APPT_DATABASE_PASSWORD, ...)
const envPrefix = "APPT"

// Config конфигурация сервиса
type Config struct {
	Server       ServerConfig       `toml:"server"`
	Database     DatabaseConfig     `toml:"database"`
	Logs         LogsConfig         `toml:"logs"`
	Metrics      MetricsConfig      `toml:"metrics"`
	Redis        RedisConfig        `toml:"redis"`
	RabbitMQ     RabbitMQConfig     `toml:"rabbitmq"`
	Directory    DirectoryConfig    `toml:"directory"`
	Payment      PaymentConfig      `toml:"payment"`
	Availability AvailabilityConfig `toml:"availability"`
	RateLimit    RateLimitConfig    `toml:"rate_limit"`
	Policy       PolicyConfig       `toml:"policy"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type RedisConfig struct {
	// Пустой адрес - используется in-memory guard (один инстанс сервиса)
	Addr        string `toml:"addr"`
	Password    string `toml:"password"`
	DB          int    `toml:"db"`
	GuardTTLSec int    `toml:"guard_ttl_sec"`
}

type RabbitMQConfig struct {
	// Пустой URL - события не публикуются
	URL      string `toml:"url"`
	Exchange string `toml:"exchange"`
}

type DirectoryConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

type PaymentConfig struct {
	Gateway          string       `toml:"gateway"` // vnpay | stripe
	IntentTTLMinutes int          `toml:"intent_ttl_minutes"`
	SweepSchedule    string       `toml:"sweep_schedule"`
	ReturnURL        string       `toml:"return_url"`
	VNPay            VNPayConfig  `toml:"vnpay"`
	Stripe           StripeConfig `toml:"stripe"`
}

type VNPayConfig struct {
	TmnCode       string `toml:"tmn_code"`
	HashSecret    string `toml:"hash_secret"`
	PayURL        string `toml:"pay_url"`
	ExpireMinutes int    `toml:"expire_minutes"`
	Locale        string `toml:"locale"`
	BankCode      string `toml:"bank_code"`
}

type StripeConfig struct {
	SecretKey string `toml:"secret_key"`
	Currency  string `toml:"currency"`
	CancelURL string `toml:"cancel_url"`
}

type AvailabilityConfig struct {
	CandidateTimeoutMs int `toml:"candidate_timeout_ms"`
	MaxParallel        int `toml:"max_parallel"`
}

type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// secrets значения, которые не хранятся в config.toml
type secrets struct {
	DatabasePassword string `envconfig:"DATABASE_PASSWORD"`
	RedisPassword    string `envconfig:"REDIS_PASSWORD"`
	RabbitMQURL      string `envconfig:"RABBITMQ_URL"`
	VNPayHashSecret  string `envconfig:"VNPAY_HASH_SECRET"`
	StripeSecretKey  string `envconfig:"STRIPE_SECRET_KEY"`
}

// Load читает config.toml, подставляет значения по умолчанию и секреты из окружения
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	var s secrets
	if err := envconfig.Process(envPrefix, &s); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}

	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&c.Database.Password, s.DatabasePassword)
	override(&c.Redis.Password, s.RedisPassword)
	override(&c.RabbitMQ.URL, s.RabbitMQURL)
	override(&c.Payment.VNPay.HashSecret, s.VNPayHashSecret)
	override(&c.Payment.Stripe.SecretKey, s.StripeSecretKey)
	return nil
}

func (c *Config) applyDefaults() {
	setInt := func(dst *int, v int) {
		if *dst == 0 {
			*dst = v
		}
	}
	setString := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}

	setInt(&c.Server.HTTPPort, 8080)
	setInt(&c.Server.ReadTimeout, 10)
	setInt(&c.Server.WriteTimeout, 10)
	setInt(&c.Server.IdleTimeout, 60)
	setInt(&c.Server.ShutdownTimeout, 15)

	setInt(&c.Database.Port, 5432)
	setString(&c.Database.SSLMode, "disable")
	setInt(&c.Database.MaxOpenConns, 25)
	setInt(&c.Database.MaxIdleConns, 5)
	setInt(&c.Database.ConnMaxLifetime, 300)

	setString(&c.Logs.Level, "info")
	setString(&c.Metrics.Path, "/metrics")
	setString(&c.Metrics.ServiceName, "appointment_service")

	setInt(&c.Redis.GuardTTLSec, 30)
	setString(&c.RabbitMQ.Exchange, "appointments")
	setInt(&c.Directory.Timeout, 5)

	setString(&c.Payment.Gateway, "vnpay")
	setInt(&c.Payment.IntentTTLMinutes, 35)
	setString(&c.Payment.SweepSchedule, "@every 1m")
	setInt(&c.Payment.VNPay.ExpireMinutes, 15)
	setString(&c.Payment.VNPay.Locale, "vn")
	setString(&c.Payment.VNPay.PayURL, "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html")
	setString(&c.Payment.Stripe.Currency, "vnd")

	setInt(&c.Availability.CandidateTimeoutMs, 800)
	setInt(&c.Availability.MaxParallel, 8)

	if c.RateLimit.RequestsPerSecond == 0 {
		c.RateLimit.RequestsPerSecond = 20
	}
	setInt(&c.RateLimit.Burst, 40)
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if c.Database.Host == "" || c.Database.DBName == "" {
		return errors.New("config: database host and dbname are required")
	}
	if c.Directory.URL == "" {
		return errors.New("config: directory url is required")
	}
	if _, err := url.ParseRequestURI(c.Payment.ReturnURL); err != nil {
		return fmt.Errorf("config: invalid payment return_url: %w", err)
	}

	switch c.Payment.Gateway {
	case "vnpay":
		if c.Payment.VNPay.TmnCode == "" || c.Payment.VNPay.HashSecret == "" {
			return errors.New("config: vnpay tmn_code and hash_secret are required")
		}
	case "stripe":
		if c.Payment.Stripe.SecretKey == "" {
			return errors.New("config: stripe secret_key is required")
		}
	default:
		return fmt.Errorf("config: unknown payment gateway %q", c.Payment.Gateway)
	}

	// Намерение должно жить дольше любой платёжной сессии, иначе оплату примут после отбрасывания
	if lifetime := c.Payment.SessionLifetime(); c.IntentTTL() < lifetime {
		return fmt.Errorf("config: intent_ttl_minutes (%s) must cover the gateway session lifetime %s",
			c.IntentTTL(), lifetime)
	}

	if _, err := c.Policy.PolicySet(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// SessionLifetime максимальное время, в течение которого включённые шлюзы принимают оплату
func (p PaymentConfig) SessionLifetime() time.Duration {
	var lifetime time.Duration
	if p.Gateway == "vnpay" || (p.VNPay.TmnCode != "" && p.VNPay.HashSecret != "") {
		lifetime = time.Duration(p.VNPay.ExpireMinutes) * time.Minute
	}
	if p.Gateway == "stripe" || p.Stripe.SecretKey != "" {
		lifetime = max(lifetime, stripecheckout.MinSessionLifetime)
	}
	return lifetime
}

// IntentTTL время жизни платёжного намерения
func (c *Config) IntentTTL() time.Duration {
	return time.Duration(c.Payment.IntentTTLMinutes) * time.Minute
}

// CandidateTimeout таймаут проверки одного кандидата
func (c *Config) CandidateTimeout() time.Duration {
	return time.Duration(c.Availability.CandidateTimeoutMs) * time.Millisecond
}

// GuardTTL время жизни блокировки бронирования
func (c *Config) GuardTTL() time.Duration {
	return time.Duration(c.Redis.GuardTTLSec) * time.Second
}
