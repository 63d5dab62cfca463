package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN            string
	Environment      string
	LogLevel         string
	TutorBotToken    string
	GuardianBotToken string
	RabbitMQURL      string
	HTTPAddr         string
	Timezone         string
	ConfigFile       string

	Redis RedisConfig

	// Location часовой пояс, в котором хранятся даты и время занятий
	Location *time.Location

	// EnvFileLoaded найден ли .env, логируется после создания логгера
	EnvFileLoaded bool

	Booking   BookingConfig  `toml:"booking"`
	Reminders ReminderConfig `toml:"reminders"`
	HTTP      HTTPConfig     `toml:"http"`
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// BookingConfig секция [booking]
type BookingConfig struct {
	SlotStepMinutes          int `toml:"slot_step_minutes"`
	HorizonDays              int `toml:"horizon_days"`
	MaxRangeDays             int `toml:"max_range_days"`
	TutorCancelNoticeMinutes int `toml:"tutor_cancel_notice_minutes"`
}

// ReminderConfig секция [reminders], окна задаются в часах до начала занятия
type ReminderConfig struct {
	Interval      time.Duration `toml:"interval"`
	SendTimeout   time.Duration `toml:"send_timeout"`
	Window24hFrom float64       `toml:"window_24h_from"`
	Window24hTo   float64       `toml:"window_24h_to"`
	Window1hFrom  float64       `toml:"window_1h_from"`
	Window1hTo    float64       `toml:"window_1h_to"`
	LockTTL       time.Duration `toml:"lock_ttl"`
}

// HTTPConfig секция [http]
type HTTPConfig struct {
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

// Default значения, с которыми работал бот
func Default() *Config {
	return &Config{
		Environment: "development",
		HTTPAddr:    ":8080",
		Timezone:    "Europe/Moscow",
		Booking: BookingConfig{
			SlotStepMinutes:          30,
			HorizonDays:              30,
			MaxRangeDays:             62,
			TutorCancelNoticeMinutes: 120,
		},
		Reminders: ReminderConfig{
			Interval:      5 * time.Minute,
			SendTimeout:   10 * time.Second,
			Window24hFrom: 23.5,
			Window24hTo:   24.5,
			Window1hFrom:  0.05,
			Window1hTo:    1.1,
			LockTTL:       4 * time.Minute,
		},
		HTTP: HTTPConfig{
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
	}
}

func Load() (*Config, error) {
	cfg := Default()

	// .env необязателен, переменные окружения могут прийти снаружи
	cfg.EnvFileLoaded = godotenv.Load(".env") == nil

	cfg.DBDSN = os.Getenv("DB_DSN")
	cfg.LogLevel = os.Getenv("LOG_LEVEL")
	cfg.TutorBotToken = os.Getenv("TUTOR_BOT_TOKEN")
	cfg.GuardianBotToken = os.Getenv("GUARDIAN_BOT_TOKEN")
	cfg.RabbitMQURL = os.Getenv("RABBITMQ_URL")
	cfg.ConfigFile = os.Getenv("CONFIG_FILE")
	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")

	if v := os.Getenv("ENV"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_DB: %w", err)
		}
		cfg.Redis.DB = n
	}

	if cfg.ConfigFile != "" {
		if err := cfg.LoadFile(cfg.ConfigFile); err != nil {
			return nil, err
		}
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile накладывает настройки из TOML файла. Отсутствующие ключи
// сохраняют текущие значения.
func (c *Config) LoadFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Validate проверяет обязательные поля и согласованность окон напоминаний
func (c *Config) Validate() error {
	var errs []error

	if c.DBDSN == "" {
		errs = append(errs, errors.New("DB_DSN is required but not set"))
	}

	b := c.Booking
	if b.SlotStepMinutes <= 0 {
		errs = append(errs, errors.New("booking.slot_step_minutes must be positive"))
	}
	if b.HorizonDays <= 0 || b.MaxRangeDays <= 0 {
		errs = append(errs, errors.New("booking.horizon_days and booking.max_range_days must be positive"))
	}
	if b.TutorCancelNoticeMinutes < 0 {
		errs = append(errs, errors.New("booking.tutor_cancel_notice_minutes must not be negative"))
	}

	r := c.Reminders
	if r.Interval <= 0 {
		errs = append(errs, errors.New("reminders.interval must be positive"))
	}
	if r.LockTTL <= 0 || (r.Interval > 0 && r.LockTTL >= r.Interval) {
		errs = append(errs, fmt.Errorf("reminders.lock_ttl %s must be positive and shorter than reminders.interval", r.LockTTL))
	}
	if r.Window24hFrom >= r.Window24hTo {
		errs = append(errs, errors.New("reminders: window_24h_from must be less than window_24h_to"))
	}
	if r.Window1hFrom >= r.Window1hTo {
		errs = append(errs, errors.New("reminders: window_1h_from must be less than window_1h_to"))
	}
	if r.Window1hTo >= r.Window24hFrom {
		errs = append(errs, errors.New("reminders: 1h window must end before 24h window starts"))
	}

	// пропущенный обход не должен перескочить окно целиком
	if narrowest := r.narrowestWindow(); r.Interval > 0 && narrowest > 0 && 2*r.Interval > narrowest {
		errs = append(errs, fmt.Errorf("reminders.interval %s is too long for the narrowest window %s", r.Interval, narrowest))
	}

	return errors.Join(errs...)
}

func (r ReminderConfig) narrowestWindow() time.Duration {
	w24 := hoursToDuration(r.Window24hTo - r.Window24hFrom)
	w1 := hoursToDuration(r.Window1hTo - r.Window1hFrom)
	if w1 < w24 {
		return w1
	}
	return w24
}

func hoursToDuration(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}
