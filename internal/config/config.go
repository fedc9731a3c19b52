package config

import (
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env            string               `yaml:"env" env-default:"development"` // environment
	HTTPServer     HTTPServerConfig     `yaml:"http_server"`
	Database       DatabaseConfig       `yaml:"database"`
	JWT            JWTConfig            `yaml:"jwt"`
	Migrations     MigrationsConfig     `yaml:"migrations"`
	Shop           ShopConfig           `yaml:"shop"`
	Staff          StaffConfig          `yaml:"staff"`
	CartStore      CartStoreConfig      `yaml:"cart_store"`
	Recommendation RecommendationConfig `yaml:"recommendation"`
}

// HTTPServerConfig структура http сервера
type HTTPServerConfig struct {
	Address     string        `yaml:"address" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// DatabaseConfig структура по работе с БД
type DatabaseConfig struct {
	Host     string `yaml:"host" env-default:"localhost"`
	Port     int    `yaml:"port" env-default:"5432"`
	User     string `yaml:"user" env-required:"true"`
	Password string `yaml:"-" env:"DB_PASSWORD" env-required:"true"`
	Name     string `yaml:"name" env-required:"true"`
}

// DSN собирает строку подключения к postgres. params добавляются в query, например x-migrations-table.
func (d DatabaseConfig) DSN(params ...string) string {
	q := url.Values{}
	q.Set("sslmode", "disable")
	for i := 0; i+1 < len(params); i += 2 {
		q.Set(params[i], params[i+1])
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// JWTConfig настройка jwt для сессии персонала
type JWTConfig struct {
	Secret   string `yaml:"-" env:"JWT_SECRET" env-required:"true"`
	TokenTTL int    `yaml:"token_ttl" env-default:"60"`
}

type MigrationsConfig struct {
	Path string `yaml:"path" env-default:"./migrations"`
}

// ShopConfig описывает магазин: часы работы, точку самовывоза и номер WhatsApp
type ShopConfig struct {
	Name           string        `yaml:"name" env-default:"Air Batu Malaysia"`
	WhatsAppNumber string        `yaml:"whatsapp_number" env:"SHOP_WHATSAPP_NUMBER" env-required:"true"`
	PickupLocation string        `yaml:"pickup_location" env-default:"131B Tengah Garden Avenue"`
	PickupUnit     string        `yaml:"pickup_unit" env-default:"#08-318"`
	PrivacyNote    string        `yaml:"privacy_note" env-default:"Unit number is shared on your receipt only"`
	Timezone       string        `yaml:"timezone" env-default:"Asia/Singapore"`
	OpensAt        string        `yaml:"opens_at" env-default:"10:00"`
	ClosesAt       string        `yaml:"closes_at" env-default:"21:30"`
	PrepBuffer     time.Duration `yaml:"prep_buffer" env-default:"30m"`
	SlotStep       time.Duration `yaml:"slot_step" env-default:"15m"`
	RestockLevel   int           `yaml:"restock_level" env-default:"99"`
	OpenOnStart    bool          `yaml:"open_on_start" env-default:"true"`
}

// StaffConfig - доступ к панели персонала по коду
type StaffConfig struct {
	PasscodeHash string `yaml:"-" env:"STAFF_PASSCODE_HASH" env-required:"true"`
}

// CartStoreConfig определяет, где живут корзины: в памяти процесса или в redis
type CartStoreConfig struct {
	Driver string        `yaml:"driver" env-default:"memory"`
	TTL    time.Duration `yaml:"ttl" env-default:"24h"`
	Redis  RedisConfig   `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env-default:"localhost:6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env-default:"0"`
}

// RecommendationConfig настройка подсказки вкуса через Gemini
type RecommendationConfig struct {
	APIKey      string        `yaml:"-" env:"GEMINI_API_KEY"`
	BaseURL     string        `yaml:"base_url" env-default:"https://generativelanguage.googleapis.com/v1beta"`
	Model       string        `yaml:"model" env-default:"gemini-2.0-flash"`
	Timeout     time.Duration `yaml:"timeout" env-default:"5s"`
	WarmupDelay time.Duration `yaml:"warmup_delay" env-default:"1500ms"`
}

// MustLoad - если не загружаем - паникуем
func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		log.Fatal("CONFIG_PATH not exists")
	}
	return MustLoadByPath(configPath)
}

func fetchConfigPath() string {
	var path string

	flag.StringVar(&path, "config", "", "path to config file")
	flag.Parse()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	return path
}

func MustLoadByPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file not found: " + configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("can't read config file %s: %v", configPath, err)
	}

	return &cfg
}
