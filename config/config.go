package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type MQConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
	// 32 字节 hex，用于令牌落库加密
	TokenKey string `yaml:"token_key"`
}

type ScanConfig struct {
	MaxResults int64 `yaml:"max_results"`
	// Gmail API 调用速率（每秒请求数）
	RatePerSecond int `yaml:"rate_per_second"`
	RateBurst     int `yaml:"rate_burst"`
}

type UnsubscribeConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
	MaxAttempts    int `yaml:"max_attempts"`
}

type RateLimitConfig struct {
	Requests      int `yaml:"requests"`
	WindowSeconds int `yaml:"window_seconds"`
}

type Config struct {
	DB          DBConfig          `yaml:"db"`
	MQ          MQConfig          `yaml:"mq"`
	Redis       RedisConfig       `yaml:"redis"`
	JWT         JWTConfig         `yaml:"jwt"`
	Server      ServerConfig      `yaml:"server"`
	Google      GoogleConfig      `yaml:"google"`
	Scan        ScanConfig        `yaml:"scan"`
	Unsubscribe UnsubscribeConfig `yaml:"unsubscribe"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
}

func Load() *Config {
	f, err := os.Open("config.yaml")
	if err != nil {
		log.Fatalf("failed to open config.yaml: %v", err)
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		log.Fatalf("failed to decode config.yaml: %v", err)
	}

	// 环境变量覆盖（生产环境使用）
	overrideFromEnv(&cfg)
	applyDefaults(&cfg)

	return &cfg
}

func overrideFromEnv(cfg *Config) {
	// DB配置
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.DB.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.DB.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.DB.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.DB.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.DB.Name = name
	}

	// MQ配置
	if url := os.Getenv("MQ_URL"); url != "" {
		cfg.MQ.URL = url
	}

	// Redis配置
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}

	// JWT配置
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWT.Secret = secret
	}

	// Server配置
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Server.Port = port
	}

	// Google OAuth配置
	if id := os.Getenv("GOOGLE_CLIENT_ID"); id != "" {
		cfg.Google.ClientID = id
	}
	if secret := os.Getenv("GOOGLE_CLIENT_SECRET"); secret != "" {
		cfg.Google.ClientSecret = secret
	}
	if redirect := os.Getenv("GOOGLE_REDIRECT_URI"); redirect != "" {
		cfg.Google.RedirectURL = redirect
	}
	if key := os.Getenv("GOOGLE_TOKEN_KEY"); key != "" {
		cfg.Google.TokenKey = key
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Scan.MaxResults == 0 {
		cfg.Scan.MaxResults = 50
	}
	if cfg.Scan.RatePerSecond == 0 {
		cfg.Scan.RatePerSecond = 10
	}
	if cfg.Scan.RateBurst == 0 {
		cfg.Scan.RateBurst = 5
	}
	if cfg.Unsubscribe.TimeoutSeconds == 0 {
		cfg.Unsubscribe.TimeoutSeconds = 10
	}
	if cfg.Unsubscribe.MaxAttempts == 0 {
		cfg.Unsubscribe.MaxAttempts = 3
	}
	if cfg.RateLimit.Requests == 0 {
		cfg.RateLimit.Requests = 60
	}
	if cfg.RateLimit.WindowSeconds == 0 {
		cfg.RateLimit.WindowSeconds = 60
	}
}
