package config

import (
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	ListenAddr        string        `yaml:"listen_addr"`
	LogLevel          string        `yaml:"log_level"`
	LogJSON           bool          `yaml:"log_json"`
	CORSOrigin        string        `yaml:"cors_origin"`
	SecureCookies     bool          `yaml:"secure_cookies"`
	MessagesPerPage   int           `yaml:"messages_per_page"`
	MaxMessageLen     int           `yaml:"max_message_len"`
	MaxAttachmentSize int64         `yaml:"max_attachment_size"` // bytes, per request
	AttachmentDir     string        `yaml:"attachment_dir"`
	RedisAddr         string        `yaml:"redis_addr"` // empty disables the cross-instance bridge
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

type Private struct {
	Pg     Pg     `yaml:"pg"`
	JwtKey string `yaml:"jwt_key"`
}

func (c *Config) JwtKey() string {
	return c.Private.JwtKey
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{public, private}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Public.ListenAddr == "" {
		c.Public.ListenAddr = ":8080"
	}
	if c.Public.MessagesPerPage == 0 {
		c.Public.MessagesPerPage = 20
	}
	if c.Public.MaxMessageLen == 0 {
		c.Public.MaxMessageLen = 10_000
	}
	if c.Public.MaxAttachmentSize == 0 {
		c.Public.MaxAttachmentSize = 20 << 20
	}
	if c.Public.AttachmentDir == "" {
		c.Public.AttachmentDir = "attachments"
	}
	if c.Public.ShutdownTimeout == 0 {
		c.Public.ShutdownTimeout = 10 * time.Second
	}
}
