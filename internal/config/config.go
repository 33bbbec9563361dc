package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// ConfigPathEnvVar points at an optional YAML file layered between defaults and env.
const ConfigPathEnvVar = "CONFIG_PATH"

type Config struct {
	AppEnv     string           `koanf:"app_env"`
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Auth       AuthConfig       `koanf:"auth"`
	Media      MediaConfig      `koanf:"media"`
	Cloudinary CloudinaryConfig `koanf:"cloudinary"`
	Notify     NotifyConfig     `koanf:"notify"`
	Log        LogConfig        `koanf:"log"`
}

type ServerConfig struct {
	Port            string        `koanf:"port"`
	ClientURL       string        `koanf:"client_url"`
	AllowedOrigins  string        `koanf:"allowed_origins"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver  string        `koanf:"driver"`
	URI     string        `koanf:"uri"`
	Name    string        `koanf:"name"`
	Timeout time.Duration `koanf:"timeout"`
}

type AuthConfig struct {
	JWTSecret      string        `koanf:"jwt_secret"`
	TokenTTL       time.Duration `koanf:"token_ttl"`
	AllowRegister  bool          `koanf:"allow_register"`
	AdminEmail     string        `koanf:"admin_email"`
	AdminPassword  string        `koanf:"admin_password"`
	AdminName      string        `koanf:"admin_name"`
	LoginRateLimit int           `koanf:"login_rate_limit"`
	LoginWindow    time.Duration `koanf:"login_window"`
}

type MediaConfig struct {
	StaticDir     string        `koanf:"static_dir"`
	MaxVideoBytes int64         `koanf:"max_video_bytes"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
	SweepGrace    time.Duration `koanf:"sweep_grace"`
}

type CloudinaryConfig struct {
	CloudName string        `koanf:"cloud_name"`
	APIKey    string        `koanf:"api_key"`
	APISecret string        `koanf:"api_secret"`
	Folder    string        `koanf:"folder"`
	Timeout   time.Duration `koanf:"timeout"`
}

// Enabled reports whether all credentials needed for uploads are present.
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

type NotifyConfig struct {
	DiscordWebhookURL string `koanf:"discord_webhook_url"`
	SlackWebhookURL   string `koanf:"slack_webhook_url"`
	SiteName          string `koanf:"site_name"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func defaultConfig() *Config {
	return &Config{
		AppEnv: EnvProduction,
		Server: ServerConfig{
			Port:            "5000",
			ShutdownTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:  DriverMongo,
			Name:    "solarworks",
			Timeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			TokenTTL:       7 * 24 * time.Hour,
			AllowRegister:  true,
			AdminName:      "Administrator",
			LoginRateLimit: 10,
			LoginWindow:    time.Minute,
		},
		Media: MediaConfig{
			StaticDir:     "public",
			MaxVideoBytes: 100 << 20,
			SweepGrace:    time.Hour,
		},
		Cloudinary: CloudinaryConfig{
			Folder:  "solarworks",
			Timeout: 30 * time.Second,
		},
		Notify: NotifyConfig{
			SiteName: "SolarWorks",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// envMappings maps the environment variable names the deployment already uses
// onto koanf paths. Variables not listed here are ignored.
var envMappings = map[string]string{
	"app_env":                "app_env",
	"port":                   "server.port",
	"client_url":             "server.client_url",
	"allowed_origins":        "server.allowed_origins",
	"shutdown_timeout":       "server.shutdown_timeout",
	"db_driver":              "database.driver",
	"mongodb_uri":            "database.uri",
	"mongodb_db":             "database.name",
	"db_timeout":             "database.timeout",
	"jwt_secret":             "auth.jwt_secret",
	"jwt_ttl":                "auth.token_ttl",
	"auth_allow_register":    "auth.allow_register",
	"admin_email":            "auth.admin_email",
	"admin_password":         "auth.admin_password",
	"admin_name":             "auth.admin_name",
	"login_rate_limit":       "auth.login_rate_limit",
	"login_rate_window":      "auth.login_window",
	"static_dir":             "media.static_dir",
	"upload_max_video_bytes": "media.max_video_bytes",
	"media_sweep_interval":   "media.sweep_interval",
	"media_sweep_grace":      "media.sweep_grace",
	"cloudinary_cloud_name":  "cloudinary.cloud_name",
	"cloudinary_api_key":     "cloudinary.api_key",
	"cloudinary_api_secret":  "cloudinary.api_secret",
	"cloudinary_folder":      "cloudinary.folder",
	"cloudinary_timeout":     "cloudinary.timeout",
	"discord_webhook_url":    "notify.discord_webhook_url",
	"slack_webhook_url":      "notify.slack_webhook_url",
	"site_name":              "notify.site_name",
	"log_level":              "log.level",
	"log_format":             "log.format",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in increasing order of priority.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is not set")
	}

	switch c.Database.Driver {
	case DriverMongo:
		if c.Database.URI == "" {
			return errors.New("MONGODB_URI environment variable is not set")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Media.MaxVideoBytes <= 0 {
		return errors.New("UPLOAD_MAX_VIDEO_BYTES must be positive")
	}

	if c.Auth.TokenTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

// AllowedOrigins returns the CORS origins: localhost defaults plus CLIENT_URL
// and the comma separated ALLOWED_ORIGINS list.
func (c *Config) AllowedOrigins() []string {
	origins := []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	if c.Server.ClientURL != "" {
		origins = append(origins, c.Server.ClientURL)
	}

	for _, origin := range strings.Split(c.Server.AllowedOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}

	return origins
}
