package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Cookies CookiesConfig `mapstructure:"cookies"`
	Upload  UploadConfig  `mapstructure:"upload"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Auth    AuthConfig    `mapstructure:"auth"`
	S3      S3Config      `mapstructure:"s3"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type LogConfig struct {
	Development bool `mapstructure:"development"`
}

// CookiesConfig describes where pre-captured account cookie files live.
// Backend is "fs" (a directory of files) or "s3" (a bucket of objects);
// either way the naming convention is <prefix>_<accountname><ext>.
type CookiesConfig struct {
	Backend string `mapstructure:"backend"`
	Dir     string `mapstructure:"dir"`
	Prefix  string `mapstructure:"prefix"`
	Ext     string `mapstructure:"ext"`
}

// UploadConfig controls orchestration behavior around a single upload.
type UploadConfig struct {
	// WorkDir is the parent under which each request gets its own staging
	// subdirectory. Empty means the OS temp directory.
	WorkDir string `mapstructure:"work_dir"`
	// MaxVideoSize caps the multipart video part, in bytes. 0 means no cap.
	MaxVideoSize int64 `mapstructure:"max_video_size"`
	// Timeout bounds a single automation run. 0 disables the bound.
	Timeout time.Duration `mapstructure:"timeout"`
	// GracePeriod is slept after a successful run so the platform can finish
	// server-side processing before we report success.
	GracePeriod time.Duration `mapstructure:"grace_period"`
}

// EngineConfig describes the external browser-automation command.
type EngineConfig struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

// AuthConfig enables optional bearer-token protection of the upload endpoint.
// When JWTSecret is empty the endpoint is open.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Environment variable handling: cookies.dir -> COOKIES_DIR etc.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("log.development", false)
	viper.SetDefault("cookies.backend", "fs")
	viper.SetDefault("cookies.dir", "/data/cookies")
	viper.SetDefault("cookies.prefix", "TK_cookies")
	viper.SetDefault("cookies.ext", ".json")
	viper.SetDefault("upload.work_dir", "")
	viper.SetDefault("upload.max_video_size", 0)
	viper.SetDefault("upload.timeout", "10m")
	viper.SetDefault("upload.grace_period", "10s")
	viper.SetDefault("engine.command", "tiktok-autouploader")
	viper.SetDefault("s3.use_ssl", true)

	err = viper.ReadInConfig()
	// A missing config file is fine; env vars and defaults carry the config.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return config, nil
}
