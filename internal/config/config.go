package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "JUDI"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Model     ModelConfig     `mapstructure:"model"`
	Inference InferenceConfig `mapstructure:"inference"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`

	// DrainDelay is how long /ready reports 503 before shutdown starts.
	DrainDelay time.Duration `mapstructure:"drain_delay"`
}

// ModelConfig points at the exported classifier. All file names are relative
// to Dir unless absolute.
type ModelConfig struct {
	Dir            string `mapstructure:"dir"`
	File           string `mapstructure:"file"`
	TokenizerFile  string `mapstructure:"tokenizer_file"`
	MetadataFile   string `mapstructure:"metadata_file"`
	MaxLength      int    `mapstructure:"max_length"`
	OnnxRuntimeLib string `mapstructure:"onnxruntime_lib"`
}

type InferenceConfig struct {
	Workers int           `mapstructure:"workers"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (m ModelConfig) ModelPath() string     { return m.resolve(m.File) }
func (m ModelConfig) TokenizerPath() string { return m.resolve(m.TokenizerFile) }
func (m ModelConfig) MetadataPath() string  { return m.resolve(m.MetadataFile) }

func (m ModelConfig) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(m.Dir, name)
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`, `-`, `_`))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.drain_delay", time.Duration(0))

	v.SetDefault("model.dir", "saved_model")
	v.SetDefault("model.file", "model.onnx")
	v.SetDefault("model.tokenizer_file", "tokenizer.json")
	v.SetDefault("model.metadata_file", "model_metadata.json")
	v.SetDefault("model.max_length", 128)
	v.SetDefault("model.onnxruntime_lib", "")

	v.SetDefault("inference.workers", 1)
	v.SetDefault("inference.timeout", 30*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads the optional env file and config file into v and decodes the
// result. Empty paths are skipped; a missing default config.yaml is not an
// error.
func Load(v *viper.Viper, envFile, configFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigType("yaml")
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid server mode %q", c.Server.Mode)
	}
	if c.Server.DrainDelay < 0 {
		return fmt.Errorf("server drain_delay must not be negative, got %s", c.Server.DrainDelay)
	}
	if c.Model.MaxLength <= 0 {
		return fmt.Errorf("model max_length must be positive, got %d", c.Model.MaxLength)
	}
	if c.Inference.Workers <= 0 {
		return fmt.Errorf("inference workers must be positive, got %d", c.Inference.Workers)
	}
	return nil
}
