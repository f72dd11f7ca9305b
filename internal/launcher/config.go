package launcher

import (
	"cljloader/internal/runtime"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Environment variables read by the launcher.
const (
	EnvConfig  = "CLJLOADER_CONFIG"
	EnvRuntime = "CLJLOADER_RUNTIME"
	EnvDebug   = "CLJLOADER_DEBUG"
	EnvJavaCmd = "JAVA_CMD"
	EnvJavaOpt = "JAVA_OPTS"
)

// Defaults for the combined argument prefix.
const (
	DefaultMainFlag  = "--main"
	DefaultNamespace = "loader.core"
)

// Config is the launcher configuration.
type Config struct {
	Runtime   string               `yaml:"runtime" toml:"runtime"`
	MainFlag  string               `yaml:"main_flag" toml:"main_flag"`
	Namespace string               `yaml:"namespace" toml:"namespace"`
	Classpath []string             `yaml:"classpath,omitempty" toml:"classpath,omitempty"`
	Watch     bool                 `yaml:"watch,omitempty" toml:"watch,omitempty"`
	Journal   string               `yaml:"journal,omitempty" toml:"journal,omitempty"`
	Java      runtime.JavaConfig   `yaml:"java" toml:"java"`
	Docker    runtime.DockerConfig `yaml:"docker" toml:"docker"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads a YAML or TOML config file, chosen by extension.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config format %q (want .yaml, .yml or .toml)", filepath.Ext(path))
	}

	cfg.applyDefaults()
	return cfg, nil
}

// ConfigFromEnv loads the file named by CLJLOADER_CONFIG, if any, and
// applies environment overrides.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if path := os.Getenv(EnvConfig); path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}
	cfg.applyEnv()
	return cfg, nil
}

// Prefix returns the two tokens placed before the process arguments.
func (c Config) Prefix() [2]string {
	return [2]string{c.MainFlag, c.Namespace}
}

func (c *Config) applyDefaults() {
	if c.Runtime == "" {
		c.Runtime = runtime.NameLocal
	}
	if c.MainFlag == "" {
		c.MainFlag = DefaultMainFlag
	}
	if c.Namespace == "" {
		c.Namespace = DefaultNamespace
	}
	if c.Java.Binary == "" {
		c.Java.Binary = "java"
	}
	if c.Java.MainClass == "" {
		c.Java.MainClass = "clojure.main"
	}
	if c.Docker.Image == "" {
		c.Docker.Image = "clojure:temurin-21-lein"
	}
	if c.Docker.Workdir == "" {
		c.Docker.Workdir = "/app"
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvRuntime); v != "" {
		c.Runtime = v
	}
	if v := os.Getenv(EnvJavaCmd); v != "" {
		c.Java.Binary = v
	}
	if v := os.Getenv(EnvJavaOpt); v != "" {
		c.Java.Options = append(c.Java.Options, strings.Fields(v)...)
	}
}
