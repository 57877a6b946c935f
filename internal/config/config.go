package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Analysis backend
	BackendBaseURL   string `mapstructure:"backend_base_url" yaml:"backend_base_url"`
	UploadTimeoutSec int    `mapstructure:"upload_timeout_sec" yaml:"upload_timeout_sec"`
	MaxUploadMB      int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`

	// Health monitor
	ProbeIntervalSec int `mapstructure:"probe_interval_sec" yaml:"probe_interval_sec"`
	ProbeTimeoutSec  int `mapstructure:"probe_timeout_sec" yaml:"probe_timeout_sec"`

	// Dashboard surface
	ListenAddr  string `mapstructure:"listen_addr" yaml:"listen_addr"`
	ExportDir   string `mapstructure:"export_dir" yaml:"export_dir"`
	PreviewRows int    `mapstructure:"preview_rows" yaml:"preview_rows"`
}

// Defaults used when neither the config file nor the environment set a key.
const (
	DefaultBackendBaseURL   = "http://localhost:8000"
	DefaultUploadTimeoutSec = 60
	DefaultMaxUploadMB      = 10
	DefaultProbeIntervalSec = 30
	DefaultProbeTimeoutSec  = 3
	DefaultListenAddr       = "127.0.0.1:8080"
	DefaultPreviewRows      = 10
)

// UploadTimeout returns the bounded upload timeout.
func (c *Global) UploadTimeout() time.Duration {
	return secondsOr(c.UploadTimeoutSec, DefaultUploadTimeoutSec)
}

// ProbeInterval returns the delay between periodic health probes.
func (c *Global) ProbeInterval() time.Duration {
	return secondsOr(c.ProbeIntervalSec, DefaultProbeIntervalSec)
}

// ProbeTimeout returns the deadline of a single health probe.
func (c *Global) ProbeTimeout() time.Duration {
	return secondsOr(c.ProbeTimeoutSec, DefaultProbeTimeoutSec)
}

// MaxUploadBytes converts MaxUploadMB into bytes.
func (c *Global) MaxUploadBytes() int64 {
	mb := c.MaxUploadMB
	if mb <= 0 {
		mb = DefaultMaxUploadMB
	}
	return int64(mb) << 20
}

func secondsOr(v, def int) time.Duration {
	if v <= 0 {
		v = def
	}
	return time.Duration(v) * time.Second
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.datadash/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file (cfgFile or ~/.datadash/config.yaml) > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("DATADASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("backend_base_url", DefaultBackendBaseURL)
	v.SetDefault("upload_timeout_sec", DefaultUploadTimeoutSec)
	v.SetDefault("max_upload_mb", DefaultMaxUploadMB)
	v.SetDefault("probe_interval_sec", DefaultProbeIntervalSec)
	v.SetDefault("probe_timeout_sec", DefaultProbeTimeoutSec)
	v.SetDefault("listen_addr", DefaultListenAddr)
	v.SetDefault("export_dir", ".")
	v.SetDefault("preview_rows", DefaultPreviewRows)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.BackendBaseURL = strings.TrimRight(strings.TrimSpace(c.BackendBaseURL), "/")
	if c.BackendBaseURL == "" {
		c.BackendBaseURL = DefaultBackendBaseURL
	}
	return &c, nil
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".datadash"), nil
}
