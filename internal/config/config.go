// Package config loads diskforge's own settings: the project whose images
// are resolved, where the lookup cache lives, how to reach libvirt and how
// verbose to log.
//
// Settings come from a YAML file (default ~/.diskforge/config.yaml),
// overridden by DISKFORGE_* variables from the environment or a .env file.
package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	// DirName is the per-user settings directory under $HOME.
	DirName = ".diskforge"

	// FileName is the settings file inside DirName.
	FileName = "config.yaml"

	// CacheFileName is the default lookup cache file inside DirName.
	CacheFileName = "cache.yaml"

	// DefaultImagePool is the libvirt pool scanned by cache refreshes.
	DefaultImagePool = "diskforge-images"

	// DefaultStoragePool is the libvirt pool rendered disk volumes live in.
	DefaultStoragePool = "diskforge-vms"

	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"
)

// Environment variables that override file settings.
const (
	EnvProject       = "DISKFORGE_PROJECT"
	EnvCachePath     = "DISKFORGE_CACHE"
	EnvLibvirtSocket = "DISKFORGE_LIBVIRT_SOCKET"
	EnvImagePool     = "DISKFORGE_IMAGE_POOL"
	EnvStoragePool   = "DISKFORGE_STORAGE_POOL"
	EnvLogLevel      = "DISKFORGE_LOG_LEVEL"
)

// Config holds diskforge settings.
type Config struct {
	Project   string        `yaml:"project"`
	CachePath string        `yaml:"cache_path,omitempty"`
	Libvirt   LibvirtConfig `yaml:"libvirt,omitempty"`
	Log       LogConfig     `yaml:"log,omitempty"`
}

// LibvirtConfig defines how the libvirt daemon is reached.
type LibvirtConfig struct {
	Socket      string `yaml:"socket,omitempty"`       // Empty uses the qemu:///system socket
	ImagePool   string `yaml:"image_pool,omitempty"`   // Pool holding catalog images
	StoragePool string `yaml:"storage_pool,omitempty"` // Pool holding per-VM volumes
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level,omitempty"` // debug, info, warn, error
}

// DefaultDir returns ~/.diskforge.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to determine home directory")
	}
	return filepath.Join(home, DirName), nil
}

// DefaultPath returns ~/.diskforge/config.yaml.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads settings from path, applies environment overrides, normalizes
// and validates them.
//
// An empty path means DefaultPath, which may be absent. An explicit path
// must exist. envFiles are read for DISKFORGE_* values; with none given a
// .env file in the working directory is used if present. Variables already
// set in the process environment win over env files.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := &Config{}

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config file %s", path)
		}
	case os.IsNotExist(err) && !explicit:
		// defaults only
	default:
		return nil, errors.Wrap(err, "failed to read config file")
	}

	fileEnv, err := readEnvFiles(envFiles)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv(func(key string) string {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v
		}
		return fileEnv[key]
	})

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return cfg, nil
}

// readEnvFiles reads KEY=value pairs from files without touching the
// process environment.
func readEnvFiles(files []string) (map[string]string, error) {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return map[string]string{}, nil
		}
		files = []string{".env"}
	}

	env, err := godotenv.Read(files...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read env file")
	}
	return env, nil
}

// applyEnv overrides settings with non-empty values returned by lookup.
func (c *Config) applyEnv(lookup func(string) string) {
	overrides := []struct {
		key   string
		field *string
	}{
		{EnvProject, &c.Project},
		{EnvCachePath, &c.CachePath},
		{EnvLibvirtSocket, &c.Libvirt.Socket},
		{EnvImagePool, &c.Libvirt.ImagePool},
		{EnvStoragePool, &c.Libvirt.StoragePool},
		{EnvLogLevel, &c.Log.Level},
	}
	for _, o := range overrides {
		if v := lookup(o.key); v != "" {
			*o.field = v
		}
	}
}

// Normalize sanitizes user input and fills defaults.
// This is called automatically by Load before validation.
func (c *Config) Normalize() error {
	c.Project = strings.TrimSpace(c.Project)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Libvirt.ImagePool == "" {
		c.Libvirt.ImagePool = DefaultImagePool
	}
	if c.Libvirt.StoragePool == "" {
		c.Libvirt.StoragePool = DefaultStoragePool
	}

	if c.CachePath == "" {
		dir, err := DefaultDir()
		if err != nil {
			return err
		}
		c.CachePath = filepath.Join(dir, CacheFileName)
	} else if strings.HasPrefix(c.CachePath, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap(err, "failed to expand cache_path")
		}
		c.CachePath = filepath.Join(home, c.CachePath[2:])
	}

	return nil
}

var poolNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// Validate checks the configuration for errors.
// The project may be empty; commands that resolve catalog images require it.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.Errorf("log.level %q must be one of debug, info, warn, error", c.Log.Level)
	}

	if !poolNamePattern.MatchString(c.Libvirt.ImagePool) {
		return errors.Errorf("libvirt.image_pool %q is not a valid pool name", c.Libvirt.ImagePool)
	}
	if !poolNamePattern.MatchString(c.Libvirt.StoragePool) {
		return errors.Errorf("libvirt.storage_pool %q is not a valid pool name", c.Libvirt.StoragePool)
	}

	if c.Libvirt.Socket != "" && !filepath.IsAbs(c.Libvirt.Socket) {
		return errors.Errorf("libvirt.socket %q must be an absolute path", c.Libvirt.Socket)
	}

	return nil
}

// RequireProject returns an error when no project is configured.
func (c *Config) RequireProject() error {
	if c.Project == "" {
		return errors.Errorf("project is required (set 'project' in %s or %s)", FileName, EnvProject)
	}
	return nil
}

// LogLevel returns the configured level. Call after Validate.
func (c *Config) LogLevel() zapcore.Level {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write config file %s", path)
	}

	return nil
}
