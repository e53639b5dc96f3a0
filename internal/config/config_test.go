package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// isolate points HOME at a temp dir and clears DISKFORGE_* overrides.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{EnvProject, EnvCachePath, EnvLibvirtSocket, EnvImagePool, EnvStoragePool, EnvLogLevel} {
		t.Setenv(key, "")
	}
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Empty(t, cfg.Project)
	assert.Equal(t, filepath.Join(home, DirName, CacheFileName), cfg.CachePath)
	assert.Equal(t, DefaultImagePool, cfg.Libvirt.ImagePool)
	assert.Equal(t, DefaultStoragePool, cfg.Libvirt.StoragePool)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, zapcore.InfoLevel, cfg.LogLevel())
}

func TestLoad_DefaultPathFile(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, DirName, FileName), `project: demo
log:
  level: DEBUG
libvirt:
  image_pool: golden
`)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Project)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, zapcore.DebugLevel, cfg.LogLevel())
	assert.Equal(t, "golden", cfg.Libvirt.ImagePool)
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidYAML(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "project: [unclosed")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "project: from-file\n")

	t.Setenv(EnvProject, "from-env")
	t.Setenv(EnvStoragePool, "fast-vms")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Project)
	assert.Equal(t, "fast-vms", cfg.Libvirt.StoragePool)
}

func TestLoad_EnvFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, "diskforge.env")
	writeFile(t, envFile, "DISKFORGE_PROJECT=from-dotenv\nDISKFORGE_LOG_LEVEL=warn\nDISKFORGE_CACHE=/tmp/df-cache.yaml\n")

	t.Setenv(EnvLogLevel, "error")

	cfg, err := Load(filepath.Join(dir, "absent.yaml"), envFile)
	require.Error(t, err, "explicit config path must exist")

	writeFile(t, filepath.Join(dir, "config.yaml"), "{}\n")
	cfg, err = Load(filepath.Join(dir, "config.yaml"), envFile)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Project)
	assert.Equal(t, "/tmp/df-cache.yaml", cfg.CachePath)
	assert.Equal(t, "error", cfg.Log.Level, "process environment wins over env files")

	_, isSet := os.LookupEnv(EnvProject)
	assert.True(t, isSet)
	assert.Empty(t, os.Getenv(EnvProject), "env files must not leak into the process environment")
}

func TestLoad_MissingEnvFile(t *testing.T) {
	isolate(t)

	_, err := Load("", filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read env file")
}

func TestNormalize_ExpandsHome(t *testing.T) {
	home := isolate(t)

	cfg := &Config{CachePath: "~/caches/df.yaml"}
	require.NoError(t, cfg.Normalize())
	assert.Equal(t, filepath.Join(home, "caches", "df.yaml"), cfg.CachePath)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{Project: "demo", CachePath: "/tmp/cache.yaml"}
		cfg.Log.Level = "info"
		cfg.Libvirt.ImagePool = DefaultImagePool
		cfg.Libvirt.StoragePool = DefaultStoragePool
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: "log.level"},
		{name: "bad image pool", mutate: func(c *Config) { c.Libvirt.ImagePool = "-pool" }, wantErr: "libvirt.image_pool"},
		{name: "bad storage pool", mutate: func(c *Config) { c.Libvirt.StoragePool = "a b" }, wantErr: "libvirt.storage_pool"},
		{name: "relative socket", mutate: func(c *Config) { c.Libvirt.Socket = "libvirt-sock" }, wantErr: "libvirt.socket"},
		{name: "absolute socket", mutate: func(c *Config) { c.Libvirt.Socket = "/run/libvirt/libvirt-sock" }},
		{name: "empty project is allowed", mutate: func(c *Config) { c.Project = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRequireProject(t *testing.T) {
	assert.Error(t, (&Config{}).RequireProject())
	assert.NoError(t, (&Config{Project: "demo"}).RequireProject())
}

func TestSave_RoundTrip(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := &Config{Project: "demo", CachePath: "/tmp/cache.yaml"}
	cfg.Libvirt.ImagePool = "golden"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", loaded.Project)
	assert.Equal(t, "golden", loaded.Libvirt.ImagePool)
	assert.Equal(t, "/tmp/cache.yaml", loaded.CachePath)
}
