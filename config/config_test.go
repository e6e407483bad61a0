package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(o *LoadOptions) {
	return func(o *LoadOptions) {
		o.LookupEnv = func(key string) (string, bool) {
			v, ok := m[key]
			return v, ok
		}
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "api64.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_RequiresAPIKey(t *testing.T) {
	_, err := Load(envMap(nil))
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = Load(envMap(map[string]string{EnvAPIKey: ""}))
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(envMap(map[string]string{EnvAPIKey: "secret"}))
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, "localhost", cfg.Domain)
	assert.Equal(t, ":5000", cfg.ListenAddr)
	assert.Equal(t, "uploads", cfg.Storage.Dir)
	assert.Equal(t, BackendDisk, cfg.Storage.Backend)
	assert.Equal(t, "http://localhost:5000", cfg.BaseURL())
	assert.Equal(t, "http://localhost:5000/uploads/file_1_ab.pdf", cfg.FileURL("file_1_ab.pdf"))
}

func TestLoad_Environment(t *testing.T) {
	cfg, err := Load(envMap(map[string]string{
		EnvAPIKey:       "secret",
		EnvDomain:       "files.example.com",
		EnvListenAddr:   "0.0.0.0:8080",
		EnvUploadFolder: "/srv/uploads",
		EnvIOTimeout:    "5s",
		EnvCORSOrigins:  "https://a.example, https://b.example",
		EnvLogBackend:   "zap",
	}))
	require.NoError(t, err)

	assert.Equal(t, "/srv/uploads", cfg.Storage.Dir)
	assert.Equal(t, 5*time.Second, cfg.Storage.IOTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "http://files.example.com:8080", cfg.BaseURL())
	assert.Equal(t, "zap", cfg.Log.Backend)

	_, err = Load(envMap(map[string]string{EnvAPIKey: "secret", EnvIOTimeout: "soon"}))
	assert.Error(t, err)
}

func TestLoad_FileThenEnvThenFlags(t *testing.T) {
	path := writeFile(t, `
api_key: from-file
domain: file.example
storage:
  dir: /data/file
  io_timeout: 10s
content_types:
  image/webp: webp
`)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--upload-dir", "/data/flag"}))

	cfg, err := Load(envMap(map[string]string{EnvDomain: "env.example"}), func(o *LoadOptions) {
		o.Path = path
		o.Flags = fs
	})
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.APIKey)
	assert.Equal(t, "env.example", cfg.Domain, "env beats file")
	assert.Equal(t, "/data/flag", cfg.Storage.Dir, "flag beats file")
	assert.Equal(t, 10*time.Second, cfg.Storage.IOTimeout, "unset flag keeps file value")
	assert.Equal(t, map[string]string{"image/webp": "webp"}, cfg.ContentTypes)
}

func TestLoad_FileErrors(t *testing.T) {
	_, err := Load(envMap(map[string]string{EnvAPIKey: "x"}), func(o *LoadOptions) { o.Path = "/does/not/exist.yaml" })
	assert.Error(t, err)

	path := writeFile(t, "unknown_key: 1\n")
	_, err = Load(envMap(map[string]string{EnvAPIKey: "x"}), func(o *LoadOptions) { o.Path = path })
	assert.Error(t, err)

	empty := writeFile(t, "")
	_, err = Load(envMap(map[string]string{EnvAPIKey: "x"}), func(o *LoadOptions) { o.Path = empty })
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	base := Default()
	base.APIKey = "x"
	require.NoError(t, base.Validate())

	bad := base
	bad.Storage.Backend = "s3"
	assert.Error(t, bad.Validate())

	bad = base
	bad.Storage.Dir = ""
	assert.Error(t, bad.Validate())

	mem := bad
	mem.Storage.Backend = BackendMemory
	assert.NoError(t, mem.Validate())

	bad = base
	bad.PublicURL = "files.example.com"
	assert.Error(t, bad.Validate())

	bad = base
	bad.Log.Backend = "logrus"
	assert.Error(t, bad.Validate())
}

func TestFileURL(t *testing.T) {
	cfg := Default()
	cfg.PublicURL = "https://cdn.example.com/"
	assert.Equal(t, "https://cdn.example.com/uploads/a.pdf", cfg.FileURL("a.pdf"))
	assert.Equal(t, "https://cdn.example.com/uploads/file_1_00.plain%3B%20charset=utf-8", cfg.FileURL("file_1_00.plain; charset=utf-8"))
}

func TestString_MasksSecret(t *testing.T) {
	cfg := Default()
	cfg.APIKey = "super-secret"
	out := cfg.String()
	assert.NotContains(t, out, "super-secret")
	assert.Contains(t, out, "****")
}

func TestWithDefaults(t *testing.T) {
	cfg := Config{APIKey: "x"}.WithDefaults()
	require.NoError(t, cfg.Validate())

	d := Default()
	assert.Equal(t, d.Domain, cfg.Domain)
	assert.Equal(t, d.ListenAddr, cfg.ListenAddr)
	assert.Equal(t, d.Storage.Backend, cfg.Storage.Backend)
	assert.Equal(t, d.Storage.Dir, cfg.Storage.Dir)
	assert.Equal(t, d.Log, cfg.Log)
	assert.Zero(t, cfg.Storage.IOTimeout)
	assert.Empty(t, cfg.CORS.AllowedOrigins)

	mem := Config{APIKey: "x", Storage: StorageConfig{Backend: BackendMemory}}.WithDefaults()
	assert.Empty(t, mem.Storage.Dir)
	require.NoError(t, mem.Validate())

	set := Config{APIKey: "x", Domain: "files.example", Log: LogConfig{Backend: "zap"}}.WithDefaults()
	assert.Equal(t, "files.example", set.Domain)
	assert.Equal(t, "zap", set.Log.Backend)
	assert.Equal(t, "info", set.Log.Level)
}

func TestLoad_EmptyFileValuesTakeDefaults(t *testing.T) {
	path := writeFile(t, `
storage:
  backend: ""
log:
  backend: ""
`)
	cfg, err := Load(envMap(map[string]string{EnvAPIKey: "x"}), func(o *LoadOptions) { o.Path = path })
	require.NoError(t, err)
	assert.Equal(t, BackendDisk, cfg.Storage.Backend)
	assert.Equal(t, "slog", cfg.Log.Backend)
}
