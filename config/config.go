// Package config loads the immutable process configuration of API64.
//
// Values are resolved in increasing precedence from built-in defaults, an
// optional YAML file, environment variables and finally command-line flags
// that were explicitly set. The resulting Config is a plain value: it is
// built once at startup and handed to the components that need it.
package config

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// UploadsPath is the fixed path segment retrieval URLs are built with.
const UploadsPath = "/uploads/"

// Storage backends.
const (
	BackendDisk   = "disk"
	BackendMemory = "memory"
)

// Environment variables understood by Load.
const (
	EnvAPIKey         = "API_KEY"
	EnvDomain         = "APP_DOMAIN"
	EnvPublicURL      = "PUBLIC_URL"
	EnvListenAddr     = "LISTEN_ADDR"
	EnvUploadFolder   = "UPLOAD_FOLDER"
	EnvStorageBackend = "STORAGE_BACKEND"
	EnvIOTimeout      = "IO_TIMEOUT"
	EnvLogLevel       = "LOG_LEVEL"
	EnvLogFormat      = "LOG_FORMAT"
	EnvLogBackend     = "LOG_BACKEND"
	EnvCORSOrigins    = "CORS_ALLOWED_ORIGINS"
)

// ErrMissingAPIKey is returned by Validate when no shared secret is set. The
// process must refuse to start in that case.
var ErrMissingAPIKey = errors.New("API_KEY is required but not set")

// Config is the complete process configuration.
type Config struct {
	// APIKey is the shared secret callers present in the API-Key header.
	APIKey string `yaml:"api_key"`
	// Domain is the public host name used in retrieval URLs.
	Domain string `yaml:"domain"`
	// PublicURL overrides the scheme://host:port part of retrieval URLs.
	PublicURL string `yaml:"public_url"`
	// ListenAddr is the HTTP listen address.
	ListenAddr string `yaml:"listen_addr"`

	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	CORS    CORSConfig    `yaml:"cors"`

	// ContentTypes adds to or overrides the built-in media type table.
	ContentTypes map[string]string `yaml:"content_types"`
}

// StorageConfig selects and tunes the artifact store.
type StorageConfig struct {
	Dir       string        `yaml:"dir"`
	Backend   string        `yaml:"backend"`
	IOTimeout time.Duration `yaml:"io_timeout"`
}

// LogConfig selects the logger.
type LogConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`  // json or text
	Backend string `yaml:"backend"` // slog or zap
}

// CORSConfig lists the origins browsers may call the gateway from.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the built-in defaults. The API key has no default.
func Default() Config {
	return Config{
		Domain:     "localhost",
		ListenAddr: ":5000",
		Storage: StorageConfig{
			Dir:       "uploads",
			Backend:   BackendDisk,
			IOTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level:   "info",
			Format:  "json",
			Backend: "slog",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
	}
}

// WithDefaults returns c with every empty scalar setting replaced by its
// value from Default(). The API key, the public URL, the IO timeout, the CORS
// origins and the content types keep their zero values, which are meaningful.
func (c Config) WithDefaults() Config {
	d := Default()
	if c.Domain == "" {
		c.Domain = d.Domain
	}
	if c.ListenAddr == "" {
		c.ListenAddr = d.ListenAddr
	}
	c.Storage = c.Storage.WithDefaults()
	c.Log = c.Log.WithDefaults()
	return c
}

// WithDefaults fills an empty backend, and the directory of the disk backend.
func (s StorageConfig) WithDefaults() StorageConfig {
	d := Default().Storage
	if s.Backend == "" {
		s.Backend = d.Backend
	}
	if s.Backend == BackendDisk && s.Dir == "" {
		s.Dir = d.Dir
	}
	return s
}

// WithDefaults fills an empty level, format or backend.
func (l LogConfig) WithDefaults() LogConfig {
	d := Default().Log
	if l.Level == "" {
		l.Level = d.Level
	}
	if l.Format == "" {
		l.Format = d.Format
	}
	if l.Backend == "" {
		l.Backend = d.Backend
	}
	return l
}

// LoadOptions configures Load.
type LoadOptions struct {
	// Path of an optional YAML file. Empty skips the file.
	Path string
	// LookupEnv reads environment variables. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
	// Flags registered with RegisterFlags; only flags that were set override.
	Flags *pflag.FlagSet
}

// Load resolves the configuration and validates it.
func Load(optFns ...func(o *LoadOptions)) (Config, error) {
	opts := LoadOptions{LookupEnv: os.LookupEnv}
	for _, fn := range optFns {
		fn(&opts)
	}

	cfg := Default()

	if opts.Path != "" {
		if err := cfg.mergeFile(opts.Path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.mergeEnv(opts.LookupEnv); err != nil {
		return Config{}, err
	}
	if opts.Flags != nil {
		if err := cfg.mergeFlags(opts.Flags); err != nil {
			return Config{}, err
		}
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str(EnvAPIKey, &c.APIKey)
	str(EnvDomain, &c.Domain)
	str(EnvPublicURL, &c.PublicURL)
	str(EnvListenAddr, &c.ListenAddr)
	str(EnvUploadFolder, &c.Storage.Dir)
	str(EnvStorageBackend, &c.Storage.Backend)
	str(EnvLogLevel, &c.Log.Level)
	str(EnvLogFormat, &c.Log.Format)
	str(EnvLogBackend, &c.Log.Backend)

	if v, ok := lookup(EnvIOTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvIOTimeout, err)
		}
		c.Storage.IOTimeout = d
	}
	if v, ok := lookup(EnvCORSOrigins); ok && v != "" {
		c.CORS.AllowedOrigins = splitList(v)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate checks the configuration for values the gateway cannot run with.
// Empty settings are not defaulted here; call WithDefaults first.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	switch c.Storage.Backend {
	case BackendDisk:
		if c.Storage.Dir == "" {
			return errors.New("storage directory must not be empty")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.IOTimeout < 0 {
		return fmt.Errorf("negative io timeout %s", c.Storage.IOTimeout)
	}
	switch c.Log.Backend {
	case "slog", "zap":
	default:
		return fmt.Errorf("unknown log backend %q", c.Log.Backend)
	}
	if c.PublicURL != "" {
		u, err := url.Parse(c.PublicURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("public url %q must be absolute", c.PublicURL)
		}
	}
	return nil
}

// BaseURL returns the scheme://host:port prefix of retrieval URLs. Without an
// explicit PublicURL it is derived from Domain and the listen port.
func (c Config) BaseURL() string {
	if c.PublicURL != "" {
		return strings.TrimRight(c.PublicURL, "/")
	}
	port := "5000"
	if _, p, err := net.SplitHostPort(c.ListenAddr); err == nil && p != "" {
		port = p
	}
	return "http://" + net.JoinHostPort(c.Domain, port)
}

// FileURL returns the public retrieval URL of an artifact.
func (c Config) FileURL(name string) string {
	return c.BaseURL() + UploadsPath + url.PathEscape(name)
}

// String renders the configuration for startup logs with the secret masked.
func (c Config) String() string {
	masked := c
	if masked.APIKey != "" {
		masked.APIKey = "****"
	}
	out, err := yaml.Marshal(masked)
	if err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return string(out)
}
