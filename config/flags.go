package config

import (
	"github.com/spf13/pflag"
)

// Flag names registered by RegisterFlags.
const (
	FlagConfig         = "config"
	FlagDomain         = "domain"
	FlagPublicURL      = "public-url"
	FlagListen         = "listen"
	FlagUploadDir      = "upload-dir"
	FlagStorageBackend = "storage-backend"
	FlagIOTimeout      = "io-timeout"
	FlagLogLevel       = "log-level"
	FlagLogFormat      = "log-format"
	FlagLogBackend     = "log-backend"
	FlagCORSOrigins    = "cors-origins"
)

// RegisterFlags defines the configuration flags on fs. Their defaults mirror
// Default(); only flags set on the command line override other sources. The
// API key has no flag: it is read from the file or the environment only.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(FlagConfig, "", "path to a YAML configuration file")
	fs.String(FlagDomain, d.Domain, "public host name used in file URLs ($"+EnvDomain+")")
	fs.String(FlagPublicURL, "", "public base URL overriding domain and port ($"+EnvPublicURL+")")
	fs.String(FlagListen, d.ListenAddr, "HTTP listen address ($"+EnvListenAddr+")")
	fs.String(FlagUploadDir, d.Storage.Dir, "directory artifacts are stored in ($"+EnvUploadFolder+")")
	fs.String(FlagStorageBackend, d.Storage.Backend, "storage backend: disk or memory ($"+EnvStorageBackend+")")
	fs.Duration(FlagIOTimeout, d.Storage.IOTimeout, "deadline for the I/O of one call, 0 disables ($"+EnvIOTimeout+")")
	fs.String(FlagLogLevel, d.Log.Level, "log level: debug, info, warn, error ($"+EnvLogLevel+")")
	fs.String(FlagLogFormat, d.Log.Format, "log format: json or text ($"+EnvLogFormat+")")
	fs.String(FlagLogBackend, d.Log.Backend, "log backend: slog or zap ($"+EnvLogBackend+")")
	fs.StringSlice(FlagCORSOrigins, d.CORS.AllowedOrigins, "origins allowed to call the API from browsers ($"+EnvCORSOrigins+")")
}

func (c *Config) mergeFlags(fs *pflag.FlagSet) error {
	var err error
	str := func(name string, dst *string) {
		if err != nil || !fs.Changed(name) {
			return
		}
		*dst, err = fs.GetString(name)
	}
	str(FlagDomain, &c.Domain)
	str(FlagPublicURL, &c.PublicURL)
	str(FlagListen, &c.ListenAddr)
	str(FlagUploadDir, &c.Storage.Dir)
	str(FlagStorageBackend, &c.Storage.Backend)
	str(FlagLogLevel, &c.Log.Level)
	str(FlagLogFormat, &c.Log.Format)
	str(FlagLogBackend, &c.Log.Backend)
	if err != nil {
		return err
	}

	if fs.Changed(FlagIOTimeout) {
		if c.Storage.IOTimeout, err = fs.GetDuration(FlagIOTimeout); err != nil {
			return err
		}
	}
	if fs.Changed(FlagCORSOrigins) {
		if c.CORS.AllowedOrigins, err = fs.GetStringSlice(FlagCORSOrigins); err != nil {
			return err
		}
	}
	return nil
}
