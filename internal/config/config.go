package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// applyDefaults seeds Viper with defaults defined in GetConfigOptions.
func applyDefaults(v *viper.Viper) {
	for _, o := range GetConfigOptions() {
		v.SetDefault(o.Key, o.Default)
	}
}

// Load resolves configuration with precedence: defaults < file < env.
// A .env file in the working directory is read first; it never overrides
// variables already present in the environment.
func Load(ctx context.Context, v *viper.Viper) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read .env: %w", err)
	}

	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "arttown"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "arttown"))
		}
		v.AddConfigPath(".")
	}

	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	// ARTTOWN_REMOTE_URL etc.
	v.SetEnvPrefix("arttown")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Frontend-style variables used by existing deployments.
	if v.GetString("remote.url") == "" {
		if s := os.Getenv("VITE_SUPABASE_URL"); s != "" {
			v.Set("remote.url", s)
		}
	}
	if v.GetString("remote.anon_key") == "" {
		if s := os.Getenv("VITE_SUPABASE_ANON_KEY"); s != "" {
			v.Set("remote.anon_key", s)
		}
	}

	if v.GetString("data_dir") == "" {
		v.Set("data_dir", defaultDataDir())
	}
	return nil
}

// defaultDataDir resolves default data dir: $XDG_DATA_HOME/arttown or ~/.local/share/arttown
func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "arttown")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "arttown")
}

// DefaultConfigPath resolves the standard config.toml location.
func DefaultConfigPath() string {
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		home, _ := os.UserHomeDir()
		xdg = filepath.Join(home, ".config")
	}
	return filepath.Join(xdg, "arttown", "config.toml")
}

type ConfigOption struct {
	Key     string
	Default any
	Comment string
}

// GetConfigOptions returns the default configuration options and their meanings.
// This is the single source of truth for default values and generator output.
func GetConfigOptions() []ConfigOption {
	return []ConfigOption{
		{Key: "data_dir", Default: defaultDataDir(), Comment: "Directory for local state; cache DB is data_dir/arttown.db"},
		{Key: "http_addr", Default: ":8080", Comment: "HTTP listen address for the site"},

		{Key: "log.level", Default: "info", Comment: "Log level: debug, info, warn, error"},
		{Key: "log.format", Default: "console", Comment: "Log encoding: console or json"},

		{Key: "http.quic_addr", Default: "", Comment: "UDP address for an HTTP/3 listener; requires TLS"},
		{Key: "auth.token", Default: "", Comment: "Bearer token required by POST /api/v1/refresh; empty disables the endpoint"},

		{Key: "remote.url", Default: "", Comment: "Hosted database base URL (https://<project>.supabase.co)"},
		{Key: "remote.anon_key", Default: "", Comment: "Anonymous API key for the hosted database"},
		{Key: "remote.timeout", Default: "10s", Comment: "Per-request timeout for the hosted database"},

		{Key: "content.static_file", Default: "", Comment: "YAML file replacing the bundled fallback content"},
		{Key: "content.refresh_interval", Default: "5m", Comment: "Background reload interval for the site; 0 disables"},
		{Key: "content.cache", Default: true, Comment: "Keep the last good remote content in the local cache DB"},

		{Key: "site.timezone", Default: "UTC", Comment: "IANA time zone used for article dates"},

		{Key: "tls.domain", Default: "", Comment: "Domain for automatic certificates (ACME); empty disables"},
		{Key: "tls.email", Default: "", Comment: "ACME account email"},
		{Key: "tls.cert_file", Default: "", Comment: "PEM certificate file; used with tls.key_file instead of ACME"},
		{Key: "tls.key_file", Default: "", Comment: "PEM private key file"},

		{Key: "render.width", Default: 80, Comment: "Word-wrap width for pretty terminal output"},
	}
}

// ResolveDBPath returns the sqlite cache DB file path under data_dir.
func ResolveDBPath(v *viper.Viper) string {
	dir := v.GetString("data_dir")
	if dir == "" {
		dir = defaultDataDir()
	}
	// Expand ~ for convenience
	if len(dir) > 0 && dir[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, dir[1:])
		}
	}
	return filepath.Join(dir, "arttown.db")
}

// CheckConfigValidity reports every problem found in v as one joined error.
func CheckConfigValidity(v *viper.Viper) error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if strings.TrimSpace(v.GetString("data_dir")) == "" {
		add("data_dir is required")
	}
	switch v.GetString("log.level") {
	case "", "debug", "info", "warn", "error":
	default:
		add("log.level must be one of debug, info, warn, error")
	}
	switch v.GetString("log.format") {
	case "", "console", "json":
	default:
		add("log.format must be console or json")
	}
	if addr := v.GetString("http_addr"); addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			add("http_addr is not a host:port address")
		}
	}

	rawURL := strings.TrimSpace(v.GetString("remote.url"))
	key := strings.TrimSpace(v.GetString("remote.anon_key"))
	if rawURL != "" {
		u, err := url.Parse(rawURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			add("remote.url must be an http(s) url")
		}
		if key == "" {
			add("remote.anon_key is required when remote.url is set")
		}
	}
	if err := checkDuration(v, "remote.timeout", false); err != nil {
		errs = append(errs, err)
	}
	if err := checkDuration(v, "content.refresh_interval", true); err != nil {
		errs = append(errs, err)
	}
	if p := v.GetString("content.static_file"); p != "" {
		if _, err := os.Stat(p); err != nil {
			add("content.static_file %s: %v", p, err)
		}
	}
	if tz := v.GetString("site.timezone"); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			add("site.timezone %q is not a known time zone", tz)
		}
	}

	cert, keyFile := v.GetString("tls.cert_file"), v.GetString("tls.key_file")
	if (cert == "") != (keyFile == "") {
		add("tls.cert_file and tls.key_file must be set together")
	}
	if cert != "" && v.GetString("tls.domain") != "" {
		add("tls.domain cannot be combined with tls.cert_file")
	}
	if v.GetString("http.quic_addr") != "" && cert == "" && v.GetString("tls.domain") == "" {
		add("http.quic_addr requires tls.cert_file or tls.domain")
	}
	if v.GetInt("render.width") <= 0 {
		add("render.width must be greater than 0")
	}
	return errors.Join(errs...)
}

func checkDuration(v *viper.Viper, key string, allowZero bool) error {
	s := strings.TrimSpace(v.GetString(key))
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%s is not a duration: %q", key, s)
	}
	if d < 0 || (d == 0 && !allowZero) {
		return fmt.Errorf("%s must be greater than 0", key)
	}
	return nil
}

// Location returns the configured site time zone, UTC when unset or invalid.
func Location(v *viper.Viper) *time.Location {
	loc, err := time.LoadLocation(v.GetString("site.timezone"))
	if err != nil || loc == nil {
		return time.UTC
	}
	return loc
}
