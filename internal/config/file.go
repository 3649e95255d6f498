package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileConfig is the optional YAML file pointed to by DEVMARKS_CONFIG_FILE.
// It only carries non-secret settings; every key can still be overridden
// by the matching environment variable.
type fileConfig struct {
	Server struct {
		ListenPort      string `yaml:"listen_port"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
		RequestTimeout  string `yaml:"request_timeout"`
		AppURL          string `yaml:"app_url"`
	} `yaml:"server"`

	Log struct {
		Level  string `yaml:"level"`
		Pretty *bool  `yaml:"pretty"`
	} `yaml:"log"`

	Redis struct {
		Addr string `yaml:"addr"`
		DB   *int   `yaml:"db"`
	} `yaml:"redis"`

	Session struct {
		TTL          string `yaml:"ttl"`
		CookieName   string `yaml:"cookie_name"`
		CookieSecure *bool  `yaml:"cookie_secure"`
		MagicLinkTTL string `yaml:"magic_link_ttl"`
	} `yaml:"session"`

	Mail struct {
		SMTPHost string `yaml:"smtp_host"`
		SMTPPort *int   `yaml:"smtp_port"`
		From     string `yaml:"from"`
	} `yaml:"mail"`

	Articles struct {
		BaseURL         string `yaml:"base_url"`
		PerPage         *int   `yaml:"per_page"`
		Timeout         string `yaml:"timeout"`
		CacheTTL        string `yaml:"cache_ttl"`
		RefreshInterval string `yaml:"refresh_interval"`
	} `yaml:"articles"`

	Access struct {
		AllowedHosts []string `yaml:"allowed_hosts"`
		AllowedCIDRS []string `yaml:"allowed_cidrs"`
		TrustProxy   *bool    `yaml:"trust_proxy"`
		CORSOrigins  []string `yaml:"cors_origins"`
	} `yaml:"access"`
}

// fileValues holds defaults read from the YAML file, keyed by env name.
var fileValues = map[string]string{}

// lookup resolves key from the environment first, then from the config file.
func lookup(key string) (string, bool) {
	if v := os.Getenv(key); v != "" {
		return v, true
	}
	if v, ok := fileValues[key]; ok && v != "" {
		return v, true
	}
	return "", false
}

func loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	fileValues = fc.env()
	return nil
}

// env flattens the file into env-keyed values. Unset fields are skipped.
func (fc fileConfig) env() map[string]string {
	out := make(map[string]string)
	set := func(key, val string) {
		if val != "" {
			out[key] = val
		}
	}
	setBool := func(key string, val *bool) {
		if val != nil {
			out[key] = strconv.FormatBool(*val)
		}
	}
	setInt := func(key string, val *int) {
		if val != nil {
			out[key] = strconv.Itoa(*val)
		}
	}
	setList := func(key string, vals []string) {
		if len(vals) > 0 {
			out[key] = strings.Join(vals, ",")
		}
	}

	set("DEVMARKS_LISTEN_PORT", fc.Server.ListenPort)
	set("DEVMARKS_SHUTDOWN_TIMEOUT", fc.Server.ShutdownTimeout)
	set("DEVMARKS_REQUEST_TIMEOUT", fc.Server.RequestTimeout)
	set("DEVMARKS_APP_URL", fc.Server.AppURL)

	set("DEVMARKS_LOG_LEVEL", fc.Log.Level)
	setBool("DEVMARKS_PRETTY_LOG", fc.Log.Pretty)

	set("DEVMARKS_REDIS_ADDR", fc.Redis.Addr)
	setInt("DEVMARKS_REDIS_DB", fc.Redis.DB)

	set("DEVMARKS_SESSION_TTL", fc.Session.TTL)
	set("DEVMARKS_SESSION_COOKIE", fc.Session.CookieName)
	setBool("DEVMARKS_SESSION_COOKIE_SECURE", fc.Session.CookieSecure)
	set("DEVMARKS_MAGIC_LINK_TTL", fc.Session.MagicLinkTTL)

	set("DEVMARKS_SMTP_HOST", fc.Mail.SMTPHost)
	setInt("DEVMARKS_SMTP_PORT", fc.Mail.SMTPPort)
	set("DEVMARKS_MAIL_FROM", fc.Mail.From)

	set("DEVMARKS_ARTICLES_BASE_URL", fc.Articles.BaseURL)
	setInt("DEVMARKS_ARTICLES_PER_PAGE", fc.Articles.PerPage)
	set("DEVMARKS_ARTICLES_TIMEOUT", fc.Articles.Timeout)
	set("DEVMARKS_ARTICLES_CACHE_TTL", fc.Articles.CacheTTL)
	set("DEVMARKS_ARTICLES_REFRESH_INTERVAL", fc.Articles.RefreshInterval)

	setList("DEVMARKS_ALLOWED_HOSTS", fc.Access.AllowedHosts)
	setList("DEVMARKS_ALLOWED_CIDRS", fc.Access.AllowedCIDRS)
	setBool("DEVMARKS_TRUST_PROXY", fc.Access.TrustProxy)
	setList("DEVMARKS_CORS_ORIGINS", fc.Access.CORSOrigins)

	return out
}
