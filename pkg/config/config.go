// Package config holds client configuration: the process-wide option store
// and the decoding of an option set into a validated Config.
package config

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"dario.cat/mergo"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/jmerrifield20/zendesk/pkg/uri"
)

// Version is reported in the default User-Agent.
// It is overridden by goreleaser via -ldflags "-X .../pkg/config.Version=...".
var Version = "dev"

// ErrInvalidConfig wraps every error returned by Build.
var ErrInvalidConfig = errors.New("invalid zendesk configuration")

// Config is the decoded, validated form of an Options set.
type Config struct {
	URL         string        `mapstructure:"url"`
	Subdomain   string        `mapstructure:"subdomain"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
	Token       string        `mapstructure:"token"`
	AccessToken string        `mapstructure:"access_token"`
	Retry       bool          `mapstructure:"retry"`
	MaxRetries  int           `mapstructure:"max_retries"`
	Timeout     time.Duration `mapstructure:"timeout"`
	RateLimit   float64       `mapstructure:"rate_limit"` // requests per second; 0 disables limiting
	RateBurst   int           `mapstructure:"rate_burst"`
	AllowHTTP   bool          `mapstructure:"allow_http"`
	UserAgent   string        `mapstructure:"user_agent"`

	// In-process only; taken from the "logger" and "http_client" options as-is.
	Logger     *zap.Logger  `mapstructure:"-"`
	HTTPClient *http.Client `mapstructure:"-"`

	base *uri.URI
}

func defaults() Config {
	return Config{
		MaxRetries: 3,
		Timeout:    30 * time.Second,
		RateBurst:  1,
		UserAgent:  "zendesk-go/" + Version,
	}
}

// Build decodes opts into a Config, fills defaults and validates the result.
//
//	cfg, err := config.Build(config.Options{
//	    "subdomain": "acme",
//	    "username":  "agent@acme.com",
//	    "token":     os.Getenv("ZENDESK_TOKEN"),
//	})
func Build(opts Options) (*Config, error) {
	opts = Normalize(opts)

	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: build decoder: %w", ErrInvalidConfig, err)
	}
	if err := dec.Decode(map[string]any(opts)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if v, ok := opts["logger"]; ok && v != nil {
		l, ok := v.(*zap.Logger)
		if !ok {
			return nil, fmt.Errorf("%w: logger: expected *zap.Logger, got %T", ErrInvalidConfig, v)
		}
		cfg.Logger = l
	}
	if v, ok := opts["http_client"]; ok && v != nil {
		hc, ok := v.(*http.Client)
		if !ok {
			return nil, fmt.Errorf("%w: http_client: expected *http.Client, got %T", ErrInvalidConfig, v)
		}
		cfg.HTTPClient = hc
	}

	if err := mergo.Merge(&cfg, defaults()); err != nil {
		return nil, fmt.Errorf("%w: apply defaults: %w", ErrInvalidConfig, err)
	}

	if cfg.URL == "" && cfg.Subdomain != "" {
		base, err := uri.FromSubdomain(cfg.Subdomain)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		cfg.URL = base.String()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &cfg, nil
}

// Validate checks the invariants Build relies on. It also resolves the base URL.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URL,
			validation.Required.Error("url or subdomain is required"),
			validation.By(c.checkURL),
		),
		validation.Field(&c.Username,
			validation.When(c.Password != "" || c.Token != "",
				validation.Required.Error("is required with a password or token"),
			),
		),
		validation.Field(&c.Password,
			validation.When(c.Token != "", validation.Empty.Error("must not be combined with token")),
		),
		validation.Field(&c.MaxRetries, validation.Min(0)),
		validation.Field(&c.RateLimit, validation.Min(0.0)),
	)
}

func (c *Config) checkURL(value any) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}
	base, err := uri.Parse(raw)
	if err != nil {
		return err
	}
	if !base.Secure() && !c.AllowHTTP {
		return errors.New("must use https (set allow_http for plain-text endpoints)")
	}
	c.base = base
	return nil
}

// Base returns the parsed API base URL. It is nil until Validate succeeds.
func (c *Config) Base() *uri.URI { return c.base }

// BasicAuth returns the credentials for HTTP basic auth. API-token auth uses
// "<username>/token" as the user name.
func (c *Config) BasicAuth() (user, pass string, ok bool) {
	switch {
	case c.Token != "":
		return c.Username + "/token", c.Token, true
	case c.Password != "":
		return c.Username, c.Password, true
	default:
		return "", "", false
	}
}

// Redacted returns a copy safe to log or hand out: secrets are masked.
func (c *Config) Redacted() Config {
	out := *c
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "[redacted]"
	}
	out.Password = mask(out.Password)
	out.Token = mask(out.Token)
	out.AccessToken = mask(out.AccessToken)
	return out
}
