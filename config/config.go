package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/monerokon/xmrpos-login/authclient"
	"github.com/monerokon/xmrpos-login/loginform"
	"github.com/monerokon/xmrpos-login/logutil"
	"github.com/monerokon/xmrpos-login/profile"
	"github.com/monerokon/xmrpos-login/security"
)

// FileName is the config file looked up in the default directory.
const FileName = "config.yaml"

// Log formats accepted by LogFormat.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds every tunable setting.
type Config struct {
	// Form prefill. VendorID stays a string so it is validated with the
	// rest of the form.
	InstanceURL string `yaml:"instanceUrl" env:"XMRPOS_INSTANCE_URL"`
	VendorID    string `yaml:"vendorId"    env:"XMRPOS_VENDOR_ID"`
	Username    string `yaml:"username"    env:"XMRPOS_USERNAME"`

	Timeout         time.Duration `yaml:"timeout"         env:"XMRPOS_TIMEOUT"`
	RateLimit       float64       `yaml:"rateLimit"       env:"XMRPOS_RATE_LIMIT"`
	RateBurst       int           `yaml:"rateBurst"       env:"XMRPOS_RATE_BURST"`
	BreakerFailures uint32        `yaml:"breakerFailures" env:"XMRPOS_BREAKER_FAILURES"`
	BreakerTimeout  time.Duration `yaml:"breakerTimeout"  env:"XMRPOS_BREAKER_TIMEOUT"`

	ProfilePath string `yaml:"profilePath" env:"XMRPOS_PROFILE_PATH"`
	Debug       bool   `yaml:"debug"       env:"XMRPOS_DEBUG"`
	LogFormat   string `yaml:"logFormat"   env:"XMRPOS_LOG_FORMAT"`
}

// Default returns the built-in settings.
func Default() *Config {
	def := authclient.DefaultOptions()
	return &Config{
		Timeout:         def.Timeout,
		RateLimit:       def.RateLimit,
		RateBurst:       def.RateBurst,
		BreakerFailures: def.BreakerFailures,
		BreakerTimeout:  def.BreakerTimeout,
		LogFormat:       LogFormatText,
	}
}

// LoadOptions controls Load.
type LoadOptions struct {
	// Path is an explicit config file. A missing explicit file is an error;
	// a missing default file is not.
	Path string
	// Environ replaces the process environment when non-nil.
	Environ map[string]string
}

// Load builds a Config from defaults, the YAML file and the environment,
// then validates it.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	path, explicit := opts.Path, opts.Path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			path = ""
		}
	}
	if path != "" {
		if err := cfg.loadFile(path, explicit); err != nil {
			return nil, err
		}
	}

	envOpts := env.Options{}
	if opts.Environ != nil {
		envOpts.Environment = opts.Environ
	}
	if err := env.ParseWithOptions(cfg, envOpts); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPath returns the config file location next to the saved profile.
func DefaultPath() (string, error) {
	dir, err := profile.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

func (c *Config) loadFile(path string, required bool) error {
	if required {
		if err := security.ValidatePath(path); err != nil {
			return fmt.Errorf("invalid config path: %w", err)
		}
	}

	// #nosec G304 -- path validated above or derived from the user config dir
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// The file chooses where credentials are sent.
	if err := security.ValidateFilePermissions(path); errors.Is(err, security.ErrInsecureFilePermissions) {
		logutil.Warn("config file is writable by other users", "path", path)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidConfig, c.Timeout))
	}
	if c.RateLimit <= 0 {
		errs = append(errs, fmt.Errorf("%w: rateLimit must be positive, got %g", ErrInvalidConfig, c.RateLimit))
	}
	if c.RateBurst <= 0 {
		errs = append(errs, fmt.Errorf("%w: rateBurst must be positive, got %d", ErrInvalidConfig, c.RateBurst))
	}
	if c.BreakerTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: breakerTimeout must be positive, got %s", ErrInvalidConfig, c.BreakerTimeout))
	}
	if c.ProfilePath != "" {
		if err := security.ValidatePath(c.ProfilePath); err != nil {
			errs = append(errs, fmt.Errorf("%w: profilePath: %w", ErrInvalidConfig, err))
		}
	}
	switch strings.ToLower(c.LogFormat) {
	case LogFormatText, LogFormatJSON:
	default:
		errs = append(errs, fmt.Errorf("%w: logFormat must be %q or %q, got %q", ErrInvalidConfig, LogFormatText, LogFormatJSON, c.LogFormat))
	}
	return errors.Join(errs...)
}

// StructuredLogs reports whether logs should be emitted as JSON.
func (c *Config) StructuredLogs() bool {
	return strings.EqualFold(c.LogFormat, LogFormatJSON)
}

// ClientOptions maps the config onto authclient options.
func (c *Config) ClientOptions() authclient.Options {
	opts := authclient.DefaultOptions()
	opts.Timeout = c.Timeout
	opts.RateLimit = c.RateLimit
	opts.RateBurst = c.RateBurst
	opts.BreakerFailures = c.BreakerFailures
	opts.BreakerTimeout = c.BreakerTimeout
	return opts
}

// Form returns a login form prefilled from the config. Password is empty.
func (c *Config) Form() loginform.Form {
	return loginform.Form{
		InstanceURL: c.InstanceURL,
		VendorID:    c.VendorID,
		Username:    c.Username,
	}
}

// ProfileStore returns the profile store at ProfilePath, or at the default
// location when unset.
func (c *Config) ProfileStore() (*profile.Store, error) {
	path := c.ProfilePath
	if path == "" {
		var err error
		if path, err = profile.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return profile.NewStore(path), nil
}
