package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/alexflint/go-arg"
)

// DefaultCollectorPath is appended to endpoints that carry no path.
const DefaultCollectorPath = "/services/collector/event"

var (
	// ErrMissingEndpoint is returned when no HEC endpoint is configured
	ErrMissingEndpoint = errors.New("SPLUNK_HEC_ENDPOINT is required")
	// ErrInvalidEndpoint is returned when the endpoint is not an absolute http(s) URL
	ErrInvalidEndpoint = errors.New("invalid HEC endpoint")
)

// Config holds everything read from the environment at cold start. It is
// never modified afterwards.
type Config struct {
	Endpoint       string `arg:"env:SPLUNK_HEC_ENDPOINT" help:"example: https://splunk.example.com:8088/services/collector/event"`
	TokenSecretARN string `arg:"env:HEC_TOKEN_SECRET_ARN" help:"Secrets Manager id holding the HEC token"`
	TokenSSMPath   string `arg:"env:HEC_TOKEN_SSM_PATH" help:"SSM parameter holding the HEC token"`
	Token          string `arg:"env:SPLUNK_HEC_TOKEN" help:"inline HEC token, development only"`
	TestMode       string `arg:"env:HEC_TEST_MODE" help:"set to true to log events instead of sending them"`

	Source         string        `arg:"env:HEC_SOURCE" default:"aws:accessanalyzer"`
	Sourcetype     string        `arg:"env:HEC_SOURCETYPE" default:"aws:accessanalyzer:finding"`
	Index          string        `arg:"env:HEC_INDEX"`
	ChannelID      string        `arg:"env:HEC_CHANNEL_ID"`
	ConnectTimeout time.Duration `arg:"env:HEC_CONNECT_TIMEOUT" default:"2s"`
	ReadTimeout    time.Duration `arg:"env:HEC_READ_TIMEOUT" default:"9s"`
	TLSSkipVerify  bool          `arg:"env:HEC_TLS_SKIP_VERIFY" default:"false"`
	Proxy          string        `arg:"env:HEC_PROXY"`

	Region            string `arg:"env:AWS_REGION" default:"us-east-1"`
	S3URL             string `arg:"env:S3_URL" help:"failure archive, example: https://YOURBUCKET.s3.us-east-1.amazonaws.com/YOURFOLDER/"`
	S3AccessKeyID     string `arg:"env:S3_ACCESS_KEY_ID"`
	S3AccessKeySecret string `arg:"env:S3_ACCESS_KEY_SECRET"`

	LogLevel  string `arg:"env:LOG_LEVEL" default:"info"`
	LogPretty bool   `arg:"env:LOG_PRETTY" default:"false"`
}

// Load parses the environment (and optional command line args) into a
// Config and validates it.
func Load(args []string) (Config, error) {
	var cfg Config
	p, err := arg.NewParser(arg.Config{Program: "findinghec"}, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to build config parser: %w", err)
	}
	if err := p.Parse(args); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DryRun reports whether HEC_TEST_MODE asks for dry-run delivery.
func (c Config) DryRun() bool {
	return strings.EqualFold(strings.TrimSpace(c.TestMode), "true")
}

// StaticCredentials reports whether both static AWS keys are set.
func (c Config) StaticCredentials() bool {
	return c.S3AccessKeyID != "" && c.S3AccessKeySecret != ""
}

func (c *Config) normalize() error {
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	if c.Endpoint == "" {
		return ErrMissingEndpoint
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q is not an absolute http(s) URL", ErrInvalidEndpoint, c.Endpoint)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = DefaultCollectorPath
		c.Endpoint = u.String()
	}

	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("HEC_CONNECT_TIMEOUT must be positive, got %v", c.ConnectTimeout)
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("HEC_READ_TIMEOUT must be positive, got %v", c.ReadTimeout)
	}
	if c.Proxy != "" {
		if _, err := url.Parse(c.Proxy); err != nil {
			return fmt.Errorf("invalid proxy URL: %w", err)
		}
	}
	return nil
}
