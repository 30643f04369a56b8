package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnv = []string{
	"SPLUNK_HEC_ENDPOINT", "HEC_TOKEN_SECRET_ARN", "HEC_TOKEN_SSM_PATH", "SPLUNK_HEC_TOKEN",
	"HEC_TEST_MODE", "HEC_SOURCE", "HEC_SOURCETYPE", "HEC_INDEX", "HEC_CHANNEL_ID",
	"HEC_CONNECT_TIMEOUT", "HEC_READ_TIMEOUT", "HEC_TLS_SKIP_VERIFY", "HEC_PROXY",
	"AWS_REGION", "S3_URL", "S3_ACCESS_KEY_ID", "S3_ACCESS_KEY_SECRET", "LOG_LEVEL", "LOG_PRETTY",
}

// cleanEnv unsets every variable Load reads; t.Setenv restores them afterwards
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnv {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cleanEnv(t)
	t.Setenv("SPLUNK_HEC_ENDPOINT", "https://splunk.example.com:8088/services/collector/event")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "https://splunk.example.com:8088/services/collector/event", cfg.Endpoint)
	assert.Equal(t, "aws:accessanalyzer", cfg.Source)
	assert.Equal(t, "aws:accessanalyzer:finding", cfg.Sourcetype)
	assert.Equal(t, 2*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 9*time.Second, cfg.ReadTimeout)
	assert.Equal(t, "us-east-1", cfg.Region)
	assert.False(t, cfg.TLSSkipVerify)
	assert.False(t, cfg.DryRun())
	assert.False(t, cfg.StaticCredentials())
}

func TestLoad_MissingEndpoint(t *testing.T) {
	cleanEnv(t)
	t.Setenv("SPLUNK_HEC_ENDPOINT", "")

	_, err := Load(nil)
	require.ErrorIs(t, err, ErrMissingEndpoint)
}

func TestLoad_InvalidEndpoint(t *testing.T) {
	cleanEnv(t)
	for _, endpoint := range []string{"splunk.example.com", "ftp://splunk.example.com", "https://"} {
		t.Run(endpoint, func(t *testing.T) {
			t.Setenv("SPLUNK_HEC_ENDPOINT", endpoint)

			_, err := Load(nil)
			require.ErrorIs(t, err, ErrInvalidEndpoint)
		})
	}
}

func TestLoad_AppendsCollectorPath(t *testing.T) {
	cleanEnv(t)
	tests := []struct {
		endpoint string
		want     string
	}{
		{"https://splunk:8088", "https://splunk:8088/services/collector/event"},
		{"https://splunk:8088/", "https://splunk:8088/services/collector/event"},
		{"https://splunk:8088/services/collector", "https://splunk:8088/services/collector"},
		{"http://splunk:8088/custom/path", "http://splunk:8088/custom/path"},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			t.Setenv("SPLUNK_HEC_ENDPOINT", tt.endpoint)

			cfg, err := Load(nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Endpoint)
		})
	}
}

func TestLoad_Overrides(t *testing.T) {
	cleanEnv(t)
	t.Setenv("SPLUNK_HEC_ENDPOINT", "https://splunk:8088/services/collector/event")
	t.Setenv("HEC_TOKEN_SECRET_ARN", "arn:aws:secretsmanager:us-east-1:111111111111:secret:hec")
	t.Setenv("HEC_SOURCE", "aws:securityhub")
	t.Setenv("HEC_INDEX", "security")
	t.Setenv("HEC_CONNECT_TIMEOUT", "500ms")
	t.Setenv("HEC_READ_TIMEOUT", "30s")
	t.Setenv("HEC_TLS_SKIP_VERIFY", "true")
	t.Setenv("S3_ACCESS_KEY_ID", "AKID")
	t.Setenv("S3_ACCESS_KEY_SECRET", "secret")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "arn:aws:secretsmanager:us-east-1:111111111111:secret:hec", cfg.TokenSecretARN)
	assert.Equal(t, "aws:securityhub", cfg.Source)
	assert.Equal(t, "security", cfg.Index)
	assert.Equal(t, 500*time.Millisecond, cfg.ConnectTimeout)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.True(t, cfg.TLSSkipVerify)
	assert.True(t, cfg.StaticCredentials())
}

func TestLoad_NonPositiveTimeout(t *testing.T) {
	cleanEnv(t)
	t.Setenv("SPLUNK_HEC_ENDPOINT", "https://splunk:8088")
	t.Setenv("HEC_READ_TIMEOUT", "0s")

	_, err := Load(nil)
	require.Error(t, err)
}

func TestConfig_DryRun(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{"True", true},
		{" true ", true},
		{"", false},
		{"false", false},
		{"yes", false},
		{"1", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			cfg := Config{TestMode: tt.value}
			assert.Equal(t, tt.want, cfg.DryRun())
		})
	}
}
