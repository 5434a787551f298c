package config

import (
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/rr-stats/internal/stats/domain"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10*time.Minute, cfg.BucketWidth)
	assert.True(t, cfg.AnalyzeAAAA)
	assert.Equal(t, domain.PrivacyShowAll, cfg.Privacy())
	assert.Equal(t, "rr-stats.local", cfg.SelfName)
	assert.Equal(t, "dnsmasq", cfg.WildcardFormat)
	assert.Equal(t, "/var/lib/rr-stats/wildcard.db", cfg.WildcardDB)
	assert.Equal(t, 10000, cfg.DecisionCache)
	assert.Equal(t, 0.01, cfg.BloomFPRate)
	assert.Empty(t, cfg.BlockLists)
	assert.Equal(t, "127.0.0.1:9617", cfg.MetricsAddr)
	assert.Empty(t, cfg.IngestAddr)
	assert.Equal(t, time.Minute, cfg.SummaryInterval)
	assert.Equal(t, 1024, cfg.InitialCapacity)
}

func TestLoad_ValidOverrides(t *testing.T) {
	t.Setenv("STATS_ENV", "dev")
	t.Setenv("STATS_LOG_LEVEL", "debug")
	t.Setenv("STATS_BUCKET_WIDTH", "5m")
	t.Setenv("STATS_ANALYZE_AAAA", "false")
	t.Setenv("STATS_PRIVACY_LEVEL", "2")
	t.Setenv("STATS_PRIVACY_FILE", "/etc/rr-stats/privacy.yaml")
	t.Setenv("STATS_SELF_NAME", "pi.hole")
	t.Setenv("STATS_WILDCARD_LIST", "/etc/dnsmasq.d/03-pihole-wildcard.conf")
	t.Setenv("STATS_WILDCARD_FORMAT", "plain")
	t.Setenv("STATS_WILDCARD_DB", "/tmp/wc.db")
	t.Setenv("STATS_DECISION_CACHE_SIZE", "0")
	t.Setenv("STATS_BLOOM_FP_RATE", "0.001")
	t.Setenv("STATS_BLOCK_LISTS", "/etc/pihole/gravity.list,/etc/pihole/black.list")
	t.Setenv("STATS_METRICS_ADDR", ":9100")
	t.Setenv("STATS_INGEST_ADDR", "127.0.0.1:9618")
	t.Setenv("STATS_EVENT_LOG", "/tmp/events.jsonl")
	t.Setenv("STATS_SUMMARY_INTERVAL", "0s")
	t.Setenv("STATS_INITIAL_CAPACITY", "16")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Minute, cfg.BucketWidth)
	assert.False(t, cfg.AnalyzeAAAA)
	assert.Equal(t, domain.PrivacyHideDomainsClients, cfg.Privacy())
	assert.Equal(t, "/etc/rr-stats/privacy.yaml", cfg.PrivacyFile)
	assert.Equal(t, "pi.hole", cfg.SelfName)
	assert.Equal(t, "/etc/dnsmasq.d/03-pihole-wildcard.conf", cfg.WildcardList)
	assert.Equal(t, "plain", cfg.WildcardFormat)
	assert.Equal(t, "/tmp/wc.db", cfg.WildcardDB)
	assert.Zero(t, cfg.DecisionCache)
	assert.Equal(t, 0.001, cfg.BloomFPRate)
	assert.Equal(t, []string{"/etc/pihole/gravity.list", "/etc/pihole/black.list"}, cfg.BlockLists)
	assert.Equal(t, ":9100", cfg.MetricsAddr)
	assert.Equal(t, "127.0.0.1:9618", cfg.IngestAddr)
	assert.Equal(t, "/tmp/events.jsonl", cfg.EventLog)
	assert.Zero(t, cfg.SummaryInterval)
	assert.Equal(t, 16, cfg.InitialCapacity)
}

func TestLoad_MetricsCanBeDisabled(t *testing.T) {
	t.Setenv("STATS_METRICS_ADDR", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.MetricsAddr)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"STATS_ENV", "staging"},
		{"STATS_LOG_LEVEL", "trace"},
		{"STATS_BUCKET_WIDTH", "30s"},
		{"STATS_BUCKET_WIDTH", "7m"},
		{"STATS_PRIVACY_LEVEL", "paranoid"},
		{"STATS_PRIVACY_LEVEL", "4"},
		{"STATS_WILDCARD_FORMAT", "yaml"},
		{"STATS_BLOOM_FP_RATE", "1.5"},
		{"STATS_DECISION_CACHE_SIZE", "-1"},
		{"STATS_METRICS_ADDR", "nohost"},
		{"STATS_METRICS_ADDR", "127.0.0.1:99999"},
		{"STATS_SELF_NAME", ""},
		{"STATS_INGEST_ADDR", "127.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_WhenKoanfDefaultLoadFails(t *testing.T) {
	orig := defaultLoader
	defaultLoader = func(*koanf.Koanf) error { return errors.New("mocked error") }
	defer func() { defaultLoader = orig }()

	_, err := Load()
	assert.ErrorContains(t, err, "mocked error")
}

func TestLoad_WhenKoanfEnvLoadFails(t *testing.T) {
	orig := envLoader
	envLoader = func(*koanf.Koanf) error { return errors.New("mocked error") }
	defer func() { envLoader = orig }()

	_, err := Load()
	assert.ErrorContains(t, err, "mocked error")
}

func TestLoad_RegisterValidationFails(t *testing.T) {
	orig := registerValidation
	registerValidation = func(*validator.Validate) error { return errors.New("mocked validation error") }
	defer func() { registerValidation = orig }()

	_, err := Load()
	assert.ErrorContains(t, err, "mocked validation error")
}
