package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/haukened/rr-stats/internal/stats/domain"
)

// AppConfig holds configuration values parsed from environment variables.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	// BucketWidth is the width of one time bucket. It must be at least a
	// minute and divide a day evenly.
	BucketWidth time.Duration `koanf:"bucket_width" validate:"bucket_width"`

	// AnalyzeAAAA records AAAA questions when true.
	AnalyzeAAAA bool `koanf:"analyze_aaaa"`

	// PrivacyLevel is the initial privacy level, by name or number.
	PrivacyLevel string `koanf:"privacy_level" validate:"required,privacy_level"`

	// PrivacyFile optionally holds a privacy_level key that is re-read on change.
	PrivacyFile string `koanf:"privacy_file"`

	// SelfName is the monitor's own host name; queries for it are ignored.
	SelfName string `koanf:"self_name" validate:"required"`

	// WildcardList is the wildcard list file; empty disables wildcard detection.
	WildcardList   string  `koanf:"wildcard_list"`
	WildcardFormat string  `koanf:"wildcard_format" validate:"required,oneof=dnsmasq plain hosts"`
	WildcardDB     string  `koanf:"wildcard_db" validate:"required"`
	DecisionCache  int     `koanf:"decision_cache_size" validate:"gte=0"`
	BloomFPRate    float64 `koanf:"bloom_fp_rate" validate:"gt=0,lt=1"`

	// BlockLists are hosts-format files whose entry counts feed the gravity
	// domain counter.
	BlockLists []string `koanf:"block_lists" validate:"dive,required"`

	// MetricsAddr is the listen address of the metrics endpoint; empty disables it.
	MetricsAddr string `koanf:"metrics_addr" validate:"omitempty,listen_addr"`

	// IngestAddr is the UDP address live engine events are received on; empty
	// disables it.
	IngestAddr string `koanf:"ingest_addr" validate:"omitempty,listen_addr"`

	// EventLog is an optional JSON-lines file of engine events replayed at start.
	EventLog string `koanf:"event_log"`

	// SummaryInterval is how often the counters are logged; zero disables it.
	SummaryInterval time.Duration `koanf:"summary_interval" validate:"gte=0"`

	// InitialCapacity is the growth step of the query and entity stores.
	InitialCapacity int `koanf:"initial_capacity" validate:"gte=0"`
}

// DEFAULT_APP_CONFIG defines the default application configuration.
var DEFAULT_APP_CONFIG = AppConfig{
	Env:             "prod",
	LogLevel:        "info",
	BucketWidth:     10 * time.Minute,
	AnalyzeAAAA:     true,
	PrivacyLevel:    domain.PrivacyShowAll.String(),
	SelfName:        "rr-stats.local",
	WildcardFormat:  "dnsmasq",
	WildcardDB:      "/var/lib/rr-stats/wildcard.db",
	DecisionCache:   10000,
	BloomFPRate:     0.01,
	MetricsAddr:     "127.0.0.1:9617",
	SummaryInterval: time.Minute,
	InitialCapacity: 1024,
}

// listKeys are split on spaces and commas when read from the environment.
var listKeys = map[string]bool{"block_lists": true}

// Privacy returns the configured initial privacy level.
func (c *AppConfig) Privacy() domain.PrivacyLevel {
	l, _ := domain.ParsePrivacyLevel(c.PrivacyLevel)
	return l
}

// validBucketWidth accepts widths of at least a minute that divide 24h.
func validBucketWidth(fl validator.FieldLevel) bool {
	w := time.Duration(fl.Field().Int())
	return w >= time.Minute && (24*time.Hour)%w == 0
}

func validPrivacyLevel(fl validator.FieldLevel) bool {
	_, err := domain.ParsePrivacyLevel(fl.Field().String())
	return err == nil
}

// validListenAddr accepts "host:port" and ":port" with a port in 1-65535.
func validListenAddr(fl validator.FieldLevel) bool {
	host, port, err := net.SplitHostPort(fl.Field().String())
	if err != nil || port == "" {
		return false
	}
	if host != "" && host != "localhost" && net.ParseIP(host) == nil {
		return false
	}
	n, err := strconv.ParseUint(port, 10, 16)
	return err == nil && n > 0
}

// envLoader loads STATS_-prefixed environment variables, lowercased and with
// the prefix removed. It can be replaced in tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: "STATS_",
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, "STATS_"))
			value = strings.TrimSpace(value)
			if listKeys[key] {
				if value == "" {
					return key, []string{}
				}
				return key, strings.FieldsFunc(value, func(r rune) bool {
					return r == ' ' || r == ','
				})
			}
			return key, value
		},
	}), nil)
}

// defaultLoader loads DEFAULT_APP_CONFIG through the structs provider.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// registerValidation registers the custom validation tags.
var registerValidation = func(v *validator.Validate) error {
	for tag, fn := range map[string]validator.Func{
		"bucket_width":  validBucketWidth,
		"privacy_level": validPrivacyLevel,
		"listen_addr":   validListenAddr,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// Load parses environment variables and returns a validated AppConfig.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	if err := defaultLoader(k); err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}
	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := registerValidation(validate); err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &cfg, nil
}
