package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"

	"github.com/haukened/rr-stats/internal/stats/common/log"
	"github.com/haukened/rr-stats/internal/stats/domain"
)

// privacyKey is the key read from the privacy file.
const privacyKey = "privacy_level"

// PrivacySource holds the active privacy level. It is safe for concurrent
// use and satisfies the classifier's privacy level provider.
type PrivacySource struct {
	level  atomic.Uint32
	logger log.Logger
}

// NewPrivacySource returns a source starting at initial.
func NewPrivacySource(initial domain.PrivacyLevel, logger log.Logger) *PrivacySource {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	s := &PrivacySource{logger: logger}
	s.level.Store(uint32(initial))
	return s
}

// PrivacyLevel returns the active level.
func (s *PrivacySource) PrivacyLevel() domain.PrivacyLevel {
	return domain.PrivacyLevel(s.level.Load())
}

// Set replaces the active level.
func (s *PrivacySource) Set(l domain.PrivacyLevel) {
	old := domain.PrivacyLevel(s.level.Swap(uint32(l)))
	if old != l {
		s.logger.Info(map[string]any{"from": old.String(), "to": l.String()}, "privacy_level_changed")
	}
}

// LoadFile reads the privacy_level key from a yaml, json or toml file and
// makes it active. The level is left unchanged on error.
func (s *PrivacySource) LoadFile(path string) error {
	parser, err := parserFor(path)
	if err != nil {
		return err
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return fmt.Errorf("failed to load privacy file %s: %w", path, err)
	}
	if !k.Exists(privacyKey) {
		return fmt.Errorf("privacy file %s missing %q", path, privacyKey)
	}
	l, err := domain.ParsePrivacyLevel(k.String(privacyKey))
	if err != nil {
		return fmt.Errorf("privacy file %s: %w", path, err)
	}
	s.Set(l)
	return nil
}

// WatchFile loads path and re-loads it whenever it changes. Reload errors
// are logged and keep the previous level.
func (s *PrivacySource) WatchFile(path string) error {
	if err := s.LoadFile(path); err != nil {
		return err
	}
	return file.Provider(path).Watch(func(_ interface{}, err error) {
		if err != nil {
			s.logger.Warn(map[string]any{"path": path, "error": err.Error()}, "privacy_watch_error")
			return
		}
		if err := s.LoadFile(path); err != nil {
			s.logger.Warn(map[string]any{"path": path, "error": err.Error()}, "privacy_reload_failed")
		}
	})
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported privacy file type %q", filepath.Ext(path))
	}
}
