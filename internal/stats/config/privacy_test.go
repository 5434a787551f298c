package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/rr-stats/internal/stats/common/log"
	"github.com/haukened/rr-stats/internal/stats/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestPrivacySource_SetAndGet(t *testing.T) {
	s := NewPrivacySource(domain.PrivacyHideDomains, nil)
	assert.Equal(t, domain.PrivacyHideDomains, s.PrivacyLevel())
	s.Set(domain.PrivacyMaximum)
	assert.Equal(t, domain.PrivacyMaximum, s.PrivacyLevel())
}

func TestPrivacySource_LoadFile(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		file    string
		content string
		want    domain.PrivacyLevel
	}{
		{"privacy.yaml", "privacy_level: 3\n", domain.PrivacyMaximum},
		{"privacy.yml", "privacy_level: hide_domains\n", domain.PrivacyHideDomains},
		{"privacy.json", `{"privacy_level": "hide_domains_clients"}`, domain.PrivacyHideDomainsClients},
		{"privacy.toml", "privacy_level = \"show_all\"\n", domain.PrivacyShowAll},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			writeFile(t, path, tt.content)
			s := NewPrivacySource(domain.PrivacyHideDomains, log.NewNoopLogger())
			if tt.want == domain.PrivacyHideDomains {
				s.Set(domain.PrivacyShowAll)
			}
			require.NoError(t, s.LoadFile(path))
			assert.Equal(t, tt.want, s.PrivacyLevel())
		})
	}
}

func TestPrivacySource_LoadFileErrorsKeepLevel(t *testing.T) {
	dir := t.TempDir()
	s := NewPrivacySource(domain.PrivacyHideDomains, nil)

	assert.Error(t, s.LoadFile(filepath.Join(dir, "privacy.ini")))
	assert.Error(t, s.LoadFile(filepath.Join(dir, "missing.yaml")))

	missingKey := filepath.Join(dir, "nokey.yaml")
	writeFile(t, missingKey, "other: 1\n")
	assert.Error(t, s.LoadFile(missingKey))

	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "privacy_level: 9\n")
	assert.Error(t, s.LoadFile(bad))

	assert.Equal(t, domain.PrivacyHideDomains, s.PrivacyLevel())
}

func TestPrivacySource_WatchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "privacy.yaml")
	writeFile(t, path, "privacy_level: 0\n")

	s := NewPrivacySource(domain.PrivacyHideDomains, log.NewNoopLogger())
	require.NoError(t, s.WatchFile(path))
	assert.Equal(t, domain.PrivacyShowAll, s.PrivacyLevel())

	writeFile(t, path, "privacy_level: maximum\n")
	assert.Eventually(t, func() bool {
		return s.PrivacyLevel() == domain.PrivacyMaximum
	}, 5*time.Second, 20*time.Millisecond)
}

func TestPrivacySource_WatchFileMissing(t *testing.T) {
	s := NewPrivacySource(domain.PrivacyShowAll, nil)
	assert.Error(t, s.WatchFile(filepath.Join(t.TempDir(), "absent.yaml")))
}
