package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerDefaults(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	cfg := m.GetConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://rest.ensembl.org", cfg.Annotation.BaseURL)
	assert.Equal(t, 10, cfg.Annotation.RateLimit)
	assert.Equal(t, 0, cfg.Analysis.Workers)
	assert.Equal(t, "info", cfg.Logging.Level)

	assert.NoError(t, m.Validate())
}

func TestSectionAccessors(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	assert.Equal(t, m.GetConfig().Annotation, *m.GetAnnotationConfig())
	assert.Equal(t, m.GetConfig().Analysis, *m.GetAnalysisConfig())
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("MENDEL_SERVER_PORT", "9090")

	m, err := NewManager()
	require.NoError(t, err)
	assert.Equal(t, 9090, m.GetConfig().Server.Port)
}

func TestValidateRejectsBadValues(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	m.config.Server.Port = -1
	assert.Error(t, m.Validate())
	m.config.Server.Port = 8080

	m.config.Annotation.BaseURL = ""
	assert.Error(t, m.Validate())
	m.config.Annotation.BaseURL = "https://rest.ensembl.org"

	m.config.Logging.Level = "loud"
	assert.Error(t, m.Validate())
}
