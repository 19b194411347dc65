package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(afero.NewMemMapFs(), "/home/t/.aisha")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	doc := `
prompt: "% "
history:
  file: /tmp/hist
  size: 50
ai:
  endpoint: https://example.com
  model: test-model
  key_env: TEST_KEY
  requests_per_minute: 5
`
	require.NoError(t, afero.WriteFile(fs, "/d/config.yaml", []byte(doc), 0644))

	cfg, err := Load(fs, "/d")
	require.NoError(t, err)
	assert.Equal(t, "% ", cfg.Prompt)
	assert.Equal(t, 50, cfg.History.Size)
	assert.Equal(t, "/tmp/hist", cfg.History.File)
	assert.Equal(t, "test-model", cfg.AI.Model)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/d/config.yaml", []byte("bogus_key: 1\n"), 0644))

	cfg, err := Load(fs, "/d")
	assert.Error(t, err)
	assert.Equal(t, Default(), cfg, "errors fall back to defaults")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	fs := afero.NewMemMapFs()
	doc := `
history:
  file: /tmp/hist
  size: 0
`
	require.NoError(t, afero.WriteFile(fs, "/d/config.yaml", []byte(doc), 0644))

	_, err := Load(fs, "/d")
	assert.Error(t, err)
}

func TestExpandHome(t *testing.T) {
	assert.Equal(t, "/home/t", ExpandHome("~", "/home/t"))
	assert.Equal(t, "/home/t/.aisha_history", ExpandHome("~/.aisha_history", "/home/t"))
	assert.Equal(t, "/abs/path", ExpandHome("/abs/path", "/home/t"))
}
