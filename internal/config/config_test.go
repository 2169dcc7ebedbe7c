package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reloadpress/autopost/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const minimalConfig = `
wordpress:
  base_url: https://blog.example
  username: editor
  app_password: secret
`

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "https://blog.example", cfg.WordPress.BaseURL)
	assert.Equal(t, 9, cfg.Schedule.Hour)
	assert.Equal(t, 3, cfg.Schedule.PostsPerRun)
	assert.Equal(t, 15*time.Second, cfg.Pipeline.InterPostDelay)
	assert.Equal(t, 600, cfg.Pipeline.MinWords)
	assert.Equal(t, 300, cfg.Pipeline.MinPlausibleWords)
	assert.Equal(t, "future", cfg.Pipeline.Status)
	assert.Equal(t, "used_images.txt", cfg.Images.RegistryPath)
	assert.Equal(t, 3, cfg.Images.IllustrationTarget)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
}

func TestLoad_MissingCMSConfigFails(t *testing.T) {
	_, err := config.Load(writeConfig(t, `
wordpress:
  base_url: https://blog.example
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("AUTOPOST_WORDPRESS_APP_PASSWORD", "from-env")
	t.Setenv("AUTOPOST_OPENAI_MODEL", "gpt-4o")

	cfg, err := config.Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.WordPress.AppPassword)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
}

func TestLoad_UnprefixedEnvAlias(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-alias")

	cfg, err := config.Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)
	assert.Equal(t, "sk-alias", cfg.OpenAI.APIKey)
}

func TestExcludedWeekdayMap(t *testing.T) {
	s := config.ScheduleConfig{ExcludedWeekdays: []string{"Saturday", "sunday"}}
	days, err := s.ExcludedWeekdayMap()
	require.NoError(t, err)
	assert.True(t, days[time.Saturday])
	assert.True(t, days[time.Sunday])
	assert.False(t, days[time.Monday])

	s = config.ScheduleConfig{ExcludedWeekdays: []string{"noday"}}
	_, err = s.ExcludedWeekdayMap()
	assert.Error(t, err)
}

func TestLoad_InvalidScheduleRejected(t *testing.T) {
	_, err := config.Load(writeConfig(t, minimalConfig+`
schedule:
  hour: 25
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schedule.hour")
}
