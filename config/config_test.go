package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "nextedu-portal", cfg.App.Name)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Address())
	assert.Equal(t, 2022, cfg.Academic.BaseYear)
	assert.Equal(t, 30*time.Second, cfg.Scheduler.AutosaveInterval)
	assert.Equal(t, "admin", cfg.Admin.Username)
	assert.True(t, cfg.Features.IsEnabled(FeatureHistoryCache, nil))
}

func TestLoad_EnvFileDoesNotOverrideEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ACADEMIC_BASE_YEAR=2020\nHTTP_PORT=9000\n"), 0o600))
	t.Setenv("HTTP_PORT", "9100")
	t.Cleanup(func() { os.Unsetenv("ACADEMIC_BASE_YEAR") })

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2020, cfg.Academic.BaseYear)
	assert.Equal(t, 9100, cfg.HTTP.Port)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{
		App:       AppConfig{Environment: EnvProduction},
		HTTP:      HTTPConfig{Port: 0},
		Academic:  AcademicConfig{BaseYear: 1999},
		Admin:     AdminConfig{Username: "admin", Password: "password"},
		Scheduler: SchedulerConfig{Enabled: true},
		Features:  NewFeatureFlags(),
	}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"HTTP_PORT", "ACADEMIC_BASE_YEAR", "SCHEDULER_AUTOSAVE_INTERVAL",
		"DATABASE_URL", "ADMIN_API_KEY", "ADMIN_PASSWORD must be changed",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestChatbotEnabled(t *testing.T) {
	cfg := &Config{Features: NewFeatureFlags()}
	assert.False(t, cfg.ChatbotEnabled())

	cfg.Chatbot.APIKey = "key"
	assert.True(t, cfg.ChatbotEnabled())

	require.NoError(t, cfg.Features.DisableFeature(FeatureChatbot))
	assert.False(t, cfg.ChatbotEnabled())
}

func TestFeatureFlags_EnvOverrides(t *testing.T) {
	t.Setenv("FEATURE_HISTORY_CACHE", "false")
	t.Setenv("FEATURE_SNAPSHOT_CACHE", "true")
	t.Setenv("FEATURE_CHATBOT", "40")

	ff := LoadFeatureFlags()
	assert.False(t, ff.IsEnabled(FeatureHistoryCache, nil))
	assert.True(t, ff.IsEnabled(FeatureSnapshotCache, nil))
	assert.Equal(t, 40, ff.All()[FeatureChatbot].RolloutPercent)
}

func TestFeatureFlags_RolloutIsStable(t *testing.T) {
	ff := NewFeatureFlags()
	require.NoError(t, ff.SetRolloutPercent(FeatureChatbot, 50))

	in := 0
	for i := range 200 {
		ctx := &FeatureContext{UserID: "STU-" + string(rune('A'+i%26)) + string(rune('a'+i/26))}
		first := ff.IsEnabled(FeatureChatbot, ctx)
		assert.Equal(t, first, ff.IsEnabled(FeatureChatbot, ctx))
		if first {
			in++
		}
	}
	assert.Greater(t, in, 40)
	assert.Less(t, in, 160)
}

func TestFeatureFlags_RolesAndOverrides(t *testing.T) {
	ff := NewFeatureFlags()

	assert.False(t, ff.IsEnabled(FeatureAnnouncements, &FeatureContext{UserID: "STU-001", Role: "student"}))
	assert.True(t, ff.IsEnabled(FeatureAnnouncements, &FeatureContext{UserID: "FAC-001", Role: "teacher"}))

	ff.SetUserOverride("FAC-001", FeatureAnnouncements, false)
	assert.False(t, ff.IsEnabled(FeatureAnnouncements, &FeatureContext{UserID: "FAC-001", Role: "teacher"}))

	assert.ErrorIs(t, ff.SetRolloutPercent("unknown", 10), ErrFeatureNotFound)
	assert.ErrorIs(t, ff.SetRolloutPercent(FeatureChatbot, 101), ErrInvalidRolloutPercent)
}
