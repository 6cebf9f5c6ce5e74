package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/logger"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(viper.New(), logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "promotion-service", cfg.ServiceName)
	assert.Equal(t, "@every 1m", cfg.SweepSchedule)
	assert.Equal(t, 72*time.Hour, cfg.BumpInterval)
	assert.Equal(t, time.Duration(0), cfg.PresenceDuration)
	assert.Equal(t, 500, cfg.ReportDescriptionLimit)
	assert.Equal(t, 50*time.Second, cfg.SweepLeaseTTL)
	assert.Empty(t, cfg.AlertRecipients())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BUMP_INTERVAL", "48h")
	t.Setenv("PRESENCE_DURATION", "4h")
	t.Setenv("SWEEP_CONCURRENCY", "3")
	t.Setenv("MODERATION_ALERT_EMAILS", "mod1@example.com, ,mod2@example.com")

	cfg, err := load(viper.New(), logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 48*time.Hour, cfg.BumpInterval)
	assert.Equal(t, 4*time.Hour, cfg.PresenceDuration)
	assert.Equal(t, 3, cfg.SweepConcurrency)
	assert.Equal(t, []string{"mod1@example.com", "mod2@example.com"}, cfg.AlertRecipients())
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("BUMP_INTERVAL", "0s")
	_, err := load(viper.New(), logger.NewNop())
	assert.Error(t, err)
}

func TestLoad_RejectsTinyLeaseTTL(t *testing.T) {
	t.Setenv("SWEEP_LEASE_TTL", "10ms")
	_, err := load(viper.New(), logger.NewNop())
	assert.ErrorContains(t, err, "SWEEP_LEASE_TTL")
}
