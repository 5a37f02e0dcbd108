package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "collab_league", cfg.Database.Name)
	assert.Equal(t, time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshExpiration)
	assert.Equal(t, 12, cfg.Discovery.PageSize)
	assert.Equal(t, time.Minute, cfg.Discovery.CacheTTL)
	assert.False(t, cfg.ViewCache.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	v.Set("VIEW_CACHE_TTL", "not-a-duration")
	v.Set("DISCOVERY_PAGE_SIZE", 0)
	v.Set("ENABLE_VIEW_CACHE", true)

	cfg := fromViper(v)

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 2*time.Minute, cfg.ViewCache.TTL)
	assert.Equal(t, 12, cfg.Discovery.PageSize)
	assert.True(t, cfg.ViewCache.Enabled)
	assert.True(t, cfg.Redis.Enabled)
}
