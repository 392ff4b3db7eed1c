package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("SWEEPER_INTERVAL", "")

	cfg := Load()

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 15*time.Second, cfg.Sweeper.Interval)
	assert.Equal(t, int64(50<<20), cfg.Media.MaxUploadSize)
	assert.Contains(t, cfg.Media.ImageExtensions, "jpg")
	assert.NotEmpty(t, cfg.WebRTC.STUNServers)
}

func TestSweeperIntervalClamped(t *testing.T) {
	// anything above the 20s ceiling falls back to the default
	t.Setenv("SWEEPER_INTERVAL", "5m")
	assert.Equal(t, 15*time.Second, Load().Sweeper.Interval)

	t.Setenv("SWEEPER_INTERVAL", "10s")
	assert.Equal(t, 10*time.Second, Load().Sweeper.Interval)

	t.Setenv("SWEEPER_INTERVAL", "garbage")
	assert.Equal(t, 15*time.Second, Load().Sweeper.Interval)
}

func TestDBConnStrings(t *testing.T) {
	d := DBConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "app", SSLMode: "disable"}

	assert.Equal(t, "host=db user=u password=p dbname=app port=5432 sslmode=disable", d.DSN())
	assert.Equal(t, "postgres://u:p@db:5432/app?sslmode=disable", d.URL())
}
