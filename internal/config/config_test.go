package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []float64{6000, 12000}, cfg.StockLengths)
	assert.Equal(t, 3.0, cfg.KerfMM)
	assert.NotEmpty(t, cfg.DataDir)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BARNEST_PORT", "9090")
	t.Setenv("DEFAULT_STOCK_LENGTHS", "6000, 12000,15000")
	t.Setenv("KERF_MM", "4.5")
	t.Setenv("DEV_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []float64{6000, 12000, 15000}, cfg.StockLengths)
	assert.Equal(t, 4.5, cfg.KerfMM)
	assert.True(t, cfg.DevMode)
}

func TestLoad_InvalidStockLengths(t *testing.T) {
	t.Setenv("DEFAULT_STOCK_LENGTHS", "6000,abc")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEFAULT_STOCK_LENGTHS")
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("BARNEST_PORT", "-1")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BARNEST_PORT")
}

func TestSettings(t *testing.T) {
	cfg := &Config{
		StockLengths: []float64{6000},
		KerfMM:       2.5,
		MinOffcutMM:  300,
	}
	s := cfg.Settings()
	assert.Equal(t, []float64{6000}, s.StockLengths)
	assert.Equal(t, 2.5, s.KerfMM)
	assert.Equal(t, 300.0, s.MinOffcutMM)
	assert.Equal(t, 0.1, s.ToleranceMM, "tolerance is not configurable")
}
