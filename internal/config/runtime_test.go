package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{
		"HTTP_ADDR", "LOG_LEVEL", "LOG_PRETTY", "CONTAGION_CACHE_MAX_ITEMS",
		"CONTAGION_SEARCH_WORKERS", "CONTAGION_PLAN_MAX_STEPS", "CONTAGION_OBS_BUFFER", "CONTAGION_MAX_FUND",
	} {
		t.Setenv(k, "")
	}

	rt := fromEnv()
	assert.Equal(t, ":8080", rt.HTTPAddr)
	assert.Equal(t, "info", rt.LogLevel)
	assert.False(t, rt.LogPretty)
	assert.Equal(t, 1024, rt.CacheMaxItems)
	assert.Equal(t, 4, rt.SearchWorkers)
	assert.Equal(t, 10_000, rt.PlanMaxSteps)
	assert.Equal(t, 4096, rt.ObsBuffer)
	assert.Equal(t, 100_000.0, rt.MaxFund)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("CONTAGION_SEARCH_WORKERS", "8")
	t.Setenv("CONTAGION_MAX_FUND", "250.5")

	rt := fromEnv()
	assert.Equal(t, ":9090", rt.HTTPAddr)
	assert.True(t, rt.LogPretty)
	assert.Equal(t, 8, rt.SearchWorkers)
	assert.Equal(t, 250.5, rt.MaxFund)
}

func TestFromEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("LOG_PRETTY", "maybe")
	t.Setenv("CONTAGION_CACHE_MAX_ITEMS", "0")
	t.Setenv("CONTAGION_PLAN_MAX_STEPS", "lots")
	t.Setenv("CONTAGION_MAX_FUND", "-1")

	rt := fromEnv()
	assert.False(t, rt.LogPretty)
	assert.Equal(t, 1024, rt.CacheMaxItems)
	assert.Equal(t, 10_000, rt.PlanMaxSteps)
	assert.Equal(t, 100_000.0, rt.MaxFund)
}
