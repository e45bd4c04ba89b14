package config

import (
	"math"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Runtime struct {
	HTTPAddr      string
	LogLevel      string
	LogPretty     bool
	CacheMaxItems int
	SearchWorkers int
	PlanMaxSteps  int
	ObsBuffer     int
	MaxFund       float64
}

// Load reads the runtime settings from the environment. A .env file in the
// working directory is applied first when present; real env vars win.
func Load() Runtime {
	_ = godotenv.Load()
	return fromEnv()
}

func fromEnv() Runtime {
	return Runtime{
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		LogPretty:     getenvBool("LOG_PRETTY", false),
		CacheMaxItems: getenvInt("CONTAGION_CACHE_MAX_ITEMS", 1024, 1),
		SearchWorkers: getenvInt("CONTAGION_SEARCH_WORKERS", 4, 1),
		PlanMaxSteps:  getenvInt("CONTAGION_PLAN_MAX_STEPS", 10_000, 1),
		ObsBuffer:     getenvInt("CONTAGION_OBS_BUFFER", 4096, 1),
		MaxFund:       getenvFloat("CONTAGION_MAX_FUND", 100_000, 0),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback, min int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min {
		return fallback
	}
	return v
}

func getenvFloat(key string, fallback, min float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < min {
		return fallback
	}
	return v
}

func getenvBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}
