package party

import (
	"os"
	"strconv"
	"time"
)

// Config carries the engine tunables. Defaults match the documented contract;
// each value can be overridden from the environment.
type Config struct {
	// ActiveWindow is how long after their last action a member still counts
	// as active.
	ActiveWindow time.Duration

	// PromoteThreshold and RemoveThreshold are fractions of the currently
	// active member count.
	PromoteThreshold float64
	RemoveThreshold  float64

	// Suggestion sampling: ceil(active × SamplePercent), clamped to
	// [SampleMin, SampleCap].
	SamplePercent float64
	SampleMin     int
	SampleCap     int

	// Suggestion lifecycle timers, relative to creation.
	SuggestExpandAt time.Duration
	SuggestExpireAt time.Duration

	// SkipGrace is the host-player skip grace window. Recognized but not
	// consumed by the engine.
	SkipGrace time.Duration
}

func DefaultConfig() Config {
	return Config{
		ActiveWindow:     10 * time.Minute,
		PromoteThreshold: 0.40,
		RemoveThreshold:  0.40,
		SamplePercent:    0.05,
		SampleMin:        3,
		SampleCap:        15,
		SuggestExpandAt:  120 * time.Second,
		SuggestExpireAt:  300 * time.Second,
		SkipGrace:        30 * time.Second,
	}
}

// ConfigFromEnv returns the defaults with any environment overrides applied.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.ActiveWindow = envMinutes("ACTIVE_WINDOW_MIN", cfg.ActiveWindow)
	cfg.PromoteThreshold = envFloat("PROMOTE_THRESHOLD", cfg.PromoteThreshold)
	cfg.RemoveThreshold = envFloat("REMOVE_THRESHOLD", cfg.RemoveThreshold)
	cfg.SamplePercent = envFloat("SAMPLE_PERCENT", cfg.SamplePercent)
	cfg.SampleMin = envInt("SAMPLE_MIN", cfg.SampleMin)
	cfg.SampleCap = envInt("SAMPLE_CAP", cfg.SampleCap)
	cfg.SuggestExpandAt = envMillis("SUGGEST_EXPAND_AT_MS", cfg.SuggestExpandAt)
	cfg.SuggestExpireAt = envMillis("SUGGEST_EXPIRE_AT_MS", cfg.SuggestExpireAt)
	cfg.SkipGrace = envSeconds("SKIP_GRACE_SECONDS", cfg.SkipGrace)
	return cfg
}

func Getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envMinutes(k string, def time.Duration) time.Duration {
	if n := envInt(k, -1); n >= 0 {
		return time.Duration(n) * time.Minute
	}
	return def
}

func envSeconds(k string, def time.Duration) time.Duration {
	if n := envInt(k, -1); n >= 0 {
		return time.Duration(n) * time.Second
	}
	return def
}

func envMillis(k string, def time.Duration) time.Duration {
	if n := envInt(k, -1); n >= 0 {
		return time.Duration(n) * time.Millisecond
	}
	return def
}
