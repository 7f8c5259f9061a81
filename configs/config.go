package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

func Config(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("Warning: .env file not found, reading from system environment variables")
	}

	return os.Getenv(key)
}

// Settings is the financial configuration snapshot consumed by the revenue
// services. It is loaded fresh per operation rather than cached so that a
// changed environment takes effect on the next request.
type Settings struct {
	DefaultInstructorPct    float64
	DefaultPlatformPct      float64
	PayoutMinimums          map[string]int64
	PayoutCancelWindowHours int
}

func LoadSettings() Settings {
	instructorPct := 70.0
	if raw := Config("DEFAULT_INSTRUCTOR_SPLIT_PCT"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed >= 0 && parsed <= 100 {
			instructorPct = parsed
		} else {
			log.Printf("Warning: invalid DEFAULT_INSTRUCTOR_SPLIT_PCT %q, using default", raw)
		}
	}

	cancelWindow := 24
	if raw := Config("PAYOUT_CANCEL_WINDOW_HOURS"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			cancelWindow = parsed
		}
	}

	return Settings{
		DefaultInstructorPct:    instructorPct,
		DefaultPlatformPct:      100 - instructorPct,
		PayoutMinimums:          parsePayoutMinimums(Config("PAYOUT_MINIMUMS")),
		PayoutCancelWindowHours: cancelWindow,
	}
}

// parsePayoutMinimums reads per-currency minimum payout thresholds in minor
// units from a "USD:1000,KES:10000" style value.
func parsePayoutMinimums(raw string) map[string]int64 {
	fallback := map[string]int64{"USD": 1000}
	if raw == "" {
		return fallback
	}

	parsed := make(map[string]int64)
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 {
			log.Printf("Warning: skipping malformed PAYOUT_MINIMUMS entry %q", pair)
			continue
		}
		amount, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil || amount < 0 {
			log.Printf("Warning: skipping malformed PAYOUT_MINIMUMS entry %q", pair)
			continue
		}
		parsed[strings.ToUpper(strings.TrimSpace(parts[0]))] = amount
	}

	if len(parsed) == 0 {
		return fallback
	}
	return parsed
}
