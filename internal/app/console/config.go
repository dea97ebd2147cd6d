package console

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.temporal.io/sdk/client"

	consoleapp "github.com/Apurer/pos-console/internal/domains/console/application"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	defaultPort        = "8080"
)

// Config carries environment-driven settings for the console process.
type Config struct {
	Port                string
	OrderAPIBaseURL     string
	PollInterval        time.Duration
	ConfirmDelay        time.Duration
	HTTPTimeout         time.Duration
	PostgresDSN         string
	TemporalAddress     string
	TemporalNamespace   string
	TemporalDisabled    bool
	NATSURL             string
	AlarmSoundPath      string
	AlarmRequireGesture bool
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:                envDefault("PORT", defaultPort),
		OrderAPIBaseURL:     strings.TrimSpace(os.Getenv("ORDER_API_BASE_URL")),
		PostgresDSN:         strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		TemporalAddress:     envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace:   envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:    isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		NATSURL:             strings.TrimSpace(os.Getenv("NATS_URL")),
		AlarmSoundPath:      strings.TrimSpace(os.Getenv("ALARM_SOUND_PATH")),
		AlarmRequireGesture: isTruthy(envDefault("ALARM_REQUIRE_GESTURE", "true")),
	}
	if cfg.OrderAPIBaseURL == "" {
		return Config{}, errors.New("ORDER_API_BASE_URL is required")
	}
	var err error
	if cfg.PollInterval, err = durationEnv("POLL_INTERVAL", consoleapp.DefaultPollInterval, false); err != nil {
		return Config{}, err
	}
	if cfg.ConfirmDelay, err = durationEnv("CONFIRM_DELAY", consoleapp.DefaultConfirmDelay, true); err != nil {
		return Config{}, err
	}
	if cfg.HTTPTimeout, err = durationEnv("HTTP_TIMEOUT", defaultHTTPTimeout, false); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

func durationEnv(key string, fallback time.Duration, allowZero bool) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("%s must be a positive duration such as 5s", key)
	}
	return d, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
