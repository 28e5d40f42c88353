// Package bootstrap assembles the service's collaborators from configuration.
// Each Build* helper degrades gracefully: a missing backend yields a nil
// client or an in-memory fallback plus a log line, never a crash, so the
// booking endpoints stay up with whatever infrastructure is actually there.
package bootstrap

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/dental-booking-bridge/internal/config"
	"github.com/wolfman30/dental-booking-bridge/internal/practice"
	"github.com/wolfman30/dental-booking-bridge/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}

// BuildPracticeStore wires the practice config store: Redis-backed when a
// client is available, in-memory otherwise. Either way the default practice
// derived from the environment is seeded, so a fresh deployment can take
// bookings before anyone touches the admin API.
func BuildPracticeStore(ctx context.Context, cfg *appconfig.Config, redisClient *redis.Client, logger *logging.Logger) practice.Store {
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var store practice.Store
	if redisClient != nil {
		store = practice.NewRedisStore(redisClient)
		logger.Info("practice store using redis")
	} else {
		store = practice.NewMemoryStore()
		logger.Info("practice store using memory; configs reset on restart")
	}

	seed := DefaultPractice(cfg, logger)
	if err := store.Seed(ctx, seed); err != nil {
		logger.Warn("failed to seed default practice", "practice_id", seed.ID, "error", err)
	}
	return store
}

// DefaultPractice builds the boot-time practice config from the environment.
// JSON lookup-table overrides that fail to parse are skipped with a warning;
// the stock SmileBook tables still apply.
func DefaultPractice(cfg *appconfig.Config, logger *logging.Logger) *practice.Config {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil {
		return practice.DefaultConfig("default")
	}

	prac := practice.DefaultConfig(cfg.DefaultPracticeID)
	if cfg.PracticeName != "" {
		prac.Name = cfg.PracticeName
	}
	prac.Token = cfg.SmileBookToken
	if cfg.SmileBookBookingURL != "" && cfg.SmileBookBookingURL != practice.DefaultBookingURLTemplate {
		prac.BookingURL = bookingURLFromTemplate(cfg.SmileBookBookingURL, cfg.SmileBookToken)
	}

	if cfg.AppointmentTypesJSON != "" {
		if table, err := parseLookupTable(cfg.AppointmentTypesJSON); err != nil {
			logger.Warn("invalid APPOINTMENT_TYPES_JSON, keeping defaults", "error", err)
		} else {
			prac.AppointmentTypes = table
		}
	}
	if cfg.ProvidersJSON != "" {
		if table, err := parseLookupTable(cfg.ProvidersJSON); err != nil {
			logger.Warn("invalid PROVIDERS_JSON, keeping defaults", "error", err)
		} else {
			prac.Providers = table
		}
	}

	prac.FrontDeskPhone = cfg.FrontDeskPhone
	if cfg.FrontDeskEmail != "" {
		prac.Notifications.EmailEnabled = true
		prac.Notifications.EmailRecipients = []string{cfg.FrontDeskEmail}
	}
	if cfg.FrontDeskPhone != "" {
		prac.Notifications.SMSEnabled = true
		prac.Notifications.NotifyOnHandoff = true
	}
	return prac
}

// bookingURLFromTemplate fills a %s-style URL template with the practice
// token. Templates without a verb are already complete URLs.
func bookingURLFromTemplate(template, token string) string {
	if strings.Contains(template, "%s") {
		return fmt.Sprintf(template, token)
	}
	return template
}

func parseLookupTable(raw string) (map[string]string, error) {
	table := map[string]string{}
	if err := json.Unmarshal([]byte(raw), &table); err != nil {
		return nil, err
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("empty table")
	}
	return table, nil
}
