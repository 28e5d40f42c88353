package bootstrap

import (
	appconfig "github.com/wolfman30/dental-booking-bridge/internal/config"

	"github.com/wolfman30/dental-booking-bridge/internal/automation"
	"github.com/wolfman30/dental-booking-bridge/internal/booking"
	"github.com/wolfman30/dental-booking-bridge/internal/messaging"
	"github.com/wolfman30/dental-booking-bridge/internal/observability/metrics"
	"github.com/wolfman30/dental-booking-bridge/internal/smilebook"
	"github.com/wolfman30/dental-booking-bridge/pkg/logging"
)

// BuildLauncher wires the playwright driver behind the session pool. The
// returned shutdown func stops the shared browser process; call it after the
// HTTP server has drained.
func BuildLauncher(cfg *appconfig.Config, m *metrics.BookingMetrics, logger *logging.Logger) (automation.Launcher, func() error) {
	if logger == nil {
		logger = logging.Default()
	}

	driver := smilebook.NewDriver(smilebook.DriverConfig{
		Headless:   cfg.BrowserHeadless,
		NavTimeout: cfg.NavTimeout,
		Logger:     logger,
	})
	pool := automation.NewPool(driver, automation.PoolConfig{
		Size:    cfg.SessionPoolSize,
		MaxWait: cfg.SessionPoolMaxWait,
		Metrics: m,
		Logger:  logger,
	})
	logger.Info("browser automation ready",
		"headless", cfg.BrowserHeadless, "pool_size", cfg.SessionPoolSize, "pool_max_wait", cfg.SessionPoolMaxWait)
	return pool, driver.Shutdown
}

// BuildSMSSender selects an SMS provider from config. It returns nil when no
// provider is configured (the reason is logged); hand-off bookings then fail
// with an explicit outcome and front-desk texts are skipped.
func BuildSMSSender(cfg *appconfig.Config, logger *logging.Logger) booking.SMSSender {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil {
		return nil
	}

	sender, provider, reason := messaging.BuildSMSSender(messaging.ProviderSelectionConfig{
		Preference:       cfg.SMSProvider,
		TelnyxAPIKey:     cfg.TelnyxAPIKey,
		TelnyxProfileID:  cfg.TelnyxMessagingProfileID,
		TelnyxFromNumber: cfg.TelnyxFromNumber,
		TwilioAccountSID: cfg.TwilioAccountSID,
		TwilioAuthToken:  cfg.TwilioAuthToken,
		TwilioFromNumber: cfg.TwilioFromNumber,
	}, logger)
	if sender == nil {
		logger.Warn("sms sending disabled", "reason", reason)
		return nil
	}
	logger.Info("sms sender ready", "provider", provider)
	return sender
}

// BuildBookingAdapters assembles every booking strategy the handler can
// dispatch to. Both strategies are always registered; per-practice config
// picks between them at request time.
func BuildBookingAdapters(cfg *appconfig.Config, launcher automation.Launcher, sms booking.SMSSender, m *metrics.BookingMetrics, logger *logging.Logger) []booking.Adapter {
	if logger == nil {
		logger = logging.Default()
	}

	engine := automation.NewEngine(automation.EngineConfig{
		SettleDelay: cfg.SubmitSettle,
		Metrics:     m,
		Logger:      logger,
	})

	return []booking.Adapter{
		automation.NewAdapter(launcher, engine, logger),
		booking.NewHandoffAdapter(sms, logger),
	}
}
