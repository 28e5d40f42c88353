package bootstrap

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	appconfig "github.com/wolfman30/dental-booking-bridge/internal/config"
	"github.com/wolfman30/dental-booking-bridge/internal/booking"
	"github.com/wolfman30/dental-booking-bridge/pkg/logging"
)

func TestBuildRedisClientDisabled(t *testing.T) {
	cfg := &appconfig.Config{}
	if client := BuildRedisClient(context.Background(), cfg, logging.New("error"), false); client != nil {
		t.Fatalf("expected nil client when redis addr is empty")
	}
	if client := BuildRedisClient(context.Background(), nil, logging.New("error"), false); client != nil {
		t.Fatalf("expected nil client for nil config")
	}
}

func TestBuildRedisClientVerify(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := &appconfig.Config{RedisAddr: mr.Addr()}
	client := BuildRedisClient(context.Background(), cfg, logging.New("error"), true)
	if client == nil {
		t.Fatalf("expected client for reachable redis")
	}
	_ = client.Close()

	mr.Close()
	if client := BuildRedisClient(context.Background(), cfg, logging.New("error"), true); client != nil {
		t.Fatalf("expected nil client when ping fails")
	}
}

func TestBuildPracticeStoreMemoryFallback(t *testing.T) {
	cfg := &appconfig.Config{
		DefaultPracticeID: "desert-smiles",
		PracticeName:      "Desert Smiles Dental",
		SmileBookToken:    "tok-ds",
	}

	store := BuildPracticeStore(context.Background(), cfg, nil, logging.New("error"))
	if store == nil {
		t.Fatalf("expected a store")
	}

	seeded, err := store.Get(context.Background(), "desert-smiles")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if seeded.Name != "Desert Smiles Dental" {
		t.Errorf("expected seeded name, got %q", seeded.Name)
	}
	if seeded.Token != "tok-ds" {
		t.Errorf("expected seeded token, got %q", seeded.Token)
	}
}

func TestBuildPracticeStoreSeedsRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &appconfig.Config{
		RedisAddr:         mr.Addr(),
		DefaultPracticeID: "desert-smiles",
		PracticeName:      "Desert Smiles Dental",
	}

	client := BuildRedisClient(context.Background(), cfg, logging.New("error"), true)
	if client == nil {
		t.Fatalf("expected redis client")
	}
	defer client.Close()

	store := BuildPracticeStore(context.Background(), cfg, client, logging.New("error"))
	listed, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != "desert-smiles" {
		t.Fatalf("expected seeded practice in redis, got %+v", listed)
	}
}

func TestDefaultPracticeFromConfig(t *testing.T) {
	cfg := &appconfig.Config{
		DefaultPracticeID:    "desert-smiles",
		PracticeName:         "Desert Smiles Dental",
		SmileBookToken:       "tok-ds",
		SmileBookBookingURL:  "https://book.staging.smilebook.io/w/%s",
		AppointmentTypesJSON: `{"cleaning":"11","checkup":"12"}`,
		FrontDeskEmail:       "frontdesk@desertsmiles.test",
		FrontDeskPhone:       "+14805550000",
	}

	prac := DefaultPractice(cfg, logging.New("error"))

	if prac.ID != "desert-smiles" || prac.Name != "Desert Smiles Dental" {
		t.Errorf("identity not applied: %+v", prac)
	}
	if prac.BookingURL != "https://book.staging.smilebook.io/w/tok-ds" {
		t.Errorf("expected templated booking url, got %q", prac.BookingURL)
	}
	if prac.AppointmentTypes["cleaning"] != "11" {
		t.Errorf("expected appointment type override, got %v", prac.AppointmentTypes)
	}
	if !prac.Notifications.EmailEnabled || prac.Notifications.EmailRecipients[0] != "frontdesk@desertsmiles.test" {
		t.Errorf("expected email notifications enabled, got %+v", prac.Notifications)
	}
	if !prac.Notifications.SMSEnabled || !prac.Notifications.NotifyOnHandoff {
		t.Errorf("expected sms notifications enabled for hand-offs, got %+v", prac.Notifications)
	}
	if prac.FrontDeskPhone != "+14805550000" {
		t.Errorf("expected front desk phone, got %q", prac.FrontDeskPhone)
	}
}

func TestDefaultPracticeBadJSONKeepsDefaults(t *testing.T) {
	cfg := &appconfig.Config{
		DefaultPracticeID:    "default",
		AppointmentTypesJSON: `{broken`,
	}

	prac := DefaultPractice(cfg, logging.New("error"))
	if prac.AppointmentTypes["cleaning"] != "1" {
		t.Errorf("expected stock table after bad JSON, got %v", prac.AppointmentTypes)
	}
}

func TestDefaultPracticeStockURLLeavesOverrideEmpty(t *testing.T) {
	cfg := &appconfig.Config{
		DefaultPracticeID:   "default",
		SmileBookToken:      "tok",
		SmileBookBookingURL: "https://book.smilebook.io/w/%s",
	}

	prac := DefaultPractice(cfg, logging.New("error"))
	if prac.BookingURL != "" {
		t.Errorf("stock template should derive at call time, got override %q", prac.BookingURL)
	}
	if got := prac.BookingPageURL(); got != "https://book.smilebook.io/w/tok" {
		t.Errorf("BookingPageURL = %q", got)
	}
}

func TestBookingURLFromTemplate(t *testing.T) {
	if got := bookingURLFromTemplate("https://x.test/w/%s", "tok"); got != "https://x.test/w/tok" {
		t.Errorf("got %q", got)
	}
	if got := bookingURLFromTemplate("https://x.test/fixed", "tok"); got != "https://x.test/fixed" {
		t.Errorf("complete URLs pass through, got %q", got)
	}
}

func TestBuildSMSSenderUnconfigured(t *testing.T) {
	if sender := BuildSMSSender(&appconfig.Config{SMSProvider: "auto"}, logging.New("error")); sender != nil {
		t.Fatalf("expected nil sender without credentials")
	}
	if sender := BuildSMSSender(nil, logging.New("error")); sender != nil {
		t.Fatalf("expected nil sender for nil config")
	}
}

func TestBuildSMSSenderTelnyx(t *testing.T) {
	cfg := &appconfig.Config{
		SMSProvider:              "telnyx",
		TelnyxAPIKey:             "test-key",
		TelnyxMessagingProfileID: "profile-1",
	}
	if sender := BuildSMSSender(cfg, logging.New("error")); sender == nil {
		t.Fatalf("expected telnyx sender")
	}
}

func TestBuildBookingAdapters(t *testing.T) {
	cfg := &appconfig.Config{SubmitSettle: time.Second}

	adapters := BuildBookingAdapters(cfg, nil, nil, nil, logging.New("error"))
	if len(adapters) != 2 {
		t.Fatalf("expected both strategies, got %d", len(adapters))
	}

	names := map[string]bool{}
	for _, a := range adapters {
		names[a.Name()] = true
	}
	if !names[booking.StrategyAutomation] || !names[booking.StrategyHandoff] {
		t.Errorf("expected automation and sms-handoff adapters, got %v", names)
	}
}

func TestBuildLauncherShutdownBeforeUse(t *testing.T) {
	cfg := &appconfig.Config{
		BrowserHeadless:    true,
		NavTimeout:         30 * time.Second,
		SessionPoolSize:    2,
		SessionPoolMaxWait: time.Second,
	}

	launcher, shutdown := BuildLauncher(cfg, nil, logging.New("error"))
	if launcher == nil {
		t.Fatalf("expected launcher")
	}
	// The driver starts lazily, so shutting down a never-used launcher is a
	// no-op that must not error.
	if err := shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestBuildEmailSenderUnconfigured(t *testing.T) {
	if sender := BuildEmailSender(context.Background(), &appconfig.Config{EmailProvider: "sendgrid"}, logging.New("error")); sender != nil {
		t.Fatalf("expected nil sender without sendgrid key")
	}
}

func TestBuildNotifierDegradesToStubs(t *testing.T) {
	svc := BuildNotifier(context.Background(), &appconfig.Config{}, nil, logging.New("error"))
	if svc == nil {
		t.Fatalf("expected notifier service")
	}
}
