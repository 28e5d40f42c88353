package messaging

import (
	"fmt"
	"strings"

	"github.com/wolfman30/dental-booking-bridge/internal/booking"
	"github.com/wolfman30/dental-booking-bridge/pkg/logging"
)

const (
	// SMSProviderAuto tries Telnyx first, then Twilio.
	SMSProviderAuto = "auto"
	// SMSProviderTelnyx forces the Telnyx sender when credentials exist.
	SMSProviderTelnyx = "telnyx"
	// SMSProviderTwilio forces the Twilio sender when credentials exist.
	SMSProviderTwilio = "twilio"
)

// ProviderSelectionConfig captures the credentials required to build outbound senders.
type ProviderSelectionConfig struct {
	Preference       string
	TelnyxAPIKey     string
	TelnyxProfileID  string
	TelnyxFromNumber string
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
}

// candidate holds one provider's construction result: a usable sender, or the
// reason it could not be built.
type candidate struct {
	sender booking.SMSSender
	reason string
}

func (c candidate) ok() bool { return c.sender != nil }

// BuildSMSSender instantiates an SMS sender based on the preferred provider.
// It returns the sender, the provider that was selected, and a reason when no
// provider could be initialized.
func BuildSMSSender(cfg ProviderSelectionConfig, logger *logging.Logger) (booking.SMSSender, string, string) {
	if logger == nil {
		logger = logging.Default()
	}
	preference := strings.ToLower(strings.TrimSpace(cfg.Preference))
	if preference == "" {
		preference = SMSProviderAuto
	}

	candidates := map[string]candidate{
		SMSProviderTelnyx: buildTelnyxCandidate(cfg, logger),
		SMSProviderTwilio: buildTwilioCandidate(cfg, logger),
	}

	if preference != SMSProviderAuto {
		c := candidates[preference]
		if c.ok() {
			return c.sender, preference, ""
		}
		if c.reason != "" {
			return nil, "", c.reason
		}
		return nil, "", fmt.Sprintf("%s sender not configured", preference)
	}

	telnyx := candidates[SMSProviderTelnyx]
	twilio := candidates[SMSProviderTwilio]
	switch {
	case telnyx.ok() && twilio.ok():
		failover := NewFailoverSender(telnyx.sender, SMSProviderTelnyx, twilio.sender, SMSProviderTwilio, logger)
		return failover, SMSProviderTelnyx + "+" + SMSProviderTwilio, ""
	case telnyx.ok():
		return telnyx.sender, SMSProviderTelnyx, ""
	case twilio.ok():
		return twilio.sender, SMSProviderTwilio, ""
	}

	var reasons []string
	for _, provider := range resolvePreferredOrder(preference) {
		if c := candidates[provider]; c.reason != "" {
			reasons = append(reasons, fmt.Sprintf("%s: %s", provider, c.reason))
		}
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "no SMS providers configured")
	}
	return nil, "", strings.Join(reasons, "; ")
}

func buildTelnyxCandidate(cfg ProviderSelectionConfig, logger *logging.Logger) candidate {
	var absent []string
	if cfg.TelnyxAPIKey == "" {
		absent = append(absent, "TELNYX_API_KEY missing")
	}
	if cfg.TelnyxProfileID == "" {
		absent = append(absent, "TELNYX_MESSAGING_PROFILE_ID missing")
	}
	if len(absent) > 0 {
		return candidate{reason: strings.Join(absent, ", ")}
	}
	sender, err := NewTelnyxSender(cfg.TelnyxAPIKey, cfg.TelnyxProfileID, cfg.TelnyxFromNumber, logger)
	if err != nil {
		return candidate{reason: err.Error()}
	}
	return candidate{sender: sender}
}

func buildTwilioCandidate(cfg ProviderSelectionConfig, logger *logging.Logger) candidate {
	var absent []string
	if cfg.TwilioAccountSID == "" {
		absent = append(absent, "TWILIO_ACCOUNT_SID missing")
	}
	if cfg.TwilioAuthToken == "" {
		absent = append(absent, "TWILIO_AUTH_TOKEN missing")
	}
	if cfg.TwilioFromNumber == "" {
		absent = append(absent, "TWILIO_FROM_NUMBER missing")
	}
	if len(absent) > 0 {
		return candidate{reason: strings.Join(absent, ", ")}
	}
	return candidate{sender: NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, logger)}
}

// resolvePreferredOrder lists the providers a reason string should cover, in
// the order auto mode would try them.
func resolvePreferredOrder(preference string) []string {
	switch preference {
	case SMSProviderTelnyx:
		return []string{SMSProviderTelnyx}
	case SMSProviderTwilio:
		return []string{SMSProviderTwilio}
	default:
		return []string{SMSProviderTelnyx, SMSProviderTwilio}
	}
}
