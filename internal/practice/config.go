// Package practice holds per-practice configuration: the SmileBook practice
// token, booking URL, and the lookup tables that translate the voice agent's
// human-readable appointment-type and provider keys into platform codes.
package practice

import (
	"fmt"
	"strings"
)

// DefaultAppointmentTypeCode is used when an appointment-type key is unknown.
const DefaultAppointmentTypeCode = "1"

// DefaultBookingURLTemplate is SmileBook's hosted widget URL; %s is the
// practice token.
const DefaultBookingURLTemplate = "https://book.smilebook.io/w/%s"

// NotificationPrefs holds front-desk notification preferences for a practice.
type NotificationPrefs struct {
	EmailEnabled    bool     `json:"email_enabled"`
	EmailRecipients []string `json:"email_recipients,omitempty"`

	SMSEnabled    bool     `json:"sms_enabled"`
	SMSRecipients []string `json:"sms_recipients,omitempty"`

	// What to notify about
	NotifyOnBooking bool `json:"notify_on_booking"` // automation outcome (any status)
	NotifyOnHandoff bool `json:"notify_on_handoff"` // SMS hand-off link sent
}

// Recipients returns the deduplicated SMS recipient list.
func (n *NotificationPrefs) Recipients() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range n.SMSRecipients {
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Config holds practice-specific configuration. Values are immutable once
// resolved for a request; handlers and engines receive them by value or as a
// fresh pointer per request, never as shared mutable state.
type Config struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Token is the opaque SmileBook practice token that selects which
	// practice's booking instance to target.
	Token string `json:"token,omitempty"`

	// BookingURL overrides the derived widget URL when set.
	BookingURL string `json:"booking_url,omitempty"`

	// Strategy overrides the service-wide booking strategy for this practice:
	// "automation" or "sms-handoff". Empty means use the global setting.
	Strategy string `json:"strategy,omitempty"`

	Timezone string `json:"timezone"`

	// AppointmentTypes maps normalized appointment-type keys (e.g.
	// "emergency-exam") to SmileBook type codes. Unknown keys fall back to
	// DefaultAppointmentTypeCode.
	AppointmentTypes map[string]string `json:"appointment_types,omitempty"`

	// Providers maps normalized provider keys to SmileBook provider codes.
	// Unknown keys resolve to "" (no preference).
	Providers map[string]string `json:"providers,omitempty"`

	// FrontDeskPhone is texted on hand-offs when SMS notifications are enabled.
	FrontDeskPhone string `json:"front_desk_phone,omitempty"`

	Notifications NotificationPrefs `json:"notifications"`
}

// DefaultConfig returns the stock configuration for a practice, including the
// default SmileBook lookup tables.
func DefaultConfig(id string) *Config {
	return &Config{
		ID:       id,
		Name:     "Dental Practice",
		Timezone: "America/Phoenix",
		AppointmentTypes: map[string]string{
			"cleaning":           "1",
			"emergency-exam":     "2",
			"new-patient-exam":   "3",
			"filling":            "4",
			"crown":              "5",
			"whitening":          "6",
			"invisalign-consult": "7",
		},
		Providers: map[string]string{
			"any":       "",
			"dr-rivera": "101",
			"dr-chen":   "102",
			"hygienist": "201",
		},
		Notifications: NotificationPrefs{
			EmailEnabled:    false,
			SMSEnabled:      false,
			NotifyOnBooking: true,
			NotifyOnHandoff: false,
		},
	}
}

// normalizeKey lowercases, trims, and hyphenates a lookup key so that
// "Emergency Exam" and "emergency-exam" resolve identically.
func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.Join(strings.Fields(key), "-")
}

// AppointmentTypeCode resolves a human-readable appointment-type key to the
// platform code. Resolution tries an exact normalized match, then a singular
// form for plural inputs, then the longest containing key, and finally falls
// back to DefaultAppointmentTypeCode.
func (c *Config) AppointmentTypeCode(key string) string {
	if code, ok := lookup(c.appointmentTypes(), key); ok {
		return code
	}
	return DefaultAppointmentTypeCode
}

// ProviderCode resolves a provider key to the platform code, or "" when the
// patient has no preference or the key is unknown.
func (c *Config) ProviderCode(key string) string {
	if key == "" {
		return ""
	}
	if code, ok := lookup(c.providers(), key); ok {
		return code
	}
	return ""
}

func (c *Config) appointmentTypes() map[string]string {
	if c != nil && len(c.AppointmentTypes) > 0 {
		return c.AppointmentTypes
	}
	return DefaultConfig("").AppointmentTypes
}

func (c *Config) providers() map[string]string {
	if c != nil && len(c.Providers) > 0 {
		return c.Providers
	}
	return DefaultConfig("").Providers
}

// lookup resolves key against table: exact normalized match first, then a
// de-pluralized form, then containment with the longest table key winning so
// "exam" never shadows "emergency-exam".
func lookup(table map[string]string, key string) (string, bool) {
	norm := normalizeKey(key)
	if norm == "" {
		return "", false
	}
	if code, ok := table[norm]; ok {
		return code, true
	}
	if strings.HasSuffix(norm, "s") {
		if code, ok := table[strings.TrimSuffix(norm, "s")]; ok {
			return code, true
		}
	}
	bestKey := ""
	bestCode := ""
	for tableKey, code := range table {
		if tableKey == "" {
			continue
		}
		if strings.Contains(norm, tableKey) || strings.Contains(tableKey, norm) {
			if len(tableKey) > len(bestKey) {
				bestKey = tableKey
				bestCode = code
			}
		}
	}
	if bestKey != "" {
		return bestCode, true
	}
	return "", false
}

// BookingPageURL returns the URL of the practice's hosted booking form:
// the explicit override when present, otherwise the widget template filled
// with the practice token.
func (c *Config) BookingPageURL() string {
	if c == nil {
		return ""
	}
	if c.BookingURL != "" {
		return c.BookingURL
	}
	return fmt.Sprintf(DefaultBookingURLTemplate, c.Token)
}

// ResolveStrategy returns the booking strategy for this practice, falling
// back to the service-wide default when no override is configured.
func (c *Config) ResolveStrategy(global string) string {
	if c != nil {
		if s := strings.ToLower(strings.TrimSpace(c.Strategy)); s != "" {
			return s
		}
	}
	if g := strings.ToLower(strings.TrimSpace(global)); g != "" {
		return g
	}
	return "automation"
}
