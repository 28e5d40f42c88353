package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	PublicBaseURL string

	// HTTP server
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// Practice / booking platform
	DefaultPracticeID    string
	PracticeName         string
	SmileBookToken       string
	SmileBookAPIBase     string
	SmileBookBookingURL  string // URL template; %s is replaced with the practice token
	AvailabilityTimeout  time.Duration
	BookingStrategy      string // "automation" or "sms-handoff"
	AppointmentTypesJSON string // optional per-deploy override of the default lookup table
	ProvidersJSON        string

	// Browser automation
	BrowserHeadless    bool
	NavTimeout         time.Duration
	SubmitSettle       time.Duration
	SessionPoolSize    int
	SessionPoolMaxWait time.Duration

	// SMS (hand-off strategy + front-desk alerts)
	SMSProvider              string // "auto", "telnyx", or "twilio"
	TelnyxAPIKey             string
	TelnyxMessagingProfileID string
	TelnyxFromNumber         string
	TwilioAccountSID         string
	TwilioAuthToken          string
	TwilioFromNumber         string

	// Front-desk notifications
	EmailProvider     string // "sendgrid" or "ses"
	EmailFromName     string
	SendGridAPIKey    string
	SendGridFromEmail string
	SESFromEmail      string
	FrontDeskEmail    string
	FrontDeskPhone    string

	// AWS (SES email sender)
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Redis (practice config store)
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	AdminJWTSecret     string
	CORSAllowedOrigins []string

	// Per-IP request throttling on the public booking endpoints. Zero disables.
	RateLimitRPS   int
	RateLimitBurst int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),

		HTTPReadTimeout:  getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		HTTPWriteTimeout: getEnvAsDuration("HTTP_WRITE_TIMEOUT", 120*time.Second),
		HTTPIdleTimeout:  getEnvAsDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),

		DefaultPracticeID:    getEnv("DEFAULT_PRACTICE_ID", "default"),
		PracticeName:         getEnv("PRACTICE_NAME", "Desert Smiles Dental"),
		SmileBookToken:       getEnv("SMILEBOOK_PRACTICE_TOKEN", ""),
		SmileBookAPIBase:     getEnv("SMILEBOOK_API_BASE", "https://api.smilebook.io"),
		SmileBookBookingURL:  getEnv("SMILEBOOK_BOOKING_URL", "https://book.smilebook.io/w/%s"),
		AvailabilityTimeout:  getEnvAsDuration("AVAILABILITY_TIMEOUT", 10*time.Second),
		BookingStrategy:      strings.ToLower(strings.TrimSpace(getEnv("BOOKING_STRATEGY", "automation"))),
		AppointmentTypesJSON: getEnv("APPOINTMENT_TYPES_JSON", ""),
		ProvidersJSON:        getEnv("PROVIDERS_JSON", ""),

		BrowserHeadless:    getEnvAsBool("BROWSER_HEADLESS", true),
		NavTimeout:         getEnvAsDuration("NAV_TIMEOUT", 30*time.Second),
		SubmitSettle:       getEnvAsDuration("SUBMIT_SETTLE", 3*time.Second),
		SessionPoolSize:    getEnvAsInt("SESSION_POOL_SIZE", 4),
		SessionPoolMaxWait: getEnvAsDuration("SESSION_POOL_MAX_WAIT", 15*time.Second),

		SMSProvider:              strings.ToLower(strings.TrimSpace(getEnv("SMS_PROVIDER", "auto"))),
		TelnyxAPIKey:             getEnv("TELNYX_API_KEY", ""),
		TelnyxMessagingProfileID: getEnv("TELNYX_MESSAGING_PROFILE_ID", ""),
		TelnyxFromNumber:         getEnv("TELNYX_FROM_NUMBER", ""),
		TwilioAccountSID:         getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:          getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber:         getEnv("TWILIO_FROM_NUMBER", ""),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "sendgrid"))),
		EmailFromName:     getEnv("EMAIL_FROM_NAME", "Dental Booking Bridge"),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		FrontDeskEmail:    getEnv("FRONT_DESK_EMAIL", ""),
		FrontDeskPhone:    getEnv("FRONT_DESK_PHONE", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "")),

		RateLimitRPS:   getEnvAsInt("RATE_LIMIT_RPS", 0),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 20),
	}
}

// splitAndTrim parses a comma-separated list, dropping empty entries.
func splitAndTrim(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
