package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/wolfman30/dental-booking-bridge/internal/config"
	"github.com/wolfman30/dental-booking-bridge/internal/booking"
	"github.com/wolfman30/dental-booking-bridge/internal/notify"
	"github.com/wolfman30/dental-booking-bridge/pkg/logging"
)

// BuildEmailSender selects an email provider from config: SendGrid by
// default, SES when EMAIL_PROVIDER=ses. Returns nil when the selected
// provider has no credentials, so callers can fall back to the stub.
func BuildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil {
		return nil
	}

	switch cfg.EmailProvider {
	case "ses":
		client, err := buildSESClient(ctx, cfg)
		if err != nil {
			logger.Warn("ses unavailable", "error", err)
			return nil
		}
		if sender := notify.NewSESSender(client, notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.EmailFromName,
		}, logger); sender != nil {
			logger.Info("email sender ready", "provider", "ses", "from", cfg.SESFromEmail)
			return sender
		}
	default:
		if sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.EmailFromName,
		}, logger); sender != nil {
			logger.Info("email sender ready", "provider", "sendgrid", "from", cfg.SendGridFromEmail)
			return sender
		}
	}
	return nil
}

// BuildNotifier wires the front-desk notification service. Missing channels
// degrade to logging stubs so outcome summaries still land somewhere.
func BuildNotifier(ctx context.Context, cfg *appconfig.Config, sms booking.SMSSender, logger *logging.Logger) *notify.Service {
	if logger == nil {
		logger = logging.Default()
	}

	email := BuildEmailSender(ctx, cfg, logger)
	if email == nil {
		logger.Warn("no email provider configured; front-desk emails will only be logged")
		email = notify.NewStubEmailSender(logger)
	}

	var notifySMS notify.SMSSender
	if sms != nil {
		notifySMS = sms
	} else {
		notifySMS = notify.NewStubSMSSender(logger)
	}

	return notify.NewService(email, notifySMS, logger)
}

// buildSESClient centralizes AWS SDK initialization: region, optional static
// credentials, optional endpoint override for LocalStack.
func buildSESClient(ctx context.Context, cfg *appconfig.Config) (*sesv2.Client, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load aws config: %w", err)
	}

	client := sesv2.NewFromConfig(awsCfg, func(o *sesv2.Options) {
		if endpoint := strings.TrimSpace(cfg.AWSEndpointOverride); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return client, nil
}
