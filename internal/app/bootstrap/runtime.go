// Package bootstrap builds the optional runtime dependencies from
// configuration: the Redis client for cross-session events and the
// outbound email sender.
package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/fisiocan/booking-platform/internal/config"
	"github.com/fisiocan/booking-platform/internal/notify"
	"github.com/fisiocan/booking-platform/pkg/logging"
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

// BuildEmailSender picks the email provider from configuration. Unknown
// or unconfigured providers fall back to the logging stub so booking
// flows keep working without delivery.
func BuildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil {
		return notify.NewStubEmailSender(logger)
	}

	switch cfg.EmailProvider {
	case "sendgrid":
		if sender := notify.NewSendGridSender(cfg.SendGridAPIKey, cfg.SendGridFromEmail, cfg.SendGridFromName, logger); sender != nil {
			return sender
		}
		logger.Warn("sendgrid selected but not configured, using stub sender")
	case "ses":
		client := buildSESClient(ctx, cfg, logger)
		if sender := notify.NewSESSender(client, cfg.SESFromEmail, cfg.SESFromName, logger); sender != nil {
			return sender
		}
		logger.Warn("ses selected but not configured, using stub sender")
	}
	return notify.NewStubEmailSender(logger)
}

func buildSESClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *sesv2.Client {
	if ctx == nil {
		ctx = context.Background()
	}
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		logger.Error("aws config load failed", "error", err)
		return nil
	}
	if cfg.AWSEndpointOverride != "" {
		return sesv2.NewFromConfig(awsCfg, func(o *sesv2.Options) {
			o.BaseEndpoint = &cfg.AWSEndpointOverride
		})
	}
	return sesv2.NewFromConfig(awsCfg)
}
