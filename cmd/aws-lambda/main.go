package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/rs/zerolog"

	"github.com/mosajjal/findinghec/pkg/config"
	"github.com/mosajjal/findinghec/pkg/credential"
	"github.com/mosajjal/findinghec/pkg/handler"
	"github.com/mosajjal/findinghec/pkg/hec"
	"github.com/mosajjal/findinghec/pkg/logging"
	"github.com/mosajjal/findinghec/pkg/models"
	"github.com/mosajjal/findinghec/pkg/provider/aws"
	"github.com/mosajjal/findinghec/pkg/storage"
	s3storage "github.com/mosajjal/findinghec/pkg/storage/s3"
)

const serviceName = "findinghec"

func loadAWSConfig(ctx context.Context, cfg config.Config) (awssdk.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.StaticCredentials() {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3AccessKeySecret, ""),
		))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

// setup resolves everything that stays fixed for the life of the process
func setup(ctx context.Context, cfg config.Config, resolver *credential.Resolver, awsCfg awssdk.Config, logger zerolog.Logger) (*handler.Handler, error) {
	token, source, err := resolver.Resolve(ctx, credential.Settings{
		SecretARN: cfg.TokenSecretARN,
		SSMPath:   cfg.TokenSSMPath,
		Token:     cfg.Token,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEC token: %w", err)
	}
	if source == credential.SourceEnv {
		logger.Warn().Msg("HEC token read from SPLUNK_HEC_TOKEN, use Secrets Manager or SSM outside development")
	}

	sink, err := hec.NewSink(hec.Config{
		Endpoint:       cfg.Endpoint,
		Token:          token,
		ChannelID:      cfg.ChannelID,
		Source:         cfg.Source,
		SourceType:     cfg.Sourcetype,
		Index:          cfg.Index,
		TLSSkipVerify:  cfg.TLSSkipVerify,
		Proxy:          cfg.Proxy,
		ConnectTimeout: cfg.ConnectTimeout,
		ReadTimeout:    cfg.ReadTimeout,
		DryRun:         cfg.DryRun(),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create HEC sink: %w", err)
	}

	var opts []handler.Option
	if cfg.S3URL != "" {
		archive, err := s3storage.NewStorage(storage.StorageConfig{Provider: storage.ProviderS3, URL: cfg.S3URL}, awsCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to set up failure archive: %w", err)
		}
		opts = append(opts, handler.WithArchive(archive))
	}

	normalizer := models.Normalizer{
		Source:     cfg.Source,
		SourceType: cfg.Sourcetype,
		Index:      cfg.Index,
	}

	logger.Info().
		Str("endpoint", cfg.Endpoint).
		Str("mode", sink.Mode()).
		Str("token_source", string(source)).
		Bool("archive", cfg.S3URL != "").
		Msg("AWS Lambda handler initialized successfully")

	return handler.New(aws.NewProvider(), normalizer, sink, logger, opts...), nil
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		// logging is not configured yet
		bootstrap := logging.New(logging.Options{Service: serviceName})
		bootstrap.Fatal().Err(err).Msg("Invalid configuration")
	}

	logger := logging.Init(logging.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: serviceName,
	})

	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Unable to load AWS config")
	}

	h, err := setup(ctx, cfg, credential.NewFromConfig(awsCfg), awsCfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize handler")
	}

	lambda.Start(func(ctx context.Context, event json.RawMessage) (handler.Response, error) {
		return h.Handle(ctx, event)
	})
}
