// Package app wires configuration into a ready chat handler. Both the Lambda
// entrypoint and the local dev server build through here.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"khata-advisor/handler"
	"khata-advisor/internal/config"
	"khata-advisor/internal/integrations/groq"
	"khata-advisor/internal/integrations/paramstore"
	"khata-advisor/internal/repository"
	"khata-advisor/internal/usecase"
)

// loadAWSConfig is swapped in tests.
var loadAWSConfig = func(ctx context.Context) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx)
}

// NewHandler builds the chat handler described by cfg. cfg must already be
// validated.
func NewHandler(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*handler.Handler, error) {
	var awsCfg aws.Config
	if cfg.NeedsAWS() {
		var err error
		awsCfg, err = loadAWSConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("app: load AWS config: %w", err)
		}
	}

	keys, err := keySource(cfg, awsCfg)
	if err != nil {
		return nil, err
	}

	llm, err := groq.NewClient(keys, groq.WithBaseURL(cfg.BaseURL), groq.WithModel(cfg.Model))
	if err != nil {
		return nil, fmt.Errorf("app: create groq client: %w", err)
	}

	opts := []usecase.Option{usecase.WithLogger(logger)}
	if cfg.ChatLogTable != "" {
		turns, err := repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.ChatLogTable)
		if err != nil {
			return nil, fmt.Errorf("app: create chat log: %w", err)
		}
		opts = append(opts, usecase.WithTurnLog(turns))
		logger.Info("chat turn log enabled", "table", cfg.ChatLogTable)
	}

	svc, err := usecase.NewChatService(llm, opts...)
	if err != nil {
		return nil, fmt.Errorf("app: create chat service: %w", err)
	}
	h, err := handler.NewHandler(svc)
	if err != nil {
		return nil, fmt.Errorf("app: create handler: %w", err)
	}
	return h, nil
}

func keySource(cfg *config.Config, awsCfg aws.Config) (groq.KeySource, error) {
	if cfg.APIKey != "" {
		return groq.StaticKey(cfg.APIKey), nil
	}
	if cfg.APIKeyParam == "" {
		return nil, config.ErrMissingAPIKey
	}
	params, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		return nil, fmt.Errorf("app: create paramstore client: %w", err)
	}
	keys, err := groq.NewParamKey(params, cfg.APIKeyParam)
	if err != nil {
		return nil, fmt.Errorf("app: create key source: %w", err)
	}
	return keys, nil
}

// WarnPublicKey logs when a browser-exposed variable holds the secret.
func WarnPublicKey(cfg *config.Config, logger *slog.Logger) {
	if cfg.PublicKeyExposed {
		logger.Warn("NEXT_PUBLIC_GROQ_API_KEY is set; it is ignored and should be removed because public variables ship to the browser")
	}
}
