package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ErrNoToken is returned when none of the configured sources yields a token
var ErrNoToken = errors.New("no HEC token configured")

// Source identifies where a token came from
type Source string

const (
	SourceSecretsManager Source = "secretsmanager"
	SourceSSM            Source = "ssm"
	SourceEnv            Source = "env"
)

// SecretsManagerAPI is the subset of the Secrets Manager client the resolver uses
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SSMAPI is the subset of the SSM client the resolver uses
type SSMAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Settings names the token sources. Exactly one is consulted, in the order
// SecretARN, SSMPath, Token.
type Settings struct {
	SecretARN string
	SSMPath   string
	Token     string
}

// Resolver fetches the HEC token once at cold start
type Resolver struct {
	secrets SecretsManagerAPI
	params  SSMAPI
}

// NewResolver creates a resolver. Either client may be nil as long as the
// matching source is not configured.
func NewResolver(secrets SecretsManagerAPI, params SSMAPI) *Resolver {
	return &Resolver{secrets: secrets, params: params}
}

// NewFromConfig creates a resolver backed by real AWS clients
func NewFromConfig(cfg aws.Config) *Resolver {
	return NewResolver(secretsmanager.NewFromConfig(cfg), ssm.NewFromConfig(cfg))
}

// Resolve returns the token and the source it was read from. A configured
// source that fails is an error; there is no fallthrough to the next one.
func (r *Resolver) Resolve(ctx context.Context, s Settings) (string, Source, error) {
	switch {
	case s.SecretARN != "":
		token, err := r.fromSecretsManager(ctx, s.SecretARN)
		return token, SourceSecretsManager, err
	case s.SSMPath != "":
		token, err := r.fromSSM(ctx, s.SSMPath)
		return token, SourceSSM, err
	case s.Token != "":
		return s.Token, SourceEnv, nil
	default:
		return "", "", ErrNoToken
	}
}

func (r *Resolver) fromSecretsManager(ctx context.Context, id string) (string, error) {
	if r.secrets == nil {
		return "", fmt.Errorf("secrets manager client not configured")
	}
	out, err := r.secrets.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(id),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get secret %s from Secrets Manager: %w", id, err)
	}
	if out.SecretString == nil || *out.SecretString == "" {
		return "", fmt.Errorf("secret %s has no string value: %w", id, ErrNoToken)
	}
	return *out.SecretString, nil
}

func (r *Resolver) fromSSM(ctx context.Context, name string) (string, error) {
	if r.params == nil {
		return "", fmt.Errorf("ssm client not configured")
	}
	out, err := r.params.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get parameter %s from SSM: %w", name, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil || *out.Parameter.Value == "" {
		return "", fmt.Errorf("parameter %s has no value: %w", name, ErrNoToken)
	}
	return *out.Parameter.Value, nil
}
