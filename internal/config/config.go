package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all environment-supplied settings. Provider fields are
// validated by the provider factory, not here; Load only fails when the
// environment cannot be parsed at all.
type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"4001"`

	// Verbose gates whether raw token values are logged. Off, only sha256
	// digests appear in logs.
	Verbose bool `env:"VERBOSE"`

	// Downstream mobile API consumed with the session's bearer token.
	APIBaseURL string `env:"API_URL" envDefault:"https://staging-api.example.gov"`

	// iam: the enterprise OIDC provider (authorization-code + PKCE).
	IAMAuthURL       string `env:"IAM_OAUTH_URL"`
	IAMTokenURL      string `env:"IAM_TOKEN_URL"`
	IAMRevocationURL string `env:"IAM_REVOCATION_URL"`
	IAMIssuer        string `env:"IAM_ISSUER"`
	IAMJWKSURL       string `env:"IAM_JWKS_URL"`
	IAMClientID      string `env:"IAM_CLIENT_ID"`
	IAMClientSecret  string `env:"IAM_CLIENT_SECRET"`
	IAMRedirectURL   string `env:"IAM_CALLBACK_URL"`
	// IAMVerifyIDToken turns on signature verification of iam id_tokens
	// against the provider's published keys. Off by default: the flow this
	// service mirrors decodes the payload without verification.
	IAMVerifyIDToken bool `env:"IAM_VERIFY_ID_TOKEN"`

	// sis: the first-party sign-in service (custom code exchange +
	// introspection). The PKCE pair is a single static value shared across
	// all attempts; see the sis package for why that is kept as-is.
	SISAuthURL          string `env:"SIS_OAUTH_URL"`
	SISTokenURL         string `env:"SIS_TOKEN_URL"`
	SISIntrospectionURL string `env:"SIS_INTROSPECTION_URL"`
	SISClientID         string `env:"SIS_CLIENT_ID"`
	SISRedirectURL      string `env:"SIS_CALLBACK_URL"`
	SISApplication      string `env:"SIS_APPLICATION"`
	SISCodeChallenge    string `env:"SIS_CODE_CHALLENGE"`
	SISCodeVerifier     string `env:"SIS_CODE_VERIFIER"`

	// Basic-auth pair guarding the server-to-server token endpoint.
	TokenAPIUser     string `env:"TOKEN_API_USER"`
	TokenAPIPassword string `env:"TOKEN_API_PASSWORD"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	DatabaseDSN string `env:"DATABASE_DSN"`
}

func Load() (Config, error) {
	// A .env file is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
