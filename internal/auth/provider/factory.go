package provider

import (
	"github.com/adhocteam/va-mobile-sampleweb/internal/auth"
	"github.com/adhocteam/va-mobile-sampleweb/internal/config"
)

// IAMDescriptor builds the immutable iam client descriptor from config.
// iam is a standards-compliant OIDC provider: authorization-code flow with
// a per-attempt PKCE pair, client credentials carried in the exchange body.
func IAMDescriptor(cfg config.Config) (*Descriptor, error) {
	required := map[string]string{
		"IAM_OAUTH_URL":     cfg.IAMAuthURL,
		"IAM_TOKEN_URL":     cfg.IAMTokenURL,
		"IAM_CLIENT_ID":     cfg.IAMClientID,
		"IAM_CLIENT_SECRET": cfg.IAMClientSecret,
		"IAM_CALLBACK_URL":  cfg.IAMRedirectURL,
	}
	for field, v := range required {
		if v == "" {
			return nil, &auth.ConfigError{Field: field}
		}
	}

	return &Descriptor{
		Key:           "iam",
		AuthURL:       cfg.IAMAuthURL,
		TokenURL:      cfg.IAMTokenURL,
		RevocationURL: cfg.IAMRevocationURL,
		Issuer:        cfg.IAMIssuer,
		JWKSURL:       cfg.IAMJWKSURL,
		ClientID:      cfg.IAMClientID,
		ClientSecret:  cfg.IAMClientSecret,
		RedirectURL:   cfg.IAMRedirectURL,
		PKCE:          PKCEEnabled,
		ExtraAuthParams: map[string]string{
			"response_mode": "query",
		},
	}, nil
}

// SISDescriptor builds the immutable sis client descriptor from config.
// sis is a first-party sign-in service: no client secret, a fixed
// env-configured PKCE pair shared by every attempt, and introspection in
// place of a signed id_token.
func SISDescriptor(cfg config.Config) (*Descriptor, error) {
	required := map[string]string{
		"SIS_OAUTH_URL":         cfg.SISAuthURL,
		"SIS_TOKEN_URL":         cfg.SISTokenURL,
		"SIS_INTROSPECTION_URL": cfg.SISIntrospectionURL,
		"SIS_CLIENT_ID":         cfg.SISClientID,
		"SIS_CALLBACK_URL":      cfg.SISRedirectURL,
		"SIS_CODE_CHALLENGE":    cfg.SISCodeChallenge,
		"SIS_CODE_VERIFIER":     cfg.SISCodeVerifier,
	}
	for field, v := range required {
		if v == "" {
			return nil, &auth.ConfigError{Field: field}
		}
	}

	extras := map[string]string{
		"code_challenge":        cfg.SISCodeChallenge,
		"code_challenge_method": "S256",
		"oauth":                 "true",
	}
	if cfg.SISApplication != "" {
		extras["application"] = cfg.SISApplication
	}

	return &Descriptor{
		Key:              "sis",
		AuthURL:          cfg.SISAuthURL,
		TokenURL:         cfg.SISTokenURL,
		IntrospectionURL: cfg.SISIntrospectionURL,
		ClientID:         cfg.SISClientID,
		RedirectURL:      cfg.SISRedirectURL,
		PKCE:             PKCEDisabled,
		ExtraAuthParams:  extras,
		CodeVerifier:     cfg.SISCodeVerifier,
	}, nil
}
