package oauth

import (
	"context"
	"net/http"

	"nextplanet-service/pkg/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ArchiveCredentials holds optional credentials for an authenticated archive mirror.
// The public NASA endpoint needs none.
type ArchiveCredentials struct {
	Token        string
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

// ArchiveOAuth builds HTTP clients for the exoplanet archive
type ArchiveOAuth struct {
	creds  ArchiveCredentials
	logger logger.Logger
}

// NewArchiveOAuth creates a new archive OAuth handler
func NewArchiveOAuth(creds ArchiveCredentials, logger logger.Logger) *ArchiveOAuth {
	return &ArchiveOAuth{
		creds:  creds,
		logger: logger,
	}
}

// GetTokenSource returns a token source, or nil when no credentials are configured.
// Client credentials take precedence over a static bearer token.
func (o *ArchiveOAuth) GetTokenSource(ctx context.Context) oauth2.TokenSource {
	if o.creds.ClientID != "" {
		config := &clientcredentials.Config{
			ClientID:     o.creds.ClientID,
			ClientSecret: o.creds.ClientSecret,
			TokenURL:     o.creds.TokenURL,
			Scopes:       o.creds.Scopes,
		}
		o.logger.Info("Using client credentials for archive", "tokenURL", o.creds.TokenURL)
		return config.TokenSource(ctx)
	}

	if o.creds.Token != "" {
		o.logger.Info("Using static bearer token for archive")
		return oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: o.creds.Token,
			TokenType:   "Bearer",
		})
	}

	return nil
}

// HTTPClient returns a client that authorizes requests when credentials are configured
func (o *ArchiveOAuth) HTTPClient(ctx context.Context) *http.Client {
	ts := o.GetTokenSource(ctx)
	if ts == nil {
		return &http.Client{}
	}
	return oauth2.NewClient(ctx, ts)
}
