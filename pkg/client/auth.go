package client

import (
	"context"
	"net/http"
	"sync"
	"time"

	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/twmb/franz-go/pkg/sasl"
	"github.com/twmb/franz-go/pkg/sasl/aws"
	"github.com/twmb/franz-go/pkg/sasl/oauth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/birdayz/transcode/pkg/config"
)

func oauthMechanism(s *config.SASL) sasl.Mechanism {
	if s.Token != "" {
		return oauth.Auth{Token: s.Token}.AsMechanism()
	}

	tc := newTokenCache(&clientcredentials.Config{
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		TokenURL:     s.TokenURL,
		Scopes:       s.Scopes,
	})

	return oauth.Oauth(func(ctx context.Context) (oauth.Auth, error) {
		tok, err := tc.token(ctx)
		if err != nil {
			return oauth.Auth{}, err
		}
		return oauth.Auth{Token: tok}, nil
	})
}

// awsMSKMechanism signs with credentials from the default AWS chain,
// resolved on every connection so rotated credentials are picked up.
func awsMSKMechanism() sasl.Mechanism {
	return aws.ManagedStreamingIAM(func(ctx context.Context) (aws.Auth, error) {
		cfg, err := aws_config.LoadDefaultConfig(ctx)
		if err != nil {
			return aws.Auth{}, err
		}
		creds, err := cfg.Credentials.Retrieve(ctx)
		if err != nil {
			return aws.Auth{}, err
		}
		return aws.Auth{
			AccessKey:    creds.AccessKeyID,
			SecretKey:    creds.SecretAccessKey,
			SessionToken: creds.SessionToken,
		}, nil
	})
}

type tokenSource interface {
	Token(ctx context.Context) (*oauth2.Token, error)
}

// tokenCache serializes token fetches and reuses a token until
// refreshBuffer before it expires.
type tokenCache struct {
	mu            sync.Mutex
	src           tokenSource
	cachedToken   string
	replaceAt     time.Time
	refreshBuffer time.Duration
	now           func() time.Time
}

func newTokenCache(src tokenSource) *tokenCache {
	return &tokenCache{src: src, refreshBuffer: 20 * time.Second, now: time.Now}
}

func (tc *tokenCache) token(ctx context.Context) (string, error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if tc.cachedToken != "" && tc.now().Before(tc.replaceAt) {
		return tc.cachedToken, nil
	}

	httpClient := &http.Client{Timeout: 10 * time.Second}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)

	tok, err := tc.src.Token(ctx)
	if err != nil {
		return "", err
	}

	tc.cachedToken = tok.AccessToken
	tc.replaceAt = tok.Expiry.Add(-tc.refreshBuffer)
	return tc.cachedToken, nil
}
