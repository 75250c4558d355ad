package termed

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
)

// newHTTPClient returns an HTTP client that authenticates the way cfg asks.
// A static token wins over client credentials; basic auth is applied per
// request by the Client when neither is configured.
func newHTTPClient(cfg domain.SourceSettings, timeout time.Duration) *http.Client {
	// Token endpoint calls use this client, so they get the same timeout.
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: timeout})

	var hc *http.Client
	switch {
	case cfg.Token != "":
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}))
	case cfg.HasClientCredentials():
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		hc = cc.Client(ctx)
	default:
		hc = &http.Client{}
	}
	hc.Timeout = timeout
	return hc
}
