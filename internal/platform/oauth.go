package platform

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/slack-go/slack"
)

// TokenGrant is the token material returned by an OAuth exchange or refresh.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	// ExpiresAt is zero when the token does not expire.
	ExpiresAt  time.Time
	TeamID     string
	TeamName   string
	BotUserID  string
	WebhookURL string
	Scopes     []string
}

type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	APIURL       string
}

// OAuth performs the OAuth v2 code exchange and token refresh.
type OAuth struct {
	cfg    OAuthConfig
	client *rebasedClient
	now    func() time.Time
}

func NewOAuth(cfg OAuthConfig, client *http.Client) *OAuth {
	if client == nil {
		client = http.DefaultClient
	}
	return &OAuth{
		cfg:    cfg,
		client: &rebasedClient{client: client, base: normalizeAPIURL(cfg.APIURL)},
		now:    time.Now,
	}
}

// rebasedClient points the package-level Slack API URL used by the OAuth
// helpers at the configured base URL.
type rebasedClient struct {
	client *http.Client
	base   string
}

func (c *rebasedClient) Do(req *http.Request) (*http.Response, error) {
	target := req.URL.String()
	if c.base == slack.APIURL || !strings.HasPrefix(target, slack.APIURL) {
		return c.client.Do(req)
	}
	rebased, err := url.Parse(c.base + strings.TrimPrefix(target, slack.APIURL))
	if err != nil {
		return nil, err
	}
	out := req.Clone(req.Context())
	out.URL = rebased
	out.Host = rebased.Host
	return c.client.Do(out)
}

func (o *OAuth) Exchange(ctx context.Context, code string) (*TokenGrant, error) {
	if o.cfg.ClientID == "" || o.cfg.ClientSecret == "" {
		return nil, errors.New("oauth client credentials are not configured")
	}
	resp, err := slack.GetOAuthV2ResponseContext(ctx, o.client,
		o.cfg.ClientID, o.cfg.ClientSecret, code, o.cfg.RedirectURI)
	if err != nil {
		return nil, wrapError("oauth.v2.access", err)
	}
	return o.toGrant(resp), nil
}

func (o *OAuth) Refresh(ctx context.Context, refreshToken string) (*TokenGrant, error) {
	if o.cfg.ClientID == "" || o.cfg.ClientSecret == "" {
		return nil, errors.New("oauth client credentials are not configured")
	}
	resp, err := slack.RefreshOAuthV2TokenContext(ctx, o.client,
		o.cfg.ClientID, o.cfg.ClientSecret, refreshToken)
	if err != nil {
		return nil, wrapError("oauth.v2.access", err)
	}
	return o.toGrant(resp), nil
}

func (o *OAuth) toGrant(resp *slack.OAuthV2Response) *TokenGrant {
	grant := &TokenGrant{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TeamID:       resp.Team.ID,
		TeamName:     resp.Team.Name,
		BotUserID:    resp.BotUserID,
		WebhookURL:   resp.IncomingWebhook.URL,
	}
	if resp.ExpiresIn > 0 {
		grant.ExpiresAt = o.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	for _, scope := range strings.Split(resp.Scope, ",") {
		if scope = strings.TrimSpace(scope); scope != "" {
			grant.Scopes = append(grant.Scopes, scope)
		}
	}
	return grant
}
