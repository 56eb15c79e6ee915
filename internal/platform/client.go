package platform

import (
	"context"
	"net/http"
	"strings"

	"github.com/slack-go/slack"
)

const DefaultAPIURL = "https://slack.com/api/"

type Conversation struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsPrivate  bool   `json:"is_private"`
	IsMember   bool   `json:"is_member"`
	NumMembers int    `json:"num_members"`
}

type User struct {
	ID          string
	Name        string
	RealName    string
	DisplayName string
	IsBot       bool
	Deleted     bool
	// Presence is only populated by ListUsers.
	Presence    string
	StatusText  string
	StatusEmoji string
}

type Presence struct {
	Presence string
	Online   bool
}

// Client is the subset of the chat platform API the engine calls.
type Client interface {
	PostMessage(ctx context.Context, channel, text, threadTS string) (string, error)
	AddReaction(ctx context.Context, channel, ts, name string) error
	RemoveReaction(ctx context.Context, channel, ts, name string) error
	ListConversations(ctx context.Context) ([]Conversation, error)
	ListUsers(ctx context.Context) ([]User, error)
	GetUserPresence(ctx context.Context, userID string) (*Presence, error)
	RevokeToken(ctx context.Context) error
}

// ClientFactory builds a Client authenticated with the given bearer token.
type ClientFactory func(token string) Client

// NewClientFactory returns a factory for slack-go backed clients. An empty
// apiURL targets the public API.
func NewClientFactory(apiURL string, httpClient *http.Client) ClientFactory {
	apiURL = normalizeAPIURL(apiURL)
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return func(token string) Client {
		api := slack.New(token,
			slack.OptionHTTPClient(httpClient),
			slack.OptionAPIURL(apiURL),
		)
		return &slackClient{token: token, api: api}
	}
}

func normalizeAPIURL(apiURL string) string {
	apiURL = strings.TrimSpace(apiURL)
	if apiURL == "" {
		return DefaultAPIURL
	}
	return strings.TrimRight(apiURL, "/") + "/"
}

type slackClient struct {
	token string
	api   *slack.Client
}

func (c *slackClient) PostMessage(ctx context.Context, channel, text, threadTS string) (string, error) {
	opts := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if threadTS != "" {
		opts = append(opts, slack.MsgOptionTS(threadTS))
	}
	_, ts, err := c.api.PostMessageContext(ctx, channel, opts...)
	if err != nil {
		return "", wrapError("chat.postMessage", err)
	}
	return ts, nil
}

func (c *slackClient) AddReaction(ctx context.Context, channel, ts, name string) error {
	err := c.api.AddReactionContext(ctx, name, slack.NewRefToMessage(channel, ts))
	return wrapError("reactions.add", err)
}

func (c *slackClient) RemoveReaction(ctx context.Context, channel, ts, name string) error {
	err := c.api.RemoveReactionContext(ctx, name, slack.NewRefToMessage(channel, ts))
	return wrapError("reactions.remove", err)
}

func (c *slackClient) ListConversations(ctx context.Context) ([]Conversation, error) {
	var (
		out    []Conversation
		cursor string
	)
	for {
		channels, next, err := c.api.GetConversationsContext(ctx, &slack.GetConversationsParameters{
			Cursor:          cursor,
			Limit:           200,
			ExcludeArchived: true,
			Types:           []string{"public_channel", "private_channel"},
		})
		if err != nil {
			return nil, wrapError("conversations.list", err)
		}
		for _, ch := range channels {
			out = append(out, Conversation{
				ID:         ch.ID,
				Name:       ch.Name,
				IsPrivate:  ch.IsPrivate,
				IsMember:   ch.IsMember,
				NumMembers: ch.NumMembers,
			})
		}
		cursor = strings.TrimSpace(next)
		if cursor == "" {
			return out, nil
		}
	}
}

func (c *slackClient) ListUsers(ctx context.Context) ([]User, error) {
	users, err := c.api.GetUsersContext(ctx,
		slack.GetUsersOptionPresence(true),
		slack.GetUsersOptionLimit(200),
	)
	if err != nil {
		return nil, wrapError("users.list", err)
	}
	out := make([]User, 0, len(users))
	for _, u := range users {
		out = append(out, User{
			ID:          u.ID,
			Name:        u.Name,
			RealName:    u.RealName,
			DisplayName: u.Profile.DisplayName,
			IsBot:       u.IsBot,
			Deleted:     u.Deleted,
			Presence:    u.Presence,
			StatusText:  u.Profile.StatusText,
			StatusEmoji: u.Profile.StatusEmoji,
		})
	}
	return out, nil
}

func (c *slackClient) GetUserPresence(ctx context.Context, userID string) (*Presence, error) {
	p, err := c.api.GetUserPresenceContext(ctx, userID)
	if err != nil {
		return nil, wrapError("users.getPresence", err)
	}
	return &Presence{Presence: p.Presence, Online: p.Online}, nil
}

func (c *slackClient) RevokeToken(ctx context.Context) error {
	_, err := c.api.SendAuthRevokeContext(ctx, c.token)
	return wrapError("auth.revoke", err)
}
