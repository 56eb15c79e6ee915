package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
)

// EnvelopeKind classifies an inbound webhook body.
type EnvelopeKind int

const (
	EnvelopeUnknown EnvelopeKind = iota
	EnvelopeURLVerification
	EnvelopeEventCallback
	EnvelopeCommand
	EnvelopeInteractive
)

func (k EnvelopeKind) String() string {
	switch k {
	case EnvelopeURLVerification:
		return "url_verification"
	case EnvelopeEventCallback:
		return "event_callback"
	case EnvelopeCommand:
		return "command"
	case EnvelopeInteractive:
		return "interactive"
	default:
		return "unknown"
	}
}

// Inner event types dispatched by the webhook.
const (
	EventTypeMessage    = "message"
	EventTypeAppMention = "app_mention"
)

// Envelope is a classified webhook body. Exactly one of the kind-specific
// fields is set, matching Kind.
type Envelope struct {
	Kind EnvelopeKind

	Challenge   string
	TeamID      string
	Event       *InnerEvent
	Command     *slack.SlashCommand
	Interaction *slack.InteractionCallback
}

// InnerEvent is the event of an event_callback envelope. Message or
// AppMention is set for those types; other types only carry Type.
type InnerEvent struct {
	Type       string
	Message    *slackevents.MessageEvent
	AppMention *slackevents.AppMentionEvent
}

var ErrMalformedEnvelope = errors.New("malformed envelope")

type rawEnvelope struct {
	Type      string          `json:"type"`
	Challenge string          `json:"challenge"`
	TeamID    string          `json:"team_id"`
	Event     json.RawMessage `json:"event"`
	Command   string          `json:"command"`
	Payload   json.RawMessage `json:"payload"`
}

// ParseEnvelope classifies a JSON or form-encoded webhook body.
func ParseEnvelope(contentType string, body []byte) (*Envelope, error) {
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") {
		return parseForm(body)
	}
	return parseJSON(body)
}

func parseJSON(body []byte) (*Envelope, error) {
	var raw rawEnvelope
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
	}

	switch {
	case raw.Type == string(slackevents.URLVerification):
		return &Envelope{Kind: EnvelopeURLVerification, Challenge: raw.Challenge}, nil
	case raw.Type == string(slackevents.CallbackEvent):
		event, err := parseInnerEvent(raw.Event)
		if err != nil {
			return nil, err
		}
		return &Envelope{Kind: EnvelopeEventCallback, TeamID: raw.TeamID, Event: event}, nil
	case raw.Command != "":
		var cmd jsonSlashCommand
		if err := json.Unmarshal(body, &cmd); err != nil {
			return nil, fmt.Errorf("%w: command: %w", ErrMalformedEnvelope, err)
		}
		return &Envelope{Kind: EnvelopeCommand, TeamID: cmd.TeamID, Command: cmd.toSlack()}, nil
	case len(raw.Payload) > 0 && !bytes.Equal(raw.Payload, []byte("null")):
		payload, err := unquotePayload(raw.Payload)
		if err != nil {
			return nil, err
		}
		return parseInteraction(payload)
	default:
		return &Envelope{Kind: EnvelopeUnknown, TeamID: raw.TeamID}, nil
	}
}

func parseForm(body []byte) (*Envelope, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
	}

	switch {
	case values.Get("command") != "":
		cmd := slashCommandFromForm(values)
		return &Envelope{Kind: EnvelopeCommand, TeamID: cmd.TeamID, Command: cmd}, nil
	case values.Get("payload") != "":
		return parseInteraction([]byte(values.Get("payload")))
	default:
		return &Envelope{Kind: EnvelopeUnknown, TeamID: values.Get("team_id")}, nil
	}
}

func parseInnerEvent(raw json.RawMessage) (*InnerEvent, error) {
	var head struct {
		Type string `json:"type"`
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: event_callback without event", ErrMalformedEnvelope)
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("%w: event: %w", ErrMalformedEnvelope, err)
	}

	event := &InnerEvent{Type: head.Type}
	switch head.Type {
	case EventTypeMessage:
		var msg slackevents.MessageEvent
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, fmt.Errorf("%w: message event: %w", ErrMalformedEnvelope, err)
		}
		event.Message = &msg
	case EventTypeAppMention:
		var mention slackevents.AppMentionEvent
		if err := json.Unmarshal(raw, &mention); err != nil {
			return nil, fmt.Errorf("%w: app_mention event: %w", ErrMalformedEnvelope, err)
		}
		event.AppMention = &mention
	}
	return event, nil
}

// unquotePayload accepts the interactive payload either as a JSON-encoded
// string or as an embedded object.
func unquotePayload(raw json.RawMessage) ([]byte, error) {
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: payload: %w", ErrMalformedEnvelope, err)
		}
		return []byte(s), nil
	}
	return raw, nil
}

func parseInteraction(payload []byte) (*Envelope, error) {
	var cb slack.InteractionCallback
	if err := json.Unmarshal(payload, &cb); err != nil {
		return nil, fmt.Errorf("%w: interactive payload: %w", ErrMalformedEnvelope, err)
	}
	return &Envelope{Kind: EnvelopeInteractive, TeamID: cb.Team.ID, Interaction: &cb}, nil
}

// jsonSlashCommand is the JSON form of a slash command. slack.SlashCommand's
// own decoder requires is_enterprise_install, which JSON senders omit.
type jsonSlashCommand struct {
	Token        string `json:"token"`
	TeamID       string `json:"team_id"`
	TeamDomain   string `json:"team_domain"`
	EnterpriseID string `json:"enterprise_id"`
	ChannelID    string `json:"channel_id"`
	ChannelName  string `json:"channel_name"`
	UserID       string `json:"user_id"`
	UserName     string `json:"user_name"`
	Command      string `json:"command"`
	Text         string `json:"text"`
	ResponseURL  string `json:"response_url"`
	TriggerID    string `json:"trigger_id"`
	APIAppID     string `json:"api_app_id"`
}

func (c jsonSlashCommand) toSlack() *slack.SlashCommand {
	return &slack.SlashCommand{
		Token:        c.Token,
		TeamID:       c.TeamID,
		TeamDomain:   c.TeamDomain,
		EnterpriseID: c.EnterpriseID,
		ChannelID:    c.ChannelID,
		ChannelName:  c.ChannelName,
		UserID:       c.UserID,
		UserName:     c.UserName,
		Command:      c.Command,
		Text:         c.Text,
		ResponseURL:  c.ResponseURL,
		TriggerID:    c.TriggerID,
		APIAppID:     c.APIAppID,
	}
}

func slashCommandFromForm(v url.Values) *slack.SlashCommand {
	return &slack.SlashCommand{
		Token:        v.Get("token"),
		TeamID:       v.Get("team_id"),
		TeamDomain:   v.Get("team_domain"),
		EnterpriseID: v.Get("enterprise_id"),
		ChannelID:    v.Get("channel_id"),
		ChannelName:  v.Get("channel_name"),
		UserID:       v.Get("user_id"),
		UserName:     v.Get("user_name"),
		Command:      v.Get("command"),
		Text:         v.Get("text"),
		ResponseURL:  v.Get("response_url"),
		TriggerID:    v.Get("trigger_id"),
		APIAppID:     v.Get("api_app_id"),
	}
}

// SplitCommandText splits slash command text into the subcommand and its
// arguments. Empty text yields "help".
func SplitCommandText(text string) (sub, args string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "help", ""
	}
	sub, args, _ = strings.Cut(text, " ")
	return strings.ToLower(sub), strings.TrimSpace(args)
}

// EphemeralResponse is a slash command reply visible only to the caller.
type EphemeralResponse struct {
	ResponseType string `json:"response_type"`
	Text         string `json:"text"`
}

func Ephemeral(text string) EphemeralResponse {
	return EphemeralResponse{ResponseType: slack.ResponseTypeEphemeral, Text: text}
}
