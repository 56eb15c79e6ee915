package webhook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"

	"nuco.app/chatops/common/logger"
	"nuco.app/chatops/internal/forward"
	"nuco.app/chatops/internal/http/dto"
	"nuco.app/chatops/internal/model"
	"nuco.app/chatops/internal/sentiment"
	"nuco.app/chatops/internal/service"
	"nuco.app/chatops/internal/threadctx"
)

const (
	SignatureHeader       = "X-Signature"
	TimestampHeader       = "X-Request-Timestamp"
	slackSignatureHeader  = "X-Slack-Signature"
	slackTimestampHeader  = "X-Slack-Request-Timestamp"
	actionUseTemplate     = "use_template"
	defaultCommandName    = "/nuco"
	templateForwardFailed = "Sorry, I couldn't load that template right now. Please try again."

	// MaxBodyBytes caps webhook bodies read before signature verification.
	MaxBodyBytes = 1 << 20
)

var mentionMarkup = regexp.MustCompile(`<@[A-Z0-9]+(\|[^>]*)?>`)

type SlackHandlerConfig struct {
	SigningSecret string
	// CommandName is the registered slash command, used in help text.
	CommandName string
}

type SlackHandler struct {
	cfg       SlackHandlerConfig
	tokens    service.TokenRegistry
	actions   service.ActionExecutor
	analytics service.AnalyticsService
	responder service.Responder
	threads   threadctx.Store
	fast      sentiment.Analyzer
	detailed  sentiment.Analyzer
	forward   forward.Client

	// background tracks detached forwards so shutdown can wait for them.
	background sync.WaitGroup
}

type SlackHandlerDeps struct {
	Tokens    service.TokenRegistry
	Actions   service.ActionExecutor
	Analytics service.AnalyticsService
	Responder service.Responder
	Threads   threadctx.Store
	// Fast runs on every message; Detailed on mentions.
	Fast     sentiment.Analyzer
	Detailed sentiment.Analyzer
	Forward  forward.Client
}

func NewSlackHandler(cfg SlackHandlerConfig, deps SlackHandlerDeps) *SlackHandler {
	if cfg.CommandName == "" {
		cfg.CommandName = defaultCommandName
	}
	return &SlackHandler{
		cfg:       cfg,
		tokens:    deps.Tokens,
		actions:   deps.Actions,
		analytics: deps.Analytics,
		responder: deps.Responder,
		threads:   deps.Threads,
		fast:      deps.Fast,
		detailed:  deps.Detailed,
		forward:   deps.Forward,
	}
}

// Wait blocks until detached forwards have finished.
func (h *SlackHandler) Wait() {
	h.background.Wait()
}

func (h *SlackHandler) HandleEvent(c *gin.Context) {
	ctx := c.Request.Context()

	sigHeader := firstHeader(c, SignatureHeader, slackSignatureHeader)
	timestamp := firstHeader(c, TimestampHeader, slackTimestampHeader)
	if sigHeader == "" || timestamp == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing signature headers"})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	version, hash, ok := splitSignature(sigHeader)
	if !ok || !VerifySignature(h.cfg.SigningSecret, version, timestamp, body, hash) {
		slog.WarnContext(ctx, "slack webhook rejected", "error", ErrSignature)
		c.JSON(http.StatusForbidden, gin.H{"error": ErrSignature.Error()})
		return
	}

	integrationID, err := strconv.ParseInt(c.Param("integration_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "integration not found"})
		return
	}

	inst, err := h.tokens.Resolve(ctx, integrationID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "integration not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to resolve integration", "error", err, "integration_id", integrationID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve integration"})
		return
	}

	env, err := dto.ParseEnvelope(c.ContentType(), body)
	if err != nil {
		err = fmt.Errorf("%w: %w", service.ErrValidation, err)
		slog.WarnContext(ctx, "invalid slack payload", "error", err, "integration_id", integrationID)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	teamID := env.TeamID
	if teamID == "" {
		teamID = inst.Integration.ExternalTeamID
	}
	eventType := env.Kind.String()
	if env.Event != nil {
		eventType = env.Event.Type
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		IntegrationID: &integrationID,
		TeamID:        &teamID,
		EventType:     &eventType,
		Component:     "chatops.webhook.slack",
	})

	sc := logger.StartSpan(ctx, "webhook.slack.dispatch")
	defer sc.End()
	sc.SetAttributes("envelope.kind", env.Kind.String(), "event.type", eventType)
	ctx = sc.Context()

	req := &slackRequest{ctx: ctx, inst: inst, teamID: teamID}

	switch env.Kind {
	case dto.EnvelopeURLVerification:
		c.JSON(http.StatusOK, gin.H{"challenge": env.Challenge})
	case dto.EnvelopeEventCallback:
		h.dispatchEvent(req, env.Event)
		c.JSON(http.StatusOK, gin.H{"success": true})
	case dto.EnvelopeCommand:
		h.handleCommand(c, req, env.Command)
	case dto.EnvelopeInteractive:
		h.handleInteraction(c, req, env.Interaction)
	case dto.EnvelopeUnknown:
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// slackRequest is the per-request state shared by the dispatch helpers.
type slackRequest struct {
	ctx    context.Context
	inst   *service.Installation
	teamID string
}

func (r *slackRequest) integrationID() int64 {
	return r.inst.Integration.ID
}

func (h *SlackHandler) dispatchEvent(req *slackRequest, event *dto.InnerEvent) {
	switch {
	case event.Message != nil:
		h.handleMessage(req, event.Message)
	case event.AppMention != nil:
		h.handleAppMention(req, event.AppMention)
	default:
		slog.DebugContext(req.ctx, "slack event acknowledged without handler", "event_type", event.Type)
	}
}

func (h *SlackHandler) handleMessage(req *slackRequest, ev *slackevents.MessageEvent) {
	if ev.BotID != "" || ev.SubType != "" {
		return
	}
	ctx := logger.WithLogFields(req.ctx, logger.LogFields{ChannelID: &ev.Channel, UserID: &ev.User})

	root := threadRoot(ev.ThreadTimeStamp, ev.TimeStamp)
	h.remember(ctx, ev.Channel, root, threadctx.Message{TS: ev.TimeStamp, User: ev.User, Text: ev.Text})

	result, err := h.fast.Analyze(ctx, ev.Text)
	if err != nil {
		slog.WarnContext(ctx, "sentiment analysis failed", "error", err)
	}
	// A zero max applies the executor's configured cap.
	reacted := h.actions.AddReactions(ctx, req.integrationID(), ev.Channel, ev.TimeStamp, result.Reactions(), 0)

	isReply := ev.ThreadTimeStamp != "" && ev.ThreadTimeStamp != ev.TimeStamp
	if isReply {
		h.acknowledgeReply(ctx, req, ev, root)
	}

	h.track(ctx, req, model.EventMessageReceived, ev.User, ev.Channel, map[string]any{
		"ts":        ev.TimeStamp,
		"thread_ts": ev.ThreadTimeStamp,
		"sentiment": polarity(result),
	})
	if reacted > 0 {
		h.track(ctx, req, model.EventReactionAdded, ev.User, ev.Channel, map[string]any{
			"ts":    ev.TimeStamp,
			"count": reacted,
		})
	}
}

// acknowledgeReply marks replies in threads the bot took part in.
func (h *SlackHandler) acknowledgeReply(ctx context.Context, req *slackRequest, ev *slackevents.MessageEvent, root string) {
	history, err := h.threads.History(ctx, ev.Channel, root)
	if err != nil {
		slog.WarnContext(ctx, "failed to load thread history", "error", err)
		return
	}
	if !threadctx.HasBotMessage(history) {
		return
	}

	if err := h.actions.AddReaction(ctx, req.integrationID(), ev.Channel, ev.TimeStamp, service.ReactionAcknowledge); err != nil {
		slog.WarnContext(ctx, "failed to acknowledge thread reply", "error", err)
	}
	if err := h.threads.SetMetadata(ctx, ev.Channel, root, threadctx.MetaLastUserReplyTS, ev.TimeStamp); err != nil {
		slog.WarnContext(ctx, "failed to update thread metadata", "error", err)
	}
}

func (h *SlackHandler) handleAppMention(req *slackRequest, ev *slackevents.AppMentionEvent) {
	start := time.Now()
	ctx := logger.WithLogFields(req.ctx, logger.LogFields{ChannelID: &ev.Channel, UserID: &ev.User})
	integrationID := req.integrationID()
	root := threadRoot(ev.ThreadTimeStamp, ev.TimeStamp)

	if err := h.actions.AddReaction(ctx, integrationID, ev.Channel, ev.TimeStamp, service.ReactionThinking); err != nil {
		slog.WarnContext(ctx, "failed to add thinking reaction", "error", err)
	}
	h.remember(ctx, ev.Channel, root, threadctx.Message{TS: ev.TimeStamp, User: ev.User, Text: ev.Text})

	text := strings.TrimSpace(mentionMarkup.ReplaceAllString(ev.Text, ""))

	result, err := h.detailed.Analyze(ctx, text)
	if err != nil {
		slog.WarnContext(ctx, "sentiment analysis failed", "error", err)
	}

	if err := h.actions.RemoveReaction(ctx, integrationID, ev.Channel, ev.TimeStamp, service.ReactionThinking); err != nil {
		slog.WarnContext(ctx, "failed to remove thinking reaction", "error", err)
	}
	h.actions.AddReactions(ctx, integrationID, ev.Channel, ev.TimeStamp, result.Reactions(), 0)

	history, err := h.threads.History(ctx, ev.Channel, root)
	if err != nil {
		slog.WarnContext(ctx, "failed to load thread history", "error", err)
	}

	reply, err := h.responder.Reply(ctx, service.ReplyRequest{
		UserID:    ev.User,
		Text:      text,
		History:   history,
		Sentiment: result,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate mention reply", "error", err)
		return
	}

	replyTS, err := h.actions.SendMessage(ctx, integrationID, ev.Channel, reply.Text, root)
	if err != nil {
		slog.ErrorContext(ctx, "failed to send mention reply", "error", err)
		return
	}
	latency := time.Since(start)

	if err := h.analytics.TrackAIPerformance(ctx, &model.AIPerformanceSample{
		IntegrationID:     integrationID,
		MessageID:         replyTS,
		ExternalUserID:    &ev.User,
		ExternalChannelID: &ev.Channel,
		PromptLength:      int32(len(text)),
		ResponseLength:    int32(len(reply.Text)),
		ResponseTimeMs:    int32(latency.Milliseconds()),
		Model:             modelName(reply),
	}); err != nil {
		slog.WarnContext(ctx, "failed to track ai performance", "error", err)
	}

	botUserID := req.inst.Tokens.Credential().BotUserID
	h.remember(ctx, ev.Channel, root, threadctx.Message{TS: replyTS, User: botUserID, Text: reply.Text, IsBot: true})

	h.track(ctx, req, model.EventAIMentionResponse, ev.User, ev.Channel, map[string]any{
		"ts":         ev.TimeStamp,
		"latency_ms": latency.Milliseconds(),
		"fallback":   reply.Fallback,
		"sentiment":  polarity(result),
	})
	h.track(ctx, req, model.EventMessageSent, ev.User, ev.Channel, map[string]any{
		"ts":        replyTS,
		"thread_ts": root,
	})

	slog.InfoContext(ctx, "mention answered", "latency_ms", latency.Milliseconds(), "fallback", reply.Fallback)
}

func (h *SlackHandler) handleCommand(c *gin.Context, req *slackRequest, cmd *slack.SlashCommand) {
	ctx := logger.WithLogFields(req.ctx, logger.LogFields{ChannelID: &cmd.ChannelID, UserID: &cmd.UserID})
	sub, args := dto.SplitCommandText(cmd.Text)

	fwd := forward.CommandRequest{
		IntegrationID: req.integrationID(),
		TeamID:        req.teamID,
		ChannelID:     cmd.ChannelID,
		UserID:        cmd.UserID,
		UserName:      cmd.UserName,
		Command:       cmd.Command,
		Subcommand:    sub,
		Text:          args,
		ResponseURL:   cmd.ResponseURL,
		TriggerID:     cmd.TriggerID,
	}
	meta := map[string]any{"command": cmd.Command, "args": args}

	switch sub {
	case "help":
		h.track(ctx, req, model.CommandEventName(sub), cmd.UserID, cmd.ChannelID, meta)
		c.JSON(http.StatusOK, dto.Ephemeral(h.helpText()))

	case "chat":
		h.track(ctx, req, model.CommandEventName(sub), cmd.UserID, cmd.ChannelID, meta)
		h.dispatchChat(ctx, fwd)
		c.JSON(http.StatusOK, dto.Ephemeral("Processing your request... I'll reply here shortly."))

	case "templates":
		h.track(ctx, req, model.CommandEventName(sub), cmd.UserID, cmd.ChannelID, meta)
		raw, err := h.forward.Templates(ctx, fwd)
		if err != nil {
			slog.ErrorContext(ctx, "templates forward failed", "error", err)
			c.JSON(http.StatusOK, dto.Ephemeral("Sorry, I couldn't load templates right now. Please try again."))
			return
		}
		c.Data(http.StatusOK, "application/json", raw)

	default:
		meta["subcommand"] = sub
		h.track(ctx, req, model.EventCommandUnknown, cmd.UserID, cmd.ChannelID, meta)
		c.JSON(http.StatusOK, dto.Ephemeral(fmt.Sprintf(
			"Unknown command `%s`. Try `%s help` to see what I can do.", sub, h.cfg.CommandName)))
	}
}

func (h *SlackHandler) handleInteraction(c *gin.Context, req *slackRequest, cb *slack.InteractionCallback) {
	if cb.Type != slack.InteractionTypeBlockActions || len(cb.ActionCallback.BlockActions) == 0 {
		c.JSON(http.StatusOK, dto.Ephemeral("This action is not supported."))
		return
	}

	ctx := logger.WithLogFields(req.ctx, logger.LogFields{ChannelID: &cb.Channel.ID, UserID: &cb.User.ID})
	action := cb.ActionCallback.BlockActions[0]
	if action.ActionID != actionUseTemplate {
		slog.InfoContext(ctx, "unsupported block action", "action_id", action.ActionID)
		c.JSON(http.StatusOK, dto.Ephemeral("This action is not supported."))
		return
	}

	h.track(ctx, req, model.EventTemplateUsed, cb.User.ID, cb.Channel.ID, map[string]any{
		"template": action.Value,
		"block_id": action.BlockID,
	})

	raw, err := h.forward.UseTemplate(ctx, forward.TemplateUseRequest{
		IntegrationID: req.integrationID(),
		TeamID:        req.teamID,
		ChannelID:     cb.Channel.ID,
		UserID:        cb.User.ID,
		ActionID:      action.ActionID,
		BlockID:       action.BlockID,
		Value:         action.Value,
		ResponseURL:   cb.ResponseURL,
		TriggerID:     cb.TriggerID,
	})
	if err != nil {
		slog.ErrorContext(ctx, "template forward failed", "error", err)
		c.JSON(http.StatusOK, dto.Ephemeral(templateForwardFailed))
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

func (h *SlackHandler) helpText() string {
	name := h.cfg.CommandName
	return fmt.Sprintf("*Available commands*\n"+
		"• `%[1]s help` - Show this message\n"+
		"• `%[1]s chat <message>` - Ask the assistant anything\n"+
		"• `%[1]s templates` - Browse message templates", name)
}

func (h *SlackHandler) remember(ctx context.Context, channel, root string, msg threadctx.Message) {
	if err := h.threads.AddMessage(ctx, channel, root, msg); err != nil {
		slog.WarnContext(ctx, "failed to record thread message", "error", err)
	}
}

func (h *SlackHandler) track(ctx context.Context, req *slackRequest, name, userID, channelID string, meta map[string]any) {
	err := h.analytics.TrackEvent(ctx, service.TrackEventParams{
		IntegrationID:     req.integrationID(),
		OrganizationID:    req.inst.Integration.OrganizationID,
		EventName:         name,
		ExternalUserID:    userID,
		ExternalChannelID: channelID,
		ExternalTeamID:    req.teamID,
		Metadata:          meta,
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to track event", "error", err, "event_name", name)
	}
}

func firstHeader(c *gin.Context, names ...string) string {
	for _, name := range names {
		if v := c.GetHeader(name); v != "" {
			return v
		}
	}
	return ""
}

func threadRoot(threadTS, ts string) string {
	if threadTS != "" {
		return threadTS
	}
	return ts
}

func polarity(r *sentiment.Result) string {
	if r == nil {
		return string(sentiment.Neutral)
	}
	return string(r.Polarity)
}

func modelName(r *service.Reply) string {
	if r.Model == "" {
		return "fallback"
	}
	return r.Model
}

// dispatchChat relays a chat from a detached goroutine so it outlives the
// acknowledgement. Wait blocks until these finish.
func (h *SlackHandler) dispatchChat(ctx context.Context, fwd forward.CommandRequest) {
	detached := context.WithoutCancel(ctx)
	h.background.Add(1)
	go func() {
		defer h.background.Done()
		if _, err := h.forward.Chat(detached, fwd); err != nil {
			slog.ErrorContext(detached, "chat forward failed", "error", err)
		}
	}()
}
