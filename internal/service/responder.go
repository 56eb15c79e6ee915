package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"nuco.app/chatops/common/llm"
	"nuco.app/chatops/internal/sentiment"
	"nuco.app/chatops/internal/threadctx"
)

// FallbackReply is sent when no model is configured or generation fails.
const FallbackReply = "Thanks for the mention! I'm not able to answer right now, but I've noted your message."

const responderPrompt = `You are a helpful team assistant replying inside a chat thread.
Answer the latest message concisely using the thread for context. Use plain
chat formatting, no headings. If the user sounds frustrated or sad, acknowledge
it briefly before helping.`

type ReplyRequest struct {
	UserID    string
	Text      string
	History   []threadctx.Message
	Sentiment *sentiment.Result
}

type Reply struct {
	Text     string
	Model    string
	Fallback bool
}

// Responder generates the answer to a bot mention.
type Responder interface {
	Reply(ctx context.Context, req ReplyRequest) (*Reply, error)
}

type replyOutput struct {
	Reply string `json:"reply" jsonschema:"description=The message to post in the thread"`
}

var replySchema = llm.GenerateSchema[replyOutput]()

type responder struct {
	client llm.Client
}

// NewResponder builds a Responder. A nil client always yields FallbackReply.
func NewResponder(client llm.Client) Responder {
	return &responder{client: client}
}

func (r *responder) Reply(ctx context.Context, req ReplyRequest) (*Reply, error) {
	if r.client == nil {
		return &Reply{Text: FallbackReply, Fallback: true}, nil
	}

	var out replyOutput
	_, err := r.client.Chat(ctx, llm.Request{
		SystemPrompt: systemPromptFor(req.Sentiment),
		History:      historyMessages(req.History),
		UserPrompt:   req.Text,
		SchemaName:   "mention_reply",
		Schema:       replySchema,
	}, &out)
	if err != nil || strings.TrimSpace(out.Reply) == "" {
		slog.WarnContext(ctx, "reply generation failed, using fallback",
			"error", err,
			"rate_limited", err != nil && llm.IsRateLimited(err))
		return &Reply{Text: FallbackReply, Model: r.client.Model(), Fallback: true}, nil
	}

	return &Reply{Text: out.Reply, Model: r.client.Model()}, nil
}

func systemPromptFor(s *sentiment.Result) string {
	if s == nil {
		return responderPrompt
	}
	return fmt.Sprintf("%s\n\nDetected sentiment of the latest message: %s (score %.2f).",
		responderPrompt, s.Polarity, s.Score)
}

// historyMessages converts the thread, excluding its last entry which is the
// message being answered.
func historyMessages(history []threadctx.Message) []llm.Message {
	if len(history) > 0 {
		history = history[:len(history)-1]
	}
	msgs := make([]llm.Message, 0, len(history))
	for _, m := range history {
		if m.IsBot {
			msgs = append(msgs, llm.Message{Role: llm.RoleAssistant, Content: m.Text})
			continue
		}
		msgs = append(msgs, llm.Message{Role: llm.RoleUser, Name: llm.SanitizeName(m.User), Content: m.Text})
	}
	return msgs
}
