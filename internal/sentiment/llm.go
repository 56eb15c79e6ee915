package sentiment

import (
	"context"
	"log/slog"

	"nuco.app/chatops/common/llm"
)

const systemPrompt = `You classify the sentiment of a single chat message sent to a team assistant.
Return the overall polarity, a score from -1 (very negative) to 1 (very positive),
the emotions clearly expressed (any of: gratitude, excitement, joy, sadness, frustration),
and whether the message asks a question. Only report emotions the text supports.`

type llmVerdict struct {
	Polarity   string   `json:"polarity" jsonschema:"enum=positive,enum=negative,enum=neutral"`
	Score      float64  `json:"score" jsonschema:"minimum=-1,maximum=1"`
	Emotions   []string `json:"emotions"`
	IsQuestion bool     `json:"is_question"`
}

var verdictSchema = llm.GenerateSchema[llmVerdict]()

// LLMAnalyzer asks a model for a structured verdict and falls back to the
// lexicon when the model is unavailable or fails.
type LLMAnalyzer struct {
	client   llm.Client
	fallback *Lexicon
}

func NewLLMAnalyzer(client llm.Client) *LLMAnalyzer {
	return &LLMAnalyzer{client: client, fallback: NewLexicon()}
}

func (a *LLMAnalyzer) Analyze(ctx context.Context, text string) (*Result, error) {
	if a.client == nil {
		return a.fallback.analyze(text), nil
	}

	var verdict llmVerdict
	_, err := a.client.Chat(ctx, llm.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   text,
		SchemaName:   "message_sentiment",
		Schema:       verdictSchema,
		MaxTokens:    200,
		Temperature:  llm.Temp(0),
	}, &verdict)
	if err != nil {
		slog.WarnContext(ctx, "llm sentiment failed, using lexicon",
			"error", err,
			"rate_limited", llm.IsRateLimited(err))
		return a.fallback.analyze(text), nil
	}

	res := &Result{
		Polarity:   Neutral,
		Score:      clamp(verdict.Score),
		IsQuestion: verdict.IsQuestion,
		Source:     "llm",
	}
	switch Polarity(verdict.Polarity) {
	case Positive, Negative:
		res.Polarity = Polarity(verdict.Polarity)
	}
	for _, name := range verdict.Emotions {
		if e, ok := knownEmotion(name); ok {
			res.Emotions = append(res.Emotions, e)
		}
	}
	return res, nil
}
