package sentiment

import "context"

type Polarity string

const (
	Positive Polarity = "positive"
	Negative Polarity = "negative"
	Neutral  Polarity = "neutral"
)

type Emotion string

const (
	Gratitude   Emotion = "gratitude"
	Excitement  Emotion = "excitement"
	Joy         Emotion = "joy"
	Sadness     Emotion = "sadness"
	Frustration Emotion = "frustration"
)

// emotionOrder fixes reaction priority when several emotions are present.
var emotionOrder = []Emotion{Gratitude, Excitement, Joy, Sadness, Frustration}

var emotionReactions = map[Emotion]string{
	Gratitude:   "pray",
	Excitement:  "tada",
	Joy:         "smile",
	Sadness:     "slightly_frowning_face",
	Frustration: "hugging_face",
}

const (
	questionReaction = "question"
	positiveFallback = "thumbsup"
	negativeFallback = "hugging_face"
)

type Result struct {
	Polarity   Polarity  `json:"polarity"`
	Score      float64   `json:"score"`
	Emotions   []Emotion `json:"emotions"`
	IsQuestion bool      `json:"is_question"`
	// Source is "lexicon" or "llm".
	Source string `json:"source"`
}

type Analyzer interface {
	Analyze(ctx context.Context, text string) (*Result, error)
}

// Reactions returns the emoji names to react with, most specific first.
// Polarity only contributes when no emotion or question was detected.
func (r *Result) Reactions() []string {
	if r == nil {
		return nil
	}

	present := make(map[Emotion]bool, len(r.Emotions))
	for _, e := range r.Emotions {
		present[e] = true
	}

	var out []string
	seen := map[string]bool{}
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}

	for _, e := range emotionOrder {
		if present[e] {
			add(emotionReactions[e])
		}
	}
	if r.IsQuestion {
		add(questionReaction)
	}
	if len(out) == 0 {
		switch r.Polarity {
		case Positive:
			add(positiveFallback)
		case Negative:
			add(negativeFallback)
		}
	}
	return out
}

func knownEmotion(s string) (Emotion, bool) {
	e := Emotion(s)
	_, ok := emotionReactions[e]
	return e, ok
}
