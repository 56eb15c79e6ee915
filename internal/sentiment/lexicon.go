package sentiment

import (
	"context"
	"strings"
	"unicode"
)

var emotionWords = map[string]Emotion{
	"thanks": Gratitude, "thank": Gratitude, "thx": Gratitude, "ty": Gratitude,
	"appreciate": Gratitude, "appreciated": Gratitude, "grateful": Gratitude,

	"excited": Excitement, "exciting": Excitement, "amazing": Excitement, "wow": Excitement,
	"congrats": Excitement, "congratulations": Excitement, "shipped": Excitement,
	"launched": Excitement, "woohoo": Excitement, "yay": Excitement,

	"happy": Joy, "glad": Joy, "love": Joy, "great": Joy, "awesome": Joy,
	"nice": Joy, "lol": Joy, "fun": Joy,

	"sad": Sadness, "unfortunately": Sadness, "sorry": Sadness,
	"disappointed": Sadness, "miss": Sadness, "lost": Sadness,

	"frustrated": Frustration, "frustrating": Frustration, "annoying": Frustration,
	"angry": Frustration, "hate": Frustration, "ugh": Frustration,
	"stuck": Frustration, "broken": Frustration,
}

var positiveWords = map[string]bool{
	"good": true, "works": true, "fixed": true, "perfect": true, "excellent": true,
	"cool": true, "helpful": true, "yes": true, "done": true, "resolved": true,
}

var negativeWords = map[string]bool{
	"bad": true, "fail": true, "failed": true, "failing": true, "error": true,
	"bug": true, "wrong": true, "down": true, "issue": true, "problem": true,
	"slow": true, "crash": true, "crashed": true,
}

var questionOpeners = map[string]bool{
	"what": true, "why": true, "how": true, "when": true, "where": true, "who": true,
	"which": true, "can": true, "could": true, "should": true, "is": true, "are": true,
	"does": true, "would": true,
}

// Lexicon is a keyword scorer used on the message hot path and as the
// fallback for model-backed analysis.
type Lexicon struct{}

func NewLexicon() *Lexicon {
	return &Lexicon{}
}

func (l *Lexicon) Analyze(_ context.Context, text string) (*Result, error) {
	return l.analyze(text), nil
}

func (l *Lexicon) analyze(text string) *Result {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})

	res := &Result{Polarity: Neutral, Source: "lexicon"}
	seen := map[Emotion]bool{}
	var score int
	for _, w := range words {
		if e, ok := emotionWords[w]; ok {
			if !seen[e] {
				seen[e] = true
				res.Emotions = append(res.Emotions, e)
			}
			switch e {
			case Sadness, Frustration:
				score--
			default:
				score++
			}
			continue
		}
		if positiveWords[w] {
			score++
		}
		if negativeWords[w] {
			score--
		}
	}

	trimmed := strings.TrimSpace(text)
	res.IsQuestion = strings.HasSuffix(trimmed, "?") || (len(words) >= 3 && questionOpeners[words[0]])

	switch {
	case score > 0:
		res.Polarity = Positive
	case score < 0:
		res.Polarity = Negative
	}
	if len(words) > 0 {
		res.Score = clamp(float64(score) / float64(len(words)) * 3)
	}
	return res
}

func clamp(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	default:
		return v
	}
}
