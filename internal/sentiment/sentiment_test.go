package sentiment_test

import (
	"context"
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"nuco.app/chatops/common/llm"
	"nuco.app/chatops/internal/sentiment"
)

type mockLLM struct {
	chatFn func(ctx context.Context, req llm.Request, result any) (*llm.Response, error)
	calls  int
}

func (m *mockLLM) Chat(ctx context.Context, req llm.Request, result any) (*llm.Response, error) {
	m.calls++
	if m.chatFn != nil {
		return m.chatFn(ctx, req, result)
	}
	return &llm.Response{}, nil
}

func (m *mockLLM) Model() string { return "test-model" }

func replyWith(body string) func(context.Context, llm.Request, any) (*llm.Response, error) {
	return func(_ context.Context, _ llm.Request, result any) (*llm.Response, error) {
		return &llm.Response{}, json.Unmarshal([]byte(body), result)
	}
}

var _ = Describe("Lexicon", func() {
	var lex *sentiment.Lexicon

	BeforeEach(func() {
		lex = sentiment.NewLexicon()
	})

	analyze := func(text string) *sentiment.Result {
		res, err := lex.Analyze(context.Background(), text)
		Expect(err).NotTo(HaveOccurred())
		return res
	}

	It("detects gratitude and excitement in priority order", func() {
		res := analyze("Wow, thanks for shipping this!")
		Expect(res.Polarity).To(Equal(sentiment.Positive))
		Expect(res.Reactions()).To(Equal([]string{"pray", "tada"}))
	})

	It("detects frustration as negative", func() {
		res := analyze("ugh the deploy is broken again")
		Expect(res.Polarity).To(Equal(sentiment.Negative))
		Expect(res.Reactions()).To(ContainElement("hugging_face"))
	})

	It("flags questions", func() {
		Expect(analyze("where is the runbook?").IsQuestion).To(BeTrue())
		Expect(analyze("how do I rotate keys").IsQuestion).To(BeTrue())
		Expect(analyze("deploying now").IsQuestion).To(BeFalse())
	})

	It("falls back to polarity reactions when no emotion is present", func() {
		Expect(analyze("the fix works, looks good").Reactions()).To(Equal([]string{"thumbsup"}))
		Expect(analyze("build failed with an error").Reactions()).To(Equal([]string{"hugging_face"}))
	})

	It("returns no reactions for neutral text", func() {
		res := analyze("standup moved to 10")
		Expect(res.Polarity).To(Equal(sentiment.Neutral))
		Expect(res.Reactions()).To(BeEmpty())
	})

	It("keeps the score within [-1, 1]", func() {
		res := analyze("great great great great")
		Expect(res.Score).To(BeNumerically("<=", 1))
		Expect(res.Score).To(BeNumerically(">", 0))
	})
})

var _ = Describe("LLMAnalyzer", func() {
	It("uses the structured model verdict", func() {
		client := &mockLLM{chatFn: replyWith(`{"polarity":"positive","score":0.8,"emotions":["joy","curiosity"],"is_question":true}`)}
		analyzer := sentiment.NewLLMAnalyzer(client)

		res, err := analyzer.Analyze(context.Background(), "love this, can we ship friday?")
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Source).To(Equal("llm"))
		Expect(res.Emotions).To(Equal([]sentiment.Emotion{sentiment.Joy}))
		Expect(res.Reactions()).To(Equal([]string{"smile", "question"}))
	})

	It("falls back to the lexicon on model errors", func() {
		client := &mockLLM{chatFn: func(context.Context, llm.Request, any) (*llm.Response, error) {
			return nil, errors.New("upstream unavailable")
		}}
		analyzer := sentiment.NewLLMAnalyzer(client)

		res, err := analyzer.Analyze(context.Background(), "thanks!")
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Source).To(Equal("lexicon"))
		Expect(res.Emotions).To(ContainElement(sentiment.Gratitude))
		Expect(client.calls).To(Equal(1))
	})

	It("uses the lexicon when no client is configured", func() {
		res, err := sentiment.NewLLMAnalyzer(nil).Analyze(context.Background(), "sad news")
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Source).To(Equal("lexicon"))
	})
})
