package platform

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordedCall struct {
	method string
	form   map[string]string
}

type fakeSlackAPI struct {
	mu       sync.Mutex
	calls    []recordedCall
	handlers map[string]func(w http.ResponseWriter)
}

func (f *fakeSlackAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	method := strings.TrimPrefix(r.URL.Path, "/api/")
	form := map[string]string{}
	for k := range r.PostForm {
		form[k] = r.PostForm.Get(k)
	}

	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{method: method, form: form})
	h, ok := f.handlers[method]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		_, _ = w.Write([]byte(`{"ok":true}`))
		return
	}
	h(w)
}

func (f *fakeSlackAPI) callsTo(method string) []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedCall
	for _, c := range f.calls {
		if c.method == method {
			out = append(out, c)
		}
	}
	return out
}

func respondJSON(body string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		_, _ = w.Write([]byte(body))
	}
}

var _ = Describe("Client", func() {
	var (
		ctx    context.Context
		api    *fakeSlackAPI
		server *httptest.Server
		client Client
	)

	BeforeEach(func() {
		ctx = context.Background()
		api = &fakeSlackAPI{handlers: map[string]func(w http.ResponseWriter){}}
		server = httptest.NewServer(api)
		client = NewClientFactory(server.URL+"/api", server.Client())("xoxb-test")
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("PostMessage", func() {
		It("posts threaded text and returns the message timestamp", func() {
			api.handlers["chat.postMessage"] = respondJSON(`{"ok":true,"channel":"C1","ts":"1700000000.000200"}`)

			ts, err := client.PostMessage(ctx, "C1", "hello", "1700000000.000100")
			Expect(err).NotTo(HaveOccurred())
			Expect(ts).To(Equal("1700000000.000200"))

			calls := api.callsTo("chat.postMessage")
			Expect(calls).To(HaveLen(1))
			Expect(calls[0].form["channel"]).To(Equal("C1"))
			Expect(calls[0].form["text"]).To(Equal("hello"))
			Expect(calls[0].form["thread_ts"]).To(Equal("1700000000.000100"))
		})
	})

	Describe("AddReaction", func() {
		It("targets the message by channel and timestamp", func() {
			Expect(client.AddReaction(ctx, "C1", "1.2", "tada")).To(Succeed())

			calls := api.callsTo("reactions.add")
			Expect(calls).To(HaveLen(1))
			Expect(calls[0].form).To(HaveKeyWithValue("name", "tada"))
			Expect(calls[0].form).To(HaveKeyWithValue("channel", "C1"))
			Expect(calls[0].form).To(HaveKeyWithValue("timestamp", "1.2"))
		})

		It("returns platform error codes as APIError", func() {
			api.handlers["reactions.add"] = respondJSON(`{"ok":false,"error":"already_reacted"}`)

			err := client.AddReaction(ctx, "C1", "1.2", "tada")
			var apiErr *APIError
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			Expect(apiErr.Method).To(Equal("reactions.add"))
			Expect(apiErr.Code).To(Equal("already_reacted"))
			Expect(IsCode(err, "already_reacted")).To(BeTrue())
		})

		It("returns non-200 responses as APIError with the status code", func() {
			api.handlers["reactions.add"] = func(w http.ResponseWriter) {
				w.WriteHeader(http.StatusInternalServerError)
			}

			err := client.AddReaction(ctx, "C1", "1.2", "tada")
			var apiErr *APIError
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			Expect(apiErr.StatusCode).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("ListUsers", func() {
		It("requests presence and maps profile fields", func() {
			api.handlers["users.list"] = respondJSON(`{"ok":true,"members":[
				{"id":"U1","name":"ana","real_name":"Ana","presence":"active","profile":{"display_name":"ana.d","status_text":"focus","status_emoji":":dart:"}},
				{"id":"B1","name":"bot","is_bot":true,"profile":{}}
			],"response_metadata":{"next_cursor":""}}`)

			users, err := client.ListUsers(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(2))
			Expect(users[0].DisplayName).To(Equal("ana.d"))
			Expect(users[0].Presence).To(Equal("active"))
			Expect(users[0].StatusEmoji).To(Equal(":dart:"))
			Expect(users[1].IsBot).To(BeTrue())

			Expect(api.callsTo("users.list")[0].form).To(HaveKeyWithValue("presence", "true"))
		})
	})

	Describe("GetUserPresence", func() {
		It("returns presence and online flag", func() {
			api.handlers["users.getPresence"] = respondJSON(`{"ok":true,"presence":"away","online":false}`)

			p, err := client.GetUserPresence(ctx, "U1")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Presence).To(Equal("away"))
			Expect(p.Online).To(BeFalse())
			Expect(api.callsTo("users.getPresence")[0].form).To(HaveKeyWithValue("user", "U1"))
		})
	})

	Describe("ListConversations", func() {
		It("follows cursors until exhausted", func() {
			page := 0
			api.handlers["conversations.list"] = func(w http.ResponseWriter) {
				page++
				if page == 1 {
					_, _ = w.Write([]byte(`{"ok":true,"channels":[{"id":"C1","name":"general","is_member":true}],"response_metadata":{"next_cursor":"next"}}`))
					return
				}
				_, _ = w.Write([]byte(`{"ok":true,"channels":[{"id":"C2","name":"random","is_private":true}],"response_metadata":{"next_cursor":""}}`))
			}

			convs, err := client.ListConversations(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(convs).To(HaveLen(2))
			Expect(convs[0].IsMember).To(BeTrue())
			Expect(convs[1].IsPrivate).To(BeTrue())
			Expect(api.callsTo("conversations.list")[1].form).To(HaveKeyWithValue("cursor", "next"))
		})
	})
})

var _ = Describe("OAuth", func() {
	var (
		api    *fakeSlackAPI
		server *httptest.Server
		oauth  *OAuth
		now    time.Time
	)

	BeforeEach(func() {
		api = &fakeSlackAPI{handlers: map[string]func(w http.ResponseWriter){}}
		server = httptest.NewServer(api)
		now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		oauth = NewOAuth(OAuthConfig{
			ClientID:     "cid",
			ClientSecret: "secret",
			RedirectURI:  "https://example.test/cb",
			APIURL:       server.URL + "/api/",
		}, server.Client())
		oauth.now = func() time.Time { return now }
	})

	AfterEach(func() {
		server.Close()
	})

	It("exchanges a code for an installation grant", func() {
		api.handlers["oauth.v2.access"] = respondJSON(`{"ok":true,"access_token":"xoxb-1","refresh_token":"xoxe-1","expires_in":43200,
			"scope":"chat:write,reactions:write","bot_user_id":"UBOT","team":{"id":"T1","name":"Acme"},
			"incoming_webhook":{"url":"https://hooks.example.test/1"}}`)

		grant, err := oauth.Exchange(context.Background(), "code-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(grant.AccessToken).To(Equal("xoxb-1"))
		Expect(grant.RefreshToken).To(Equal("xoxe-1"))
		Expect(grant.ExpiresAt).To(Equal(now.Add(12 * time.Hour)))
		Expect(grant.TeamID).To(Equal("T1"))
		Expect(grant.BotUserID).To(Equal("UBOT"))
		Expect(grant.WebhookURL).To(Equal("https://hooks.example.test/1"))
		Expect(grant.Scopes).To(Equal([]string{"chat:write", "reactions:write"}))
		Expect(api.callsTo("oauth.v2.access")[0].form).To(HaveKeyWithValue("code", "code-1"))
	})

	It("leaves ExpiresAt zero for non-expiring tokens", func() {
		api.handlers["oauth.v2.access"] = respondJSON(`{"ok":true,"access_token":"xoxb-2","team":{"id":"T1"}}`)

		grant, err := oauth.Refresh(context.Background(), "xoxe-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(grant.ExpiresAt.IsZero()).To(BeTrue())
		Expect(api.callsTo("oauth.v2.access")[0].form).To(HaveKeyWithValue("grant_type", "refresh_token"))
	})

	It("surfaces refresh rejections as APIError", func() {
		api.handlers["oauth.v2.access"] = respondJSON(`{"ok":false,"error":"invalid_refresh_token"}`)

		_, err := oauth.Refresh(context.Background(), "bad")
		Expect(IsCode(err, "invalid_refresh_token")).To(BeTrue())
	})

	It("routes OAuth calls to the configured API base only", func() {
		api.handlers["oauth.v2.access"] = respondJSON(`{"ok":true,"access_token":"xoxb-3","team":{"id":"T1"}}`)

		_, err := oauth.Exchange(context.Background(), "code-2")
		Expect(err).NotTo(HaveOccurred())
		Expect(api.callsTo("oauth.v2.access")).To(HaveLen(1))

		other, err := http.NewRequest(http.MethodGet, server.URL+"/elsewhere", nil)
		Expect(err).NotTo(HaveOccurred())
		resp, err := oauth.client.Do(other)
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()
		Expect(resp.Request.URL.Path).To(Equal("/elsewhere"))
	})
})
