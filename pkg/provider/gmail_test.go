package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"aaronromeo.com/inboxpilot/pkg/models/credentials"
	"aaronromeo.com/inboxpilot/pkg/models/message"
)

type fakeGmail struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   map[string][]byte
	delay    time.Duration
	handler  func(w http.ResponseWriter, r *http.Request, body []byte)
}

func (f *fakeGmail) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, r)
	if f.bodies == nil {
		f.bodies = map[string][]byte{}
	}
	f.bodies[r.URL.Path] = body
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-r.Context().Done():
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	f.handler(w, r, body)
}

func (f *fakeGmail) body(path string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[path]
}

func newTestClient(t *testing.T, fake *fakeGmail, opts ...FactoryOption) Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]FactoryOption{
		WithLogger(logger),
		WithClientOptions(option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client())),
	}, opts...)
	factory, err := NewGmailFactory(opts...)
	require.NoError(t, err)

	client, err := factory.Build(context.Background(), credentials.Set{AccessToken: "token"})
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func apiError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": map[string]any{"code": code, "message": msg}})
}

func TestNewGmailFactoryRequiresLogger(t *testing.T) {
	_, err := NewGmailFactory()
	assert.Error(t, err)

	_, err = NewGmailFactory(WithLogger(slog.Default()), WithCallTimeout(0))
	assert.Error(t, err)
}

func TestBuildRejectsEmptyCredentials(t *testing.T) {
	factory, err := NewGmailFactory(WithLogger(slog.Default()))
	require.NoError(t, err)

	_, err = factory.Build(context.Background(), credentials.Set{})
	assert.Error(t, err)
}

func TestListInbox(t *testing.T) {
	fake := &fakeGmail{handler: func(w http.ResponseWriter, r *http.Request, _ []byte) {
		assert.Equal(t, "/gmail/v1/users/me/messages", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("maxResults"))
		writeJSON(w, http.StatusOK, map[string]any{
			"messages": []map[string]string{{"id": "m1"}, {"id": "m2"}},
		})
	}}
	client := newTestClient(t, fake)

	ids, err := client.ListInbox(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []message.ID{"m1", "m2"}, ids)
}

func TestListInboxEmpty(t *testing.T) {
	fake := &fakeGmail{handler: func(w http.ResponseWriter, _ *http.Request, _ []byte) {
		writeJSON(w, http.StatusOK, map[string]any{"resultSizeEstimate": 0})
	}}
	client := newTestClient(t, fake)

	ids, err := client.ListInbox(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestGetMessageMetadata(t *testing.T) {
	fake := &fakeGmail{handler: func(w http.ResponseWriter, r *http.Request, _ []byte) {
		assert.Equal(t, "/gmail/v1/users/me/messages/m1", r.URL.Path)
		assert.Equal(t, "metadata", r.URL.Query().Get("format"))
		assert.ElementsMatch(t, []string{"From", "Subject", "Date"}, r.URL.Query()["metadataHeaders"])
		writeJSON(w, http.StatusOK, map[string]any{
			"id":       "m1",
			"threadId": "t1",
			"snippet":  "hello there",
			"labelIds": []string{"INBOX", "STARRED"},
			"payload": map[string]any{
				"headers": []map[string]string{
					{"name": "From", "value": "Alice <alice@example.com>"},
					{"name": "Subject", "value": "Lunch"},
				},
			},
		})
	}}
	client := newTestClient(t, fake)

	d, err := client.GetMessage(context.Background(), "m1", FormatMetadata)
	require.NoError(t, err)
	assert.Equal(t, message.ID("m1"), d.ID)
	assert.Equal(t, "t1", d.ThreadID)
	assert.Equal(t, "Alice <alice@example.com>", d.Sender)
	assert.Equal(t, "Lunch", d.Subject)
	assert.Equal(t, "hello there", d.Snippet)
	assert.True(t, d.Starred)
	assert.False(t, d.Spam)
}

func TestGetMessageFullPrefersHTMLBody(t *testing.T) {
	enc := base64.URLEncoding.EncodeToString
	fake := &fakeGmail{handler: func(w http.ResponseWriter, r *http.Request, _ []byte) {
		assert.Equal(t, "full", r.URL.Query().Get("format"))
		assert.Empty(t, r.URL.Query()["metadataHeaders"])
		writeJSON(w, http.StatusOK, map[string]any{
			"id":       "m2",
			"labelIds": []string{"SPAM"},
			"payload": map[string]any{
				"mimeType": "multipart/alternative",
				"parts": []map[string]any{
					{"mimeType": "text/plain", "body": map[string]string{"data": enc([]byte("plain"))}},
					{"mimeType": "text/html", "body": map[string]string{"data": enc([]byte("<p>html</p>"))}},
				},
			},
		})
	}}
	client := newTestClient(t, fake)

	d, err := client.GetMessage(context.Background(), "m2", FormatFull)
	require.NoError(t, err)
	assert.Equal(t, message.UnknownSender, d.Sender)
	assert.Equal(t, "<p>html</p>", d.Body)
	assert.True(t, d.Spam)
}

func TestGetMessageNotFound(t *testing.T) {
	fake := &fakeGmail{handler: func(w http.ResponseWriter, _ *http.Request, _ []byte) {
		apiError(w, http.StatusNotFound, "Requested entity was not found.")
	}}
	client := newTestClient(t, fake)

	_, err := client.GetMessage(context.Background(), "missing", FormatMetadata)
	require.Error(t, err)

	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, http.StatusNotFound, perr.StatusCode)
	assert.Equal(t, "Requested entity was not found.", perr.Message)
	assert.Equal(t, "get message", perr.Op)
}

func TestSendRawEncodesBase64URL(t *testing.T) {
	fake := &fakeGmail{handler: func(w http.ResponseWriter, r *http.Request, _ []byte) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/gmail/v1/users/me/messages/send", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]string{"id": "sent-1"})
	}}
	client := newTestClient(t, fake)

	raw := []byte("To: a@b.com\r\nSubject: hi\r\n\r\nhello??>")
	id, err := client.SendRaw(context.Background(), "thread-9", raw)
	require.NoError(t, err)
	assert.Equal(t, message.ID("sent-1"), id)

	var sent struct {
		Raw      string `json:"raw"`
		ThreadID string `json:"threadId"`
	}
	require.NoError(t, json.Unmarshal(fake.body("/gmail/v1/users/me/messages/send"), &sent))
	assert.Equal(t, "thread-9", sent.ThreadID)
	assert.NotContains(t, sent.Raw, "+")
	assert.NotContains(t, sent.Raw, "/")

	decoded, err := base64.URLEncoding.DecodeString(sent.Raw)
	require.NoError(t, err)
	mr, err := mail.CreateReader(bytes.NewReader(decoded))
	require.NoError(t, err)
	subject, err := mr.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "hi", subject)
	assert.Equal(t, "a@b.com", mr.Header.Get("To"))
}

func TestModifyLabels(t *testing.T) {
	fake := &fakeGmail{handler: func(w http.ResponseWriter, r *http.Request, _ []byte) {
		assert.Equal(t, "/gmail/v1/users/me/messages/m1/modify", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]string{"id": "m1"})
	}}
	client := newTestClient(t, fake)

	err := client.ModifyLabels(context.Background(), "m1", nil, []message.Label{message.LabelSpam})
	require.NoError(t, err)

	var req struct {
		AddLabelIds    []string `json:"addLabelIds"`
		RemoveLabelIds []string `json:"removeLabelIds"`
	}
	require.NoError(t, json.Unmarshal(fake.body("/gmail/v1/users/me/messages/m1/modify"), &req))
	assert.Empty(t, req.AddLabelIds)
	assert.Equal(t, []string{"SPAM"}, req.RemoveLabelIds)
}

func TestCallTimeoutSurfacesAsProviderError(t *testing.T) {
	fake := &fakeGmail{
		delay: time.Second,
		handler: func(w http.ResponseWriter, _ *http.Request, _ []byte) {
			writeJSON(w, http.StatusOK, map[string]any{})
		},
	}
	client := newTestClient(t, fake, WithCallTimeout(20*time.Millisecond))

	_, err := client.ListInbox(context.Background(), 10)
	require.Error(t, err)

	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, http.StatusGatewayTimeout, perr.StatusCode)
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	var calls int
	var mu sync.Mutex
	fake := &fakeGmail{handler: func(w http.ResponseWriter, _ *http.Request, _ []byte) {
		mu.Lock()
		calls++
		mu.Unlock()
		apiError(w, http.StatusNotFound, "not found")
	}}
	breaker := NewBreaker(BreakerSettings{ConsecutiveFailures: 2}, slog.Default())
	client := newTestClient(t, fake, WithBreaker(breaker))

	for i := 0; i < 5; i++ {
		_, err := client.GetMessage(context.Background(), "x", FormatMetadata)
		require.Error(t, err)
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 5, calls)
	assert.Equal(t, "closed", breaker.State().String())
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	fake := &fakeGmail{handler: func(w http.ResponseWriter, _ *http.Request, _ []byte) {
		apiError(w, http.StatusInternalServerError, "backend error")
	}}
	breaker := NewBreaker(BreakerSettings{ConsecutiveFailures: 2, Timeout: time.Minute}, slog.Default())
	client := newTestClient(t, fake, WithBreaker(breaker), WithClientOptions(option.WithHTTPClient(&http.Client{Transport: noRetry{}})))

	for i := 0; i < 2; i++ {
		_, _ = client.ListInbox(context.Background(), 1)
	}

	_, err := client.ListInbox(context.Background(), 1)
	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, http.StatusServiceUnavailable, perr.StatusCode)
	assert.True(t, strings.Contains(perr.Error(), "temporarily unavailable"))
}

func TestBreakerIgnoresCanceledCalls(t *testing.T) {
	breaker := NewBreaker(BreakerSettings{ConsecutiveFailures: 2}, slog.Default())

	for i := 0; i < 5; i++ {
		_, err := breaker.Execute(func() (interface{}, error) {
			return nil, errors.Wrap(context.Canceled, "get message")
		})
		require.Error(t, err)
	}
	assert.Equal(t, "closed", breaker.State().String())
}

func TestBreakerStaysClosedWhenCallersDisconnect(t *testing.T) {
	fake := &fakeGmail{
		delay: time.Second,
		handler: func(w http.ResponseWriter, _ *http.Request, _ []byte) {
			writeJSON(w, http.StatusOK, map[string]any{})
		},
	}
	breaker := NewBreaker(BreakerSettings{ConsecutiveFailures: 2, Timeout: time.Minute}, slog.Default())
	client := newTestClient(t, fake, WithBreaker(breaker))

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(10*time.Millisecond, cancel)
		_, err := client.ListInbox(ctx, 1)
		cancel()
		require.Error(t, err)
	}
	assert.Equal(t, "closed", breaker.State().String())
}

func TestTokenRefreshIsBoundedByCallTimeout(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(5 * time.Second):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(tokenSrv.Close)

	var apiCalls int
	var mu sync.Mutex
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		apiCalls++
		mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{})
	}))
	t.Cleanup(apiSrv.Close)

	factory, err := NewGmailFactory(
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithCallTimeout(100*time.Millisecond),
		WithClientOptions(option.WithEndpoint(apiSrv.URL+"/")),
	)
	require.NoError(t, err)

	client, err := factory.Build(context.Background(), credentials.Set{
		AccessToken:  "stale",
		RefreshToken: "refresh",
		TokenURI:     tokenSrv.URL,
		ClientID:     "client",
		ClientSecret: "secret",
		Expiry:       time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)

	start := time.Now()
	_, err = client.ListInbox(context.Background(), 1)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)

	var perr *Error
	assert.True(t, errors.As(err, &perr))
	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, apiCalls)
}

// noRetry fails every request at the transport so the breaker sees
// consecutive failures without depending on server retries.
type noRetry struct{}

func (noRetry) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}
