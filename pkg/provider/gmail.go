package provider

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"aaronromeo.com/inboxpilot/pkg/base"
	"aaronromeo.com/inboxpilot/pkg/models/credentials"
	"aaronromeo.com/inboxpilot/pkg/models/message"
)

const defaultCallTimeout = 15 * time.Second

var listingHeaders = []string{"From", "Subject", "Date"}

// GmailFactory builds per-request Gmail clients. The circuit breaker is the
// only state shared between the clients it builds.
type GmailFactory struct {
	timeout       time.Duration
	breaker       *gobreaker.CircuitBreaker
	clientOptions []option.ClientOption
	logger        *slog.Logger
}

type FactoryOption func(*GmailFactory) error

func NewGmailFactory(opts ...FactoryOption) (*GmailFactory, error) {
	f := GmailFactory{timeout: defaultCallTimeout}
	for _, opt := range opts {
		if err := opt(&f); err != nil {
			return nil, err
		}
	}

	if f.logger == nil {
		return nil, errors.New("requires slogger")
	}

	if f.breaker == nil {
		f.breaker = NewBreaker(BreakerSettings{}, f.logger)
	}

	return &f, nil
}

func WithCallTimeout(d time.Duration) FactoryOption {
	return func(f *GmailFactory) error {
		if d <= 0 {
			return errors.Errorf("call timeout must be positive, got %s", d)
		}
		f.timeout = d
		return nil
	}
}

func WithBreaker(cb *gobreaker.CircuitBreaker) FactoryOption {
	return func(f *GmailFactory) error {
		f.breaker = cb
		return nil
	}
}

// WithClientOptions appends Google API client options. Tests use it to point
// the service at a local server.
func WithClientOptions(opts ...option.ClientOption) FactoryOption {
	return func(f *GmailFactory) error {
		f.clientOptions = append(f.clientOptions, opts...)
		return nil
	}
}

func WithLogger(logger *slog.Logger) FactoryOption {
	return func(f *GmailFactory) error {
		f.logger = logger
		return nil
	}
}

// Build does no network I/O; token refresh, if needed, happens lazily inside
// the token source on the first call.
func (f *GmailFactory) Build(ctx context.Context, creds credentials.Set) (Client, error) {
	if creds.IsZero() {
		return nil, errors.New("credentials carry no token")
	}

	// Token refresh runs inside the transport on the context captured here, so
	// it gets its own bound instead of the per-call deadline.
	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: f.timeout})
	ts := creds.OAuthConfig(google.Endpoint.AuthURL).TokenSource(tokenCtx, creds.Token())
	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, f.clientOptions...)

	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, wrap("build client", err)
	}

	return &gmailClient{
		svc:     svc,
		timeout: f.timeout,
		breaker: f.breaker,
	}, nil
}

type gmailClient struct {
	svc     *gmail.Service
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
}

// call bounds fn with the per-call timeout and routes it through the breaker.
func (g *gmailClient) call(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	_, err := g.breaker.Execute(func() (interface{}, error) {
		return nil, fn(ctx)
	})
	return wrap(op, err)
}

// ListInbox returns up to max message ids, newest first, as the provider
// orders them. Spam and trash are excluded by the provider.
func (g *gmailClient) ListInbox(ctx context.Context, max int) ([]message.ID, error) {
	var res *gmail.ListMessagesResponse
	err := g.call(ctx, "list messages", func(ctx context.Context) error {
		var err error
		res, err = g.svc.Users.Messages.List(base.GmailUser).MaxResults(int64(max)).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}

	ids := make([]message.ID, 0, len(res.Messages))
	for _, m := range res.Messages {
		ids = append(ids, message.ID(m.Id))
	}
	return ids, nil
}

func (g *gmailClient) GetMessage(ctx context.Context, id message.ID, format Format) (message.Detail, error) {
	var msg *gmail.Message
	err := g.call(ctx, "get message", func(ctx context.Context) error {
		call := g.svc.Users.Messages.Get(base.GmailUser, string(id)).Format(string(format))
		if format == FormatMetadata {
			call = call.MetadataHeaders(listingHeaders...)
		}
		var err error
		msg, err = call.Context(ctx).Do()
		return err
	})
	if err != nil {
		return message.Detail{}, err
	}
	return detailFromMessage(msg), nil
}

func (g *gmailClient) SendRaw(ctx context.Context, threadID string, raw []byte) (message.ID, error) {
	out := &gmail.Message{
		Raw:      base64.URLEncoding.EncodeToString(raw),
		ThreadId: threadID,
	}

	var sent *gmail.Message
	err := g.call(ctx, "send message", func(ctx context.Context) error {
		var err error
		sent, err = g.svc.Users.Messages.Send(base.GmailUser, out).Context(ctx).Do()
		return err
	})
	if err != nil {
		return "", err
	}
	return message.ID(sent.Id), nil
}

func (g *gmailClient) ModifyLabels(ctx context.Context, id message.ID, add, remove []message.Label) error {
	req := &gmail.ModifyMessageRequest{
		AddLabelIds:    labelStrings(add),
		RemoveLabelIds: labelStrings(remove),
	}
	return g.call(ctx, "modify labels", func(ctx context.Context) error {
		_, err := g.svc.Users.Messages.Modify(base.GmailUser, string(id), req).Context(ctx).Do()
		return err
	})
}

func detailFromMessage(msg *gmail.Message) message.Detail {
	d := message.Detail{
		ID:       message.ID(msg.Id),
		ThreadID: msg.ThreadId,
		Sender:   message.UnknownSender,
		Snippet:  msg.Snippet,
		Labels:   make([]message.Label, 0, len(msg.LabelIds)),
	}
	for _, l := range msg.LabelIds {
		d.Labels = append(d.Labels, message.Label(l))
	}
	d.Starred = message.HasLabel(d.Labels, message.LabelStarred)
	d.Spam = message.HasLabel(d.Labels, message.LabelSpam)

	if msg.Payload == nil {
		return d
	}
	for _, h := range msg.Payload.Headers {
		switch {
		case strings.EqualFold(h.Name, "From") && d.Sender == message.UnknownSender:
			d.Sender = h.Value
		case strings.EqualFold(h.Name, "Subject"):
			d.Subject = h.Value
		case strings.EqualFold(h.Name, "Date"):
			d.Date = h.Value
		}
	}
	d.Body = extractBody(msg.Payload)
	return d
}

// extractBody prefers an HTML part and falls back to plain text.
func extractBody(part *gmail.MessagePart) string {
	if html := findPart(part, "text/html", 0); html != "" {
		return html
	}
	return findPart(part, "text/plain", 0)
}

func findPart(part *gmail.MessagePart, mimeType string, depth int) string {
	if part == nil || depth > 10 {
		return ""
	}
	if strings.EqualFold(part.MimeType, mimeType) && part.Body != nil && part.Body.Data != "" {
		return decodeBody(part.Body.Data)
	}
	for _, p := range part.Parts {
		if body := findPart(p, mimeType, depth+1); body != "" {
			return body
		}
	}
	return ""
}

func decodeBody(data string) string {
	if b, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(b)
	}
	if b, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return string(b)
	}
	return ""
}

func labelStrings(labels []message.Label) []string {
	if len(labels) == 0 {
		return nil
	}
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = string(l)
	}
	return out
}

var _ Factory = (*GmailFactory)(nil)
