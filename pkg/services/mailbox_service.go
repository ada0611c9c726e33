// Package services holds the mailbox operations the HTTP layer exposes. Each
// operation takes a provider client already scoped to the caller's account.
package services

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"aaronromeo.com/inboxpilot/pkg/apperr"
	"aaronromeo.com/inboxpilot/pkg/base"
	"aaronromeo.com/inboxpilot/pkg/commands"
	"aaronromeo.com/inboxpilot/pkg/composer"
	"aaronromeo.com/inboxpilot/pkg/models/message"
	"aaronromeo.com/inboxpilot/pkg/provider"
	"aaronromeo.com/inboxpilot/pkg/repositories"
)

const DefaultConcurrency = 4

// MailboxService defines the mailbox operations available to a signed-in user.
type MailboxService interface {
	ListInbox(ctx context.Context, client provider.Client) ([]message.Summary, error)
	GetEmail(ctx context.Context, client provider.Client, id message.ID) (message.Detail, error)
	Send(ctx context.Context, client provider.Client, req SendRequest) (message.ID, error)
	Compose(ctx context.Context, client provider.Client, req ComposeRequest) (message.ID, error)
	ApplyLabel(ctx context.Context, client provider.Client, cmd commands.LabelCommand, id message.ID) error
}

// SendRequest is the body of a plain-text send.
type SendRequest struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	ThreadID  string `json:"threadId,omitempty"`
}

func (r *SendRequest) Normalize() {
	r.Recipient = strings.TrimSpace(r.Recipient)
	r.ThreadID = strings.TrimSpace(r.ThreadID)
}

func (r SendRequest) Validate() error {
	if !isAddress(r.Recipient) {
		return apperr.Validation("Invalid recipient email")
	}
	return nil
}

// ComposeRequest is the body of a send with an explicit From address.
type ComposeRequest struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

func (r *ComposeRequest) Normalize() {
	r.Sender = strings.TrimSpace(r.Sender)
	r.Recipient = strings.TrimSpace(r.Recipient)
}

// Validate checks the sender before the recipient.
func (r ComposeRequest) Validate() error {
	if !isAddress(r.Sender) {
		return apperr.Validation("Invalid sender email")
	}
	if !isAddress(r.Recipient) {
		return apperr.Validation("Invalid recipient email")
	}
	return nil
}

// isAddress rejects control characters so a value can never carry extra
// header lines.
func isAddress(s string) bool {
	return s != "" && strings.Contains(s, "@") && !strings.ContainsFunc(s, unicode.IsControl)
}

// MailboxServiceImpl implements the MailboxService interface.
type MailboxServiceImpl struct {
	logger      *slog.Logger
	mirror      repositories.MetadataRepository
	executor    *commands.CommandExecutor
	tracer      trace.Tracer
	maxResults  int
	concurrency int
}

type Option func(*MailboxServiceImpl) error

// NewMailboxService creates a new MailboxService implementation.
func NewMailboxService(opts ...Option) (*MailboxServiceImpl, error) {
	s := MailboxServiceImpl{
		maxResults:  base.DefaultInboxSize,
		concurrency: DefaultConcurrency,
		tracer:      otel.Tracer(base.ServiceName),
	}
	for _, opt := range opts {
		if err := opt(&s); err != nil {
			return nil, err
		}
	}

	if s.logger == nil {
		return nil, errors.New("requires slogger")
	}

	if s.mirror == nil {
		return nil, errors.New("requires metadata repository")
	}

	s.executor = commands.NewCommandExecutor(s.logger, s.mirror)
	return &s, nil
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *MailboxServiceImpl) error {
		s.logger = logger
		return nil
	}
}

func WithMirror(mirror repositories.MetadataRepository) Option {
	return func(s *MailboxServiceImpl) error {
		s.mirror = mirror
		return nil
	}
}

func WithMaxResults(n int) Option {
	return func(s *MailboxServiceImpl) error {
		if n <= 0 {
			return errors.Errorf("max results must be positive, got %d", n)
		}
		s.maxResults = n
		return nil
	}
}

func WithConcurrency(n int) Option {
	return func(s *MailboxServiceImpl) error {
		if n <= 0 {
			return errors.Errorf("concurrency must be positive, got %d", n)
		}
		s.concurrency = n
		return nil
	}
}

// ListInbox fetches the newest messages and mirrors each one. Only a failure
// of the listing itself fails the call. A message that cannot be fetched is
// left out; a message whose mirror write fails is still returned. The
// provider's order is kept.
func (s *MailboxServiceImpl) ListInbox(ctx context.Context, client provider.Client) ([]message.Summary, error) {
	ctx, span := s.tracer.Start(ctx, "MailboxService.ListInbox")
	defer span.End()

	ids, err := client.ListInbox(ctx, s.maxResults)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list inbox", slog.String("error", err.Error()))
		span.SetStatus(codes.Error, err.Error())
		return nil, apperr.Provider("list inbox", err)
	}

	slots := make([]*message.Summary, len(ids))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			detail, err := client.GetMessage(ctx, id, provider.FormatMetadata)
			if err != nil {
				s.logger.WarnContext(ctx, "Skipping message that could not be fetched",
					slog.String("id", string(id)),
					slog.String("error", err.Error()))
				return nil
			}
			detail.ID = id

			if err := s.mirror.Upsert(ctx, id, detail.MirrorFields()); err != nil {
				s.logger.WarnContext(ctx, "Mirror sync failed for listed message",
					slog.String("id", string(id)),
					slog.String("error", err.Error()))
			}

			summary := detail.Summary()
			slots[i] = &summary
			return nil
		})
	}
	_ = g.Wait()

	summaries := make([]message.Summary, 0, len(ids))
	for _, sm := range slots {
		if sm != nil {
			summaries = append(summaries, *sm)
		}
	}

	span.SetAttributes(
		attribute.Int("inbox.listed", len(ids)),
		attribute.Int("inbox.returned", len(summaries)),
	)
	s.logger.InfoContext(ctx, "Listed inbox",
		slog.Int("listed", len(ids)),
		slog.Int("returned", len(summaries)))
	return summaries, nil
}

// GetEmail reads one message in full and mirrors its flags. A mirror failure
// is logged and does not fail the read.
func (s *MailboxServiceImpl) GetEmail(ctx context.Context, client provider.Client, id message.ID) (message.Detail, error) {
	ctx, span := s.tracer.Start(ctx, "MailboxService.GetEmail")
	defer span.End()

	if id == "" {
		return message.Detail{}, apperr.Validation("Invalid message id")
	}

	detail, err := client.GetMessage(ctx, id, provider.FormatFull)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get message",
			slog.String("id", string(id)),
			slog.String("error", err.Error()))
		span.SetStatus(codes.Error, err.Error())
		return message.Detail{}, apperr.Provider("get message", err)
	}

	if err := s.mirror.Upsert(ctx, id, detail.MirrorFields()); err != nil {
		s.logger.WarnContext(ctx, "Mirror sync failed for message detail",
			slog.String("id", string(id)),
			slog.String("error", err.Error()))
	}
	return detail, nil
}

// Send validates req before touching the provider.
func (s *MailboxServiceImpl) Send(ctx context.Context, client provider.Client, req SendRequest) (message.ID, error) {
	ctx, span := s.tracer.Start(ctx, "MailboxService.Send")
	defer span.End()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return "", err
	}

	raw, err := composer.PlainText(req.Recipient, req.Subject, req.Body)
	if err != nil {
		return "", apperr.Internal("compose message", err)
	}
	return s.sendRaw(ctx, span, client, req.ThreadID, raw)
}

// Compose validates req before touching the provider.
func (s *MailboxServiceImpl) Compose(ctx context.Context, client provider.Client, req ComposeRequest) (message.ID, error) {
	ctx, span := s.tracer.Start(ctx, "MailboxService.Compose")
	defer span.End()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return "", err
	}

	raw, err := composer.Multipart(req.Sender, req.Recipient, req.Subject, req.Body)
	if err != nil {
		return "", apperr.Internal("compose message", err)
	}
	return s.sendRaw(ctx, span, client, "", raw)
}

func (s *MailboxServiceImpl) sendRaw(ctx context.Context, span trace.Span, client provider.Client, threadID string, raw []byte) (message.ID, error) {
	id, err := client.SendRaw(ctx, threadID, raw)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to send message", slog.String("error", err.Error()))
		span.SetStatus(codes.Error, err.Error())
		return "", apperr.Provider("send message", err)
	}
	s.logger.InfoContext(ctx, "Sent message", slog.String("id", string(id)))
	return id, nil
}

// ApplyLabel runs a label command and mirrors the result.
func (s *MailboxServiceImpl) ApplyLabel(ctx context.Context, client provider.Client, cmd commands.LabelCommand, id message.ID) error {
	ctx, span := s.tracer.Start(ctx, "MailboxService.ApplyLabel",
		trace.WithAttributes(attribute.String("command", cmd.GetName())))
	defer span.End()

	if err := s.executor.ExecuteCommand(ctx, cmd, client, id); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

var _ MailboxService = (*MailboxServiceImpl)(nil)
