// Package commands implements the label changes a user can apply to a single
// message. Each command changes provider labels first and then reports the
// mirror fields that change implies.
package commands

import (
	"context"
	"log/slog"

	"aaronromeo.com/inboxpilot/pkg/apperr"
	"aaronromeo.com/inboxpilot/pkg/models/message"
	"aaronromeo.com/inboxpilot/pkg/provider"
	"aaronromeo.com/inboxpilot/pkg/repositories"
)

// LabelCommand defines a label change using the Command pattern.
type LabelCommand interface {
	Execute(ctx context.Context, client provider.Client, id message.ID) (message.MetadataFields, error)
	GetName() string
	GetDescription() string
	SuccessMessage() string
}

// StarCommand adds the STARRED label.
type StarCommand struct {
	logger *slog.Logger
}

// NewStarCommand creates a new StarCommand.
func NewStarCommand(logger *slog.Logger) LabelCommand {
	return &StarCommand{logger: logger}
}

// Execute stars the message.
func (c *StarCommand) Execute(ctx context.Context, client provider.Client, id message.ID) (message.MetadataFields, error) {
	c.logger.InfoContext(ctx, "Executing star command", slog.String("id", string(id)))
	if err := client.ModifyLabels(ctx, id, []message.Label{message.LabelStarred}, nil); err != nil {
		return message.MetadataFields{}, err
	}
	return message.MetadataFields{Starred: message.Bool(true)}, nil
}

// GetName returns the command name.
func (c *StarCommand) GetName() string {
	return "star"
}

// GetDescription returns the command description.
func (c *StarCommand) GetDescription() string {
	return "Adds the STARRED label to a message"
}

func (c *StarCommand) SuccessMessage() string {
	return "Email starred successfully"
}

// SpamCommand adds the SPAM label.
type SpamCommand struct {
	logger *slog.Logger
}

// NewSpamCommand creates a new SpamCommand.
func NewSpamCommand(logger *slog.Logger) LabelCommand {
	return &SpamCommand{logger: logger}
}

// Execute marks the message as spam.
func (c *SpamCommand) Execute(ctx context.Context, client provider.Client, id message.ID) (message.MetadataFields, error) {
	c.logger.InfoContext(ctx, "Executing spam command", slog.String("id", string(id)))
	if err := client.ModifyLabels(ctx, id, []message.Label{message.LabelSpam}, nil); err != nil {
		return message.MetadataFields{}, err
	}
	return message.MetadataFields{Spam: message.Bool(true)}, nil
}

// GetName returns the command name.
func (c *SpamCommand) GetName() string {
	return "spam"
}

// GetDescription returns the command description.
func (c *SpamCommand) GetDescription() string {
	return "Adds the SPAM label to a message"
}

func (c *SpamCommand) SuccessMessage() string {
	return "Email marked as spam"
}

// UnspamCommand removes the SPAM label.
type UnspamCommand struct {
	logger *slog.Logger
}

// NewUnspamCommand creates a new UnspamCommand.
func NewUnspamCommand(logger *slog.Logger) LabelCommand {
	return &UnspamCommand{logger: logger}
}

// Execute takes the message out of spam.
func (c *UnspamCommand) Execute(ctx context.Context, client provider.Client, id message.ID) (message.MetadataFields, error) {
	c.logger.InfoContext(ctx, "Executing unspam command", slog.String("id", string(id)))
	if err := client.ModifyLabels(ctx, id, nil, []message.Label{message.LabelSpam}); err != nil {
		return message.MetadataFields{}, err
	}
	return message.MetadataFields{Spam: message.Bool(false)}, nil
}

// GetName returns the command name.
func (c *UnspamCommand) GetName() string {
	return "unspam"
}

// GetDescription returns the command description.
func (c *UnspamCommand) GetDescription() string {
	return "Removes the SPAM label from a message"
}

func (c *UnspamCommand) SuccessMessage() string {
	return "Email unmarked as spam"
}

// CommandExecutor runs label commands and mirrors their outcome.
type CommandExecutor struct {
	logger *slog.Logger
	mirror repositories.MetadataRepository
}

// NewCommandExecutor creates a new CommandExecutor.
func NewCommandExecutor(logger *slog.Logger, mirror repositories.MetadataRepository) *CommandExecutor {
	return &CommandExecutor{logger: logger, mirror: mirror}
}

// ExecuteCommand applies cmd to the message and then upserts the mirror. A
// mirror failure is returned as a MirrorWrite error; the label change
// already made at the provider stands.
func (e *CommandExecutor) ExecuteCommand(ctx context.Context, cmd LabelCommand, client provider.Client, id message.ID) error {
	if id == "" {
		return apperr.Validation("Invalid message id")
	}

	e.logger.InfoContext(ctx, "Starting command execution",
		slog.String("command", cmd.GetName()),
		slog.String("description", cmd.GetDescription()),
		slog.String("id", string(id)))

	fields, err := cmd.Execute(ctx, client, id)
	if err != nil {
		e.logger.ErrorContext(ctx, "Command execution failed",
			slog.String("command", cmd.GetName()),
			slog.String("error", err.Error()))
		return apperr.Provider(cmd.GetName(), err)
	}

	if err := e.mirror.Upsert(ctx, id, fields); err != nil {
		e.logger.ErrorContext(ctx, "Mirror sync failed after label change",
			slog.String("command", cmd.GetName()),
			slog.String("id", string(id)),
			slog.String("error", err.Error()))
		return apperr.MirrorWrite(cmd.GetName(), err)
	}

	e.logger.InfoContext(ctx, "Command execution completed successfully",
		slog.String("command", cmd.GetName()))
	return nil
}
