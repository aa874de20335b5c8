// Package dispatch routes chat-platform interactions and gateway events to
// the services and turns their outcomes into user-facing replies.
package dispatch

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/threaddesk/threaddesk/internal/domain"
	"github.com/threaddesk/threaddesk/internal/observability"
	"github.com/threaddesk/threaddesk/internal/platform"
	"github.com/threaddesk/threaddesk/internal/service"
	apperrors "github.com/threaddesk/threaddesk/pkg/util"
)

// Slash command names.
const (
	CommandRename     = "rename"
	CommandClose      = "close"
	CommandLink       = "link"
	CommandAskTitle   = "ask_title"
	CommandTrace      = "trace"
	CommandTraceVocal = "trace_vocal"
	CommandTraceClose = "trace_close"
)

// ChannelKind distinguishes the channel types commands care about.
type ChannelKind int

const (
	ChannelKindText ChannelKind = iota
	ChannelKindThread
	ChannelKindOther
)

// Interaction carries the shared context of any user interaction.
type Interaction struct {
	ID          string
	GuildID     int64
	ChannelID   int64
	ChannelKind ChannelKind
	User        domain.Principal
}

// SlashCommand is an invoked slash command with its string options.
type SlashCommand struct {
	Interaction
	Name    string
	Options map[string]string
}

// ButtonClick is a component interaction.
type ButtonClick struct {
	Interaction
	ButtonID string
}

// ModalSubmit is a submitted modal with its field values.
type ModalSubmit struct {
	Interaction
	ModalID string
	Values  map[string]string
}

// AutocompleteQuery asks for option suggestions.
type AutocompleteQuery struct {
	Interaction
	Command string
	Option  string
	Query   string
}

// Router is the single entry point the gateway binding calls into.
type Router struct {
	tickets       *service.TicketService
	traces        *service.TraceService
	forums        *service.ForumService
	metrics       *observability.Metrics
	logger        *zap.Logger
	traceCategory string
}

// NewRouter constructs the router. traceCategory names the category family
// trace channels are provisioned under.
func NewRouter(tickets *service.TicketService, traces *service.TraceService, forums *service.ForumService, metrics *observability.Metrics, logger *zap.Logger, traceCategory string) *Router {
	return &Router{
		tickets:       tickets,
		traces:        traces,
		forums:        forums,
		metrics:       metrics,
		logger:        logger,
		traceCategory: traceCategory,
	}
}

// Commands returns the slash-command set to register with the platform.
func (r *Router) Commands() []platform.Command {
	return []platform.Command{
		{Name: CommandRename, Description: "Rename the current ticket", Options: []platform.CommandOption{
			{Name: "title", Description: "New ticket title", Required: true},
		}},
		{Name: CommandClose, Description: "Close the current ticket", Options: []platform.CommandOption{
			{Name: "type", Description: "RESOLVE, DELETE, DUPLICATE or FORCE_CLOSE", Required: true},
			{Name: "reason", Description: "Optional reason shown to the owner"},
		}},
		{Name: CommandLink, Description: "Get the link to a ticket", Options: []platform.CommandOption{
			{Name: "ticket", Description: "Ticket number", Required: true},
		}},
		{Name: CommandAskTitle, Description: "Ask the owner to retitle the ticket"},
		{Name: CommandTrace, Description: "Open a trace ticket", Options: []platform.CommandOption{
			{Name: "tag", Description: "Trace tag", Required: true, Autocomplete: true},
		}},
		{Name: CommandTraceVocal, Description: "Add a voice channel to this trace ticket"},
		{Name: CommandTraceClose, Description: "Close this trace ticket"},
	}
}

// HandleCommand executes a slash command and returns the ephemeral reply.
func (r *Router) HandleCommand(ctx context.Context, cmd SlashCommand) string {
	reply, err := r.runCommand(ctx, cmd)
	r.metrics.RecordOperation("command:"+cmd.Name, err == nil)
	if err != nil {
		return r.replyForError(cmd.Name, err)
	}
	return reply
}

func (r *Router) runCommand(ctx context.Context, cmd SlashCommand) (string, error) {
	switch cmd.Name {
	case CommandRename:
		if cmd.ChannelKind != ChannelKindThread {
			return "This command only works inside a ticket thread.", nil
		}
		ticket, err := r.tickets.RenameTicket(ctx, cmd.ChannelID, cmd.User, cmd.Options["title"])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Ticket renamed to **%s**.", ticket.Name), nil

	case CommandClose:
		if cmd.ChannelKind != ChannelKindThread {
			return "This command only works inside a ticket thread.", nil
		}
		closeType, err := domain.ParseCloseType(strings.ToUpper(strings.TrimSpace(cmd.Options["type"])))
		if err != nil {
			return "Unknown close type. Use RESOLVE, DELETE, DUPLICATE or FORCE_CLOSE.", nil
		}
		if err := r.tickets.CloseTicket(ctx, cmd.ChannelID, cmd.User, closeType, cmd.Options["reason"]); err != nil {
			return "", err
		}
		return "Ticket closed.", nil

	case CommandLink:
		ticketID, err := strconv.ParseInt(strings.TrimSpace(cmd.Options["ticket"]), 10, 64)
		if err != nil {
			return "Please give a ticket number.", nil
		}
		url, err := r.tickets.LinkTicket(ctx, ticketID)
		if err != nil {
			return "", err
		}
		return url, nil

	case CommandAskTitle:
		if cmd.ChannelKind != ChannelKindThread {
			return "This command only works inside a ticket thread.", nil
		}
		if err := r.tickets.AskForTitle(ctx, cmd.ChannelID, cmd.User); err != nil {
			return "", err
		}
		return "The owner has been asked to retitle the ticket.", nil

	case CommandTrace:
		if err := r.traces.BeginTraceTicket(ctx, cmd.ID, cmd.GuildID, cmd.User, cmd.Options["tag"]); err != nil {
			return "", err
		}
		// The modal is the visible response.
		return "", nil

	case CommandTraceVocal:
		if cmd.ChannelKind != ChannelKindText {
			return "This command only works inside a trace channel.", nil
		}
		ticket, err := r.traces.AssociateVocal(ctx, cmd.ChannelID, cmd.User)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Voice channel %s created.", platform.ChannelMention(*ticket.VocalChannelID)), nil

	case CommandTraceClose:
		if cmd.ChannelKind != ChannelKindText {
			return "This command only works inside a trace channel.", nil
		}
		if err := r.traces.CloseTraceTicket(ctx, cmd.ChannelID, cmd.User); err != nil {
			return "", err
		}
		return "Trace ticket closed; the channel will be archived and removed.", nil
	}
	return "Unknown command.", nil
}

// HandleButton executes a component interaction and returns the reply.
func (r *Router) HandleButton(ctx context.Context, click ButtonClick) string {
	if ticketID, ok := extractID(click.ButtonID, service.ButtonReopenTicket); ok {
		ticket, err := r.tickets.ReopenTicket(ctx, ticketID, click.User)
		r.metrics.RecordOperation("button:reopen", err == nil)
		if err != nil {
			return r.replyForError("reopen", err)
		}
		return fmt.Sprintf("Ticket **%s** reopened: %s",
			ticket.Name, platform.JumpURL(ticket.GuildID, ticket.ThreadID))
	}
	r.logger.Warn("unknown button", zap.String("id", click.ButtonID))
	return "This button is no longer supported."
}

// HandleModal executes a modal submission and returns the reply.
func (r *Router) HandleModal(ctx context.Context, submit ModalSubmit) string {
	if configID, ok := extractUUID(submit.ModalID, service.ModalNewTraceTicket); ok {
		login := strings.TrimSpace(submit.Values[service.FieldTraceLogin])
		if login == "" {
			return "A login is required."
		}
		ticket, err := r.traces.CreateFromModal(ctx, submit.GuildID, submit.User, configID,
			r.traceCategory, login, strings.TrimSpace(submit.Values[service.FieldTraceQuestion]))
		r.metrics.RecordOperation("modal:trace", err == nil)
		if err != nil {
			return r.replyForError("trace", err)
		}
		return fmt.Sprintf("Your trace ticket is ready: %s", platform.ChannelMention(ticket.ChannelID))
	}
	r.logger.Warn("unknown modal", zap.String("id", submit.ModalID))
	return "This form is no longer supported."
}

// HandleAutocomplete returns option suggestions.
func (r *Router) HandleAutocomplete(ctx context.Context, query AutocompleteQuery) []string {
	if query.Command == CommandTrace && query.Option == "tag" {
		tags, err := r.forums.ListActiveTags(ctx, query.GuildID, query.User, query.Query, timeNow())
		if err != nil {
			r.logger.Warn("tag autocomplete failed", zap.Error(err))
			return nil
		}
		return tags
	}
	return nil
}

// ThreadCreated reacts to a new thread under a forum channel.
func (r *Router) ThreadCreated(ctx context.Context, thread service.ThreadInfo) {
	err := r.tickets.CreateTicket(ctx, thread)
	r.metrics.RecordOperation("event:thread_created", err == nil)
	if err != nil {
		r.logger.Error("thread created handling failed", zap.Int64("thread", thread.ThreadID), zap.Error(err))
	}
}

// MessageCreated reacts to a message inside a thread.
func (r *Router) MessageCreated(ctx context.Context, threadID int64, author domain.Principal) {
	err := r.tickets.RegisterParticipation(ctx, threadID, author)
	r.metrics.RecordOperation("event:message_created", err == nil)
	if err != nil {
		r.logger.Error("participation handling failed", zap.Int64("thread", threadID), zap.Error(err))
	}
}

// ThreadDeleted reacts to a thread being removed.
func (r *Router) ThreadDeleted(ctx context.Context, threadID int64) {
	err := r.tickets.HandleThreadDeleted(ctx, threadID)
	r.metrics.RecordOperation("event:thread_deleted", err == nil)
	if err != nil {
		r.logger.Error("thread deleted handling failed", zap.Int64("thread", threadID), zap.Error(err))
	}
}

// ThreadNameChanged reacts to a thread rename.
func (r *Router) ThreadNameChanged(ctx context.Context, threadID int64, newName string) {
	err := r.tickets.HandleNameChanged(ctx, threadID, newName)
	r.metrics.RecordOperation("event:thread_renamed", err == nil)
	if err != nil {
		r.logger.Error("thread rename handling failed", zap.Int64("thread", threadID), zap.Error(err))
	}
}

// ThreadTagsChanged reacts to the thread's applied tags changing.
func (r *Router) ThreadTagsChanged(ctx context.Context, threadID int64, appliedTags, addedTags []string) {
	err := r.tickets.HandleTagsChanged(ctx, threadID, appliedTags, addedTags)
	r.metrics.RecordOperation("event:tags_changed", err == nil)
	if err != nil {
		r.logger.Error("tag change handling failed", zap.Int64("thread", threadID), zap.Error(err))
	}
}

// ThreadArchivedOrLocked reacts to a thread being archived or locked.
func (r *Router) ThreadArchivedOrLocked(ctx context.Context, threadID int64, actor domain.Principal, archived, locked bool) {
	err := r.tickets.HandleArchivedOrLocked(ctx, threadID, actor, archived, locked)
	r.metrics.RecordOperation("event:archived_locked", err == nil)
	if err != nil {
		r.logger.Error("archive handling failed", zap.Int64("thread", threadID), zap.Error(err))
	}
}

// replyForError maps expected domain errors to their message and everything
// else to a correlated generic reply.
func (r *Router) replyForError(operation string, err error) string {
	if apperrors.IsNotFound(err) || apperrors.IsNotAuthorized(err) || apperrors.IsInvalidState(err) {
		return apperrors.ToDomainError(err).Message
	}
	ref := uuid.NewString()
	r.logger.Error("operation failed",
		zap.String("operation", operation), zap.String("ref", ref), zap.Error(err))
	return fmt.Sprintf("Something went wrong (ref: %s).", ref)
}

// Swapped in tests.
var timeNow = time.Now

func extractID(raw, prefix string) (int64, bool) {
	rest, ok := strings.CutPrefix(raw, prefix+"-")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func extractUUID(raw, prefix string) (uuid.UUID, bool) {
	rest, ok := strings.CutPrefix(raw, prefix+"-")
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(rest)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
