package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/threaddesk/threaddesk/internal/domain"
	"github.com/threaddesk/threaddesk/internal/platform"
)

// Embed accent colors.
const (
	colorGreen  = 0x2ECC71
	colorOrange = 0xE67E22
	colorRed    = 0xE74C3C
	colorBlue   = 0x3498DB
)

func statusColor(status domain.TicketStatus) int {
	switch status {
	case domain.TicketStatusOpen:
		return colorGreen
	case domain.TicketStatusInProgress:
		return colorOrange
	default:
		return colorRed
	}
}

func statusLabel(status domain.TicketStatus) string {
	switch status {
	case domain.TicketStatusOpen:
		return "🟢 Open"
	case domain.TicketStatusInProgress:
		return "🟠 In progress"
	case domain.TicketStatusClosed:
		return "🔴 Closed"
	default:
		return "🔴 Deleted"
	}
}

// closeTicketEmbed is posted in the thread when a ticket is closed in place.
// The resolving manager's custom message, when present, becomes the title.
func closeTicketEmbed(closeType domain.CloseType, manager *domain.Manager, reason string) *platform.Embed {
	title := "This ticket has been closed."
	if manager != nil && manager.CustomMessage != "" {
		title = manager.CustomMessage
	}
	if closeType == domain.CloseDuplicate {
		title = "This ticket has been closed as a duplicate."
	}
	embed := &platform.Embed{
		Title: title,
		Color: colorRed,
	}
	if reason != "" {
		embed.Fields = append(embed.Fields, platform.EmbedField{Name: "Reason", Value: reason})
	}
	return embed
}

// privateCloseEmbed is sent to the ticket owner by direct message.
func privateCloseEmbed(ticket *domain.Ticket, closeType domain.CloseType, reason string) *platform.Embed {
	embed := &platform.Embed{
		Title:       "Your ticket has been closed",
		Description: ticket.Name,
		Color:       colorRed,
	}
	if reason != "" {
		embed.Fields = append(embed.Fields, platform.EmbedField{Name: "Reason", Value: reason})
	}
	if closeType == domain.CloseResolve && ticket.ClosedAt != nil {
		deadline := ticket.ClosedAt.Add(domain.ReopenWindow)
		embed.Fields = append(embed.Fields, platform.EmbedField{
			Name:  "Reopen until",
			Value: deadline.UTC().Format(time.RFC1123),
		})
	}
	return embed
}

// invalidTitleEmbed asks the owner to retitle the thread.
func invalidTitleEmbed(currentName string) *platform.Embed {
	return &platform.Embed{
		Title:       "Invalid title!",
		Description: "Please rename this thread with a short summary of your issue so it can be handled faster.",
		Color:       colorOrange,
		Fields: []platform.EmbedField{
			{Name: "Current title", Value: currentName},
		},
	}
}

// ticketSummaryEmbed renders the webhook-channel status card for a ticket.
func ticketSummaryEmbed(ticket domain.Ticket) *platform.Embed {
	embed := &platform.Embed{
		Title:     ticket.Name,
		Color:     statusColor(ticket.Status),
		Timestamp: ticket.UpdatedAt,
		Fields: []platform.EmbedField{
			{Name: "Status", Value: statusLabel(ticket.Status), Inline: true},
			{Name: "Opened by", Value: platform.Mention(ticket.CreatedBy), Inline: true},
		},
	}
	if len(ticket.Participants) > 0 {
		mentions := make([]string, 0, len(ticket.Participants))
		for _, p := range ticket.Participants {
			mentions = append(mentions, platform.Mention(p.UserID))
		}
		embed.Fields = append(embed.Fields, platform.EmbedField{
			Name: "Handled by", Value: strings.Join(mentions, " "), Inline: true,
		})
	}
	if len(ticket.Tags) > 0 {
		embed.Fields = append(embed.Fields, platform.EmbedField{
			Name: "Tags", Value: strings.Join(ticket.Tags, ", "),
		})
	}
	if ticket.ReopenedTimes > 0 {
		embed.Fields = append(embed.Fields, platform.EmbedField{
			Name: "Reopened", Value: fmt.Sprintf("%d time(s)", ticket.ReopenedTimes), Inline: true,
		})
	}
	return embed
}

// traceRulesEmbed opens every provisioned trace channel.
func traceRulesEmbed(tag, login string) *platform.Embed {
	return &platform.Embed{
		Title: "Trace ticket",
		Description: "This private channel has been created for your trace request. " +
			"Describe your problem with as much detail as possible; a manager will join you here.",
		Color: colorBlue,
		Fields: []platform.EmbedField{
			{Name: "Tag", Value: tag, Inline: true},
			{Name: "Login", Value: login, Inline: true},
		},
	}
}

// traceLogEmbed is the webhook-channel record of a new trace ticket.
func traceLogEmbed(ticket domain.TraceTicket, tag, login, question string) *platform.Embed {
	embed := &platform.Embed{
		Title:     fmt.Sprintf("Trace ticket %s", ticket.ChannelName),
		Color:     colorGreen,
		Timestamp: ticket.CreatedAt,
		Fields: []platform.EmbedField{
			{Name: "Tag", Value: tag, Inline: true},
			{Name: "Login", Value: login, Inline: true},
			{Name: "Opened by", Value: platform.Mention(ticket.CreatedBy), Inline: true},
		},
	}
	if question != "" {
		embed.Fields = append(embed.Fields, platform.EmbedField{Name: "Question", Value: question})
	}
	return embed
}
