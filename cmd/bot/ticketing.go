package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jacobbrewer1/meiple/cmd/bot/config"
	"github.com/Jacobbrewer1/meiple/pkg/dataaccess"
	"github.com/Jacobbrewer1/meiple/pkg/logging"
	"github.com/Jacobbrewer1/meiple/pkg/messages"
	"github.com/bwmarrin/discordgo"
)

const (
	// TicketCmdName is the command for opening a ticket.
	TicketCmdName = "ticket"

	// CloseCmdName is the prefix command for closing the ticket channel that
	// the command was executed in.
	CloseCmdName = "close"

	// DeleteCmdName is the prefix command for force-deleting a ticket channel.
	DeleteCmdName = "delete"

	// ticketReasonOption is the reason option of the ticket command.
	ticketReasonOption = "reason"

	// TicketNameSuffix marks a channel as a ticket channel.
	TicketNameSuffix = "-ticket"
)

// ticketTimezone is the timezone used for the date embedded in ticket channel
// names.
var ticketTimezone = time.FixedZone("UTC+8", 8*60*60)

// ticketCmd is the command for opening tickets.
var ticketCmd = &discordgo.ApplicationCommand{
	Name:        TicketCmdName,
	Type:        discordgo.ChatApplicationCommand,
	Description: "Create a ticket channel.",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Name:        ticketReasonOption,
			Type:        discordgo.ApplicationCommandOptionString,
			Description: "Why are you opening this ticket?",
			Required:    true,
		},
	},
}

// ticketChannelName builds the deterministic ticket channel name for a user:
// {user}-{MM-DD}-ticket, truncated to the platform's 100 character limit.
func ticketChannelName(username string, now time.Time) string {
	name := fmt.Sprintf("%s-%s%s", username, now.In(ticketTimezone).Format("01-02"), TicketNameSuffix)
	if len(name) > 100 {
		name = name[len(name)-100:]
	}
	return name
}

// isTicketChannel reports whether a channel name carries the ticket marker.
func isTicketChannel(channelName string) bool {
	return len(channelName) > len(TicketNameSuffix) &&
		channelName[len(channelName)-len(TicketNameSuffix):] == TicketNameSuffix
}

// isUnknownChannel reports whether an error is the platform saying that a
// channel no longer exists.
func isUnknownChannel(err error) bool {
	restErr := new(discordgo.RESTError)
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message == nil {
		// A 404 without a parsed body counts; the reference is dead either way.
		return restErr.Response != nil && restErr.Response.StatusCode == 404
	}
	return restErr.Message.Code == discordgo.ErrCodeUnknownChannel
}

// createTicketProcessor opens a ticket for the invoking user. Anyone may open
// a ticket for themselves; the store enforces at most one open ticket per user.
func createTicketProcessor(a IApp, i *discordgo.InteractionCreate) error {
	user := interactionUser(i)
	if i.GuildID == "" {
		return respondSlashEphemeral(a, i, "Tickets can only be opened in a server.")
	}

	// Look up the mod-mail configuration; without an intake channel the ticket
	// system is disabled.
	cfg := a.Settings().ModMailConfig()
	if !cfg.Configured() {
		return respondSlashEphemeral(a, i, messages.ErrModMailNotConfigured)
	}

	// Resolve the intake channel; new ticket channels go under its category. A
	// dead reference is a configuration error, not a crash.
	intake, err := a.Session().Channel(cfg.ChannelID)
	if err != nil {
		if isUnknownChannel(err) {
			return respondSlashEphemeral(a, i, messages.ErrModMailNotConfigured)
		}
		return fmt.Errorf("error resolving mod mail channel: %w", err)
	}

	// Drop a stale record whose channel was deleted out-of-band, so the user
	// can open a fresh ticket.
	if record, ok := a.Settings().Ticket(user.ID); ok {
		if _, err := a.Session().Channel(record.ChannelID); err != nil && isUnknownChannel(err) {
			a.Log().Warn("Dropping ticket record with a deleted channel",
				slog.String("user", user.ID),
				slog.String("channel", record.ChannelID),
			)
			if _, err := a.Settings().CloseTicket(user.ID); err != nil {
				return fmt.Errorf("error dropping stale ticket: %w", err)
			}
		}
	}

	// Reserve the open. This makes the duplicate check and the record insert
	// one critical section per user while the channel creation below runs
	// outside the store lock.
	if err := a.Settings().BeginOpen(user.ID); err != nil {
		alreadyOpen := new(dataaccess.AlreadyOpenError)
		if errors.As(err, &alreadyOpen) {
			if alreadyOpen.Record != nil {
				return respondSlashEphemeral(a, i, fmt.Sprintf("You already have an open ticket: %s", alreadyOpen.Record.ChannelName))
			}
			return respondSlashEphemeral(a, i, "Your ticket is already being created, hang on.")
		}
		return fmt.Errorf("error reserving ticket: %w", err)
	}

	// Scope the channel to the requester, the handler role if one is set, and
	// nobody else.
	overwrites := []*discordgo.PermissionOverwrite{
		{
			ID:   i.GuildID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages,
		},
		{
			ID:    user.ID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory,
		},
	}
	if cfg.RoleID != "" {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    cfg.RoleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory,
		})
	}

	// Create the ticket channel. If this fails the reservation is released and
	// no record exists; there is never an orphan store entry.
	channel, err := a.Session().GuildChannelCreateComplex(i.GuildID, discordgo.GuildChannelCreateData{
		Name:                 ticketChannelName(user.Username, time.Now()),
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                fmt.Sprintf("Ticket created by %s", user.Username),
		ParentID:             intake.ParentID,
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		a.Settings().AbortOpen(user.ID)
		return fmt.Errorf("error creating ticket channel: %w", err)
	}

	// Only now does the record exist; the mutation is flushed before the user
	// hears about success.
	if err := a.Settings().OpenTicket(user.ID, channel.ID, channel.Name); err != nil {
		// The store refused the insert; remove the channel again rather than
		// leaving one that nothing tracks.
		if _, delErr := a.Session().ChannelDelete(channel.ID); delErr != nil {
			a.Log().Error("Error deleting untracked ticket channel", slog.String(logging.KeyError, delErr.Error()))
		}

		alreadyOpen := new(dataaccess.AlreadyOpenError)
		if errors.As(err, &alreadyOpen) && alreadyOpen.Record != nil {
			return respondSlashEphemeral(a, i, fmt.Sprintf("You already have an open ticket: %s", alreadyOpen.Record.ChannelName))
		}
		return fmt.Errorf("error saving ticket: %w", err)
	}

	// Courtesy messages. The ticket stays valid even if these fail.
	reason := ""
	if opt, ok := optionMap(i)[ticketReasonOption]; ok {
		reason = opt.StringValue()
	}

	welcome := fmt.Sprintf(
		"Welcome to your ticket channel, <@%s>\nPlease wait for staff to assist you. If you no longer need help, use %s%s.\nReason for ticket: %s",
		user.ID, config.CommandPrefix, CloseCmdName, reason,
	)
	if _, err := a.Session().ChannelMessageSend(channel.ID, welcome); err != nil {
		a.Log().Error("Error sending ticket welcome message", slog.String(logging.KeyError, err.Error()))
	}

	if err := sendUserDM(a, user.ID, "Thanks for using the ticket system! Abusing this system will lead to a ban."); err != nil {
		a.Log().Error("Error sending ticket DM", slog.String(logging.KeyError, err.Error()))
	}

	return respondSlashEphemeral(a, i, fmt.Sprintf("Ticket channel created: %s", channel.Name))
}

// closeTicketProcessor closes the ticket channel that the command was executed
// in. When the invoker owns the tracked record the record is removed and the
// channel kept for staff history; when nobody tracks the channel it is deleted
// outright, which is how staff tear down stale ticket channels.
func closeTicketProcessor(a IApp, m *discordgo.MessageCreate, _ []string) error {
	channel, err := a.Session().Channel(m.ChannelID)
	if err != nil {
		return fmt.Errorf("error getting channel: %w", err)
	}

	// Only meaningful inside ticket channels.
	if !isTicketChannel(channel.Name) {
		return nil
	}

	// Reset the invoker's permission override back to the channel default.
	if err := a.Session().ChannelPermissionDelete(channel.ID, m.Author.ID); err != nil {
		a.Log().Warn("Error resetting channel permissions", slog.String(logging.KeyError, err.Error()))
	}

	record, err := a.Settings().CloseTicket(m.Author.ID)
	if err != nil {
		return fmt.Errorf("error closing ticket: %w", err)
	}

	announcement := fmt.Sprintf("Ticket channel closed by <@%s>. Staff will no longer receive messages in this channel.", m.Author.ID)
	if _, err := a.Session().ChannelMessageSend(channel.ID, announcement); err != nil {
		a.Log().Error("Error announcing ticket closure", slog.String(logging.KeyError, err.Error()))
	}

	if record != nil {
		// The closing user owned the ticket; tell them directly, referencing
		// the cached channel name. The channel is kept.
		notice := fmt.Sprintf("Your ticket (%s) has been closed.\nIf you need assistance again, use /%s.", record.ChannelName, TicketCmdName)
		if err := sendUserDM(a, m.Author.ID, notice); err != nil {
			a.Log().Error("Error sending close DM", slog.String(logging.KeyError, err.Error()))
		}
		return nil
	}

	// Nobody tracks this channel; delete it outright.
	if _, err := a.Session().ChannelDelete(channel.ID); err != nil {
		return fmt.Errorf("error deleting ticket channel: %w", err)
	}
	return nil
}

// deleteTicketProcessor force-deletes the current channel if it is a ticket
// channel. Admin only.
func deleteTicketProcessor(a IApp, m *discordgo.MessageCreate, _ []string) error {
	allowed, err := messageHasCapability(a, m.Message, CapabilityAdministrator)
	if err != nil {
		return err
	}
	if !allowed {
		_, err := a.Session().ChannelMessageSend(m.ChannelID, messages.ErrUserNotPermitted)
		return err
	}

	channel, err := a.Session().Channel(m.ChannelID)
	if err != nil {
		return fmt.Errorf("error getting channel: %w", err)
	}
	if !isTicketChannel(channel.Name) {
		return nil
	}

	if _, err := a.Session().ChannelDelete(channel.ID); err != nil {
		return fmt.Errorf("error deleting ticket channel: %w", err)
	}
	return nil
}
