package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Jacobbrewer1/meiple/cmd/bot/config"
	"github.com/Jacobbrewer1/meiple/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/meiple/pkg/logging"
	"github.com/Jacobbrewer1/meiple/pkg/messages"
	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"
)

const (
	// SendDmCmdName is the owner command for relaying a message to a user.
	SendDmCmdName = "send_dm"

	// sendDmUserOption is the target user ID option.
	sendDmUserOption = "user_id"

	// sendDmMessageOption is the message option.
	sendDmMessageOption = "message"
)

// sendDmCmd is the owner command for relaying a message to an arbitrary user.
var sendDmCmd = &discordgo.ApplicationCommand{
	Name:        SendDmCmdName,
	Type:        discordgo.ChatApplicationCommand,
	Description: "Send a DM to a user.",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Name:        sendDmUserOption,
			Type:        discordgo.ApplicationCommandOptionString,
			Description: "The ID of the user to message.",
			Required:    true,
		},
		{
			Name:        sendDmMessageOption,
			Type:        discordgo.ApplicationCommandOptionString,
			Description: "The message to send.",
			Required:    true,
		},
	},
}

// relayLimiter throttles forwarded DMs so a flood at the bot cannot flood the
// owner.
var relayLimiter = rate.NewLimiter(rate.Limit(1), 5)

func sendDmProcessor(a IApp, i *discordgo.InteractionCreate) error {
	if !isBotOwner(interactionUser(i).ID) {
		return respondSlashEphemeral(a, i, messages.ErrUserNotPermitted)
	}

	opts := optionMap(i)
	userID := opts[sendDmUserOption].StringValue()
	message := opts[sendDmMessageOption].StringValue()

	target, err := a.Session().User(userID)
	if err != nil {
		if isUnknownUser(err) {
			return respondSlashEphemeral(a, i, "User not found.")
		}
		return fmt.Errorf("error fetching user: %w", err)
	}

	if err := sendUserDM(a, target.ID, message); err != nil {
		return fmt.Errorf("error sending DM: %w", err)
	}
	return respondSlashEphemeral(a, i, fmt.Sprintf("Message sent to %s: %s", target.String(), message))
}

// relayDirectMessage forwards a direct message received by the bot to the
// configured owner. Messages from the owner themselves are not relayed.
func relayDirectMessage(a IApp, m *discordgo.MessageCreate) {
	if isBotOwner(m.Author.ID) {
		return
	}

	if !relayLimiter.Allow() {
		monitoring.RelayedDirectMessages.WithLabelValues("throttled").Inc()
		a.Log().Warn("Dropping relayed DM, rate limit exceeded", slog.String("from", m.Author.ID))
		return
	}

	content := fmt.Sprintf("Received DM from %s (ID: %s)\nContent: %s", m.Author.String(), m.Author.ID, m.Content)
	if len(m.Attachments) > 0 {
		urls := make([]string, 0, len(m.Attachments))
		for _, attachment := range m.Attachments {
			urls = append(urls, attachment.URL)
		}
		content += "\nAttachments:\n" + strings.Join(urls, "\n")
	}

	if err := sendUserDM(a, config.OwnerId, content); err != nil {
		monitoring.RelayedDirectMessages.WithLabelValues("error").Inc()
		a.Log().Error("Error relaying DM to owner", slog.String(logging.KeyError, err.Error()))
		return
	}
	monitoring.RelayedDirectMessages.WithLabelValues("relayed").Inc()
}
