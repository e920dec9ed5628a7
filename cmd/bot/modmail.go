package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Jacobbrewer1/meiple/pkg/logging"
	"github.com/Jacobbrewer1/meiple/pkg/messages"
	"github.com/bwmarrin/discordgo"
)

const (
	// SetModMailCmdName is the command for configuring mod mail.
	SetModMailCmdName = "set_mod_mail"

	// ResetCmdName is the prefix command for clearing the mod-mail settings.
	ResetCmdName = "reset"

	// modMailChannelNameOption is the name of the intake channel to create.
	modMailChannelNameOption = "channel_name"

	// modMailCategoryOption is the category to create the intake channel in,
	// referenced by mention, ID or name.
	modMailCategoryOption = "category"

	// modMailRoleOption is the role that handles tickets, referenced by
	// mention or ID. Optional.
	modMailRoleOption = "role_handler"
)

// setModMailCmd is the command for configuring mod mail.
var setModMailCmd = &discordgo.ApplicationCommand{
	Name:        SetModMailCmdName,
	Type:        discordgo.ChatApplicationCommand,
	Description: "Set up the mod mail intake channel and handler role.",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Name:        modMailChannelNameOption,
			Type:        discordgo.ApplicationCommandOptionString,
			Description: "Name for the mod mail intake channel.",
			Required:    true,
		},
		{
			Name:        modMailCategoryOption,
			Type:        discordgo.ApplicationCommandOptionString,
			Description: "Category to create the intake channel in (mention, ID or name).",
			Required:    true,
		},
		{
			Name:        modMailRoleOption,
			Type:        discordgo.ApplicationCommandOptionString,
			Description: "Role that handles tickets (mention or ID).",
		},
	},
}

// resolveCategory resolves a category reference (mention, raw ID or name)
// against the guild's category channels. The second return value lists the
// available category names for the error message when nothing matched.
func resolveCategory(channels []*discordgo.Channel, ref string) (*discordgo.Channel, []string) {
	id := parseChannelRef(ref)

	available := make([]string, 0, len(channels))
	var match *discordgo.Channel
	for _, ch := range channels {
		if ch.Type != discordgo.ChannelTypeGuildCategory {
			continue
		}
		available = append(available, ch.Name)
		if ch.ID == id || strings.EqualFold(ch.Name, ref) {
			match = ch
		}
	}
	return match, available
}

// setModMailProcessor creates the intake channel inside the requested category
// and records it, together with the optional handler role, as the mod-mail
// configuration. Admin only.
func setModMailProcessor(a IApp, i *discordgo.InteractionCreate) error {
	// Ensure the user is an administrator.
	if !hasCapability(i.Member, CapabilityAdministrator) {
		return respondSlashEphemeral(a, i, messages.ErrUserNotPermitted)
	}

	opts := optionMap(i)
	channelName := opts[modMailChannelNameOption].StringValue()
	categoryRef := opts[modMailCategoryOption].StringValue()

	roleID := ""
	if opt, ok := opts[modMailRoleOption]; ok {
		roleID = parseRoleRef(opt.StringValue())
	}

	channels, err := a.Session().GuildChannels(i.GuildID)
	if err != nil {
		return fmt.Errorf("error getting guild channels: %w", err)
	}

	category, available := resolveCategory(channels, categoryRef)
	if category == nil {
		return respondSlashEphemeral(a, i, fmt.Sprintf(
			"Category %s not found. Available categories: %s",
			categoryRef, strings.Join(available, ", "),
		))
	}

	// Create the intake channel, readable but not writable by everyone.
	channel, err := a.Session().GuildChannelCreateComplex(i.GuildID, discordgo.GuildChannelCreateData{
		Name:     channelName,
		Type:     discordgo.ChannelTypeGuildText,
		ParentID: category.ID,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{
				ID:    i.GuildID,
				Type:  discordgo.PermissionOverwriteTypeRole,
				Allow: discordgo.PermissionViewChannel | discordgo.PermissionReadMessageHistory,
				Deny:  discordgo.PermissionSendMessages,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("error creating mod mail channel: %w", err)
	}

	// Persist the configuration before reporting success. Existing ticket
	// records are untouched.
	if err := a.Settings().SetModMailConfig(channel.ID, roleID); err != nil {
		return fmt.Errorf("error saving mod mail config: %w", err)
	}

	if _, err := a.Session().ChannelMessageSend(channel.ID, fmt.Sprintf("Welcome to the %s channel, use /%s", channel.Name, TicketCmdName)); err != nil {
		a.Log().Error("Error sending mod mail welcome message", slog.String(logging.KeyError, err.Error()))
	}

	return respondSlash(a, i, fmt.Sprintf(
		"Mod mail category set to %s\nMod mail channel created: %s",
		category.Name, channel.Name,
	))
}

// resetProcessor clears the entire mod-mail settings store. No channels are
// deleted; this only clears bookkeeping. Admin only.
func resetProcessor(a IApp, m *discordgo.MessageCreate, _ []string) error {
	allowed, err := messageHasCapability(a, m.Message, CapabilityAdministrator)
	if err != nil {
		return err
	}
	if !allowed {
		_, err := a.Session().ChannelMessageSend(m.ChannelID, messages.ErrUserNotPermitted)
		return err
	}

	if err := a.Settings().Reset(); err != nil {
		return fmt.Errorf("error resetting settings: %w", err)
	}

	_, err = a.Session().ChannelMessageSend(m.ChannelID, "Mod mail settings have been reset.")
	return err
}
