package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Jacobbrewer1/meiple/pkg/messages"
	"github.com/bwmarrin/discordgo"
)

const (
	// BanCmdName is the command for banning a member.
	BanCmdName = "ban"

	// BanIdCmdName is the command for banning a user by ID.
	BanIdCmdName = "banid"

	// KickCmdName is the command for kicking a member.
	KickCmdName = "kick"

	// UnbanCmdName is the command for unbanning a user by ID.
	UnbanCmdName = "unban"

	// MemberCmdName is the command for getting member info.
	MemberCmdName = "member"

	// AvatarCmdName is the command for getting a member's avatar.
	AvatarCmdName = "avatar"

	// AnnounceCmdName is the command for announcing on a channel.
	AnnounceCmdName = "announce"

	// PurgeCmdName is the prefix command for bulk-deleting messages.
	PurgeCmdName = "purge"
)

const (
	memberOption  = "member"
	userIdOption  = "user_id"
	reasonOption  = "reason"
	channelOption = "channel_reference"
	messageOption = "message"
)

var (
	banCmd = &discordgo.ApplicationCommand{
		Name:        BanCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Ban a member.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        memberOption,
				Type:        discordgo.ApplicationCommandOptionUser,
				Description: "The member to ban.",
				Required:    true,
			},
			{
				Name:        reasonOption,
				Type:        discordgo.ApplicationCommandOptionString,
				Description: "The reason for the ban.",
			},
		},
	}

	banIdCmd = &discordgo.ApplicationCommand{
		Name:        BanIdCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Ban a user by ID.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        userIdOption,
				Type:        discordgo.ApplicationCommandOptionString,
				Description: "The ID of the user to ban.",
				Required:    true,
			},
			{
				Name:        reasonOption,
				Type:        discordgo.ApplicationCommandOptionString,
				Description: "The reason for the ban.",
			},
		},
	}

	kickCmd = &discordgo.ApplicationCommand{
		Name:        KickCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Kick a member.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        memberOption,
				Type:        discordgo.ApplicationCommandOptionUser,
				Description: "The member to kick.",
				Required:    true,
			},
			{
				Name:        reasonOption,
				Type:        discordgo.ApplicationCommandOptionString,
				Description: "The reason for the kick.",
			},
		},
	}

	unbanCmd = &discordgo.ApplicationCommand{
		Name:        UnbanCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Unban a user by ID.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        userIdOption,
				Type:        discordgo.ApplicationCommandOptionString,
				Description: "The ID of the user to unban.",
				Required:    true,
			},
			{
				Name:        reasonOption,
				Type:        discordgo.ApplicationCommandOptionString,
				Description: "The reason for the unban.",
			},
		},
	}

	memberCmd = &discordgo.ApplicationCommand{
		Name:        MemberCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Get member info.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        memberOption,
				Type:        discordgo.ApplicationCommandOptionUser,
				Description: "The member to look up.",
				Required:    true,
			},
		},
	}

	avatarCmd = &discordgo.ApplicationCommand{
		Name:        AvatarCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Get a member's avatar.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        memberOption,
				Type:        discordgo.ApplicationCommandOptionUser,
				Description: "The member to get the avatar of.",
				Required:    true,
			},
		},
	}

	announceCmd = &discordgo.ApplicationCommand{
		Name:        AnnounceCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Announce on a channel.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        channelOption,
				Type:        discordgo.ApplicationCommandOptionString,
				Description: "The channel to announce in (mention or name).",
				Required:    true,
			},
			{
				Name:        messageOption,
				Type:        discordgo.ApplicationCommandOptionString,
				Description: "The message to announce.",
				Required:    true,
			},
		},
	}
)

// isUnknownUser reports whether an error is the platform saying that a user
// does not exist.
func isUnknownUser(err error) bool {
	restErr := new(discordgo.RESTError)
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message == nil {
		return restErr.Response != nil && restErr.Response.StatusCode == 404
	}
	return restErr.Message.Code == discordgo.ErrCodeUnknownUser ||
		restErr.Message.Code == discordgo.ErrCodeUnknownBan ||
		restErr.Message.Code == discordgo.ErrCodeUnknownMember
}

// topRolePosition returns the highest role position the member holds.
func topRolePosition(roles []*discordgo.Role, member *discordgo.Member) int {
	top := 0
	for _, role := range roles {
		for _, id := range member.Roles {
			if role.ID == id && role.Position > top {
				top = role.Position
			}
		}
	}
	return top
}

// outranks reports whether the invoker sits above the target in the guild's
// role hierarchy.
func outranks(a IApp, guildID string, invoker *discordgo.Member, targetID string) (bool, error) {
	target, err := a.Session().GuildMember(guildID, targetID)
	if err != nil {
		return false, fmt.Errorf("error getting member: %w", err)
	}

	roles, err := a.Session().GuildRoles(guildID)
	if err != nil {
		return false, fmt.Errorf("error getting guild roles: %w", err)
	}

	return topRolePosition(roles, invoker) > topRolePosition(roles, target), nil
}

func optionalReason(i *discordgo.InteractionCreate) string {
	if opt, ok := optionMap(i)[reasonOption]; ok {
		return opt.StringValue()
	}
	return ""
}

func banProcessor(a IApp, i *discordgo.InteractionCreate) error {
	if !hasCapability(i.Member, CapabilityModerateMembers) {
		return respondSlashEphemeral(a, i, messages.ErrUserNotPermitted)
	}

	target := optionMap(i)[memberOption].UserValue(a.Session())

	ok, err := outranks(a, i.GuildID, i.Member, target.ID)
	if err != nil {
		return err
	}
	if !ok {
		return respondSlashEphemeral(a, i, "You do not have permission to ban this member.")
	}

	if err := a.Session().GuildBanCreateWithReason(i.GuildID, target.ID, optionalReason(i), 0); err != nil {
		return fmt.Errorf("error banning member: %w", err)
	}
	return respondSlash(a, i, fmt.Sprintf("%s has been banned.", target.String()))
}

func banIdProcessor(a IApp, i *discordgo.InteractionCreate) error {
	if !hasCapability(i.Member, CapabilityModerateMembers) {
		return respondSlashEphemeral(a, i, messages.ErrUserNotPermitted)
	}

	userID := optionMap(i)[userIdOption].StringValue()
	reason := optionalReason(i)

	target, err := a.Session().User(userID)
	if err != nil {
		if isUnknownUser(err) {
			return respondSlashEphemeral(a, i, fmt.Sprintf("User with ID %s not found.", userID))
		}
		return fmt.Errorf("error fetching user: %w", err)
	}

	if err := a.Session().GuildBanCreateWithReason(i.GuildID, target.ID, reason, 0); err != nil {
		return fmt.Errorf("error banning user: %w", err)
	}

	a.Log().Info("User banned by ID",
		slog.String("user", target.String()),
		slog.String("user_id", userID),
		slog.String("banned_by", interactionUser(i).ID),
		slog.String("reason", reason),
	)
	return respondSlash(a, i, fmt.Sprintf("%s (ID: %s) has been banned.", target.String(), userID))
}

func kickProcessor(a IApp, i *discordgo.InteractionCreate) error {
	if !hasCapability(i.Member, CapabilityModerateMembers) {
		return respondSlashEphemeral(a, i, messages.ErrUserNotPermitted)
	}

	target := optionMap(i)[memberOption].UserValue(a.Session())

	ok, err := outranks(a, i.GuildID, i.Member, target.ID)
	if err != nil {
		return err
	}
	if !ok {
		return respondSlashEphemeral(a, i, "You do not have permission to kick this member.")
	}

	if err := a.Session().GuildMemberDeleteWithReason(i.GuildID, target.ID, optionalReason(i)); err != nil {
		return fmt.Errorf("error kicking member: %w", err)
	}

	a.Log().Info("Member kicked",
		slog.String("user", target.String()),
		slog.String("kicked_by", interactionUser(i).ID),
	)
	return respondSlash(a, i, fmt.Sprintf("%s has been kicked.", target.String()))
}

func unbanProcessor(a IApp, i *discordgo.InteractionCreate) error {
	if !hasCapability(i.Member, CapabilityModerateMembers) {
		return respondSlashEphemeral(a, i, messages.ErrUserNotPermitted)
	}

	userID := optionMap(i)[userIdOption].StringValue()

	target, err := a.Session().User(userID)
	if err != nil {
		if isUnknownUser(err) {
			return respondSlashEphemeral(a, i, fmt.Sprintf("User with ID %s not found or not banned.", userID))
		}
		return fmt.Errorf("error fetching user: %w", err)
	}

	if err := a.Session().GuildBanDelete(i.GuildID, target.ID); err != nil {
		if isUnknownUser(err) {
			return respondSlashEphemeral(a, i, fmt.Sprintf("User with ID %s not found or not banned.", userID))
		}
		return fmt.Errorf("error unbanning user: %w", err)
	}
	return respondSlash(a, i, fmt.Sprintf("%s (ID: %s) has been unbanned.", target.String(), userID))
}

func memberInfoProcessor(a IApp, i *discordgo.InteractionCreate) error {
	if !hasCapability(i.Member, CapabilityModerateMembers) {
		return respondSlashEphemeral(a, i, messages.ErrUserNotPermitted)
	}

	target := optionMap(i)[memberOption].UserValue(a.Session())

	member, err := a.Session().GuildMember(i.GuildID, target.ID)
	if err != nil {
		return fmt.Errorf("error getting member: %w", err)
	}

	createdAt, err := discordgo.SnowflakeTimestamp(target.ID)
	if err != nil {
		return fmt.Errorf("error deriving account creation time: %w", err)
	}

	return respondSlashEphemeral(a, i, fmt.Sprintf(
		"Name: %s\nID: %s\nCreated at: %s\nJoined at: %s\nAvatar: %s",
		target.Username, target.ID, createdAt.UTC(), member.JoinedAt.UTC(), target.AvatarURL(""),
	))
}

func avatarProcessor(a IApp, i *discordgo.InteractionCreate) error {
	target := optionMap(i)[memberOption].UserValue(a.Session())
	return respondSlashEphemeral(a, i, target.AvatarURL(""))
}

// resolveTextChannel resolves a channel reference (mention or name) against the
// guild's text channels. The second return value lists the available channel
// names for the error message when nothing matched.
func resolveTextChannel(channels []*discordgo.Channel, ref string) (*discordgo.Channel, []string) {
	id := parseChannelRef(ref)

	available := make([]string, 0, len(channels))
	var match *discordgo.Channel
	for _, ch := range channels {
		if ch.Type != discordgo.ChannelTypeGuildText {
			continue
		}
		available = append(available, ch.Name)
		if ch.ID == id || strings.EqualFold(ch.Name, ref) {
			match = ch
		}
	}
	return match, available
}

func announceProcessor(a IApp, i *discordgo.InteractionCreate) error {
	if !hasCapability(i.Member, CapabilityModerateMembers) {
		return respondSlashEphemeral(a, i, messages.ErrUserNotPermitted)
	}

	opts := optionMap(i)
	channelRef := opts[channelOption].StringValue()
	message := opts[messageOption].StringValue()

	channels, err := a.Session().GuildChannels(i.GuildID)
	if err != nil {
		return fmt.Errorf("error getting guild channels: %w", err)
	}

	target, available := resolveTextChannel(channels, channelRef)
	if target == nil {
		return respondSlashEphemeral(a, i, fmt.Sprintf(
			"Channel %s not found. Available channels: %s",
			channelRef, strings.Join(available, ", "),
		))
	}

	if _, err := a.Session().ChannelMessageSend(target.ID, message); err != nil {
		return fmt.Errorf("error sending announcement: %w", err)
	}
	return respondSlash(a, i, fmt.Sprintf("Announcement sent in %s: %s", target.Name, message))
}

// purgeProcessor bulk-deletes between 1 and 20 messages from the current
// channel, plus the invoking message itself.
func purgeProcessor(a IApp, m *discordgo.MessageCreate, args []string) error {
	allowed, err := messageHasCapability(a, m.Message, CapabilityModerateMembers)
	if err != nil {
		return err
	}
	if !allowed {
		_, err := a.Session().ChannelMessageSend(m.ChannelID, messages.ErrUserNotPermitted)
		return err
	}

	amount := 0
	if len(args) > 0 {
		amount, err = strconv.Atoi(args[0])
		if err != nil {
			amount = 0
		}
	}
	if amount < 1 || amount > 20 {
		_, err := a.Session().ChannelMessageSend(m.ChannelID, "Please provide a number between 1 and 20 for the amount of messages to delete.")
		return err
	}

	// Fetch one extra message so the invoking command is removed too.
	msgs, err := a.Session().ChannelMessages(m.ChannelID, amount+1, "", "", "")
	if err != nil {
		return fmt.Errorf("error fetching messages: %w", err)
	}

	ids := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		ids = append(ids, msg.ID)
	}

	if err := a.Session().ChannelMessagesBulkDelete(m.ChannelID, ids); err != nil {
		return fmt.Errorf("error deleting messages: %w", err)
	}

	_, err = a.Session().ChannelMessageSend(m.ChannelID, fmt.Sprintf("Deleted %d messages.", amount))
	return err
}
