package main

import (
	"strings"

	"github.com/Jacobbrewer1/meiple/pkg/messages"
	"github.com/bwmarrin/discordgo"
)

func respondSlashError(a IApp, i *discordgo.InteractionCreate) error {
	return respondSlashEphemeral(a, i, messages.ErrUserErrorProcessing)
}

func respondSlashEphemeral(a IApp, i *discordgo.InteractionCreate, content string) error {
	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func respondSlash(a IApp, i *discordgo.InteractionCreate, content string) error {
	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
		},
	})
}

// optionMap maps a command's options by name for easy lookup.
func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	opts := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}

// interactionUser returns the invoking user for an interaction, whether it was
// invoked in a guild or a direct message.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}

// parseChannelRef extracts a channel ID from a channel mention ("<#123>"), or
// returns the reference unchanged for resolution by ID or name.
func parseChannelRef(ref string) string {
	if strings.HasPrefix(ref, "<#") && strings.HasSuffix(ref, ">") {
		return strings.TrimSuffix(strings.TrimPrefix(ref, "<#"), ">")
	}
	return ref
}

// parseRoleRef extracts a role ID from a role mention ("<@&123>"), or returns
// the reference unchanged.
func parseRoleRef(ref string) string {
	if strings.HasPrefix(ref, "<@&") && strings.HasSuffix(ref, ">") {
		return strings.TrimSuffix(strings.TrimPrefix(ref, "<@&"), ">")
	}
	return ref
}

// sendUserDM opens (or reuses) the DM channel with a user and sends content to
// it.
func sendUserDM(a IApp, userID, content string) error {
	ch, err := a.Session().UserChannelCreate(userID)
	if err != nil {
		return err
	}
	_, err = a.Session().ChannelMessageSend(ch.ID, content)
	return err
}
