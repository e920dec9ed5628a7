package main

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

const (
	// PingCmdName is the command for checking the bot's latency.
	PingCmdName = "ping"

	// HelloCmdName is the prefix command for greeting the bot.
	HelloCmdName = "hello"
)

// pingCmd is the command for checking the bot's latency.
var pingCmd = &discordgo.ApplicationCommand{
	Name:        PingCmdName,
	Type:        discordgo.ChatApplicationCommand,
	Description: "Check the bot's latency.",
}

func pingProcessor(a IApp, i *discordgo.InteractionCreate) error {
	latency := a.Session().HeartbeatLatency().Milliseconds()

	switch {
	case latency < 50:
		return respondSlash(a, i, fmt.Sprintf("Fast af: %dms", latency))
	case latency > 100:
		return respondSlash(a, i, fmt.Sprintf("Kinda slow af: %dms", latency))
	default:
		return respondSlash(a, i, fmt.Sprintf("%dms", latency))
	}
}

func helloProcessor(a IApp, m *discordgo.MessageCreate, _ []string) error {
	_, err := a.Session().ChannelMessageSend(m.ChannelID, fmt.Sprintf("Hello <@%s>!", m.Author.ID))
	return err
}
