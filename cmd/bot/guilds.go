package main

import (
	"fmt"

	"github.com/Jacobbrewer1/meiple/cmd/bot/monitoring"
	"github.com/bwmarrin/discordgo"
)

func guildJoinedHandler(a IApp) func(s *discordgo.Session, g *discordgo.GuildCreate) {
	return func(_ *discordgo.Session, g *discordgo.GuildCreate) {
		a.Log().Info(fmt.Sprintf("Joined guild %s", g.Name))

		// Increment the total number of guilds.
		monitoring.TotalDiscordGuilds.Inc()

		updatePresence(a)
	}
}

func guildLeaveHandler(a IApp) func(s *discordgo.Session, g *discordgo.GuildDelete) {
	return func(_ *discordgo.Session, g *discordgo.GuildDelete) {
		a.Log().Info(fmt.Sprintf("Left guild %s", g.ID))

		// Decrement the total number of guilds.
		monitoring.TotalDiscordGuilds.Dec()

		updatePresence(a)
	}
}

func memberJoinedHandler(a IApp) func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	return func(_ *discordgo.Session, m *discordgo.GuildMemberAdd) {
		a.Log().Info(fmt.Sprintf("%s has joined guild %s", m.User.Username, m.GuildID))

		// The presence text tracks the total user count.
		updatePresence(a)
	}
}
