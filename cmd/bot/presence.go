package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Jacobbrewer1/meiple/pkg/logging"
	"github.com/Jacobbrewer1/meiple/pkg/messages"
	"github.com/bwmarrin/discordgo"
)

const (
	// PresenceCmdName is the owner prefix command for forcing a presence
	// refresh.
	PresenceCmdName = "presence"

	// presenceInterval is how often the presence text is refreshed.
	presenceInterval = 5 * time.Minute
)

// updatePresence sets the bot's presence to the total user count across all
// joined guilds. It shares no state with the settings store.
func updatePresence(a IApp) {
	total := 0
	for _, g := range a.Session().State.Guilds {
		total += g.MemberCount
	}

	if err := a.Session().UpdateWatchStatus(0, fmt.Sprintf("over %d users!", total)); err != nil {
		a.Log().Error("Error updating presence", slog.String(logging.KeyError, err.Error()))
		return
	}
	a.Log().Debug("Bot presence updated", slog.Int("total_users", total))
}

// presenceLoop refreshes the presence on a fixed interval until stop is
// closed.
func presenceLoop(a IApp, stop <-chan struct{}) {
	ticker := time.NewTicker(presenceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			updatePresence(a)
		case <-stop:
			return
		}
	}
}

// presenceProcessor forces a presence refresh. Owner only.
func presenceProcessor(a IApp, m *discordgo.MessageCreate, _ []string) error {
	if !isBotOwner(m.Author.ID) {
		_, err := a.Session().ChannelMessageSend(m.ChannelID, messages.ErrUserNotPermitted)
		return err
	}

	updatePresence(a)
	_, err := a.Session().ChannelMessageSend(m.ChannelID, "Presence updated!")
	return err
}
