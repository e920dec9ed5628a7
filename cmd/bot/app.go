package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/Jacobbrewer1/meiple/cmd/bot/config"
	"github.com/Jacobbrewer1/meiple/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/meiple/pkg/dataaccess"
	"github.com/Jacobbrewer1/meiple/pkg/logging"
	"github.com/Jacobbrewer1/meiple/pkg/request"
	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// IApp is the interface for the application.
type IApp interface {
	// Session returns the discord session.
	Session() *discordgo.Session

	// Log returns the logger.
	Log() *slog.Logger

	// Settings returns the mod-mail settings store.
	Settings() dataaccess.ISettingsStore
}

type App struct {
	// is the logger.
	*slog.Logger

	// r is the router for the application.
	r *mux.Router

	// svr is the server for the application.
	svr *http.Server

	// s is the discord session.
	s *discordgo.Session

	// settings is the mod-mail settings store.
	settings dataaccess.ISettingsStore

	// presenceStop stops the presence refresh loop.
	presenceStop chan struct{}

	// registeredCommands are the slash commands created per guild, kept so they
	// can be removed again on shutdown.
	registeredCommands map[string][]*discordgo.ApplicationCommand
}

// NewApp creates a new instance of App.
func NewApp(l *slog.Logger, r *mux.Router) *App {
	return &App{
		Logger: l,
		r:      r,
	}
}

func (a *App) Run() error {
	// Register bot.
	if err := a.RegisterBot(); err != nil {
		return fmt.Errorf("error registering bot: %w", err)
	}

	// Load the mod-mail settings store. A missing or corrupt file starts empty;
	// this never aborts startup.
	a.settings = dataaccess.LoadSettingsStore(config.SettingsFile, a.Log())

	a.s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		a.Info(fmt.Sprintf("Logged in as %s#%s", r.User.Username, r.User.Discriminator))
		updatePresence(a)
	})

	if err := a.RegisterDiscordHandlers(); err != nil {
		return fmt.Errorf("error registering discord handlers: %w", err)
	}

	// Open websocket.
	if err := a.s.Open(); err != nil {
		return fmt.Errorf("error opening connection to Discord: %w", err)
	}

	// Register slash commands. This needs the session to be open, as the guild
	// list comes from the gateway.
	if err := a.registerSlashCommands(); err != nil {
		return fmt.Errorf("error registering slash commands: %w", err)
	}

	a.Info("Bot is now running.")

	// Start the presence refresh loop.
	a.presenceStop = make(chan struct{})
	go presenceLoop(a, a.presenceStop)

	a.generateServer()
	a.setupRoutes()
	a.runServer()

	// Register listener for shutdown signal.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	// Process shutdown signal.
	for sig := range c {
		a.Info("Received shutdown signal", slog.String(logging.KeySignal, sig.String()))
		if err := a.ShutdownHook(); err != nil {
			a.Error("Error shutting down application", slog.String(logging.KeyError, err.Error()))
		}
		os.Exit(0)
	}
	return nil
}

func (a *App) ShutdownHook() error {
	// Reset the total number of guilds to 0.
	monitoring.TotalDiscordGuilds.Set(0)

	// Stop the presence loop.
	if a.presenceStop != nil {
		close(a.presenceStop)
	}

	// Unregister slash commands.
	if err := a.unregisterSlashCommands(); err != nil {
		return fmt.Errorf("error unregistering slash commands: %w", err)
	}

	// Close the connection to Discord.
	if err := a.s.Close(); err != nil {
		return fmt.Errorf("error closing connection to Discord: %w", err)
	}
	return nil
}

func (a *App) RegisterBot() error {
	// Default the number of guilds to 0.
	monitoring.TotalDiscordGuilds.Set(0)

	dg, err := discordgo.New("Bot " + config.BotToken)
	if err != nil {
		return fmt.Errorf("error creating Discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.IntentsAll

	a.s = dg
	return nil
}

func (a *App) runServer() {
	go func() {
		a.Info("Starting monitoring server")
		if err := a.svr.ListenAndServe(); err != nil {
			a.Error("Error starting monitoring server", slog.String(logging.KeyError, err.Error()))
			a.Warn("Monitoring server will not be available")
		}
	}()
}

func (a *App) setupRoutes() {
	// PathMetrics is the path for metrics.
	a.r.HandleFunc(PathMetrics, promhttp.Handler().ServeHTTP).Methods(http.MethodGet)

	// PathHealth is the path for health check.
	a.r.HandleFunc(PathHealth, middlewareHttp(a.healthCheck(), authOptionNone, a)).Methods(http.MethodGet)

	// NotFoundHandler is the handler for 404.
	a.r.NotFoundHandler = request.NotFoundHandler(a.Log())

	// MethodNotAllowedHandler is the handler for 405.
	a.r.MethodNotAllowedHandler = request.MethodNotAllowedHandler(a.Log())
}

func (a *App) generateServer() {
	a.svr = &http.Server{
		Addr:    ":" + config.MonitoringPort,
		Handler: a.r,
	}
}

func (a *App) GetJoinedGuilds() ([]*discordgo.UserGuild, error) {
	guilds, err := a.s.UserGuilds(0, "", "", false)
	if err != nil {
		return nil, fmt.Errorf("error getting guilds: %w", err)
	}
	return guilds, nil
}

func (a *App) RegisterDiscordHandlers() error {
	// Bot joined guild.
	a.s.AddHandler(guildJoinedHandler(a))

	// Bot left guild.
	a.s.AddHandler(guildLeaveHandler(a))

	// Member joined guild; the presence text tracks the user count.
	a.s.AddHandler(memberJoinedHandler(a))

	// Count every gateway event.
	a.s.AddHandler(func(_ *discordgo.Session, e *discordgo.Event) {
		if e.Type == "" {
			monitoring.TotalDiscordEvents.WithLabelValues("UNKNOWN").Inc()
			return
		}
		monitoring.TotalDiscordEvents.WithLabelValues(e.Type).Inc()
	})

	// Slash command handler.
	a.s.AddHandler(interactionHandler(a, map[string]commandProcessor{
		TicketCmdName:     createTicketProcessor,
		SetModMailCmdName: setModMailProcessor,
		SendDmCmdName:     sendDmProcessor,
		PingCmdName:       pingProcessor,
		BanCmdName:        banProcessor,
		BanIdCmdName:      banIdProcessor,
		KickCmdName:       kickProcessor,
		UnbanCmdName:      unbanProcessor,
		MemberCmdName:     memberInfoProcessor,
		AvatarCmdName:     avatarProcessor,
		AnnounceCmdName:   announceProcessor,
	}))

	// Prefix command handler. This also relays direct messages to the owner.
	a.s.AddHandler(messageHandler(a, map[string]prefixProcessor{
		CloseCmdName:    closeTicketProcessor,
		DeleteCmdName:   deleteTicketProcessor,
		ResetCmdName:    resetProcessor,
		PurgeCmdName:    purgeProcessor,
		HelloCmdName:    helloProcessor,
		PresenceCmdName: presenceProcessor,
	}))

	return nil
}

// slashCommands are the application commands registered for every guild.
func slashCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		ticketCmd,
		setModMailCmd,
		sendDmCmd,
		pingCmd,
		banCmd,
		banIdCmd,
		kickCmd,
		unbanCmd,
		memberCmd,
		avatarCmd,
		announceCmd,
	}
}

func (a *App) registerSlashCommands() error {
	// Get all guilds the bot is in.
	guilds, err := a.GetJoinedGuilds()
	if err != nil {
		return fmt.Errorf("error getting guilds: %w", err)
	}

	a.registeredCommands = make(map[string][]*discordgo.ApplicationCommand)

	// Register slash commands for each guild.
	for _, g := range guilds {
		for _, cmd := range slashCommands() {
			created, err := a.Session().ApplicationCommandCreate(config.ApplicationId, g.ID, cmd)
			if err != nil {
				return fmt.Errorf("error creating %s command for guild %s: %w", cmd.Name, g.ID, err)
			}
			a.registeredCommands[g.ID] = append(a.registeredCommands[g.ID], created)
		}
	}
	return nil
}

func (a *App) unregisterSlashCommands() error {
	// Delete the slash commands that were created for each guild.
	for guildID, cmds := range a.registeredCommands {
		for _, cmd := range cmds {
			if err := a.s.ApplicationCommandDelete(config.ApplicationId, guildID, cmd.ID); err != nil {
				return fmt.Errorf("error deleting %s command for guild %s: %w", cmd.Name, guildID, err)
			}
		}
	}
	return nil
}

func (a *App) Session() *discordgo.Session {
	return a.s
}

func (a *App) Log() *slog.Logger {
	return a.Logger
}

func (a *App) Settings() dataaccess.ISettingsStore {
	return a.settings
}
