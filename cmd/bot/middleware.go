package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/Jacobbrewer1/meiple/cmd/bot/config"
	"github.com/Jacobbrewer1/meiple/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/meiple/pkg/logging"
	"github.com/Jacobbrewer1/meiple/pkg/messages"
	"github.com/Jacobbrewer1/meiple/pkg/request"
	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/mux"
)

const (
	// PathMetrics is the path for metrics.
	PathMetrics = "/metrics"

	// PathHealth is the path for the health check.
	PathHealth = "/health"
)

// commandProcessor handles one slash command invocation.
type commandProcessor func(a IApp, i *discordgo.InteractionCreate) error

// prefixProcessor handles one prefix command invocation.
type prefixProcessor func(a IApp, m *discordgo.MessageCreate, args []string) error

// authOption is an option for the auth middleware. It indicates the type of
// authentication required.
type authOption int

const (
	// authOptionNone indicates that no authentication is required.
	authOptionNone authOption = iota
)

type Controller func(w http.ResponseWriter, r *http.Request)

func middlewareHttp(handler Controller, _ authOption, a IApp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC()
		cw := request.NewClientWriter(w)

		// Recover from any panics that occur in the handler.
		defer func() {
			if rec := recover(); rec != nil {
				a.Log().Error("Panic in handler",
					slog.String(logging.KeyError, fmt.Sprintf("%v", rec)),
					slog.String("stack", string(debug.Stack())),
				)
				cw.WriteHeader(http.StatusInternalServerError)
				if err := json.NewEncoder(cw).Encode(request.NewMessage(request.ErrInternalServer.Error())); err != nil {
					a.Log().Error("Error encoding response", slog.String(logging.KeyError, err.Error()))
				}
			}
		}()

		var path string
		route := mux.CurrentRoute(r)
		if route != nil { // The route may be nil if the request is not routed.
			var err error
			path, err = route.GetPathTemplate()
			if err != nil {
				// An error here is only returned if the route does not define a path.
				a.Log().Error("Error getting path template", slog.String(logging.KeyError, err.Error()))
				path = r.URL.Path // If the route does not define a path, use the URL path.
			}
		} else {
			path = r.URL.Path // If the route is nil, use the URL path.
		}

		defer func() {
			// Run the deferred function after the request has been handled, as the status code will not be available until then.
			monitoring.HttpTotalRequests.WithLabelValues(path, r.Method, fmt.Sprintf("%d", cw.StatusCode())).Inc()
			monitoring.HttpRequestDuration.WithLabelValues(path, r.Method, fmt.Sprintf("%d", cw.StatusCode())).Observe(time.Since(now).Seconds())
		}()

		handler(cw, r)
	}
}

// interactionHandler dispatches slash commands to their processors. A failing
// or panicking processor is reported to the user generically and logged with
// full detail; a single command's failure never takes the process down.
func interactionHandler(a IApp, processors map[string]commandProcessor) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}

		name := i.ApplicationCommandData().Name
		a.Log().Debug("Handling interaction " + name)

		processor, ok := processors[name]
		if !ok {
			a.Log().Error("No processor found for command", slog.String("command", name))
			if err := respondSlashError(a, i); err != nil {
				a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
			}
			return
		}

		now := time.Now().UTC()
		defer func() {
			monitoring.DiscordCommandDuration.WithLabelValues(name).Observe(time.Since(now).Seconds())

			if rec := recover(); rec != nil {
				a.Log().Error("Panic in command processor",
					slog.String("command", name),
					slog.String(logging.KeyError, fmt.Sprintf("%v", rec)),
					slog.String("stack", string(debug.Stack())),
				)
				if err := respondSlashError(a, i); err != nil {
					a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
				}
			}
		}()

		if err := processor(a, i); err != nil {
			a.Log().Error(fmt.Sprintf("Error processing command %s", name),
				slog.String(logging.KeyError, err.Error()))

			if err := respondSlashError(a, i); err != nil {
				a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
			}
		}
	}
}

// messageHandler dispatches prefix commands and relays direct messages to the
// bot owner.
func messageHandler(a IApp, processors map[string]prefixProcessor) func(s *discordgo.Session, m *discordgo.MessageCreate) {
	return func(s *discordgo.Session, m *discordgo.MessageCreate) {
		// Ignore the bot's own messages and other bots.
		if m.Author == nil || m.Author.Bot || (s.State.User != nil && m.Author.ID == s.State.User.ID) {
			return
		}

		// A message outside any guild is a direct message.
		if m.GuildID == "" {
			relayDirectMessage(a, m)
			return
		}

		if !strings.HasPrefix(m.Content, config.CommandPrefix) {
			return
		}

		fields := strings.Fields(strings.TrimPrefix(m.Content, config.CommandPrefix))
		if len(fields) == 0 {
			return
		}

		name := strings.ToLower(fields[0])
		processor, ok := processors[name]
		if !ok {
			return
		}

		now := time.Now().UTC()
		defer func() {
			monitoring.DiscordCommandDuration.WithLabelValues(name).Observe(time.Since(now).Seconds())

			if rec := recover(); rec != nil {
				a.Log().Error("Panic in command processor",
					slog.String("command", name),
					slog.String(logging.KeyError, fmt.Sprintf("%v", rec)),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()

		if err := processor(a, m, fields[1:]); err != nil {
			a.Log().Error(fmt.Sprintf("Error processing command %s", name),
				slog.String(logging.KeyError, err.Error()))

			if _, err := a.Session().ChannelMessageSend(m.ChannelID, messages.ErrUserErrorProcessing); err != nil {
				a.Log().Error("Error sending message", slog.String(logging.KeyError, err.Error()))
			}
		}
	}
}
