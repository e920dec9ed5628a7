package config

const (
	// AppName is the name of the application.
	AppName = "meiple"

	// EnvBotToken is the environment variable for the bot token.
	EnvBotToken = `BOT_TOKEN`

	// EnvApplicationId is the environment variable for the application ID.
	EnvApplicationId = `APPLICATION_ID`

	// EnvOwnerId is the environment variable for the bot owner's user ID.
	EnvOwnerId = `BOT_OWNER_ID`

	// EnvCommandPrefix is the environment variable for the prefix of the
	// legacy text commands.
	EnvCommandPrefix = `COMMAND_PREFIX`

	// EnvSettingsFile is the environment variable for the mod-mail settings
	// file location.
	EnvSettingsFile = `SETTINGS_FILE`

	// EnvMonitoringPort is the environment variable for the monitoring port.
	EnvMonitoringPort = `MONITORING_PORT`
)

const (
	// DefaultCommandPrefix is used when no prefix is provided.
	DefaultCommandPrefix = "!"

	// DefaultSettingsFile is used when no settings file is provided.
	DefaultSettingsFile = "mod_mail_settings.json"

	// DefaultMonitoringPort is used when no monitoring port is provided.
	DefaultMonitoringPort = "8080"
)

var (
	// BotToken is the token for the bot.
	BotToken string

	// ApplicationId is the ID of the application.
	ApplicationId string

	// OwnerId is the user ID of the bot owner. Direct messages to the bot are
	// relayed to this user.
	OwnerId string

	// CommandPrefix is the prefix for the legacy text commands.
	CommandPrefix string

	// SettingsFile is the location of the mod-mail settings file.
	SettingsFile string

	// MonitoringPort is the port for the monitoring server.
	MonitoringPort string
)
