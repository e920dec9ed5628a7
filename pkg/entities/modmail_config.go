package entities

// ModMailConfig is the global mod-mail configuration.
type ModMailConfig struct {
	// ChannelID is the ID of the mod-mail intake channel. New ticket channels
	// are created under this channel's category. Empty means the ticket system
	// is disabled.
	ChannelID string `json:"channel_id"`

	// RoleID is the ID of the role that handles tickets. Optional.
	RoleID string `json:"role_id,omitempty"`
}

// Configured reports whether a mod-mail intake channel has been set.
func (c ModMailConfig) Configured() bool {
	return c.ChannelID != ""
}
