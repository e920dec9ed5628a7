package entities

import (
	"github.com/Jacobbrewer1/meiple/pkg/custom"
)

// TicketRecord is the record kept for a user with an open ticket. There is at
// most one record per user at any time.
type TicketRecord struct {
	// ChannelID is the ID of the ticket channel that was created for the user.
	ChannelID string `json:"channel_id"`

	// ChannelName is the display name of the ticket channel at creation time.
	// It is cached here so that conflict and closure messages can reference the
	// name without re-resolving the channel.
	ChannelName string `json:"channel_name"`

	// OpenedAt is the time that the ticket was opened.
	OpenedAt custom.Datetime `json:"opened_at"`
}
