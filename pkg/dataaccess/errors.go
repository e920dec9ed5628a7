package dataaccess

import (
	"fmt"

	"github.com/Jacobbrewer1/meiple/pkg/entities"
)

// AlreadyOpenError is returned when a ticket open is attempted for a user that
// already has an open ticket, or has one currently being created.
type AlreadyOpenError struct {
	// UserID is the user that the conflict was detected for.
	UserID string

	// Record is the existing ticket record. It is nil when the conflict is with
	// an open that is still in flight (the channel has not been created yet).
	Record *entities.TicketRecord
}

func (e *AlreadyOpenError) Error() string {
	if e.Record != nil {
		return fmt.Sprintf("user %s already has an open ticket: %s", e.UserID, e.Record.ChannelName)
	}
	return fmt.Sprintf("user %s already has a ticket being opened", e.UserID)
}
