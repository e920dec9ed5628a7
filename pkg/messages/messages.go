// Package messages holds the canned user-facing messages that are shared
// between commands.
package messages

const (
	// ErrUserErrorProcessing is sent to the user when a command fails for an
	// unanticipated reason.
	ErrUserErrorProcessing = "There was an error processing your request. Please try again later."

	// ErrUserNotPermitted is sent to the user when they lack the capability a
	// command requires.
	ErrUserNotPermitted = "You do not have permission to use this command."

	// ErrModMailNotConfigured is sent to the user when the ticket system has no
	// usable intake channel.
	ErrModMailNotConfigured = "Mod mail channel not found. Please contact an admin/mod"
)
