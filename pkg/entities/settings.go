package entities

// Settings is the persisted state of the mod-mail system. It is serialized
// wholesale to the settings file on every mutation.
type Settings struct {
	// ModMail is the global mod-mail configuration.
	ModMail ModMailConfig `json:"mod_mail"`

	// Tickets maps a user ID to that user's open ticket record.
	Tickets map[string]*TicketRecord `json:"tickets"`
}

// NewSettings creates an empty settings object.
func NewSettings() *Settings {
	return &Settings{
		Tickets: make(map[string]*TicketRecord),
	}
}
