package logging

const (
	// KeyAppName is the attribute key for the application name.
	KeyAppName = `app`

	// KeyError is the attribute key for errors.
	KeyError = `err`

	// KeyStore is the attribute key for the settings store component.
	KeyStore = `store`

	// KeySignal is the attribute key for OS signals.
	KeySignal = `signal`
)
