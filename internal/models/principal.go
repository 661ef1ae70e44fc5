package models

// Principal is the authenticated identity resolved from the identity API.
// It is established once at login and never changed by token refreshes.
type Principal struct {
	// Opaque stable identifier assigned by the identity API
	ID string

	// Display name, falls back to email if the identity API omits it
	Name string

	// Unique within the identity system
	Email string
}
