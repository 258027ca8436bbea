package models

// Session is the authentication state of the current browser profile.
// An empty Token means no session.
type Session struct {
	Token       string `json:"-"` // opaque, never rendered
	DisplayName string `json:"display_name,omitempty"`
}

// Authenticated reports whether a token is present.
func (s Session) Authenticated() bool { return s.Token != "" }
