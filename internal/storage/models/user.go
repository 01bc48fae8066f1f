package models

// UserID identifies one of the two fixed participants.
type UserID string

// UserID constants
const (
	UserMe      UserID = "me"
	UserPartner UserID = "partner"
)

// Valid reports whether u is one of the two participants.
func (u UserID) Valid() bool {
	return u == UserMe || u == UserPartner
}

// Default zone identifiers and display labels for the two participants.
const (
	DefaultZoneMe       = "Asia/Seoul"
	DefaultZonePartner  = "America/New_York"
	DefaultLabelMe      = "Seoul"
	DefaultLabelPartner = "Georgia"
)

// Names holds the display names of both participants.
type Names struct {
	Me      string `json:"me" yaml:"me"`
	Partner string `json:"partner" yaml:"partner"`
}

// For returns the name of the given participant.
func (n Names) For(u UserID) string {
	if u == UserPartner {
		return n.Partner
	}
	return n.Me
}
