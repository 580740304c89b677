// internal/models/client.go
package models

// Client is a registered buyer. Email and Phone come from the account
// relation; they are read-only contact data as far as this service is
// concerned.
type Client struct {
	ID        int64    `json:"id"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone,omitempty"`
	Location  Location `json:"location"`
}

// InterestList is a client's saved list of properties. The engine treats it as
// the reference set for that client's preferences.
type InterestList struct {
	ClientID   int64      `json:"clientId"`
	Properties []Property `json:"properties"`
}
