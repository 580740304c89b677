// internal/models/notification.go
package models

import "time"

const NotificationTypeNewProperty = "NEW_PROPERTY"

type Notification struct {
	ID         int64     `json:"id"`
	Message    string    `json:"message"`
	Type       string    `json:"type"`
	ClientID   int64     `json:"clientId"`
	PropertyID int64     `json:"propertyId"`
	CreatedAt  time.Time `json:"createdAt"`
	Read       bool      `json:"read"`
}

type EmailMessage struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
