// internal/models/property.go
package models

// SubscriptionPlan is the listing agency's subscription tier. Scoring never
// consults it; it is surfaced so that callers can gate premium-only features.
type SubscriptionPlan string

const (
	PlanBasico  SubscriptionPlan = "BASICO"
	PlanPremium SubscriptionPlan = "PREMIUM"
)

type PropertyType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Location struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Province string `json:"province,omitempty"`
}

type Agency struct {
	ID   int64            `json:"id"`
	Name string           `json:"name"`
	Plan SubscriptionPlan `json:"plan"`
}

// Property is a catalog listing. The five numeric fields plus the type id are
// the features the recommendation engine scores on; everything else is
// presentation data for callers.
type Property struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Address     string       `json:"address,omitempty"`
	Price       float64      `json:"price"`
	Surface     float64      `json:"surface"` // square meters
	Bathrooms   int          `json:"bathrooms"`
	Bedrooms    int          `json:"bedrooms"`
	Rooms       int          `json:"rooms"`
	Type        PropertyType `json:"type"`
	Location    Location     `json:"location"`
	Agency      *Agency      `json:"agency,omitempty"`
}
