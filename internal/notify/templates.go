package notify

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/martin-coser/ArqViewBack-sub000/internal/models"
)

var templates = map[string]map[string]string{
	models.NotificationTypeNewProperty: {
		"subject": "New property in {{location}}: {{propertyName}}",
		"body": "Hello {{firstName}},\n\n" +
			"A new property just listed matches what you have been saving:\n\n" +
			"{{propertyName}} in {{location}}\n" +
			"Type: {{propertyType}}\n" +
			"Price: {{price}}\n\n" +
			"Don't miss it!",
		"sms": "{{propertyName}} in {{location}} just listed for {{price}}. Check it out!",
	},
}

// NewListingMessage is the notification text persisted for a client when a
// matching property is listed.
func NewListingMessage(property models.Property) string {
	return fmt.Sprintf("New property in %s: %s", property.Location.Name, property.Name)
}

// NewListingEmail renders the email sent to a client for a freshly listed
// property that matched their preferences.
func NewListingEmail(client models.Client, property models.Property, from string) models.EmailMessage {
	template := templates[models.NotificationTypeNewProperty]
	data := listingData(client, property)
	return models.EmailMessage{
		To:      client.Email,
		From:    from,
		Subject: renderTemplate(template["subject"], data),
		Body:    renderTemplate(template["body"], data),
	}
}

// NewListingSMS renders the short-message variant of the listing alert.
func NewListingSMS(client models.Client, property models.Property) string {
	template := templates[models.NotificationTypeNewProperty]
	return renderTemplate(template["sms"], listingData(client, property))
}

func listingData(client models.Client, property models.Property) map[string]interface{} {
	return map[string]interface{}{
		"firstName":    client.FirstName,
		"propertyName": property.Name,
		"location":     property.Location.Name,
		"propertyType": property.Type.Name,
		"price":        strconv.FormatFloat(property.Price, 'f', -1, 64),
	}
}

func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl

	for k, v := range data {
		placeholder := "{{" + k + "}}"
		value := ""
		if s, ok := v.(string); ok {
			value = s
		} else if i, ok := v.(int); ok {
			value = fmt.Sprintf("%d", i)
		} else if v != nil {
			value = fmt.Sprintf("%v", v)
		}
		result = strings.ReplaceAll(result, placeholder, value)
	}

	// Strip placeholders that had no value.
	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		end += start + 2
		result = result[:start] + result[end:]
	}

	return result
}
