package sos

import (
	"errors"
	"fmt"

	"github.com/raksha-app/raksha/server/models"
	"github.com/raksha-app/raksha/server/phone"
	"github.com/raksha-app/raksha/server/whatsapp"
)

// ErrNoContacts means the user has no emergency numbers on file. It is
// reported before any dispatch is attempted.
var ErrNoContacts = errors.New("no contact numbers available for this user")

const mapsLinkBase = "https://www.google.com/maps?q="

// Outbound pairs one contact with the message rendered for them.
type Outbound struct {
	Contact Contact
	Message *whatsapp.Message
}

// MapsLink builds the convenience link embedded in alert messages and
// location payloads.
func MapsLink(loc *Location) string {
	return fmt.Sprintf("%v%v,%v", mapsLinkBase, formatCoordinate(loc.Latitude), formatCoordinate(loc.Longitude))
}

// AlertMessage composes the plain-text emergency alert for a user,
// referencing their location link when one is available.
func AlertMessage(user *models.User, loc *Location) string {
	if loc != nil {
		return fmt.Sprintf(
			"🚨 EMERGENCY ALERT from %v!\nPhone: %v\nI need help immediately!\nMy location: %v\nPlease respond ASAP!",
			user.Name, user.PhoneNumber, MapsLink(loc))
	}

	return fmt.Sprintf(
		"🚨 EMERGENCY ALERT from %v!\nPhone: %v\nI need help immediately! Location unavailable. Please call me ASAP!",
		user.Name, user.PhoneNumber)
}

// BuildPayloads renders one message per contact, in contact-set order.
// With a location it emits structured location payloads; without one it
// falls back to the plain-text alert. Output is deterministic for the same
// inputs.
func BuildPayloads(user *models.User, loc *Location, countryCode string) ([]Outbound, error) {
	contacts := ContactSet(user, countryCode)
	if len(contacts) == 0 {
		return nil, ErrNoContacts
	}

	message := AlertMessage(user, loc)

	outbounds := make([]Outbound, 0, len(contacts))
	for _, contact := range contacts {
		msg := &whatsapp.Message{
			MessagingProduct: whatsapp.MessagingProduct,
			To:               phone.WithoutPlus(contact.To),
		}

		if loc != nil {
			msg.Type = whatsapp.TypeLocation
			msg.Location = &whatsapp.LocationPayload{
				Latitude:  formatCoordinate(loc.Latitude),
				Longitude: formatCoordinate(loc.Longitude),
				Name:      fmt.Sprintf("%v - Current location", user.Name),
				Address:   MapsLink(loc),
			}
		} else {
			msg.Type = whatsapp.TypeText
			msg.Text = &whatsapp.TextPayload{Body: message}
		}

		outbounds = append(outbounds, Outbound{Contact: contact, Message: msg})
	}

	return outbounds, nil
}
