package sos

import (
	"github.com/raksha-app/raksha/server/models"
	"github.com/raksha-app/raksha/server/phone"
)

// Contact is one entry of a user's contact set, with the number already in
// canonical dialing form.
type Contact struct {
	Label string `json:"label"`
	To    string `json:"to"`
}

// ContactSet extracts the non-empty emergency numbers from a user, in the
// fixed field order: father, mother, guardian1, guardian2.
func ContactSet(user *models.User, countryCode string) []Contact {
	fields := []struct {
		label  string
		number string
	}{
		{"father", user.FatherNumber},
		{"mother", user.MotherNumber},
		{"guardian1", user.GuardianNumber},
		{"guardian2", user.Guardian2Number},
	}

	contacts := []Contact{}
	for _, field := range fields {
		num := phone.Normalize(field.number, countryCode)
		if num == "" {
			continue
		}
		contacts = append(contacts, Contact{Label: field.label, To: num})
	}

	return contacts
}
