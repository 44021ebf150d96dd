package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used for numbers written without a country code.
const DefaultRegion = "IN"

func NormalizePhone(phone string) string {
	return NormalizePhoneIn(phone, DefaultRegion)
}

func NormalizePhoneIn(phone, region string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	parsed, err := phonenumbers.Parse(phone, region)
	if err != nil {
		return phone
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}
