package sanitizer

import "github.com/nyaruka/phonenumbers"

var supportedRegions = []string{
	"IN",
	"US",
}

// NormalizePhone formats a phone number as E.164. Input that no supported
// region can parse is returned trimmed so validation can reject it.
func NormalizePhone(phone string) string {
	phone = TrimAndNormalize(phone)
	if phone == "" {
		return ""
	}

	for _, region := range supportedRegions {
		parsed, err := phonenumbers.Parse(phone, region)
		if err == nil && phonenumbers.IsValidNumber(parsed) {
			return phonenumbers.Format(parsed, phonenumbers.E164)
		}
	}
	return phone
}
