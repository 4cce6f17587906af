package format

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	imeiRegex   = regexp.MustCompile(`^\d{15}$`)
	serialRegex = regexp.MustCompile(`^[A-Za-z0-9]{6,20}$`)
	phoneRegex  = regexp.MustCompile(`^(\+255|0)[67]\d{8}$`)
	emailRegex  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	separatorReplacer = strings.NewReplacer(" ", "", "\t", "", "-", "")
)

const minSerialLength = 6

// ValidateIMEI checks for exactly 15 digits once spaces and hyphens are removed.
// There is no Luhn check.
func ValidateIMEI(imei string) bool {
	return imeiRegex.MatchString(separatorReplacer.Replace(imei))
}

// ValidateSerialNumber accepts 6 to 20 ASCII letters or digits.
func ValidateSerialNumber(serial string) bool {
	return serialRegex.MatchString(serial)
}

// ValidatePhoneNumber accepts Tanzanian mobile numbers: +255 or 0, then 6/7 and eight digits.
func ValidatePhoneNumber(phone string) bool {
	return phoneRegex.MatchString(separatorReplacer.Replace(phone))
}

// ValidateEmail is a coarse single-@ check, good enough for a form gate.
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidateDeviceIdentifier is the gate used when registering a device: either a
// 15 digit IMEI or any identifier of at least six characters.
func ValidateDeviceIdentifier(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	return ValidateIMEI(id) || utf8.RuneCountInString(id) >= minSerialLength
}

// ValidateContact accepts a phone number or an e-mail address.
func ValidateContact(contact string) bool {
	return ValidatePhoneNumber(contact) || ValidateEmail(contact)
}
