package domain

import (
	"regexp"
	"strings"
)

var (
	emailFormat = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)
	phoneFormat = regexp.MustCompile(`^\d{10}$`)
)

// ValidEmail reports whether email has an acceptable shape.
func ValidEmail(email string) bool {
	return emailFormat.MatchString(email)
}

// ValidPhoneNumber reports whether phone is exactly ten digits.
func ValidPhoneNumber(phone string) bool {
	return phoneFormat.MatchString(phone)
}

// ValidName reports whether name is non-blank.
func ValidName(name string) bool {
	return strings.TrimSpace(name) != ""
}

// ValidAddress reports whether address is non-blank.
func ValidAddress(address string) bool {
	return strings.TrimSpace(address) != ""
}
