package auth

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	// Jordanian mobile numbers: optional +962/962 country code or leading
	// zero, then 7 followed by 7/8/9 and seven digits.
	phonePattern = regexp.MustCompile(`^(\+?962|0)?7[789][0-9]{7}$`)
)

var (
	errEmailRequired   = errors.New("email is required")
	errEmailInvalid    = errors.New("invalid email address")
	errNameRequired    = errors.New("name is required")
	errPhoneInvalid    = errors.New("invalid Jordanian mobile number")
	errPasswordWeak    = errors.New("password must be at least 8 characters with a letter and a digit")
	errPasswordMissing = errors.New("password is required")
)

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errEmailRequired
	}
	if !emailPattern.MatchString(email) {
		return errEmailInvalid
	}
	return nil
}

func validatePhone(phone string) error {
	phone = strings.ReplaceAll(strings.TrimSpace(phone), " ", "")
	if !phonePattern.MatchString(phone) {
		return errPhoneInvalid
	}
	return nil
}

// validatePassword enforces the minimum policy: 8+ characters with at
// least one letter and one digit.
func validatePassword(pw string) error {
	if pw == "" {
		return errPasswordMissing
	}
	if len(pw) < 8 {
		return errPasswordWeak
	}
	var hasLetter, hasDigit bool
	for _, r := range pw {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return errPasswordWeak
	}
	return nil
}
