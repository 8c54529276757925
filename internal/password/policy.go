// Package password implements the password-strength policy and Argon2id
// hashing used for stored credentials.
package password

import "regexp"

// Symbols is the set of special characters a password may (and must) draw from.
const Symbols = "@$!%*?&"

const minLength = 8

var (
	lowercaseRe  = regexp.MustCompile(`[a-z]`)
	uppercaseRe  = regexp.MustCompile(`[A-Z]`)
	digitRe      = regexp.MustCompile(`[0-9]`)
	symbolRe     = regexp.MustCompile(`[@$!%*?&]`)
	validCharsRe = regexp.MustCompile(`^[A-Za-z0-9@$!%*?&]+$`)
)

// Validate reports whether pw satisfies the strength policy: at least 8
// characters, one lowercase, one uppercase, one digit and one of Symbols,
// with no character outside those classes.
func Validate(pw string) bool {
	return len(pw) >= minLength &&
		lowercaseRe.MatchString(pw) &&
		uppercaseRe.MatchString(pw) &&
		digitRe.MatchString(pw) &&
		symbolRe.MatchString(pw) &&
		validCharsRe.MatchString(pw)
}
