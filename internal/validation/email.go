package validation

import (
	"net/mail"
	"strings"
)

const maxEmailLength = 254

// ValidEmail accepts a bare RFC 5322 addr-spec ("user@example.com").
// Display names, angle brackets and dotless domains are rejected.
func ValidEmail(email string) bool {
	if email == "" || len(email) > maxEmailLength || strings.TrimSpace(email) != email {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return false
	}
	at := strings.LastIndexByte(email, '@')
	if at <= 0 || at > 64 {
		return false
	}
	domain := email[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return false
	}
	for _, label := range strings.Split(domain, ".") {
		if label == "" || len(label) > 63 || strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return false
		}
	}
	return true
}
