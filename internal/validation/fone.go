package validation

const (
	minFoneDigits = 10
	maxFoneDigits = 15
)

// FoneDigits strips everything but ASCII digits.
func FoneDigits(fone string) string {
	b := make([]byte, 0, len(fone))
	for i := 0; i < len(fone); i++ {
		if c := fone[i]; c >= '0' && c <= '9' {
			b = append(b, c)
		}
	}
	return string(b)
}

// ValidFone reports whether fone carries between 10 and 15 digits once
// separators such as "+", spaces, dashes and parentheses are dropped.
func ValidFone(fone string) bool {
	n := len(FoneDigits(fone))
	return n >= minFoneDigits && n <= maxFoneDigits
}
