package scoring

import "strings"

// Normalize lowercases the input and strips everything except letters,
// digits, apostrophes and spaces, collapsing whitespace runs to a single
// space. The result is what the distance and tip rules operate on; it is
// never shown to users.
func Normalize(s string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '\'':
			return r
		default:
			return ' '
		}
	}, strings.ToLower(s))

	return strings.Join(strings.Fields(mapped), " ")
}
