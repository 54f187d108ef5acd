package collab

import "regexp"

// addressPattern matches a street number followed by up to four words and
// a street suffix. The simulated customer must never surface a concrete
// address, even if the model invents one.
var addressPattern = regexp.MustCompile(`(?i)\b\d{3,6}\s+\w+(\s+\w+){0,3}\s+(st|street|ave|avenue|rd|road|blvd|boulevard|dr|drive)\b`)

// ScrubAddress replaces any street address in text with a neutral phrase
// and reports whether a replacement happened.
func ScrubAddress(text string) (string, bool) {
	if !addressPattern.MatchString(text) {
		return text, false
	}
	return addressPattern.ReplaceAllString(text, "a specific address"), true
}
