package answerer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
)

var firstInteger = regexp.MustCompile(`\d+`)

// BestMatch returns the option closest to text by case-insensitive edit distance.
// Ties go to the earliest option. It returns "" when options is empty.
func BestMatch(text string, options []string) string {
	if len(options) == 0 {
		return ""
	}
	text = strings.ToLower(text)

	best := options[0]
	bestDistance := levenshtein.ComputeDistance(text, strings.ToLower(best))
	for _, option := range options[1:] {
		if d := levenshtein.ComputeDistance(text, strings.ToLower(option)); d < bestDistance {
			best, bestDistance = option, d
		}
	}
	return best
}

// ExtractInteger returns the first run of digits in text
func ExtractInteger(text string) (int, bool) {
	match := firstInteger.FindString(text)
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}
