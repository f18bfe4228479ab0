package textutil

import (
	"regexp"
	"strconv"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

var nonDigitRegex = regexp.MustCompile(`[^\d]`)

// ParseMoney turns site-formatted currency text into an integer amount.
// The site renders amounts like "23.133.150 baht" or "1,250,000" and
// sometimes appends a delta in parentheses, which is cut off first.
// Returns 0 when no digits remain, unknown values never abort extraction.
func ParseMoney(text string) int64 {
	text = strings.SplitN(text, "(", 2)[0]
	text = nonDigitRegex.ReplaceAllString(text, "")
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// IsDigits reports whether the trimmed text consists solely of digits.
func IsDigits(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	for _, c := range text {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
