package sanitize

import (
	"regexp"
	"strings"
	"unicode"
)

// maxFilenameLength leaves room for an extension within common 255 byte limits.
const maxFilenameLength = 200

var (
	illegalChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// Filename turns a book title into a file name that is valid on every
// common filesystem. Titles that end up empty become "untitled".
func Filename(title string) string {
	title = illegalChars.ReplaceAllString(title, "")
	title = whitespace.ReplaceAllString(title, " ")
	title = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, title)

	if len(title) > maxFilenameLength {
		title = truncate(title, maxFilenameLength)
	}

	// windows rejects names ending in a dot or space
	title = strings.Trim(title, " .")
	if title == "" {
		return "untitled"
	}

	return title
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	cut := 0
	for i := range s {
		if i > n {
			break
		}
		cut = i
	}
	return s[:cut]
}
