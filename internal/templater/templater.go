package templater

import (
	"regexp"
	"strconv"
	"strings"

	"visor/internal/domain"
	"visor/internal/parse"
)

var templatePattern = regexp.MustCompile(`{((\w+?)(:.*?)?)}`)

// DefaultNaming names a catalog entry after its book.
const DefaultNaming = "{book:<.>}"

// Templater renders catalog entry names. Text variables take a pattern
// where <.> is the value ({list: [<.>]}) and render nothing when empty;
// chapter numbers take a pad width ({latest:3}).
type Templater struct {
	Book domain.Book
}

func New(book domain.Book) *Templater {
	return &Templater{
		Book: book,
	}
}

func (t *Templater) handleNum(num float32, found bool, options string) string {
	if !found {
		return ""
	}

	if options == "" {
		return strconv.FormatFloat(float64(num), 'f', -1, 32)
	}

	width, _ := strconv.ParseInt(strings.ReplaceAll(options, ":", ""), 10, 32)
	return padNumber(num, int(width))
}

func (t *Templater) handleText(value, options string) string {
	if value == "" {
		return ""
	}
	if options == "" {
		return value
	}

	cleanString := strings.ReplaceAll(options, ":", "")
	return strings.ReplaceAll(cleanString, "<.>", value)
}

func (t *Templater) ExecTemplate(template string) string {
	first, latest, err := parse.MinMax(parse.ChapterNumbers(t.Book.Chapters))
	found := err == nil

	unread := ""
	if n := t.Book.UnreadChapters(); n > 0 {
		unread = strconv.Itoa(n)
	}

	newString := template
	for _, match := range templatePattern.FindAllStringSubmatch(template, -1) {
		replace := match[0]
		options := match[3]

		switch match[2] {
		case "book":
			replace = t.handleText(t.Book.Title, options)
		case "list":
			replace = t.handleText(t.Book.ListName, options)
		case "unread":
			replace = t.handleText(unread, options)
		case "first":
			replace = t.handleNum(first, found, options)
		case "latest":
			replace = t.handleNum(latest, found, options)
		}

		newString = strings.Replace(newString, match[0], replace, 1)
	}

	return strings.TrimSpace(newString)
}

// padNumber zero pads the integer part of num to width, keeping its decimals.
func padNumber(num float32, width int) string {
	intPart, decimals, hasDecimals := strings.Cut(strconv.FormatFloat(float64(num), 'f', -1, 32), ".")

	if padding := width - len(intPart); padding > 0 {
		intPart = strings.Repeat("0", padding) + intPart
	}

	if hasDecimals {
		return intPart + "." + decimals
	}
	return intPart
}
