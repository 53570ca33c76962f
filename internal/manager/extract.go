package manager

import (
	"regexp"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var styleURLPattern = regexp.MustCompile(`url\(([^)]+)\)`)

// extractor resolves structural queries against one fetched page and
// reports every missing element as a ParseError for that page.
type extractor struct {
	url string
}

func (x extractor) missing(element string) error {
	return &ParseError{URL: x.url, Element: element}
}

// one returns the first match of selector below s.
func (x extractor) one(s *goquery.Selection, selector, element string) (*goquery.Selection, error) {
	found := s.Find(selector).First()
	if found.Length() == 0 {
		return nil, x.missing(element)
	}

	return found, nil
}

// attr returns the trimmed value of a required attribute.
func (x extractor) attr(s *goquery.Selection, name, element string) (string, error) {
	v, ok := s.Attr(name)
	if !ok {
		return "", x.missing(element + " " + name + " attribute")
	}

	return strings.TrimSpace(v), nil
}

// childAttr combines one and attr.
func (x extractor) childAttr(s *goquery.Selection, selector, name, element string) (string, error) {
	child, err := x.one(s, selector, element)
	if err != nil {
		return "", err
	}

	return x.attr(child, name, element)
}

// childText returns the trimmed text of the first match of selector.
func (x extractor) childText(s *goquery.Selection, selector, element string) (string, error) {
	child, err := x.one(s, selector, element)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(child.Text()), nil
}

// classTokens splits the class attribute of s into its tokens.
func classTokens(s *goquery.Selection) []string {
	return strings.Fields(s.AttrOr("class", ""))
}

// hasClassToken matches whole class tokens only, so "chapter-viewed-icon"
// does not count as "viewed".
func hasClassToken(s *goquery.Selection, token string) bool {
	return slices.Contains(classTokens(s), token)
}

// styleImage finds a url(...) reference in the style sheets or style
// attributes inside s. Quotes around the value are stripped.
func styleImage(s *goquery.Selection) *string {
	var sources []string

	s.Find("style").Each(func(_ int, style *goquery.Selection) {
		sources = append(sources, style.Text())
	})

	if v, ok := s.Attr("style"); ok {
		sources = append(sources, v)
	}

	s.Find("[style]").Each(func(_ int, el *goquery.Selection) {
		sources = append(sources, el.AttrOr("style", ""))
	})

	for _, src := range sources {
		matches := styleURLPattern.FindStringSubmatch(src)
		if len(matches) < 2 {
			continue
		}

		image := strings.Trim(strings.TrimSpace(matches[1]), `'"`)
		if image == "" {
			continue
		}

		return &image
	}

	return nil
}
