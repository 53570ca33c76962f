package manager

import (
	"context"

	"visor/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

const (
	profileListsPath     = "/profile/groups"
	profileListsSelector = "#app > section > header > section.element-header-bar > div > div > div"
)

// GetURLState returns the followed lists of the logged in profile, in the
// order the site shows them.
func (m *Manager) GetURLState(ctx context.Context) (domain.Lists, error) {
	if err := m.checkAuthenticated(); err != nil {
		return nil, err
	}

	doc, err := m.document(ctx, profileListsPath)
	if err != nil {
		return nil, errors.Wrap(err, "could not load profile lists")
	}

	return parseLists(profileListsPath, doc.Selection)
}

func parseLists(pageURL string, page *goquery.Selection) (domain.Lists, error) {
	x := extractor{url: pageURL}

	region, err := x.one(page, profileListsSelector, "profile lists region")
	if err != nil {
		return nil, err
	}

	var lists domain.Lists

	anchors := region.Find("a")
	for i := range anchors.Length() {
		a := anchors.Eq(i)

		name, err := x.childText(a, "small", "list label")
		if err != nil {
			return nil, err
		}

		href, err := x.attr(a, "href", "list link")
		if err != nil {
			return nil, err
		}

		lists = append(lists, domain.List{Name: name, URL: href})
	}

	return lists, nil
}
