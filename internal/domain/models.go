package domain

// Group is a scanlation group credited on a chapter option.
type Group struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Option is one readable release of a chapter: a group, language and date combination.
type Option struct {
	Groups     []Group `json:"groups"`
	Date       string  `json:"date"`
	Lang       string  `json:"lang"`
	ChapterURL string  `json:"chapterUrl"`
}

type Chapter struct {
	Title   string   `json:"title"`
	Viewed  bool     `json:"viewed"`
	Options []Option `json:"options"`
}

// Book is a title discovered on one of the followed lists.
// Chapters stays empty until it is explicitly loaded.
type Book struct {
	Title    string    `json:"title"`
	URL      string    `json:"url"`
	Image    *string   `json:"image,omitempty"`
	ListName string    `json:"listName"`
	Chapters []Chapter `json:"chapters"`
}

// UnreadChapters counts the chapters the site has not marked as viewed.
func (b Book) UnreadChapters() int {
	n := 0
	for _, c := range b.Chapters {
		if !c.Viewed {
			n++
		}
	}

	return n
}

// Languages returns the distinct option languages in first-seen order.
func (b Book) Languages() []string {
	seen := make(map[string]bool)
	var langs []string

	for _, c := range b.Chapters {
		for _, o := range c.Options {
			if o.Lang == "" || seen[o.Lang] {
				continue
			}
			seen[o.Lang] = true
			langs = append(langs, o.Lang)
		}
	}

	return langs
}

// List is a named, server-tracked collection of followed books.
type List struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Lists keeps the profile lists in the order the site renders them.
type Lists []List

// Map returns the list URLs keyed by list name.
func (l Lists) Map() map[string]string {
	m := make(map[string]string, len(l))
	for _, list := range l {
		m[list.Name] = list.URL
	}

	return m
}

type User struct {
	Email    string
	Password string
	Remember bool
}
