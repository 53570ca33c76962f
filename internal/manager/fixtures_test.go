package manager

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"visor/internal/throttle"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const loginPage = `<!DOCTYPE html>
<html><body>
<form method="POST" action="/login">
  <input type="hidden" name="_token" value="csrf-Zx81-token">
  <input type="email" name="email">
  <input type="password" name="password">
</form>
</body></html>`

// catalogBook renders one book card of a list page.
type catalogBook struct {
	Title string
	URL   string
	Style string
}

func catalogPage(next string, books ...catalogBook) string {
	var sb strings.Builder

	sb.WriteString(`<!DOCTYPE html><html><body><div id="app"><section><main><div><div>`)
	sb.WriteString(`<div class="col-12 col-lg-8"><div class="row">`)
	for _, b := range books {
		fmt.Fprintf(&sb, `<div class="element"><a href="%s">`, b.URL)
		if b.Style != "" {
			fmt.Fprintf(&sb, `<style>%s</style>`, b.Style)
		}
		fmt.Fprintf(&sb, `<div class="thumbnail book"><div class="thumbnail-title"><h4 class="text-truncate" title="%s">%s</h4></div></div></a></div>`, b.Title, b.Title)
	}
	sb.WriteString(`</div><div class="sidebar"></div></div>`)
	sb.WriteString(`</div></div></main></section></div>`)
	if next != "" {
		fmt.Fprintf(&sb, `<nav><a class="relative inline-flex items-center" rel="next" href="%s">Siguiente</a></nav>`, next)
	}
	sb.WriteString(`</body></html>`)

	return sb.String()
}

func listsPage(lists ...[2]string) string {
	var sb strings.Builder

	sb.WriteString(`<!DOCTYPE html><html><body><div id="app"><section><header>`)
	sb.WriteString(`<section class="element-header-bar"><div class="container"><div class="row"><div class="col-12">`)
	for _, l := range lists {
		fmt.Fprintf(&sb, `<a class="btn" href="%s"><i class="fa fa-book"></i> <small> %s </small></a>`, l[1], l[0])
	}
	sb.WriteString(`</div></div></div></section></header></section></div></body></html>`)

	return sb.String()
}

// chapterOption renders one option row; an empty lang omits the flag icon.
type chapterOption struct {
	Groups [][2]string
	Date   string
	Lang   string
	URL    string
}

type chapterItem struct {
	Title     string
	IconClass string
	NoIcon    bool
	Options   []chapterOption
}

func chaptersPage(chapters ...chapterItem) string {
	var sb strings.Builder

	sb.WriteString(`<!DOCTYPE html><html><body><div class="card" id="chapters"><ul class="list-group">`)
	for _, c := range chapters {
		sb.WriteString(`<li class="list-group-item"><h4 class="px-2">`)
		fmt.Fprintf(&sb, `<a class="btn-collapse">%s</a>`, c.Title)
		if !c.NoIcon {
			fmt.Fprintf(&sb, `<span class="%s"></span>`, c.IconClass)
		}
		sb.WriteString(`</h4><div class="collapse"><div class="card"><ul class="list-group">`)
		for _, o := range c.Options {
			sb.WriteString(`<li class="list-group-item"><div class="row">`)
			sb.WriteString(`<div class="col-4">`)
			for _, g := range o.Groups {
				fmt.Fprintf(&sb, `<span><a href="%s">%s</a></span>`, g[1], g[0])
			}
			sb.WriteString(`</div>`)
			fmt.Fprintf(&sb, `<div class="col-2"><span class="badge"> %s </span></div>`, o.Date)
			sb.WriteString(`<div class="col-1">`)
			if o.Lang != "" {
				fmt.Fprintf(&sb, `<i class="flag-icon flag-icon-%s"></i>`, o.Lang)
			}
			sb.WriteString(`</div><div class="col-1"></div><div class="col-1"></div>`)
			fmt.Fprintf(&sb, `<div class="col-2"><a class="btn" href="%s"><span class="fa fa-play"></span></a></div>`, o.URL)
			sb.WriteString(`</div></li>`)
		}
		sb.WriteString(`</ul></div></div></li>`)
	}
	sb.WriteString(`</ul></div></body></html>`)

	return sb.String()
}

// site is a fixture catalog that counts every request per path and query.
type site struct {
	*httptest.Server

	mu        sync.Mutex
	hits      map[string]int
	order     []string
	agents    []string
	loginForm map[string]string
	loginHTML string
	pages     map[string]string
}

func newSite(t *testing.T, pages map[string]string) *site {
	t.Helper()

	s := &site{
		hits:      make(map[string]int),
		loginHTML: loginPage,
		pages:     pages,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			s.serve(w, r, s.loginHTML)
			return
		}

		s.record(r)
		require.NoError(t, r.ParseForm())

		s.mu.Lock()
		s.loginForm = map[string]string{
			"email":    r.PostForm.Get("email"),
			"password": r.PostForm.Get("password"),
			"remember": r.PostForm.Get("remember"),
			"_token":   r.PostForm.Get("_token"),
		}
		s.mu.Unlock()

		if r.PostForm.Get("password") != "secret" || r.PostForm.Get("_token") != "csrf-Zx81-token" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte("These credentials do not match our records."))
			return
		}

		http.SetCookie(w, &http.Cookie{Name: "session", Value: "authenticated", Path: "/"})
		http.Redirect(w, r, "/", http.StatusFound)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path
		if r.URL.RawQuery != "" {
			key += "?" + r.URL.RawQuery
		}

		if key == "/profile/groups" {
			if c, err := r.Cookie("session"); err != nil || c.Value != "authenticated" {
				s.serve(w, r, `<html><body><div id="app"><a href="/login">Ingresar</a></div></body></html>`)
				return
			}
		}

		page, ok := s.pages[key]
		if !ok {
			s.record(r)
			http.NotFound(w, r)
			return
		}
		s.serve(w, r, page)
	})

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)

	return s
}

func (s *site) record(r *http.Request) {
	key := r.URL.Path
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.hits[r.Method+" "+key]++
	s.order = append(s.order, r.Method+" "+key)
	s.agents = append(s.agents, r.Header.Get("User-Agent"))
}

func (s *site) serve(w http.ResponseWriter, r *http.Request, page string) {
	s.record(r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}

func (s *site) hitCount(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[key]
}

func (s *site) requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

func newTestManager(t *testing.T, baseURL string, requireLogin bool) *Manager {
	t.Helper()

	m, err := New(Options{
		BaseURL:      baseURL,
		ListDelay:    throttle.New(0, 0),
		ChapterDelay: throttle.New(0, 0),
		RequireLogin: requireLogin,
		Log:          zerolog.Nop(),
	})
	require.NoError(t, err)

	return m
}
