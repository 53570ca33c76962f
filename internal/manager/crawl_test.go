package manager

import (
	"context"
	"testing"
	"time"

	"visor/internal/domain"
	"visor/internal/throttle"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func crawlSite(t *testing.T) *site {
	t.Helper()

	return newSite(t, map[string]string{
		"/": "<html></html>",
		"/profile/groups": listsPage(
			[2]string{"Leyendo", "/lists/reading"},
			[2]string{"Pendiente", "/lists/pending"},
		),
		"/lists/reading": catalogPage("",
			catalogBook{Title: "Solanin", URL: "/library/manga/1/solanin", Style: `.c::before { background-image: url('http://x/1.jpg'); }`},
		),
		"/lists/pending": catalogPage("",
			catalogBook{Title: "Dorohedoro", URL: "/library/manga/2/dorohedoro"},
		),
		"/library/manga/1/solanin": chaptersPage(chapterItem{
			Title:     "Capítulo 1.00",
			IconClass: "chapter-viewed-icon viewed",
			Options:   []chapterOption{{Groups: [][2]string{{"Alpha", "/groups/1"}}, Date: "2020-01-01", Lang: "es", URL: "/view_uploads/1"}},
		}),
		"/library/manga/2/dorohedoro": chaptersPage(
			chapterItem{Title: "Capítulo 2.00", IconClass: "chapter-viewed-icon", Options: []chapterOption{{Date: "2020-02-02", Lang: "en", URL: "/view_uploads/3"}}},
			chapterItem{Title: "Capítulo 1.00", IconClass: "chapter-viewed-icon", Options: []chapterOption{{Date: "2020-01-02", Lang: "en", URL: "/view_uploads/2"}}},
		),
	})
}

func TestGetAllBooks(t *testing.T) {
	s := crawlSite(t)
	m := newTestManager(t, s.URL, true)

	require.NoError(t, m.Login(context.Background(), "reader@example.com", "secret", false))

	books, err := m.GetAllBooks(context.Background())
	require.NoError(t, err)

	require.Len(t, books, 2)

	assert.Equal(t, "Solanin", books[0].Title)
	assert.Equal(t, "Leyendo", books[0].ListName)
	assert.Equal(t, strPtr("http://x/1.jpg"), books[0].Image)
	assert.Equal(t, []domain.Chapter{{
		Title:  "Capítulo 1.00",
		Viewed: true,
		Options: []domain.Option{{
			Groups:     []domain.Group{{Title: "Alpha", URL: "/groups/1"}},
			Date:       "2020-01-01",
			Lang:       "es",
			ChapterURL: "/view_uploads/1",
		}},
	}}, books[0].Chapters)

	assert.Equal(t, "Dorohedoro", books[1].Title)
	assert.Equal(t, "Pendiente", books[1].ListName)
	assert.Nil(t, books[1].Image)
	require.Len(t, books[1].Chapters, 2)
	assert.Equal(t, "Capítulo 2.00", books[1].Chapters[0].Title)
	assert.Equal(t, 2, books[1].UnreadChapters())
	assert.Zero(t, books[0].UnreadChapters())

	// lists are crawled before any chapter page
	assert.Equal(t, []string{
		"GET /login",
		"POST /login",
		"GET /",
		"GET /profile/groups",
		"GET /lists/reading",
		"GET /lists/pending",
		"GET /library/manga/1/solanin",
		"GET /library/manga/2/dorohedoro",
	}, s.requests())
}

func TestGetAllBooks_RequiresLogin(t *testing.T) {
	s := crawlSite(t)
	m := newTestManager(t, s.URL, true)

	books, err := m.GetAllBooks(context.Background())

	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Nil(t, books)
	assert.Empty(t, s.requests())
}

func TestGetAllBooks_LoggedOutPageIsParseError(t *testing.T) {
	s := crawlSite(t)
	m := newTestManager(t, s.URL, false)

	_, err := m.GetAllBooks(context.Background())

	assert.ErrorIs(t, err, ErrParse)
	assert.Contains(t, err.Error(), "profile lists region")
}

func TestGetAllBooks_AbortsOnChapterError(t *testing.T) {
	s := crawlSite(t)
	s.pages["/library/manga/1/solanin"] = `<html><body>cambiado</body></html>`
	m := newTestManager(t, s.URL, true)

	require.NoError(t, m.Login(context.Background(), "reader@example.com", "secret", false))

	books, err := m.GetAllBooks(context.Background())

	assert.ErrorIs(t, err, ErrParse)
	assert.Nil(t, books)
	assert.Zero(t, s.hitCount("GET /library/manga/2/dorohedoro"))
}

func TestGetAllBooks_DelaysBeforeEachFetch(t *testing.T) {
	s := crawlSite(t)

	m, err := New(Options{
		BaseURL:      s.URL,
		ListDelay:    throttle.New(20*time.Millisecond, 20*time.Millisecond),
		ChapterDelay: throttle.New(30*time.Millisecond, 30*time.Millisecond),
		RequireLogin: true,
		Log:          zerolog.Nop(),
	})
	require.NoError(t, err)
	require.NoError(t, m.Login(context.Background(), "reader@example.com", "secret", false))

	start := time.Now()
	_, err = m.GetAllBooks(context.Background())
	require.NoError(t, err)

	// two list delays and two chapter delays
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestGetAllBooks_CancelledDuringDelay(t *testing.T) {
	s := crawlSite(t)

	m, err := New(Options{
		BaseURL:      s.URL,
		ListDelay:    throttle.New(time.Hour, time.Hour),
		ChapterDelay: throttle.New(0, 0),
		Log:          zerolog.Nop(),
	})
	require.NoError(t, err)
	require.NoError(t, m.Login(context.Background(), "reader@example.com", "secret", false))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = m.GetAllBooks(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, s.hitCount("GET /lists/reading"))
}
