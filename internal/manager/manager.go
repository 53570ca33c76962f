package manager

import (
	"bytes"
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"visor/internal/sharedhttp"
	"visor/internal/throttle"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly"
	"github.com/gocolly/colly/extensions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL        = "https://visortmo.com"
	DefaultRequestTimeout = 30 * time.Second
)

type Options struct {
	BaseURL        string
	RequestTimeout time.Duration

	// Transport defaults to the shared transport.
	Transport http.RoundTripper

	// ListDelay is slept before every list crawl in GetAllBooks,
	// ChapterDelay before every chapter page fetch.
	ListDelay    *throttle.Delay
	ChapterDelay *throttle.Delay

	// RequireLogin makes profile operations fail with ErrNotAuthenticated
	// until Login has succeeded.
	RequireLogin bool

	Log zerolog.Logger
}

// Manager owns one authenticated browsing session against the catalog site.
// It is not safe for concurrent use.
type Manager struct {
	baseURL   *url.URL
	collector *colly.Collector
	jar       *cookiejar.Jar

	listDelay    *throttle.Delay
	chapterDelay *throttle.Delay
	requireLogin bool

	authenticated bool
	log           zerolog.Logger
}

func New(opts Options) (*Manager, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.Transport == nil {
		opts.Transport = sharedhttp.Transport
	}
	if opts.ListDelay == nil {
		opts.ListDelay = throttle.Seconds(2.5, 10)
	}
	if opts.ChapterDelay == nil {
		opts.ChapterDelay = throttle.Seconds(5, 30)
	}

	baseURL, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid base url %q", opts.BaseURL)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, errors.Errorf("base url must be absolute: %q", opts.BaseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	collector := colly.NewCollector(
		colly.AllowURLRevisit(),
	)
	collector.WithTransport(opts.Transport)
	collector.SetCookieJar(jar)
	collector.SetRequestTimeout(opts.RequestTimeout)

	return &Manager{
		baseURL:      baseURL,
		collector:    collector,
		jar:          jar,
		listDelay:    opts.ListDelay,
		chapterDelay: opts.ChapterDelay,
		requireLogin: opts.RequireLogin,
		log:          opts.Log.With().Str("module", "manager").Logger(),
	}, nil
}

func (m *Manager) String() string {
	return m.baseURL.Host
}

// Authenticated reports whether Login succeeded on this session.
func (m *Manager) Authenticated() bool {
	return m.authenticated
}

func (m *Manager) checkAuthenticated() error {
	if m.requireLogin && !m.authenticated {
		return ErrNotAuthenticated
	}
	return nil
}

// resolve turns a site-relative reference into an absolute URL.
func (m *Manager) resolve(ref string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", errors.Wrapf(err, "invalid url %q", ref)
	}

	return m.baseURL.ResolveReference(u).String(), nil
}

// response is the outcome of a single collector request.
type response struct {
	statusCode int
	body       []byte
	err        error
}

// do runs one request on a clone of the session collector. The clone shares
// the cookie jar and transport but gets a fresh random User-Agent.
func (m *Manager) do(ctx context.Context, method, rawURL string, form map[string]string) (response, error) {
	if err := ctx.Err(); err != nil {
		return response{}, err
	}

	target, err := m.resolve(rawURL)
	if err != nil {
		return response{}, err
	}

	var res response

	c := m.collector.Clone()
	extensions.RandomUserAgent(c)

	c.OnRequest(func(r *colly.Request) {
		m.log.Trace().Str("method", r.Method).Str("url", r.URL.String()).Msg("request")
	})

	c.OnResponse(func(r *colly.Response) {
		res.statusCode = r.StatusCode
		res.body = r.Body
	})

	c.OnError(func(r *colly.Response, err error) {
		res.err = err
		if r != nil {
			res.statusCode = r.StatusCode
			res.body = r.Body
		}
	})

	if method == "POST" {
		err = c.Post(target, form)
	} else {
		err = c.Visit(target)
	}
	if err != nil && res.err == nil {
		res.err = err
	}

	m.log.Trace().Str("url", target).Int("status", res.statusCode).Msg("response")

	return res, nil
}

// document fetches rawURL and parses it, failing on anything but a success status.
func (m *Manager) document(ctx context.Context, rawURL string) (*goquery.Document, error) {
	res, err := m.do(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, err
	}
	if res.err != nil {
		return nil, &NetworkError{URL: rawURL, StatusCode: res.statusCode, Err: res.err}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.body))
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse html from %s", rawURL)
	}

	return doc, nil
}
