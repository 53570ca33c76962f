package manager

import (
	"context"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
)

const loginPath = "/login"

// Login authenticates the session. On success the cookie jar carries the
// session cookie for every following request; a failed attempt leaves the
// session unauthenticated.
func (m *Manager) Login(ctx context.Context, email, password string, remember bool) error {
	m.authenticated = false

	doc, err := m.document(ctx, loginPath)
	if err != nil {
		return errors.Wrap(err, "could not load login page")
	}

	x := extractor{url: loginPath}

	token, err := x.childAttr(doc.Selection, `input[name="_token"]`, "value", "csrf token field")
	if err != nil {
		return err
	}

	res, err := m.do(ctx, http.MethodPost, loginPath, loginForm(email, password, remember, token))
	if err != nil {
		return err
	}

	if res.err != nil {
		if res.statusCode == 0 {
			return &NetworkError{URL: loginPath, Err: res.err}
		}
		return &AuthenticationError{StatusCode: res.statusCode, Body: string(res.body)}
	}

	m.authenticated = true
	m.log.Debug().Str("email", email).Msg("logged in")

	return nil
}

func loginForm(email, password string, remember bool, token string) map[string]string {
	return map[string]string{
		"email":    email,
		"password": password,
		"remember": strconv.FormatBool(remember),
		"_token":   token,
	}
}
