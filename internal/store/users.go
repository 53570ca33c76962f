package store

import (
	"context"
	"database/sql"

	"visor/internal/domain"

	"github.com/pkg/errors"
	"github.com/zalando/go-keyring"
)

// keyringService names the OS keyring entries holding account passwords.
const keyringService = "visor"

var ErrNoUser = errors.New("no saved credentials")

// SaveUser stores the credentials, replacing any saved before. The password
// goes to the OS keyring, only email and remember are written to sqlite.
func (s *Store) SaveUser(ctx context.Context, user domain.User) error {
	previous, err := s.savedEmail(ctx)
	if err != nil {
		return err
	}

	if err := keyring.Set(keyringService, user.Email, user.Password); err != nil {
		return errors.Wrap(err, "could not save password to keyring")
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO users (id, email, remember) VALUES (1, ?, ?)
ON CONFLICT(id) DO UPDATE SET email = excluded.email, remember = excluded.remember`,
		user.Email, user.Remember,
	)
	if err != nil {
		return errors.Wrap(err, "could not save credentials")
	}

	if previous != "" && previous != user.Email {
		return deleteSecret(previous)
	}

	return nil
}

// LoadUser returns the saved credentials. A saved email whose password is
// missing from the keyring counts as no credentials.
func (s *Store) LoadUser(ctx context.Context) (domain.User, error) {
	var user domain.User

	err := s.db.QueryRowContext(ctx, `SELECT email, remember FROM users WHERE id = 1`).
		Scan(&user.Email, &user.Remember)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, ErrNoUser
	}
	if err != nil {
		return domain.User{}, errors.Wrap(err, "could not load credentials")
	}

	user.Password, err = keyring.Get(keyringService, user.Email)
	if errors.Is(err, keyring.ErrNotFound) {
		return domain.User{}, ErrNoUser
	}
	if err != nil {
		return domain.User{}, errors.Wrap(err, "could not read password from keyring")
	}

	return user, nil
}

func (s *Store) DeleteUser(ctx context.Context) error {
	email, err := s.savedEmail(ctx)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return errors.Wrap(err, "could not delete credentials")
	}

	if email == "" {
		return nil
	}
	return deleteSecret(email)
}

func (s *Store) HasUser(ctx context.Context) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return false, errors.Wrap(err, "could not count credentials")
	}
	return n > 0, nil
}

func (s *Store) savedEmail(ctx context.Context) (string, error) {
	var email string

	err := s.db.QueryRowContext(ctx, `SELECT email FROM users WHERE id = 1`).Scan(&email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "could not load credentials")
	}

	return email, nil
}

func deleteSecret(email string) error {
	err := keyring.Delete(keyringService, email)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return errors.Wrap(err, "could not delete password from keyring")
	}
	return nil
}
