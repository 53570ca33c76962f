package cmd

import (
	"context"
	"time"

	"visor/internal/buildinfo"
	"visor/internal/config"
	"visor/internal/domain"
	"visor/internal/logger"
	"visor/internal/manager"
	"visor/internal/sharedhttp"
	"visor/internal/store"
	"visor/internal/throttle"

	"github.com/pkg/errors"
)

// app bundles what every command needs. Callers must call close.
type app struct {
	cfg   *config.AppConfig
	log   logger.Logger
	store *store.Store
}

func newApp() (*app, error) {
	// read config
	cfg := config.New(configPath, buildinfo.Version)

	// init new logger
	log := logger.New(cfg.Config)

	st, err := store.Open(cfg.Config.DatabasePath)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open database %s", cfg.Config.DatabasePath)
	}

	return &app{cfg: cfg, log: log, store: st}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.log.Error().Err(err).Msg("error closing database")
	}
}

func (a *app) newManager(cfg domain.Config) (*manager.Manager, error) {
	transport, err := sharedhttp.NewTransport(cfg.Proxy, cfg.BypassCloudflare)
	if err != nil {
		return nil, err
	}

	return manager.New(manager.Options{
		BaseURL:        cfg.BaseURL,
		RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
		Transport:      transport,
		ListDelay:      throttle.Seconds(cfg.ListDelayMin, cfg.ListDelayMax),
		ChapterDelay:   throttle.Seconds(cfg.ChapterDelayMin, cfg.ChapterDelayMax),
		RequireLogin:   cfg.RequireLogin,
		Log:            a.log.Logger(),
	})
}

// credentials prefers the saved login over the config file.
func (a *app) credentials(ctx context.Context, cfg domain.Config) (domain.User, error) {
	user, err := a.store.LoadUser(ctx)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNoUser) {
		return domain.User{}, err
	}

	return domain.User{
		Email:    cfg.Email,
		Password: cfg.Password,
		Remember: cfg.Remember,
	}, nil
}

// session returns a manager that is logged in whenever credentials exist.
func (a *app) session(ctx context.Context) (*manager.Manager, error) {
	cfg := a.cfg.Snapshot()

	m, err := a.newManager(cfg)
	if err != nil {
		return nil, err
	}

	user, err := a.credentials(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if user.Email == "" {
		if cfg.RequireLogin {
			return nil, errors.New(`no credentials found, run "visor login" or set email and password in the config`)
		}
		a.log.Debug().Msg("no credentials found, continuing without login")
		return m, nil
	}

	if err := m.Login(ctx, user.Email, user.Password, user.Remember); err != nil {
		return nil, errors.Wrapf(err, "could not log in as %s", user.Email)
	}
	a.log.Debug().Str("site", m.String()).Msgf("logged in as %s", user.Email)

	return m, nil
}
