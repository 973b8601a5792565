package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/userdash/internal/client/client"
	"github.com/dmitrijs2005/userdash/internal/client/config"
	"github.com/dmitrijs2005/userdash/internal/client/export"
	"github.com/dmitrijs2005/userdash/internal/client/identity"
	"github.com/dmitrijs2005/userdash/internal/client/models"
	"github.com/dmitrijs2005/userdash/internal/client/remote"
	"github.com/dmitrijs2005/userdash/internal/client/repositories/users"
	"github.com/dmitrijs2005/userdash/internal/client/services"
	"github.com/dmitrijs2005/userdash/internal/filex"
	"github.com/dmitrijs2005/userdash/internal/logging"
)

type Mode string

const (
	ModeOffline  Mode = "offline"
	ModeOnline   Mode = "online"
	ModeDisabled Mode = "disabled"
)

// snapshotExporter uploads a dashboard snapshot and returns its object key.
type snapshotExporter interface {
	Export(ctx context.Context, snap *models.DashboardSnapshot) (string, error)
}

type App struct {
	config    *config.Config
	auth      services.AuthService
	profile   services.ProfileService
	dashboard services.DashboardService
	sync      services.SyncService
	users     users.Repository
	remote    client.DocumentStore
	exporter  snapshotExporter
	loc       *time.Location
	log       logging.Logger
	reader    *bufio.Reader
	out       io.Writer

	modeMu sync.RWMutex
	mode   Mode

	closers []func(ctx context.Context) error
}

// NewApp wires the local cache, the remote store, the identity provider and
// the services on top of them. A local database that cannot be opened is
// replaced by an in-memory one so the session still works without a
// persistent cache.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	policy, err := services.ParsePolicy(c.ReconcilePolicy)
	if err != nil {
		return nil, err
	}

	db, err := openDatabase(ctx, c.DatabasePath, log)
	if err != nil {
		return nil, err
	}

	store, err := remote.Dial(ctx, c.MongoURI, c.MongoDatabase)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	repos := client.NewRepositories(db)
	idp := identity.NewClient(c.IdentityEndpoint, c.IdentityAPIKey)

	syncSvc := services.NewSyncService(store, repos.Users, c.UsersCollection, policy, log.With("component", "sync"))
	authSvc := services.NewAuthService(idp, store, syncSvc, db, c.UsersCollection, log.With("component", "auth"))

	app := &App{
		config:    c,
		auth:      authSvc,
		profile:   services.NewProfileService(authSvc, repos.Users, store, c.UsersCollection, log.With("component", "profile")),
		dashboard: services.NewDashboardService(repos.Users, log.With("component", "dashboard")),
		sync:      syncSvc,
		users:     repos.Users,
		remote:    store,
		loc:       loc,
		log:       log,
		reader:    bufio.NewReader(os.Stdin),
		out:       os.Stdout,
		closers: []func(ctx context.Context) error{
			store.Close,
			func(context.Context) error { return db.Close() },
		},
	}

	exp, err := export.New(ctx, export.Config{
		Region:    c.S3Region,
		Endpoint:  c.S3Endpoint,
		Bucket:    c.S3Bucket,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
	})
	switch {
	case errors.Is(err, export.ErrDisabled):
		log.Debug(ctx, "dashboard export disabled")
	case err != nil:
		log.Warn(ctx, "dashboard export unavailable", "error", err)
	default:
		app.exporter = exp
	}

	return app, nil
}

func openDatabase(ctx context.Context, path string, log logging.Logger) (*sql.DB, error) {
	db, err := openFile(ctx, path)
	if err == nil {
		return db, nil
	}
	log.Error(ctx, "local cache unavailable, continuing with an in-memory cache", "path", path, "error", err)

	db, err = client.InitDatabase(ctx, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("in-memory cache: %w", err)
	}
	return db, nil
}

func openFile(ctx context.Context, path string) (*sql.DB, error) {
	if err := filex.EnsureParentDir(path); err != nil {
		return nil, err
	}
	return client.InitDatabase(ctx, path)
}

// Close releases the remote client and the local database.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for _, c := range a.closers {
		if err := c(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *App) Mode() Mode {
	a.modeMu.RLock()
	defer a.modeMu.RUnlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		a.log.Info(context.Background(), "switched mode", "mode", string(mode))
	}
}

func (a *App) isLoggedIn() bool {
	return a.auth != nil && a.auth.CurrentSession() != nil
}

// Run restores a cached session, starts the connectivity watcher and runs
// the REPL until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s, err := a.auth.Restore(ctx); err != nil {
		a.log.Warn(ctx, "failed to restore session", "error", err)
	} else if s != nil {
		a.log.Info(ctx, "session restored", "email", s.Email)
	}

	go a.watchSession(ctx)
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	a.Root(ctx)
}

// watchSession logs every sign in and sign out.
func (a *App) watchSession(ctx context.Context) {
	ch, cancel := a.auth.Subscribe()
	defer cancel()

	for {
		select {
		case s, ok := <-ch:
			if !ok {
				return
			}
			if s == nil {
				a.log.Info(ctx, "signed out")
			} else {
				a.log.Info(ctx, "signed in", "email", s.Email, "offline", s.Offline)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.remote.Ping(ctx)
	cancel()

	if err != nil {
		a.setMode(ModeOffline)
	} else {
		a.setMode(ModeOnline)
	}
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}
