package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/userdash/internal/client/client"
	"github.com/dmitrijs2005/userdash/internal/client/identity"
	"github.com/dmitrijs2005/userdash/internal/client/models"
	"github.com/dmitrijs2005/userdash/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/userdash/internal/common"
	"github.com/dmitrijs2005/userdash/internal/cryptox"
	"github.com/dmitrijs2005/userdash/internal/dbx"
	"github.com/dmitrijs2005/userdash/internal/logging"
)

// SignInResult is returned by a successful sign-up or sign-in. Sync is nil
// when no reconciliation ran (offline sign-in).
type SignInResult struct {
	Session *models.Session
	Sync    *SyncReport
	Offline bool
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - SignUp: create the identity, write the remote user document, reconcile.
//   - SignIn: authenticate online, cache offline credentials, reconcile. Falls
//     back to the cached credentials when the provider is unreachable.
//   - SignOut: drop the session and its cached copy.
//   - Restore: reload a non-expired cached session.
//   - Subscribe: receive every session change until cancel is called.
//
// Rejections are returned as *identity.AuthError.
type AuthService interface {
	SignUp(ctx context.Context, email, password, contact string) (*SignInResult, error)
	SignIn(ctx context.Context, email, password string) (*SignInResult, error)
	SignOut(ctx context.Context) error
	CurrentSession() *models.Session
	Restore(ctx context.Context) (*models.Session, error)
	Subscribe() (<-chan *models.Session, func())
}

type authService struct {
	idp        client.IdentityProvider
	remote     client.DocumentStore
	sync       SyncService
	db         *sql.DB
	collection string
	log        logging.Logger
	now        func() time.Time

	mu      sync.RWMutex
	session *models.Session

	subsMu  sync.Mutex
	subs    map[int]chan *models.Session
	nextSub int
}

func NewAuthService(idp client.IdentityProvider, remote client.DocumentStore, syncSvc SyncService,
	db *sql.DB, collection string, log logging.Logger) AuthService {
	return &authService{
		idp:        idp,
		remote:     remote,
		sync:       syncSvc,
		db:         db,
		collection: collection,
		log:        log,
		now:        time.Now,
		subs:       make(map[int]chan *models.Session),
	}
}

func (a *authService) getMetadataRepo() metadata.Repository {
	return metadata.NewSQLiteRepository(a.db)
}

func (a *authService) SignUp(ctx context.Context, email, password, contact string) (*SignInResult, error) {
	email = strings.TrimSpace(email)
	contact = strings.TrimSpace(contact)
	if email == "" || password == "" || contact == "" {
		return nil, identity.NewMissingFields(identity.OpSignUp, "")
	}

	s, err := a.idp.SignUp(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	doc := map[string]any{"uid": s.UID, "email": email, "contact": contact}
	if err := a.remote.Upsert(ctx, a.collection, s.UID, doc); err != nil {
		return nil, fmt.Errorf("sign up: store user document: %w", err)
	}

	return a.completeOnline(ctx, s, email, password), nil
}

func (a *authService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, identity.NewMissingFields(identity.OpSignIn, "")
	}

	s, err := a.idp.SignIn(ctx, email, password)
	if errors.Is(err, client.ErrUnavailable) {
		a.log.Warn(ctx, "identity provider unreachable, trying offline sign in", "error", err)
		return a.offlineSignIn(ctx, email, password, err)
	}
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	return a.completeOnline(ctx, s, email, password), nil
}

// completeOnline caches the credentials and session, publishes the session
// and reconciles. Cache and reconciliation failures are logged only.
func (a *authService) completeOnline(ctx context.Context, s *models.Session, email, password string) *SignInResult {
	if s.Email == "" {
		s.Email = email
	}

	if err := a.saveOfflineData(ctx, s, password); err != nil {
		a.log.Warn(ctx, "failed to cache offline credentials", "error", err)
	}
	a.setSession(s)

	res := &SignInResult{Session: s}
	if a.sync != nil {
		report, err := a.sync.Reconcile(ctx)
		if err != nil {
			a.log.Error(ctx, "reconcile after sign in failed", "error", err)
		}
		res.Sync = report
	}
	return res
}

// saveOfflineData persists the session together with the salt and verifier
// needed for offline sign in, in a single transaction.
func (a *authService) saveOfflineData(ctx context.Context, s *models.Session, password string) error {
	salt, err := common.MakeRandBytes(cryptox.SaltSize)
	if err != nil {
		return err
	}
	key := cryptox.DeriveKey([]byte(password), salt)
	verifier := cryptox.MakeVerifier(key)
	common.Wipe(key)

	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := metadata.SetJSON(ctx, repo, metadata.KeySession, s); err != nil {
			return err
		}
		if err := repo.Set(ctx, metadata.KeyOfflineEmail, []byte(s.Email)); err != nil {
			return err
		}
		if err := repo.Set(ctx, metadata.KeyOfflineUID, []byte(s.UID)); err != nil {
			return err
		}
		if err := repo.Set(ctx, metadata.KeyOfflineSalt, salt); err != nil {
			return err
		}
		return repo.Set(ctx, metadata.KeyVerifier, verifier)
	})
}

// offlineSignIn verifies the password against the locally cached verifier.
// It returns client.ErrLocalDataNotAvailable, joined with onlineErr, when no
// credentials for email are cached.
func (a *authService) offlineSignIn(ctx context.Context, email, password string, onlineErr error) (*SignInResult, error) {
	repo := a.getMetadataRepo()

	creds, err := repo.GetMany(ctx, metadata.OfflineKeys...)
	if err != nil {
		return nil, fmt.Errorf("offline sign in: %w", err)
	}
	savedEmail := creds[metadata.KeyOfflineEmail]
	salt := creds[metadata.KeyOfflineSalt]
	verifier := creds[metadata.KeyVerifier]
	if savedEmail == nil || !strings.EqualFold(string(savedEmail), email) || salt == nil || verifier == nil {
		return nil, fmt.Errorf("offline sign in: %w: %w", client.ErrLocalDataNotAvailable, onlineErr)
	}

	if !cryptox.CheckPassword([]byte(password), salt, verifier) {
		return nil, &identity.AuthError{Op: identity.OpSignIn, Kind: identity.WrongPassword}
	}

	s := &models.Session{Email: string(savedEmail), UID: string(creds[metadata.KeyOfflineUID]), Offline: true}
	if s.UID == "" {
		// credentials cached before the uid was stored alongside them
		var cached models.Session
		if ok, err := metadata.GetJSON(ctx, repo, metadata.KeySession, &cached); err == nil && ok {
			s.UID = cached.UID
		}
	}

	a.setSession(s)
	return &SignInResult{Session: s, Offline: true}, nil
}

// SignOut forgets the session. The offline verifier is kept so the same
// user can still sign in without connectivity.
func (a *authService) SignOut(ctx context.Context) error {
	if err := a.getMetadataRepo().Delete(ctx, metadata.KeySession); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	a.setSession(nil)
	return nil
}

func (a *authService) CurrentSession() *models.Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.session == nil {
		return nil
	}
	s := *a.session
	return &s
}

// Restore loads the cached session when it has not expired. It returns nil
// without error when there is nothing to restore.
func (a *authService) Restore(ctx context.Context) (*models.Session, error) {
	var s models.Session
	ok, err := metadata.GetJSON(ctx, a.getMetadataRepo(), metadata.KeySession, &s)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	if !ok || s.Expired(a.now()) {
		return nil, nil
	}

	a.setSession(&s)
	return a.CurrentSession(), nil
}

// Subscribe returns a channel that receives the session after every change
// (nil on sign out). Only the latest change is buffered. cancel closes the
// channel and may be called more than once.
func (a *authService) Subscribe() (<-chan *models.Session, func()) {
	ch := make(chan *models.Session, 1)

	a.subsMu.Lock()
	id := a.nextSub
	a.nextSub++
	a.subs[id] = ch
	a.subsMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			a.subsMu.Lock()
			delete(a.subs, id)
			a.subsMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (a *authService) setSession(s *models.Session) {
	a.mu.Lock()
	a.session = s
	a.mu.Unlock()

	var snapshot *models.Session
	if s != nil {
		c := *s
		snapshot = &c
	}

	a.subsMu.Lock()
	defer a.subsMu.Unlock()
	for _, ch := range a.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snapshot
	}
}
