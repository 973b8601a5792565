package services

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/userdash/internal/client/client"
	"github.com/dmitrijs2005/userdash/internal/client/identity"
	"github.com/dmitrijs2005/userdash/internal/client/models"
	"github.com/dmitrijs2005/userdash/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/userdash/internal/client/repositories/users"
	"github.com/dmitrijs2005/userdash/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newAuth(t *testing.T, db *sql.DB, idp *fakeIDP, store *fakeStore, syncSvc SyncService) *authService {
	t.Helper()
	a := NewAuthService(idp, store, syncSvc, db, "users", nopLogger()).(*authService)
	a.now = func() time.Time { return fixedNow }
	return a
}

func onlineSession() *models.Session {
	return &models.Session{UID: "uid-1", Email: "ann@x.io", IDToken: "tok", ExpiresAt: fixedNow.Add(time.Hour)}
}

func getMeta(t *testing.T, db *sql.DB, k string) []byte {
	t.Helper()
	v, err := metadata.NewSQLiteRepository(db).Get(context.Background(), k)
	require.NoError(t, err)
	return v
}

func requireAuthKind(t *testing.T, err error, kind identity.Kind) {
	t.Helper()
	var ae *identity.AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, kind, ae.Kind)
}

func TestSignIn_MissingFields(t *testing.T) {
	idp := &fakeIDP{}
	a := newAuth(t, setupDB(t), idp, &fakeStore{}, nil)

	for _, c := range [][2]string{{"", "pw"}, {"a@x.io", ""}, {"   ", "pw"}} {
		_, err := a.SignIn(context.Background(), c[0], c[1])
		requireAuthKind(t, err, identity.MissingFields)
		assert.Equal(t, "Please fill in both fields.", identity.UserMessage(err))
	}
	assert.Zero(t, idp.SignInCalls)
}

func TestSignIn_Online_CachesAndReconciles(t *testing.T) {
	db := setupDB(t)
	idp := &fakeIDP{SignInSession: onlineSession()}
	fs := &fakeSync{Report: &SyncReport{RunID: "r1"}}
	a := newAuth(t, db, idp, &fakeStore{}, fs)

	ch, cancel := a.Subscribe()
	defer cancel()

	res, err := a.SignIn(context.Background(), " ann@x.io ", "secret")
	require.NoError(t, err)

	assert.False(t, res.Offline)
	assert.Equal(t, "uid-1", res.Session.UID)
	assert.Equal(t, "r1", res.Sync.RunID)
	assert.Equal(t, 1, fs.Calls)

	assert.Equal(t, "uid-1", a.CurrentSession().UID)
	select {
	case s := <-ch:
		require.NotNil(t, s)
		assert.Equal(t, "ann@x.io", s.Email)
	default:
		t.Fatal("expected a session notification")
	}

	assert.Equal(t, []byte("ann@x.io"), getMeta(t, db, metadata.KeyOfflineEmail))
	assert.Equal(t, []byte("uid-1"), getMeta(t, db, metadata.KeyOfflineUID))
	salt := getMeta(t, db, metadata.KeyOfflineSalt)
	verifier := getMeta(t, db, metadata.KeyVerifier)
	require.Len(t, salt, cryptox.SaltSize)
	assert.True(t, cryptox.CheckPassword([]byte("secret"), salt, verifier))
	assert.NotNil(t, getMeta(t, db, metadata.KeySession))
}

func TestSignIn_ReconcileErrorIsNotReturned(t *testing.T) {
	fs := &fakeSync{Report: &SyncReport{}, Err: fmt.Errorf("reconcile: boom")}
	a := newAuth(t, setupDB(t), &fakeIDP{SignInSession: onlineSession()}, &fakeStore{}, fs)

	res, err := a.SignIn(context.Background(), "ann@x.io", "secret")
	require.NoError(t, err)
	assert.NotNil(t, res.Sync)
}

func TestSignIn_ProviderRejection(t *testing.T) {
	idp := &fakeIDP{SignInErr: &identity.AuthError{Op: identity.OpSignIn, Kind: identity.UserNotFound, Code: "EMAIL_NOT_FOUND"}}
	fs := &fakeSync{}
	a := newAuth(t, setupDB(t), idp, &fakeStore{}, fs)

	_, err := a.SignIn(context.Background(), "ann@x.io", "secret")
	requireAuthKind(t, err, identity.UserNotFound)
	assert.Equal(t, "User not found. Please sign up.", identity.UserMessage(err))
	assert.Nil(t, a.CurrentSession())
	assert.Zero(t, fs.Calls)
}

func TestSignIn_OfflineFallback(t *testing.T) {
	db := setupDB(t)
	idp := &fakeIDP{SignInSession: onlineSession()}
	fs := &fakeSync{Report: &SyncReport{}}
	a := newAuth(t, db, idp, &fakeStore{}, fs)
	ctx := context.Background()

	_, err := a.SignIn(ctx, "ann@x.io", "secret")
	require.NoError(t, err)
	require.NoError(t, a.SignOut(ctx))

	idp.SignInErr = fmt.Errorf("dial: %w", client.ErrUnavailable)

	res, err := a.SignIn(ctx, "ANN@x.io", "secret")
	require.NoError(t, err)
	assert.True(t, res.Offline)
	assert.Nil(t, res.Sync)
	assert.True(t, res.Session.Offline)
	assert.Equal(t, "ann@x.io", res.Session.Email)
	assert.Equal(t, 1, fs.Calls, "no reconciliation while offline")
}

func TestSignIn_OfflineAfterSignOutKeepsUID(t *testing.T) {
	db := setupDB(t)
	idp := &fakeIDP{SignInSession: onlineSession()}
	a := newAuth(t, db, idp, &fakeStore{}, nil)
	ctx := context.Background()

	_, err := a.SignIn(ctx, "ann@x.io", "secret")
	require.NoError(t, err)
	require.NoError(t, a.SignOut(ctx))
	require.Nil(t, getMeta(t, db, metadata.KeySession))

	idp.SignInErr = client.ErrUnavailable
	res, err := a.SignIn(ctx, "ann@x.io", "secret")
	require.NoError(t, err)
	assert.True(t, res.Offline)
	assert.Equal(t, "uid-1", res.Session.UID)
	assert.Equal(t, "uid-1", a.CurrentSession().UID)
}

func TestSignIn_OfflineWrongPassword(t *testing.T) {
	db := setupDB(t)
	idp := &fakeIDP{SignInSession: onlineSession()}
	a := newAuth(t, db, idp, &fakeStore{}, nil)
	ctx := context.Background()

	_, err := a.SignIn(ctx, "ann@x.io", "secret")
	require.NoError(t, err)

	idp.SignInErr = client.ErrUnavailable
	_, err = a.SignIn(ctx, "ann@x.io", "wrong")
	requireAuthKind(t, err, identity.WrongPassword)
}

func TestSignIn_OfflineWithoutCache(t *testing.T) {
	idp := &fakeIDP{SignInErr: fmt.Errorf("post: %w", client.ErrUnavailable)}
	a := newAuth(t, setupDB(t), idp, &fakeStore{}, nil)

	_, err := a.SignIn(context.Background(), "ann@x.io", "secret")
	require.ErrorIs(t, err, client.ErrLocalDataNotAvailable)
	require.ErrorIs(t, err, client.ErrUnavailable)
	assert.Nil(t, a.CurrentSession())
}

func TestSignIn_OfflineOtherUser(t *testing.T) {
	db := setupDB(t)
	idp := &fakeIDP{SignInSession: onlineSession()}
	a := newAuth(t, db, idp, &fakeStore{}, nil)
	ctx := context.Background()

	_, err := a.SignIn(ctx, "ann@x.io", "secret")
	require.NoError(t, err)

	idp.SignInErr = client.ErrUnavailable
	_, err = a.SignIn(ctx, "bob@x.io", "secret")
	require.ErrorIs(t, err, client.ErrLocalDataNotAvailable)
}

func TestSignUp_MissingFields(t *testing.T) {
	idp := &fakeIDP{}
	a := newAuth(t, setupDB(t), idp, &fakeStore{}, nil)

	_, err := a.SignUp(context.Background(), "a@x.io", "pw", " ")
	requireAuthKind(t, err, identity.MissingFields)
	assert.Equal(t, "All fields are required.", identity.UserMessage(err))
	assert.Zero(t, idp.SignUpCalls)
}

func TestSignUp_WritesDocumentAndReconciles(t *testing.T) {
	db := setupDB(t)
	store := &fakeStore{Records: []models.RemoteUserRecord{{RemoteID: "old", Email: "old@x.io", Contact: "0"}}}
	syncSvc := NewSyncService(store, users.NewSQLiteRepository(db), "users", PolicyBestEffort, nopLogger())
	idp := &fakeIDP{SignUpSession: &models.Session{UID: "uid-new", ExpiresAt: fixedNow.Add(time.Hour)}}
	a := newAuth(t, db, idp, store, syncSvc)

	res, err := a.SignUp(context.Background(), "new@x.io", "secret", "555")
	require.NoError(t, err)
	assert.Equal(t, "new@x.io", res.Session.Email)

	require.Len(t, store.Upserts, 1)
	assert.Equal(t, upsertCall{
		Collection: "users",
		ID:         "uid-new",
		Fields:     map[string]any{"uid": "uid-new", "email": "new@x.io", "contact": "555"},
	}, store.Upserts[0])

	require.NotNil(t, res.Sync)
	assert.Equal(t, 2, res.Sync.Inserted())
	assert.ElementsMatch(t, []string{"old@x.io", "new@x.io"}, emails(readAll(t, db)))
}

func TestSignUp_ProviderRejection(t *testing.T) {
	idp := &fakeIDP{SignUpErr: &identity.AuthError{Op: identity.OpSignUp, Kind: identity.EmailExists}}
	store := &fakeStore{}
	a := newAuth(t, setupDB(t), idp, store, nil)

	_, err := a.SignUp(context.Background(), "a@x.io", "secret", "555")
	requireAuthKind(t, err, identity.EmailExists)
	assert.Empty(t, store.Upserts)
}

func TestSignUp_DocumentWriteFails(t *testing.T) {
	store := &fakeStore{UpsertErr: fmt.Errorf("write: %w", client.ErrUnavailable)}
	idp := &fakeIDP{SignUpSession: &models.Session{UID: "u"}}
	a := newAuth(t, setupDB(t), idp, store, nil)

	_, err := a.SignUp(context.Background(), "a@x.io", "secret", "555")
	require.ErrorIs(t, err, client.ErrUnavailable)
	assert.Nil(t, a.CurrentSession())
}

func TestSignOut_ClearsSessionAndNotifies(t *testing.T) {
	db := setupDB(t)
	a := newAuth(t, db, &fakeIDP{SignInSession: onlineSession()}, &fakeStore{}, nil)
	ctx := context.Background()

	_, err := a.SignIn(ctx, "ann@x.io", "secret")
	require.NoError(t, err)

	ch, cancel := a.Subscribe()
	defer cancel()

	require.NoError(t, a.SignOut(ctx))
	assert.Nil(t, a.CurrentSession())
	assert.Nil(t, getMeta(t, db, metadata.KeySession))
	assert.NotNil(t, getMeta(t, db, metadata.KeyVerifier), "offline verifier survives sign out")

	select {
	case s := <-ch:
		assert.Nil(t, s)
	default:
		t.Fatal("expected a sign-out notification")
	}
}

func TestRestore(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	first := newAuth(t, db, &fakeIDP{SignInSession: onlineSession()}, &fakeStore{}, nil)
	_, err := first.SignIn(ctx, "ann@x.io", "secret")
	require.NoError(t, err)

	second := newAuth(t, db, &fakeIDP{}, &fakeStore{}, nil)
	s, err := second.Restore(ctx)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "uid-1", s.UID)
	assert.Equal(t, "uid-1", second.CurrentSession().UID)

	expired := newAuth(t, db, &fakeIDP{}, &fakeStore{}, nil)
	expired.now = func() time.Time { return fixedNow.Add(2 * time.Hour) }
	s, err = expired.Restore(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.Nil(t, expired.CurrentSession())
}

func TestRestore_NothingCached(t *testing.T) {
	a := newAuth(t, setupDB(t), &fakeIDP{}, &fakeStore{}, nil)

	s, err := a.Restore(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestSubscribe_CancelClosesChannel(t *testing.T) {
	a := newAuth(t, setupDB(t), &fakeIDP{SignInSession: onlineSession()}, &fakeStore{}, nil)

	ch, cancel := a.Subscribe()
	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)

	_, err := a.SignIn(context.Background(), "ann@x.io", "secret")
	require.NoError(t, err)
}

func TestSubscribe_KeepsLatestOnly(t *testing.T) {
	db := setupDB(t)
	a := newAuth(t, db, &fakeIDP{SignInSession: onlineSession()}, &fakeStore{}, nil)
	ctx := context.Background()

	ch, cancel := a.Subscribe()
	defer cancel()

	_, err := a.SignIn(ctx, "ann@x.io", "secret")
	require.NoError(t, err)
	require.NoError(t, a.SignOut(ctx))

	assert.Nil(t, <-ch)
	select {
	case <-ch:
		t.Fatal("only the latest change should be buffered")
	default:
	}
}

func TestCurrentSession_ReturnsCopy(t *testing.T) {
	a := newAuth(t, setupDB(t), &fakeIDP{SignInSession: onlineSession()}, &fakeStore{}, nil)
	_, err := a.SignIn(context.Background(), "ann@x.io", "secret")
	require.NoError(t, err)

	s := a.CurrentSession()
	s.UID = "mutated"
	assert.Equal(t, "uid-1", a.CurrentSession().UID)
}
