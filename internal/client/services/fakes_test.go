package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/userdash/internal/client/client"
	"github.com/dmitrijs2005/userdash/internal/client/models"
	"github.com/dmitrijs2005/userdash/internal/client/repositories/users"
	"github.com/dmitrijs2005/userdash/internal/logging"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func insertRow(t *testing.T, db *sql.DB, email, contact, uid, signupDate string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO Users (Email, Contact, uid, SignupDate) VALUES (?, ?, ?, ?)`,
		email, contact, uid, signupDate)
	require.NoError(t, err)
}

func readAll(t *testing.T, db *sql.DB) []models.UserRecord {
	t.Helper()
	all, err := users.NewSQLiteRepository(db).ReadAll(context.Background())
	require.NoError(t, err)
	return all
}

func emails(recs []models.UserRecord) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Email)
	}
	return out
}

func nopLogger() logging.Logger {
	return logging.Discard()
}

// ---- fake document store ----

type upsertCall struct {
	Collection string
	ID         string
	Fields     map[string]any
}

type fakeStore struct {
	mu sync.Mutex

	Records   []models.RemoteUserRecord
	FetchErr  error
	UpsertErr error
	PingErr   error

	FetchCalls int
	Upserts    []upsertCall
}

func (f *fakeStore) FetchAll(ctx context.Context, collection string) ([]models.RemoteUserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FetchCalls++
	if f.FetchErr != nil {
		return nil, f.FetchErr
	}
	out := make([]models.RemoteUserRecord, len(f.Records))
	copy(out, f.Records)
	return out, nil
}

// Upsert merges fields into the matching record so later fetches see them.
func (f *fakeStore) Upsert(ctx context.Context, collection, remoteID string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Upserts = append(f.Upserts, upsertCall{Collection: collection, ID: remoteID, Fields: fields})
	if f.UpsertErr != nil {
		return f.UpsertErr
	}

	idx := -1
	for i := range f.Records {
		if f.Records[i].RemoteID == remoteID {
			idx = i
		}
	}
	if idx < 0 {
		f.Records = append(f.Records, models.RemoteUserRecord{RemoteID: remoteID})
		idx = len(f.Records) - 1
	}
	r := &f.Records[idx]
	if v, ok := fields["email"].(string); ok {
		r.Email = v
	}
	if v, ok := fields["contact"].(string); ok {
		r.Contact = v
	}
	if v, ok := fields["name"].(string); ok {
		r.Name = v
	}
	return nil
}

func (f *fakeStore) Ping(ctx context.Context) error  { return f.PingErr }
func (f *fakeStore) Close(ctx context.Context) error { return nil }

// ---- fake identity provider ----

type fakeIDP struct {
	SignUpSession *models.Session
	SignUpErr     error
	SignInSession *models.Session
	SignInErr     error

	SignUpCalls int
	SignInCalls int
}

func (f *fakeIDP) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	f.SignUpCalls++
	if f.SignUpErr != nil {
		return nil, f.SignUpErr
	}
	s := *f.SignUpSession
	return &s, nil
}

func (f *fakeIDP) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	f.SignInCalls++
	if f.SignInErr != nil {
		return nil, f.SignInErr
	}
	s := *f.SignInSession
	return &s, nil
}

// ---- fake sync ----

type fakeSync struct {
	Report *SyncReport
	Err    error
	Calls  int
}

func (f *fakeSync) Reconcile(ctx context.Context) (*SyncReport, error) {
	f.Calls++
	return f.Report, f.Err
}

// ---- fake session source ----

type fakeSessions struct {
	s *models.Session
}

func (f *fakeSessions) CurrentSession() *models.Session { return f.s }
