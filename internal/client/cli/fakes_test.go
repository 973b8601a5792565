package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/userdash/internal/client/models"
	"github.com/dmitrijs2005/userdash/internal/client/services"
	"github.com/dmitrijs2005/userdash/internal/common"
	"github.com/dmitrijs2005/userdash/internal/logging"
)

// captureOutput replaces printlnFn and returns the printed lines.
func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var (
		mu    sync.Mutex
		lines []string
	)
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func stubInputs(t *testing.T, password string, answers ...string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	i := 0
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if i >= len(answers) {
			return "", io.EOF
		}
		i++
		return answers[i-1], nil
	}
	getPassword = func(_ *bufio.Reader, _ io.Writer) ([]byte, error) { return []byte(password), nil }
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

type fakeAuth struct {
	session *models.Session

	signUpArgs []string
	signUpRes  *services.SignInResult
	signUpErr  error

	signInArgs []string
	signInRes  *services.SignInResult
	signInErr  error

	signOutCalled bool
	signOutErr    error

	restoreRes *models.Session
	restoreErr error

	subs chan *models.Session
}

func (f *fakeAuth) SignUp(_ context.Context, email, password, contact string) (*services.SignInResult, error) {
	f.signUpArgs = []string{email, password, contact}
	if f.signUpErr == nil && f.signUpRes != nil {
		f.session = f.signUpRes.Session
	}
	return f.signUpRes, f.signUpErr
}

func (f *fakeAuth) SignIn(_ context.Context, email, password string) (*services.SignInResult, error) {
	f.signInArgs = []string{email, password}
	if f.signInErr == nil && f.signInRes != nil {
		f.session = f.signInRes.Session
	}
	return f.signInRes, f.signInErr
}

func (f *fakeAuth) SignOut(context.Context) error {
	f.signOutCalled = true
	if f.signOutErr != nil {
		return f.signOutErr
	}
	f.session = nil
	return nil
}

func (f *fakeAuth) CurrentSession() *models.Session { return f.session }

func (f *fakeAuth) Restore(context.Context) (*models.Session, error) {
	return f.restoreRes, f.restoreErr
}

func (f *fakeAuth) Subscribe() (<-chan *models.Session, func()) {
	if f.subs == nil {
		f.subs = make(chan *models.Session, 1)
	}
	return f.subs, func() {}
}

type fakeProfile struct {
	current    models.UserRecord
	currentErr error

	contact    string
	contactErr error

	detailsName    string
	detailsContact string
	detailsErr     error
}

func (f *fakeProfile) Current(context.Context) (models.UserRecord, error) {
	return f.current, f.currentErr
}

func (f *fakeProfile) UpdateContact(_ context.Context, contact string) error {
	f.contact = contact
	return f.contactErr
}

func (f *fakeProfile) SubmitDetails(_ context.Context, name, contact string) error {
	f.detailsName, f.detailsContact = name, contact
	return f.detailsErr
}

type fakeSync struct {
	calls  int
	report *services.SyncReport
	err    error
}

func (f *fakeSync) Reconcile(context.Context) (*services.SyncReport, error) {
	f.calls++
	return f.report, f.err
}

type fakeUsers struct {
	rows []models.UserRecord
	err  error
}

func (f *fakeUsers) InsertIfAbsent(_ context.Context, rec models.UserRecord) (models.UserRecord, error) {
	for _, r := range f.rows {
		if r.Email == rec.Email {
			return models.UserRecord{}, common.ErrDuplicateUser
		}
	}
	rec.ID = int64(len(f.rows) + 1)
	f.rows = append(f.rows, rec)
	return rec, nil
}

func (f *fakeUsers) ReadAll(context.Context) ([]models.UserRecord, error) {
	return f.rows, f.err
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (models.UserRecord, error) {
	for _, r := range f.rows {
		if strings.EqualFold(r.Email, email) {
			return r, nil
		}
	}
	return models.UserRecord{}, common.ErrNotFound
}

func (f *fakeUsers) UpdateContact(context.Context, string, string) error                        { return nil }
func (f *fakeUsers) UpdateProfile(context.Context, string, string, string) error                { return nil }
func (f *fakeUsers) UpdateProfileByEmail(context.Context, string, string, string, string) error { return nil }

type fakeExporter struct {
	snap *models.DashboardSnapshot
	key  string
	err  error
}

func (f *fakeExporter) Export(_ context.Context, snap *models.DashboardSnapshot) (string, error) {
	f.snap = snap
	return f.key, f.err
}

type fakeStore struct {
	mu      sync.Mutex
	pingErr error
	pings   int
	closed  bool
}

func (f *fakeStore) setPingErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pingErr = err
}

func (f *fakeStore) FetchAll(context.Context, string) ([]models.RemoteUserRecord, error) {
	return nil, nil
}

func (f *fakeStore) Upsert(context.Context, string, string, map[string]any) error { return nil }

func (f *fakeStore) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pings++
	return f.pingErr
}

func (f *fakeStore) Close(context.Context) error {
	f.closed = true
	return nil
}

func newTestApp() (*App, *fakeAuth) {
	auth := &fakeAuth{}
	return &App{
		auth:    auth,
		profile: &fakeProfile{},
		sync:    &fakeSync{report: &services.SyncReport{}},
		users:   &fakeUsers{},
		remote:  &fakeStore{},
		loc:     time.UTC,
		log:     logging.Discard(),
		reader:  bufio.NewReader(strings.NewReader("")),
		out:     io.Discard,
	}, auth
}

type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.buf.Bytes()...)
}
