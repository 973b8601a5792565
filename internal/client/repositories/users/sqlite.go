package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/userdash/internal/client/models"
	"github.com/dmitrijs2005/userdash/internal/common"
	"github.com/dmitrijs2005/userdash/internal/dbx"
	"github.com/go-playground/validator/v10"
)

// SignupDateLayout is RFC 3339 in UTC with millisecond precision.
const SignupDateLayout = "2006-01-02T15:04:05.000Z07:00"

var validate = validator.New()

type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

type Option func(*SQLiteRepository)

// WithClock overrides the clock used to stamp SignupDate.
func WithClock(now func() time.Time) Option {
	return func(r *SQLiteRepository) {
		r.now = now
	}
}

func NewSQLiteRepository(db dbx.DBTX, opts ...Option) *SQLiteRepository {
	r := &SQLiteRepository{db: db, now: time.Now}
	for _, o := range opts {
		o(r)
	}
	return r
}

// InsertIfAbsent adds rec unless a row with the same email exists. The
// returned record carries the assigned ID and SignupDate.
func (r *SQLiteRepository) InsertIfAbsent(ctx context.Context, rec models.UserRecord) (models.UserRecord, error) {
	if err := validate.Struct(rec); err != nil {
		return models.UserRecord{}, fmt.Errorf("invalid user record: %w: %w", common.ErrInsert, err)
	}

	rec.SignupDate = r.now().UTC().Format(SignupDateLayout)

	res, n, err := dbx.ExecAffected(ctx, r.db, `
		INSERT INTO Users (Email, Contact, uid, Name, SignupDate)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(Email) DO NOTHING
	`, rec.Email, rec.Contact, rec.RemoteID, nullable(rec.Name), rec.SignupDate)
	if err != nil {
		return models.UserRecord{}, fmt.Errorf("failed to insert user: %w: %w", common.ErrInsert, err)
	}
	if n == 0 {
		return models.UserRecord{}, fmt.Errorf("insert %s: %w", rec.Email, common.ErrDuplicateUser)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.UserRecord{}, fmt.Errorf("failed to read inserted id: %w: %w", common.ErrInsert, err)
	}
	rec.ID = id

	return rec, nil
}

func (r *SQLiteRepository) ReadAll(ctx context.Context) ([]models.UserRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ID, Email, Contact, uid, Name, SignupDate
		FROM Users
		ORDER BY ID
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}
	defer rows.Close()

	result := []models.UserRecord{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		result = append(result, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}

	return result, nil
}

// GetByEmail matches email case-insensitively. When several rows differ only
// in case the oldest one wins.
func (r *SQLiteRepository) GetByEmail(ctx context.Context, email string) (models.UserRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT ID, Email, Contact, uid, Name, SignupDate
		FROM Users
		WHERE Email = ? COLLATE NOCASE
		ORDER BY ID
		LIMIT 1
	`, email)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserRecord{}, fmt.Errorf("user %s: %w", email, common.ErrNotFound)
	}
	if err != nil {
		return models.UserRecord{}, fmt.Errorf("failed to get user %s: %w", email, err)
	}
	return u, nil
}

func (r *SQLiteRepository) UpdateContact(ctx context.Context, email, contact string) error {
	_, n, err := dbx.ExecAffected(ctx, r.db, `UPDATE Users SET Contact = ? WHERE Email = ?`, contact, email)
	return checkUpdated(n, err, "contact of "+email)
}

func (r *SQLiteRepository) UpdateProfile(ctx context.Context, remoteID, name, contact string) error {
	_, n, err := dbx.ExecAffected(ctx, r.db, `UPDATE Users SET Name = ?, Contact = ? WHERE uid = ?`,
		nullable(name), contact, remoteID)
	return checkUpdated(n, err, "profile of "+remoteID)
}

// UpdateProfileByEmail rewrites name, contact and uid of the row cached
// under email.
func (r *SQLiteRepository) UpdateProfileByEmail(ctx context.Context, email, remoteID, name, contact string) error {
	_, n, err := dbx.ExecAffected(ctx, r.db, `UPDATE Users SET Name = ?, Contact = ?, uid = ? WHERE Email = ?`,
		nullable(name), contact, remoteID, email)
	return checkUpdated(n, err, "profile of "+email)
}

func checkUpdated(n int64, err error, what string) error {
	if err != nil {
		return fmt.Errorf("failed to update %s: %w: %w", what, common.ErrUpdate, err)
	}
	if n == 0 {
		return fmt.Errorf("update %s: %w", what, common.ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (models.UserRecord, error) {
	var u models.UserRecord
	var email, contact, uid, name, signupDate sql.NullString
	if err := s.Scan(&u.ID, &email, &contact, &uid, &name, &signupDate); err != nil {
		return models.UserRecord{}, err
	}
	u.Email = email.String
	u.Contact = contact.String
	u.RemoteID = uid.String
	u.Name = name.String
	u.SignupDate = signupDate.String
	return u, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
