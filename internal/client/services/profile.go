package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/userdash/internal/client/client"
	"github.com/dmitrijs2005/userdash/internal/client/models"
	"github.com/dmitrijs2005/userdash/internal/client/repositories/users"
	"github.com/dmitrijs2005/userdash/internal/common"
	"github.com/dmitrijs2005/userdash/internal/logging"
)

// SessionSource exposes the signed-in user.
type SessionSource interface {
	CurrentSession() *models.Session
}

// ProfileService updates the signed-in user's own record, remotely first
// and then in the local cache.
type ProfileService interface {
	Current(ctx context.Context) (models.UserRecord, error)
	UpdateContact(ctx context.Context, contact string) error
	SubmitDetails(ctx context.Context, name, contact string) error
}

type profileService struct {
	sessions   SessionSource
	users      users.Repository
	remote     client.DocumentStore
	collection string
	log        logging.Logger
}

func NewProfileService(sessions SessionSource, repo users.Repository, remote client.DocumentStore,
	collection string, log logging.Logger) ProfileService {
	return &profileService{
		sessions:   sessions,
		users:      repo,
		remote:     remote,
		collection: collection,
		log:        log,
	}
}

func (p *profileService) session() (*models.Session, error) {
	s := p.sessions.CurrentSession()
	if s == nil {
		return nil, common.ErrNoSession
	}
	return s, nil
}

// Current returns the cached row of the signed-in user, matched by email
// regardless of case.
func (p *profileService) Current(ctx context.Context) (models.UserRecord, error) {
	s, err := p.session()
	if err != nil {
		return models.UserRecord{}, err
	}
	return p.users.GetByEmail(ctx, s.Email)
}

func (p *profileService) UpdateContact(ctx context.Context, contact string) error {
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return fmt.Errorf("update contact: contact is required: %w", common.ErrInvalidInput)
	}

	row, err := p.Current(ctx)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}

	remoteID := p.sessions.CurrentSession().UID
	if remoteID == "" {
		remoteID = row.RemoteID
	}
	if err := p.remote.Upsert(ctx, p.collection, remoteID, map[string]any{"contact": contact}); err != nil {
		return fmt.Errorf("update contact: %w", err)
	}

	if err := p.users.UpdateContact(ctx, row.Email, contact); err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	return nil
}

// SubmitDetails stores name and contact for the signed-in user. When the
// user is not cached locally yet the row is created.
func (p *profileService) SubmitDetails(ctx context.Context, name, contact string) error {
	s, err := p.session()
	if err != nil {
		return err
	}

	name = strings.TrimSpace(name)
	contact = strings.TrimSpace(contact)
	if name == "" || contact == "" {
		return fmt.Errorf("submit details: name and contact are required: %w", common.ErrInvalidInput)
	}

	doc := map[string]any{"name": name, "contact": contact, "uid": s.UID, "email": s.Email}
	if err := p.remote.Upsert(ctx, p.collection, s.UID, doc); err != nil {
		return fmt.Errorf("submit details: %w", err)
	}

	err = p.users.UpdateProfile(ctx, s.UID, name, contact)
	if errors.Is(err, common.ErrNotFound) {
		p.log.Info(ctx, "user not cached yet, inserting", "uid", s.UID)
		_, err = p.users.InsertIfAbsent(ctx, models.UserRecord{
			Email:    s.Email,
			Contact:  contact,
			RemoteID: s.UID,
			Name:     name,
		})
		if errors.Is(err, common.ErrDuplicateUser) {
			p.log.Info(ctx, "cached row has another uid, rebinding", "email", s.Email, "uid", s.UID)
			err = p.users.UpdateProfileByEmail(ctx, s.Email, s.UID, name, contact)
		}
	}
	if err != nil {
		return fmt.Errorf("submit details: %w", err)
	}
	return nil
}
