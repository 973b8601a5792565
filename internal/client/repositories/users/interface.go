package users

import (
	"context"

	"github.com/dmitrijs2005/userdash/internal/client/models"
)

type Repository interface {
	InsertIfAbsent(ctx context.Context, rec models.UserRecord) (models.UserRecord, error)
	ReadAll(ctx context.Context) ([]models.UserRecord, error)
	GetByEmail(ctx context.Context, email string) (models.UserRecord, error)
	UpdateContact(ctx context.Context, email, contact string) error
	UpdateProfile(ctx context.Context, remoteID, name, contact string) error
	UpdateProfileByEmail(ctx context.Context, email, remoteID, name, contact string) error
}
