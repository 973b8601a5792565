package client

import (
	"context"

	"github.com/dmitrijs2005/userdash/internal/client/models"
)

// IdentityProvider authenticates users against the remote identity service.
// Implementations return ErrUnavailable when the service cannot be reached.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password string) (*models.Session, error)
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
}

// DocumentStore is the remote collection of user documents.
type DocumentStore interface {
	FetchAll(ctx context.Context, collection string) ([]models.RemoteUserRecord, error)
	Upsert(ctx context.Context, collection, remoteID string, fields map[string]any) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
