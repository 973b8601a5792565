package metadata

import (
	"context"
)

// Repository is a key/value store for small client-side state such as the
// cached session and the offline credential verifier.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	GetMany(ctx context.Context, keys ...string) (map[string][]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

// Well-known keys.
const (
	KeySession      = "session"
	KeyOfflineEmail = "offline_email"
	KeyOfflineUID   = "offline_uid"
	KeyOfflineSalt  = "offline_salt"
	KeyVerifier     = "offline_verifier"
)

// OfflineKeys are written together on every online sign in.
var OfflineKeys = []string{KeyOfflineEmail, KeyOfflineUID, KeyOfflineSalt, KeyVerifier}
