// Package credentials persists the Claude session key and organization id
// in the OS keyring. The values are opaque strings; no shape validation
// happens here. Vault failures degrade to "absent" so the app falls back
// to the unconfigured state instead of crashing.
package credentials

import (
	"errors"
	"fmt"
	"log"

	"github.com/zalando/go-keyring"
)

const (
	service       = "claudebar"
	keySessionKey = "session-key"
	keyOrgID      = "org-id"
)

// Credentials is a read-only copy borrowed by the poller per request.
// Only the Store persists it.
type Credentials struct {
	SessionKey     string
	OrganizationID string
}

// Store wraps the OS keyring under a fixed service identifier.
type Store struct{}

// NewStore returns a keyring-backed store.
func NewStore() *Store {
	return &Store{}
}

// Save persists both values, overwriting prior ones. Partial writes are
// surfaced as errors so the caller can tell the user instead of silently
// holding half a credential.
func (s *Store) Save(sessionKey, orgID string) error {
	if sessionKey == "" || orgID == "" {
		return errors.New("both session key and organization id are required")
	}
	if err := keyring.Set(service, keySessionKey, sessionKey); err != nil {
		return fmt.Errorf("failed to store session key: %w", err)
	}
	if err := keyring.Set(service, keyOrgID, orgID); err != nil {
		return fmt.Errorf("failed to store organization id: %w", err)
	}
	return nil
}

// Load retrieves both values. The second return is false when either value
// is missing or the vault cannot be read; vault errors are logged, never
// escalated.
func (s *Store) Load() (Credentials, bool) {
	sessionKey, err := keyring.Get(service, keySessionKey)
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			log.Printf("keyring read failed for %s: %v", keySessionKey, err)
		}
		return Credentials{}, false
	}
	orgID, err := keyring.Get(service, keyOrgID)
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			log.Printf("keyring read failed for %s: %v", keyOrgID, err)
		}
		return Credentials{}, false
	}
	if sessionKey == "" || orgID == "" {
		return Credentials{}, false
	}
	return Credentials{SessionKey: sessionKey, OrganizationID: orgID}, true
}

// Clear removes both values. Missing entries are not an error; the goal
// state is "absent".
func (s *Store) Clear() error {
	if err := keyring.Delete(service, keySessionKey); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete session key: %w", err)
	}
	if err := keyring.Delete(service, keyOrgID); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete organization id: %w", err)
	}
	return nil
}
