// Package token manages the target platform access token. Tokens are
// obtained through an injected login call and cached on disk so consecutive
// runs reuse a live credential instead of logging in every time.
package token

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/relayops/fleetbridge/pkg/constants"
	"github.com/relayops/fleetbridge/pkg/errors"
	"github.com/relayops/fleetbridge/pkg/logging"
)

// ExpirySkew is subtracted from the cached expiration so a token is refreshed
// shortly before the platform would start rejecting it.
const ExpirySkew = 2 * time.Minute

// Credential is an access token with its expiration instant.
type Credential struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"-"`
}

// Valid reports whether the credential is usable at the given instant.
func (c Credential) Valid(at time.Time) bool {
	if c.AccessToken == "" {
		return false
	}
	if c.ExpiresAt.IsZero() {
		return false
	}
	return at.Before(c.ExpiresAt.Add(-ExpirySkew))
}

// LoginFunc performs a login against the target platform.
type LoginFunc func(ctx context.Context) (Credential, error)

// Manager hands out a live access token, refreshing and re-caching it when
// the stored one has expired or been rejected.
type Manager struct {
	path  string
	login LoginFunc

	mu     sync.Mutex
	cached Credential

	// now is swapped in tests
	now func() time.Time
}

// NewManager creates a token manager caching at path.
func NewManager(path string, login LoginFunc) *Manager {
	return &Manager{
		path:  path,
		login: login,
		now:   time.Now,
	}
}

// Token returns a valid access token, reading the disk cache first and
// logging in only when nothing usable is cached.
func (m *Manager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cached.Valid(m.now()) {
		return m.cached.AccessToken, nil
	}

	if cred, err := readCache(m.path); err == nil && cred.Valid(m.now()) {
		m.cached = cred
		return cred.AccessToken, nil
	}

	return m.refreshLocked(ctx)
}

// Refresh discards any cached token and logs in again. Used when the
// platform answers 401 for a token that looked valid locally.
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshLocked(ctx)
}

func (m *Manager) refreshLocked(ctx context.Context) (string, error) {
	cred, err := m.login(ctx)
	if err != nil {
		return "", &errors.AuthenticationError{Platform: "target", Message: "login failed", Err: err}
	}
	if cred.AccessToken == "" {
		return "", &errors.AuthenticationError{Platform: "target", Message: "login returned an empty token"}
	}

	m.cached = cred
	if err := writeCache(m.path, cred); err != nil {
		// A stale cache only costs an extra login next run.
		logging.Warn().Err(err).Str("path", m.path).Msg("Failed to cache access token")
	}
	return cred.AccessToken, nil
}

// cacheFile is the on-disk shape of the cached credential.
type cacheFile struct {
	AccessToken string `json:"accessToken"`
	Expiration  string `json:"expiration"`
}

func readCache(path string) (Credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Credential{}, errors.WrapIO("read", path, err)
	}

	var file cacheFile
	if err := json.Unmarshal(data, &file); err != nil {
		return Credential{}, errors.WrapParse("json", path, err)
	}
	return Credential{
		AccessToken: file.AccessToken,
		ExpiresAt:   ParseExpiration(file.Expiration),
	}, nil
}

func writeCache(path string, cred Credential) error {
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}

	data, err := json.MarshalIndent(cacheFile{
		AccessToken: cred.AccessToken,
		Expiration:  cred.ExpiresAt.In(constants.Location()).Format(constants.TokenExpiryLayout),
	}, "", "  ")
	if err != nil {
		return errors.WrapParse("json", path, err)
	}
	if err := os.WriteFile(path, data, constants.SecureFilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// ParseExpiration parses the expiration string the target login returns.
// An unparseable or empty value yields the zero time, which never validates.
func ParseExpiration(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	at, err := time.ParseInLocation(constants.TokenExpiryLayout, raw, constants.Location())
	if err != nil {
		return time.Time{}
	}
	return at
}
