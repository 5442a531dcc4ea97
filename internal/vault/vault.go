// package vault persists the backend session token on disk, optionally
// sealed with a key from the environment.
package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mixview/mixview/internal/shared"
)

const (
	sessionFile = "session.json"
	vaultFile   = "session.vault"
)

// Session is the persisted login state for the backend.
type Session struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	Username  string    `json:"username"`
	SavedAt   time.Time `json:"saved_at"`
}

// Vault reads and writes the session under dir. When key is non-empty
// the session is stored encrypted, otherwise as plain JSON with 0600
// permissions.
type Vault struct {
	dir string
	key string
}

// NewVault creates a Vault rooted at dir. An empty key selects
// plaintext storage.
func NewVault(dir, key string) *Vault {
	return &Vault{dir: dir, key: key}
}

// Sealed reports whether sessions are stored encrypted.
func (v *Vault) Sealed() bool {
	return v.key != ""
}

// Path returns the file the next Save will write.
func (v *Vault) Path() string {
	if v.Sealed() {
		return filepath.Join(v.dir, vaultFile)
	}
	return filepath.Join(v.dir, sessionFile)
}

// Save persists the session, stamping SavedAt. The previous variant is
// removed so a plaintext copy never outlives a sealed one.
func (v *Vault) Save(s Session) error {
	if err := os.MkdirAll(v.dir, 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	s.SavedAt = time.Now().UTC()

	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	data := raw
	stale := filepath.Join(v.dir, vaultFile)
	if v.Sealed() {
		if data, err = seal(v.key, raw); err != nil {
			return fmt.Errorf("failed to seal session: %w", err)
		}
		stale = filepath.Join(v.dir, sessionFile)
	}

	if err := writeFileAtomic(v.Path(), data); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}

	if err := os.Remove(stale); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove stale session: %w", err)
	}

	return nil
}

// Load reads the stored session. A sealed file is preferred over a
// plaintext one when both exist. Returns [shared.ErrNoSession] when
// nothing is stored, and [shared.ErrVaultLocked] when a sealed session
// cannot be opened with the configured key.
func (v *Vault) Load() (Session, error) {
	var s Session

	if data, err := os.ReadFile(filepath.Join(v.dir, vaultFile)); err == nil {
		if v.key == "" {
			return s, fmt.Errorf("%w: session is sealed but no vault key is set", shared.ErrVaultLocked)
		}
		raw, err := open(v.key, data)
		if err != nil {
			return s, err
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return s, fmt.Errorf("failed to parse session: %w", err)
		}
		return s, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return s, fmt.Errorf("failed to read session: %w", err)
	}

	data, err := os.ReadFile(filepath.Join(v.dir, sessionFile))
	if errors.Is(err, os.ErrNotExist) {
		return s, shared.ErrNoSession
	} else if err != nil {
		return s, fmt.Errorf("failed to read session: %w", err)
	}

	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to parse session: %w", err)
	}

	return s, nil
}

// Clear removes any stored session, sealed or plaintext.
func (v *Vault) Clear() error {
	for _, name := range []string{sessionFile, vaultFile} {
		if err := os.Remove(filepath.Join(v.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove session: %w", err)
		}
	}
	return nil
}

// writeFileAtomic writes data through a temp file in the same
// directory, then renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	f, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Chmod(0600); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}

	return nil
}
