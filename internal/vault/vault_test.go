package vault

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mixview/mixview/internal/shared"
)

func TestVaultPlaintext(t *testing.T) {
	t.Run("save and load round trip", func(t *testing.T) {
		v := NewVault(t.TempDir(), "")

		if v.Sealed() {
			t.Error("vault without key should not be sealed")
		}

		err := v.Save(Session{Token: "jwt-token", TokenType: "bearer", Username: "listener"})
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		s, err := v.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if s.Token != "jwt-token" || s.TokenType != "bearer" || s.Username != "listener" {
			t.Errorf("loaded session doesn't match saved: %+v", s)
		}
		if s.SavedAt.IsZero() {
			t.Error("expected SavedAt to be stamped on save")
		}
	})

	t.Run("file mode is 0600", func(t *testing.T) {
		v := NewVault(t.TempDir(), "")
		if err := v.Save(Session{Token: "tok"}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		info, err := os.Stat(v.Path())
		if err != nil {
			t.Fatalf("failed to stat session file: %v", err)
		}
		if mode := info.Mode().Perm(); mode != 0600 {
			t.Errorf("expected mode 0600, got %o", mode)
		}
	})

	t.Run("load without session", func(t *testing.T) {
		v := NewVault(t.TempDir(), "")
		if _, err := v.Load(); !errors.Is(err, shared.ErrNoSession) {
			t.Errorf("expected ErrNoSession, got %v", err)
		}
	})

	t.Run("clear removes session", func(t *testing.T) {
		v := NewVault(t.TempDir(), "")
		if err := v.Save(Session{Token: "tok"}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		if err := v.Clear(); err != nil {
			t.Fatalf("Clear() error = %v", err)
		}

		if _, err := v.Load(); !errors.Is(err, shared.ErrNoSession) {
			t.Errorf("expected ErrNoSession after clear, got %v", err)
		}

		// Clearing an empty vault is not an error.
		if err := v.Clear(); err != nil {
			t.Errorf("Clear() on empty vault error = %v", err)
		}
	})
}

func TestVaultSealed(t *testing.T) {
	t.Run("save and load round trip", func(t *testing.T) {
		dir := t.TempDir()
		v := NewVault(dir, "hunter2")

		if !v.Sealed() {
			t.Error("vault with key should be sealed")
		}

		if err := v.Save(Session{Token: "jwt-token", Username: "listener"}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		if filepath.Base(v.Path()) != "session.vault" {
			t.Errorf("expected sealed path session.vault, got %s", v.Path())
		}

		s, err := v.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if s.Token != "jwt-token" || s.Username != "listener" {
			t.Errorf("loaded session doesn't match saved: %+v", s)
		}
	})

	t.Run("envelope shape", func(t *testing.T) {
		v := NewVault(t.TempDir(), "hunter2")
		if err := v.Save(Session{Token: "super-secret-token"}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		data, err := os.ReadFile(v.Path())
		if err != nil {
			t.Fatalf("failed to read vault file: %v", err)
		}

		if strings.Contains(string(data), "super-secret-token") {
			t.Error("sealed file must not contain the plaintext token")
		}

		var env struct {
			V      int    `json:"v"`
			Salt   []byte `json:"salt"`
			N      int    `json:"scrypt_N"`
			R      int    `json:"scrypt_r"`
			P      int    `json:"scrypt_p"`
			Cipher []byte `json:"cipher"`
		}
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatalf("vault file is not a JSON envelope: %v", err)
		}

		if env.V != 1 {
			t.Errorf("expected envelope version 1, got %d", env.V)
		}
		if len(env.Salt) != 16 {
			t.Errorf("expected 16 byte salt, got %d", len(env.Salt))
		}
		if env.N != 1<<15 || env.R != 8 || env.P != 1 {
			t.Errorf("unexpected scrypt params N=%d r=%d p=%d", env.N, env.R, env.P)
		}
		if len(env.Cipher) == 0 {
			t.Error("expected non-empty ciphertext")
		}
	})

	t.Run("wrong key", func(t *testing.T) {
		dir := t.TempDir()
		if err := NewVault(dir, "correct").Save(Session{Token: "tok"}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		_, err := NewVault(dir, "wrong").Load()
		if !errors.Is(err, shared.ErrVaultLocked) {
			t.Errorf("expected ErrVaultLocked with wrong key, got %v", err)
		}
	})

	t.Run("missing key", func(t *testing.T) {
		dir := t.TempDir()
		if err := NewVault(dir, "correct").Save(Session{Token: "tok"}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		_, err := NewVault(dir, "").Load()
		if !errors.Is(err, shared.ErrVaultLocked) {
			t.Errorf("expected ErrVaultLocked without key, got %v", err)
		}
	})

	t.Run("corrupted envelope", func(t *testing.T) {
		dir := t.TempDir()
		v := NewVault(dir, "hunter2")
		if err := v.Save(Session{Token: "tok"}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		if err := os.WriteFile(v.Path(), []byte("not json"), 0600); err != nil {
			t.Fatalf("failed to corrupt vault file: %v", err)
		}

		if _, err := v.Load(); !errors.Is(err, shared.ErrVaultLocked) {
			t.Errorf("expected ErrVaultLocked for corrupted file, got %v", err)
		}
	})

	t.Run("sealing removes plaintext copy", func(t *testing.T) {
		dir := t.TempDir()

		if err := NewVault(dir, "").Save(Session{Token: "plain"}); err != nil {
			t.Fatalf("plaintext Save() error = %v", err)
		}
		if err := NewVault(dir, "hunter2").Save(Session{Token: "sealed"}); err != nil {
			t.Fatalf("sealed Save() error = %v", err)
		}

		if _, err := os.Stat(filepath.Join(dir, "session.json")); !errors.Is(err, os.ErrNotExist) {
			t.Error("expected plaintext session to be removed after sealing")
		}

		s, err := NewVault(dir, "hunter2").Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if s.Token != "sealed" {
			t.Errorf("expected sealed session to win, got %q", s.Token)
		}
	})
}
