package vault

import (
	"crypto/rand"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"github.com/mixview/mixview/internal/shared"
)

// The current version of the sealed session format on disk.
const vaultFormatVersion = 1

// envelope is the on-disk JSON structure holding the ciphertext and
// KDF parameters.
type envelope struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

// Tunables for scrypt key derivation.
func scryptParams() (N, r, p int) { return 1 << 15, 8, 1 }

// seal derives a key from the vault key and encrypts raw into a JSON
// envelope. The salt is bound as associated data.
func seal(key string, raw []byte) ([]byte, error) {
	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, err
	}

	N, r, p := scryptParams()
	dk, err := scrypt.Key([]byte(key), salt[:], N, r, p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.New(dk)
	if err != nil {
		return nil, err
	}

	var nonce [chacha20poly1305.NonceSize]byte // zero nonce; salt-bound key guarantees uniqueness
	ct := aead.Seal(nil, nonce[:], raw, salt[:])

	return json.Marshal(envelope{
		V:      vaultFormatVersion,
		Salt:   salt[:],
		N:      N,
		R:      r,
		P:      p,
		Cipher: ct,
	})
}

// open decrypts a JSON envelope using a key derived from the vault
// key. Returns [shared.ErrVaultLocked] when the key is wrong or the
// ciphertext has been tampered with.
func open(key string, data []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrVaultLocked, err)
	}
	if env.V > vaultFormatVersion {
		return nil, fmt.Errorf("unsupported vault version %d", env.V)
	}

	dk, err := scrypt.Key([]byte(key), env.Salt, env.N, env.R, env.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.New(dk)
	if err != nil {
		return nil, err
	}

	var nonce [chacha20poly1305.NonceSize]byte
	raw, err := aead.Open(nil, nonce[:], env.Cipher, env.Salt)
	if err != nil {
		return nil, shared.ErrVaultLocked
	}

	return raw, nil
}
