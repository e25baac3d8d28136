package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	authDomain "github.com/allisson/incidenthub/internal/auth/domain"

	// Register the keeper drivers usable in AUTH_SECRETS_KEEPER_URL
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// MinKeyLength is the shortest accepted HS256 signing key.
const MinKeyLength = 32

// Keyring holds the two signing keys.
type Keyring struct {
	accessKey  []byte
	refreshKey []byte
}

// NewKeyring validates and wraps the signing keys. Both must be at least
// MinKeyLength bytes long and they must differ.
func NewKeyring(accessKey, refreshKey []byte) (*Keyring, error) {
	if len(accessKey) < MinKeyLength {
		return nil, fmt.Errorf("access token secret must be at least %d bytes", MinKeyLength)
	}
	if len(refreshKey) < MinKeyLength {
		return nil, fmt.Errorf("refresh token secret must be at least %d bytes", MinKeyLength)
	}
	if bytes.Equal(accessKey, refreshKey) {
		return nil, fmt.Errorf("access and refresh token secrets must differ")
	}
	return &Keyring{accessKey: accessKey, refreshKey: refreshKey}, nil
}

func (k *Keyring) key(kind authDomain.TokenKind) []byte {
	if kind == authDomain.TokenKindRefresh {
		return k.refreshKey
	}
	return k.accessKey
}

// LoadKeyring builds the keyring from configuration. When keeperURL is set the
// secrets are base64 ciphertexts decrypted through that gocloud.dev/secrets keeper
// (base64key://, hashivault://, awskms://, gcpkms://, azurekeyvault://).
func LoadKeyring(ctx context.Context, accessSecret, refreshSecret, keeperURL string) (*Keyring, error) {
	if keeperURL == "" {
		return NewKeyring([]byte(accessSecret), []byte(refreshSecret))
	}

	keeper, err := secrets.OpenKeeper(ctx, keeperURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open secrets keeper: %w", err)
	}
	defer func() {
		_ = keeper.Close()
	}()

	accessKey, err := decryptSecret(ctx, keeper, accessSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token secret: %w", err)
	}
	refreshKey, err := decryptSecret(ctx, keeper, refreshSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt refresh token secret: %w", err)
	}

	return NewKeyring(accessKey, refreshKey)
}

func decryptSecret(ctx context.Context, keeper *secrets.Keeper, encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, fmt.Errorf("secret is empty")
	}
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("secret is not valid base64: %w", err)
	}
	return keeper.Decrypt(ctx, ciphertext)
}
