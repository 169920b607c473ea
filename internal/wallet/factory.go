// Package wallet derives and generates fleet account keys.
package wallet

import (
	"encoding/hex"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
)

// Account is an in-memory handle for one fleet account: the derived address
// plus the private key needed to sign outgoing transactions. It is never
// persisted; stages derive it from the stored secret for the duration of one
// operation.
type Account struct {
	Address string

	key *keys.PrivateKey
}

// Sign signs arbitrary data with the account's private key.
func (a Account) Sign(data []byte) []byte {
	return a.key.Sign(data)
}

// PublicKey returns the compressed public key bytes.
func (a Account) PublicKey() []byte {
	return a.key.PublicKey().Bytes()
}

// Factory creates account handles. The zero value is ready to use.
type Factory struct{}

// Derive rebuilds an account from its secret. The secret is accepted either
// as a hex-encoded private key (the format Generate produces) or as a WIF,
// so externally supplied treasury keys work in both forms.
func (Factory) Derive(secret string) (Account, error) {
	priv, err := keys.NewPrivateKeyFromHex(secret)
	if err != nil {
		priv, err = keys.NewPrivateKeyFromWIF(secret)
	}
	if err != nil {
		return Account{}, fmt.Errorf("derive account: %w", err)
	}
	return Account{Address: priv.Address(), key: priv}, nil
}

// Generate creates fresh key material for a new fleet account. The seed is
// the WIF form kept for manual recovery, the secret is the hex private key
// used by Derive.
func (Factory) Generate() (seed, secret, address string, err error) {
	priv, err := keys.NewPrivateKey()
	if err != nil {
		return "", "", "", fmt.Errorf("generate key: %w", err)
	}
	return priv.WIF(), hex.EncodeToString(priv.Bytes()), priv.Address(), nil
}
