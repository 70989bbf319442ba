package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

var ErrTampered = errors.New("session: stored data failed authentication")

const sealInfo = "donasi session v1"

// SealedStore encrypts everything written to the wrapped store with
// XChaCha20-Poly1305. The key is derived from a passphrase with HKDF-SHA256.
type SealedStore struct {
	inner Store
	key   []byte
}

func NewSealedStore(inner Store, passphrase string) (*SealedStore, error) {
	if passphrase == "" {
		return nil, errors.New("session: sealing passphrase is empty")
	}

	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, []byte(passphrase), nil, []byte(sealInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}
	return &SealedStore{inner: inner, key: key}, nil
}

func (s *SealedStore) Load(ctx context.Context) ([]byte, error) {
	sealed, err := s.inner.Load(ctx)
	if err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return nil, ErrTampered
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, []byte(sealInfo))
	if err != nil {
		return nil, ErrTampered
	}
	return plain, nil
}

func (s *SealedStore) Save(ctx context.Context, data []byte) error {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return err
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(data)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}
	return s.inner.Save(ctx, aead.Seal(nonce, nonce, data, []byte(sealInfo)))
}

func (s *SealedStore) Clear(ctx context.Context) error {
	return s.inner.Clear(ctx)
}
