// Package encryption encrypts note content with a passphrase and rates
// passphrase strength.
//
// Ciphertext is the standard base64 encoding of
//
//	version(1) | salt(16) | nonce(12) | AES-256-GCM sealed content
//
// with the key derived from the passphrase by Argon2id.
package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/crypto/argon2"

	"github.com/starford/quire/internal/apperr"
)

const (
	envelopeV1 byte = 1
	saltSize        = 16
	nonceSize       = 12
	keySize         = 32
)

// Params are the Argon2id cost parameters.
type Params struct {
	Time      uint32 `yaml:"time"`
	MemoryKiB uint32 `yaml:"memory_kib"`
	Threads   uint8  `yaml:"threads"`
}

// DefaultParams follows the RFC 9106 second recommended option.
func DefaultParams() Params {
	return Params{Time: 3, MemoryKiB: 64 * 1024, Threads: 4}
}

// Validate validates the cost parameters.
func (p *Params) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Time, validation.Required, validation.Min(uint32(1))),
		validation.Field(&p.MemoryKiB, validation.Required, validation.Min(uint32(8*1024))),
		validation.Field(&p.Threads, validation.Required, validation.Min(uint8(1))),
	)
}

// Service encrypts and decrypts note content.
type Service struct {
	params Params
	rand   io.Reader
}

// NewService returns a Service using params for key derivation.
func NewService(params Params) *Service {
	return &Service{params: params, rand: rand.Reader}
}

func (s *Service) deriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, s.params.Time, s.params.MemoryKiB, s.params.Threads, keySize)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext under a key derived from passphrase with a fresh
// salt and nonce. Passphrase strength is not checked here.
func (s *Service) Encrypt(plaintext, passphrase string) (string, error) {
	if passphrase == "" {
		return "", fmt.Errorf("encryption: empty passphrase: %w", apperr.ErrEncryption)
	}
	header := make([]byte, 1+saltSize+nonceSize)
	header[0] = envelopeV1
	if _, err := io.ReadFull(s.rand, header[1:]); err != nil {
		return "", fmt.Errorf("encryption: read random: %w: %w", apperr.ErrEncryption, err)
	}
	salt := header[1 : 1+saltSize]
	nonce := header[1+saltSize:]

	aead, err := newGCM(s.deriveKey(passphrase, salt))
	if err != nil {
		return "", fmt.Errorf("encryption: init cipher: %w: %w", apperr.ErrEncryption, err)
	}
	// The header is authenticated as additional data.
	sealed := aead.Seal(header, nonce, []byte(plaintext), header)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens ciphertext produced by Encrypt. Malformed input and a wrong
// passphrase both return apperr.ErrWrongPassphrase.
func (s *Service) Decrypt(ciphertext, passphrase string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("encryption: decode: %w", apperr.ErrWrongPassphrase)
	}
	headerLen := 1 + saltSize + nonceSize
	if len(raw) < headerLen+16 || raw[0] != envelopeV1 {
		return "", fmt.Errorf("encryption: malformed envelope: %w", apperr.ErrWrongPassphrase)
	}
	header := raw[:headerLen]
	salt := header[1 : 1+saltSize]
	nonce := header[1+saltSize:]

	aead, err := newGCM(s.deriveKey(passphrase, salt))
	if err != nil {
		return "", fmt.Errorf("encryption: init cipher: %w: %w", apperr.ErrEncryption, err)
	}
	plain, err := aead.Open(nil, nonce, raw[headerLen:], header)
	if err != nil {
		return "", fmt.Errorf("encryption: open: %w", apperr.ErrWrongPassphrase)
	}
	return string(plain), nil
}
