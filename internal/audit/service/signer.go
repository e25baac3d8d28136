// Package service signs and verifies audit records.
package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/allisson/incidenthub/internal/audit/domain"
)

const signingKeyInfo = "incidenthub-audit-signing-v1"

// ErrEmptySigningKey is returned when no input key material is configured.
var ErrEmptySigningKey = errors.New("audit signing key is empty")

// Signer computes and checks HMAC-SHA256 signatures over audit records.
type Signer interface {
	Sign(record *domain.AuditRecord) ([]byte, error)
	Verify(record *domain.AuditRecord) error
}

type hmacSigner struct {
	key []byte
}

// NewSigner derives a 32-byte signing key from secret with HKDF-SHA256.
func NewSigner(secret []byte) (Signer, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySigningKey
	}

	key := make([]byte, sha256.Size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(signingKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive audit signing key: %w", err)
	}
	return &hmacSigner{key: key}, nil
}

func (s *hmacSigner) Sign(record *domain.AuditRecord) ([]byte, error) {
	canonical, err := canonicalize(record)
	if err != nil {
		return nil, err
	}
	mac := hmac.New(sha256.New, s.key)
	mac.Write(canonical)
	return mac.Sum(nil), nil
}

func (s *hmacSigner) Verify(record *domain.AuditRecord) error {
	expected, err := s.Sign(record)
	if err != nil {
		return err
	}
	if !hmac.Equal(record.Signature, expected) {
		return domain.ErrSignatureInvalid
	}
	return nil
}

// canonicalize lays out the signed fields as
// id || entity_id || user_id || len+action || len+entity_type || len+metadata || created_at.
func canonicalize(record *domain.AuditRecord) ([]byte, error) {
	buf := make([]byte, 0, 256)
	buf = append(buf, record.ID[:]...)
	buf = append(buf, record.EntityID[:]...)
	buf = append(buf, record.UserID[:]...)
	buf = appendLengthPrefixed(buf, []byte(record.Action))
	buf = appendLengthPrefixed(buf, []byte(record.EntityType))

	var metadata []byte
	if record.Metadata != nil {
		var err error
		// map keys are marshalled in sorted order
		metadata, err = json.Marshal(record.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal audit metadata: %w", err)
		}
	}
	buf = appendLengthPrefixed(buf, metadata)

	return binary.BigEndian.AppendUint64(buf, uint64(record.CreatedAt.UnixMicro())), nil
}

func appendLengthPrefixed(buf, data []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}
