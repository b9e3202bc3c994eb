// Package identity generates message board identifiers and converts them
// to and from the 16-byte form stored in the database.
package identity

import (
	"fmt"

	"github.com/google/uuid"

	"message-board/internal/domain"
)

// Size is the width of an encoded identifier.
const Size = 16

// New returns a fresh random (version 4) identifier.
func New() uuid.UUID {
	return uuid.New()
}

// Encode returns the fixed-width binary form of id.
func Encode(id uuid.UUID) []byte {
	b := make([]byte, Size)
	copy(b, id[:])
	return b
}

// EncodeNullable encodes id, or returns nil so the column is stored as NULL.
func EncodeNullable(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return Encode(*id)
}

// Decode converts a stored 16-byte value back to an identifier.
func Decode(b []byte) (uuid.UUID, error) {
	if len(b) != Size {
		return uuid.Nil, fmt.Errorf("%w: expected %d bytes, got %d", domain.ErrMalformedIdentifier, Size, len(b))
	}
	id, err := uuid.FromBytes(b)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", domain.ErrMalformedIdentifier, err)
	}
	return id, nil
}

// DecodeNullable decodes a nullable column. A nil slice yields nil.
func DecodeNullable(b []byte) (*uuid.UUID, error) {
	if b == nil {
		return nil, nil
	}
	id, err := Decode(b)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// Parse reads the canonical textual form of an identifier.
func Parse(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", domain.ErrMalformedIdentifier, s)
	}
	return id, nil
}
