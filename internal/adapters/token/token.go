// Package token mints invitation tokens.
package token

import (
	"eventmanager/internal/domain"

	"github.com/google/uuid"
)

type uuidGenerator struct{}

// NewGenerator returns a TokenGenerator producing random (version 4) UUIDs.
func NewGenerator() domain.TokenGenerator {
	return uuidGenerator{}
}

func (uuidGenerator) Generate() string {
	return uuid.NewString()
}
