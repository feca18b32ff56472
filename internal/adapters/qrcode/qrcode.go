// Package qrcode renders check-in payloads as PNG QR codes.
package qrcode

import (
	"fmt"

	"eventmanager/internal/domain"

	qr "github.com/skip2/go-qrcode"
)

// DefaultSize is the PNG edge length in pixels.
const DefaultSize = 256

type encoder struct {
	size int
}

// NewEncoder returns a QREncoder producing size x size PNGs at medium error
// correction. A non-positive size selects DefaultSize.
func NewEncoder(size int) domain.QREncoder {
	if size <= 0 {
		size = DefaultSize
	}
	return encoder{size: size}
}

func (e encoder) PNG(payload string) ([]byte, error) {
	if payload == "" {
		return nil, fmt.Errorf("%w: empty qr payload", domain.ErrInvalidInput)
	}
	return qr.Encode(payload, qr.Medium, e.size)
}
