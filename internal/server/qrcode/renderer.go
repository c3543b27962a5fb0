// Package qrcode renders scannable identifier images.
package qrcode

import (
	"context"
	"fmt"

	qr "github.com/skip2/go-qrcode"
)

// Renderer turns an identifier payload into an image. Implementations must
// be safe for concurrent use.
type Renderer interface {
	Render(ctx context.Context, payload string) ([]byte, error)
}

const pngSize = 256

// PNGRenderer renders QR codes as PNG bytes with medium error correction.
type PNGRenderer struct{}

func NewPNGRenderer() *PNGRenderer {
	return &PNGRenderer{}
}

func (r *PNGRenderer) Render(_ context.Context, payload string) ([]byte, error) {
	png, err := qr.Encode(payload, qr.Medium, pngSize)
	if err != nil {
		return nil, fmt.Errorf("error rendering qr code: %w", err)
	}
	return png, nil
}
