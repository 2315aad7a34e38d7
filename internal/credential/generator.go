// Package credential issues the scannable entry badge for an attendee: a QR
// code whose payload is the user id, stored under a key derived from that id.
package credential

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"
	qrcode "github.com/skip2/go-qrcode"
)

// ErrNotFound is returned by stores when no artifact exists for a key.
var ErrNotFound = errors.New("credential artifact not found")

const defaultSize = 256

// Store persists rendered artifacts. Put overwrites.
type Store interface {
	Put(ctx context.Context, key string, data []byte) (ref string, err error)
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Generator renders and stores badges.
type Generator struct {
	store Store
	size  int
}

// NewGenerator builds a generator writing PNGs of size x size pixels.
func NewGenerator(store Store, size int) *Generator {
	if size <= 0 {
		size = defaultSize
	}
	return &Generator{store: store, size: size}
}

// Key is the storage key for a user's badge.
func Key(userID string) string {
	return userID + ".png"
}

// Generate renders the badge for userID and writes it, replacing any
// previous artifact for the same id. The rendered image is decoded once
// before storing so an unreadable badge never reaches a user.
func (g *Generator) Generate(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", errors.New("credential: empty user id")
	}
	png, err := Encode(userID, g.size)
	if err != nil {
		return "", err
	}
	decoded, err := Decode(png)
	if err != nil {
		return "", fmt.Errorf("credential: self-check: %w", err)
	}
	if decoded != userID {
		return "", fmt.Errorf("credential: self-check decoded %q", decoded)
	}
	return g.store.Put(ctx, Key(userID), png)
}

// Load returns the stored badge bytes.
func (g *Generator) Load(ctx context.Context, userID string) ([]byte, error) {
	return g.store.Get(ctx, Key(userID))
}

// Discard removes the badge; used to roll back a failed signup.
func (g *Generator) Discard(ctx context.Context, userID string) error {
	return g.store.Delete(ctx, Key(userID))
}

// Encode renders payload as a PNG QR code.
func Encode(payload string, size int) ([]byte, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("credential: encode: %w", err)
	}
	return png, nil
}

// Decode reads the payload back out of a PNG QR code.
func Decode(png []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(png))
	if err != nil {
		return "", fmt.Errorf("credential: decode image: %w", err)
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("credential: bitmap: %w", err)
	}
	result, err := zxqrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return "", fmt.Errorf("credential: read qr: %w", err)
	}
	return result.GetText(), nil
}
