// Package media processes scan photos: content hashing and BlurHash
// placeholder generation. Raw image bytes are never persisted server-side;
// the mobile client owns the original.
package media

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder

	"github.com/bbrks/go-blurhash"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// blurHashSize is the target size for BlurHash computation.
// BlurHash doesn't need high resolution - a small thumbnail produces nearly
// identical results, and 64x64 keeps computation in the milliseconds.
const blurHashSize = 64

// PhotoInfo is what the server keeps about an uploaded photo.
type PhotoInfo struct {
	Hash     string // SHA-256 of the original bytes, hex encoded
	BlurHash string // Placeholder for client rendering
	Width    int
	Height   int
}

// ProcessPhoto hashes the photo bytes and computes a BlurHash placeholder.
func ProcessPhoto(data []byte) (*PhotoInfo, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty photo data")
	}

	sum := sha256.Sum256(data)

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode photo: %w", err)
	}

	bounds := img.Bounds()
	thumbnail := resizeForBlurHash(img)

	// 4 horizontal, 3 vertical components - sweet spot for landmark photos
	hash, err := blurhash.Encode(4, 3, thumbnail)
	if err != nil {
		return nil, fmt.Errorf("encode blurhash: %w", err)
	}

	return &PhotoInfo{
		Hash:     hex.EncodeToString(sum[:]),
		BlurHash: hash,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	}, nil
}

// resizeForBlurHash creates a small thumbnail suitable for BlurHash
// computation, preserving aspect ratio.
func resizeForBlurHash(img image.Image) image.Image {
	bounds := img.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()

	// If image is already small enough, use it directly
	if srcWidth <= blurHashSize && srcHeight <= blurHashSize {
		return img
	}

	var dstWidth, dstHeight int
	if srcWidth > srcHeight {
		dstWidth = blurHashSize
		dstHeight = (srcHeight * blurHashSize) / srcWidth
		if dstHeight < 1 {
			dstHeight = 1
		}
	} else {
		dstHeight = blurHashSize
		dstWidth = (srcWidth * blurHashSize) / srcHeight
		if dstWidth < 1 {
			dstWidth = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	return dst
}
