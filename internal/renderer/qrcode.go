package renderer

import (
	"image"

	qrcode "github.com/skip2/go-qrcode"
)

// qrImage encodes content as a size×size QR code with medium error
// correction.
func qrImage(content string, size int) (image.Image, error) {
	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	return q.Image(size), nil
}
