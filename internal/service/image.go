package service

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// maxImagePixels bounds the decoded size of an upload. Image headers are
// checked against it before any pixel data is allocated.
const maxImagePixels = 50_000_000

const msgInvalidImage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."

// imageExtensions maps decoder format names to stored file extensions.
var imageExtensions = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"gif":  ".gif",
	"bmp":  ".bmp",
	"tiff": ".tiff",
	"webp": ".webp",
}

// inspectImage fully decodes data and returns its format name. Header-only
// checks would accept truncated files, so the whole image is decoded once
// its declared dimensions are known to be reasonable.
func inspectImage(data []byte) (string, bool) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", false
	}
	if _, ok := imageExtensions[format]; !ok {
		return "", false
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return "", false
	}
	if _, err := imaging.Decode(bytes.NewReader(data)); err != nil {
		return "", false
	}
	return format, true
}
