package media

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// RecipeImageDir is the key prefix for recipe images.
const RecipeImageDir = "uploads/recipe"

// ErrInvalidImage is returned for payloads that are not a decodable image.
var ErrInvalidImage = errors.New("upload a valid image. The file you uploaded was either not an image or a corrupted image")

// ImageInfo describes a decoded upload.
type ImageInfo struct {
	ContentType string
	Ext         string // with leading dot
	Width       int
	Height      int
}

// DecodeImage sniffs data and confirms it decodes as gif, jpeg or png.
func DecodeImage(data []byte) (ImageInfo, error) {
	if len(data) == 0 {
		return ImageInfo{}, ErrInvalidImage
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return ImageInfo{}, ErrInvalidImage
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, ErrInvalidImage
	}
	return ImageInfo{
		ContentType: mt.String(),
		Ext:         mt.Extension(),
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}

// ImageKey returns a fresh key "uploads/recipe/<uuid><ext>". The extension is
// taken from filename, lowercased, as long as it names the same media type as
// sniffedExt; otherwise sniffedExt is used. Stored files are served with a
// type derived from the key, so "x.html" holding a PNG becomes ".png".
func ImageKey(filename, sniffedExt string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	sniffedExt = strings.ToLower(sniffedExt)
	if !sameMediaType(ext, sniffedExt) {
		ext = sniffedExt
	}
	return RecipeImageDir + "/" + uuid.NewString() + ext
}

func sameMediaType(a, b string) bool {
	ta := mime.TypeByExtension(a)
	return ta != "" && ta == mime.TypeByExtension(b)
}
