package bot

import (
	"bytes"
	"fmt"
	"image"
	"path"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/kobuta23/telegram-minter/internal/errs"
)

// Image intake limits.
const (
	minImageDim  = 400
	maxImageDim  = 3000
	maxImageSize = 5 << 20 // 5 MiB
)

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// validateImage checks size, extension, and decoded dimensions. Failures are
// validation errors whose message is shown to the user as the re-prompt
// reason.
func validateImage(data []byte, filename string) error {
	if len(data) > maxImageSize {
		return fmt.Errorf("%w: image is larger than 5 MB", errs.ErrValidation)
	}
	ext := strings.ToLower(path.Ext(filename))
	if !allowedImageExts[ext] {
		return fmt.Errorf("%w: unsupported file type %q, use jpg, jpeg, png, webp or gif", errs.ErrValidation, ext)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: could not read image dimensions", errs.ErrValidation)
	}
	if cfg.Width < minImageDim || cfg.Height < minImageDim ||
		cfg.Width > maxImageDim || cfg.Height > maxImageDim {
		return fmt.Errorf("%w: image must be between %dx%d and %dx%d pixels, got %dx%d",
			errs.ErrValidation, minImageDim, minImageDim, maxImageDim, maxImageDim, cfg.Width, cfg.Height)
	}
	return nil
}

// contentTypeForExt maps an allowed extension to its MIME type for pinning.
func contentTypeForExt(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
