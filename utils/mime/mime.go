package mime

import (
	"path/filepath"
	"strings"
)

// supportedExts are the image extensions the catalog recognizes.
var supportedExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".tiff": "image/tiff",
	".webp": "image/webp",
}

// IsSupportedImage reports whether path has a recognized image
// extension.
func IsSupportedImage(path string) bool {
	_, ok := supportedExts[normalizeExt(path)]
	return ok
}

// TypeByPath returns the MIME type for path, or an empty string for
// unrecognized extensions.
func TypeByPath(path string) string {
	return supportedExts[normalizeExt(path)]
}

func normalizeExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
