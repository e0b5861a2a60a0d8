package assets

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// CustomerPrefix is the key prefix every customer image is stored under.
const CustomerPrefix = "customers/"

// UniqueName builds a collision-free key such as customers/<uuid>-photo.png.
// detectedExt comes from the sniffed content and wins over the client's
// extension; the filename's extension is used only when nothing was detected.
func UniqueName(filename, detectedExt string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	ext := strings.ToLower(detectedExt)
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(base))
	}
	stem := slug.Make(strings.TrimSuffix(base, filepath.Ext(base)))
	if stem == "" {
		stem = "image"
	}
	return CustomerPrefix + uuid.NewString() + "-" + stem + ext
}

// PublicPath is the address the asset is served from.
func PublicPath(prefix, key string) string {
	return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(key, "/")
}

// KeyFromPublicPath reverses PublicPath. ok is false for references that do
// not point into the store.
func KeyFromPublicPath(prefix, publicPath string) (string, bool) {
	prefix = strings.TrimRight(prefix, "/")
	if prefix != "" {
		if !strings.HasPrefix(publicPath, prefix+"/") {
			return "", false
		}
		publicPath = strings.TrimPrefix(publicPath, prefix)
	}
	key := strings.TrimLeft(path.Clean("/"+publicPath), "/")
	if !strings.HasPrefix(key, CustomerPrefix) {
		return "", false
	}
	return key, true
}

func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") {
		return false
	}
	return path.Clean(key) == key && !strings.HasPrefix(key, "../") && key != ".."
}
