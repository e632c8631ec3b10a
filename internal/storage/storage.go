// Package storage persists uploaded product images under the public content
// root and serves them back.
package storage

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"catalog-api/internal/domain"

	"github.com/gabriel-vasile/mimetype"
)

var ErrInvalidType = errors.New("image type is invalid")

// extensions maps every accepted content type to the extension of the stored file.
var extensions = map[string]string{
	"image/jpeg": "jpeg",
	"image/jpg":  "jpg",
	"image/png":  "png",
}

// maxStemBytes caps the stem length; the cut never splits a rune.
const maxStemBytes = 100

var unsafeChars = regexp.MustCompile(`[<>:"/\\|?*#%\x00-\x1F]`)

// Store persists uploads and serves stored assets by file name.
type Store interface {
	Save(ctx context.Context, upload domain.Upload) (domain.AssetRef, error)
	ServeAsset(w http.ResponseWriter, r *http.Request, name string)
}

// ExtensionFor returns the file extension for an accepted image content type.
func ExtensionFor(contentType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, contentType)
	}
	ext, ok := extensions[strings.ToLower(mediaType)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, contentType)
	}
	return ext, nil
}

// Validate reports whether upload may be stored. It never touches storage.
func Validate(upload domain.Upload) error {
	_, err := ExtensionFor(upload.ContentType)
	return err
}

// ResolveContentType returns declared, or the sniffed type of data when the
// client declared nothing useful.
func ResolveContentType(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return mimetype.Detect(data).String()
}

// FileName builds the stored name "<stem>-<unixMillis>.<ext>". Whitespace in
// the original name becomes "_". The original extension is dropped on purpose
// and replaced by the one of the validated content type, so "photo.jpg" sent
// as image/jpeg is stored as "photo-<ms>.jpeg".
func FileName(originalName, contentType string, now time.Time) (string, error) {
	ext, err := ExtensionFor(contentType)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d.%s", sanitizeStem(originalName), now.UnixMilli(), ext), nil
}

func sanitizeStem(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, name)
	name = unsafeChars.ReplaceAllString(name, "_")
	if len(name) > maxStemBytes {
		cut := maxStemBytes
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = name[:cut]
	}
	if name == "" || name == "." || name == ".." {
		return "image"
	}
	return name
}

// validAssetName rejects names that could escape the content root.
func validAssetName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}
