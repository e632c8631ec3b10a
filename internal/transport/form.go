package transport

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"

	"catalog-api/internal/domain"
	"catalog-api/internal/storage"

	"github.com/go-viper/mapstructure/v2"
)

var errTooManyImages = errors.New("only one image may be uploaded")

// parseMultipart reads a multipart body of at most maxBytes.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return fmt.Errorf("invalid multipart body: %w", err)
	}
	return nil
}

// decodeForm copies the scalar form fields into out using its form tags.
// Only fields with a non-empty value are touched, so pointer fields stay nil
// when their key is absent or blank. Keys in skip are left for the caller.
func decodeForm(form *multipart.Form, out any, skip ...string) error {
	values := make(map[string]any, len(form.Value))
	for key, vs := range form.Value {
		if len(vs) == 0 || slices.Contains(skip, key) {
			continue
		}
		if v := strings.TrimSpace(vs[0]); v != "" {
			values[key] = v
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "form",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(values); err != nil {
		return fmt.Errorf("invalid form field: %w", err)
	}
	return nil
}

func readUpload(fh *multipart.FileHeader) (domain.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.Upload{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return domain.Upload{}, fmt.Errorf("failed to read upload: %w", err)
	}

	return domain.Upload{
		ContentType:  storage.ResolveContentType(fh.Header.Get("Content-Type"), data),
		Data:         data,
		OriginalName: fh.Filename,
	}, nil
}

// singleUpload returns the file under field, or nil when none was sent.
func singleUpload(form *multipart.Form, field string) (*domain.Upload, error) {
	files := form.File[field]
	switch len(files) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, errTooManyImages
	}

	upload, err := readUpload(files[0])
	if err != nil {
		return nil, err
	}
	return &upload, nil
}

func multiUpload(form *multipart.Form, field string) ([]domain.Upload, error) {
	files := form.File[field]
	uploads := make([]domain.Upload, 0, len(files))
	for _, fh := range files {
		upload, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, upload)
	}
	return uploads, nil
}

// assetBaseURL is the public URL prefix of stored assets as seen by the caller.
func assetBaseURL(r *http.Request, publicPath string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	return fmt.Sprintf("%s://%s%s/", scheme, r.Host, publicPath)
}
