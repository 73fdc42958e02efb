// Package storage keeps uploaded media on the local filesystem under the
// configured media root.
package storage

import (
	"bytes"
	"image"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	MaxImageSide    = 1024
	MaxUploadBytes  = 10 << 20
	MaxImagePixels  = 40_000_000
	airplaneImgPath = "uploads/airplanes"
)

var (
	ErrUnsupportedImage = errors.New("upload a valid image: the file is not an image or is corrupted")
	ErrImageTooLarge    = errors.New("image is too large: at most 10 MB and 40 megapixels")
)

type ImageStore struct {
	root string

	maxBytes  int64
	maxPixels int
}

func NewImageStore(root string) *ImageStore {
	return &ImageStore{root: root, maxBytes: MaxUploadBytes, maxPixels: MaxImagePixels}
}

// SaveAirplaneImage decodes src, shrinks it to fit MaxImageSide and writes it
// as uploads/airplanes/<slug>-<uuid><ext>. The returned path is relative to
// the media root and uses forward slashes.
func (s *ImageStore) SaveAirplaneImage(airplaneName, filename string, src io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, err := imaging.FormatFromExtension(ext); err != nil {
		return "", ErrUnsupportedImage
	}

	data, err := io.ReadAll(io.LimitReader(src, s.maxBytes+1))
	if err != nil {
		return "", errors.Wrap(err, "read upload")
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrImageTooLarge
	}
	// Dimensions come from the header, before any pixel is allocated.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", ErrUnsupportedImage
	}
	if cfg.Width*cfg.Height > s.maxPixels {
		return "", ErrImageTooLarge
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", ErrUnsupportedImage
	}
	img = imaging.Fit(img, MaxImageSide, MaxImageSide, imaging.Lanczos)

	rel := path.Join(airplaneImgPath, slugify(airplaneName)+"-"+uuid.NewString()+ext)
	full := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", errors.Wrap(err, "create media dir")
	}
	if err := imaging.Save(img, full); err != nil {
		return "", errors.Wrap(err, "save image")
	}
	return rel, nil
}

// Remove deletes a previously stored file. Missing files are ignored.
func (s *ImageStore) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove media")
	}
	return nil
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "airplane"
	}
	return out
}
