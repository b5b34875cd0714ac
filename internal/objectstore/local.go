package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder

	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
)

const (
	// masterMaxSize bounds the longest edge of the stored master image.
	masterMaxSize = 2048
	webpQuality   = 80

	defaultMaxUploadBytes = 10 * 1024 * 1024
)

// Local is a filesystem-backed Store serving objects under a public base URL.
type Local struct {
	dir      string
	baseURL  string
	maxBytes int64
}

// NewLocal creates a local object store rooted at dir. maxUploadMB <= 0
// falls back to the default limit.
func NewLocal(dir, baseURL string, maxUploadMB int) *Local {
	maxBytes := int64(defaultMaxUploadBytes)
	if maxUploadMB > 0 {
		maxBytes = int64(maxUploadMB) * 1024 * 1024
	}
	return &Local{
		dir:      dir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
	}
}

func (l *Local) Put(ctx context.Context, in PutInput) (string, error) {
	if len(in.Data) == 0 {
		return "", fmt.Errorf("objectstore: empty upload")
	}
	if int64(len(in.Data)) > l.maxBytes {
		return "", fmt.Errorf("objectstore: upload exceeds %d bytes", l.maxBytes)
	}
	if detected := http.DetectContentType(in.Data); !strings.HasPrefix(detected, "image/") {
		return "", fmt.Errorf("objectstore: unsupported content type %s", detected)
	}

	decoded, _, err := image.Decode(bytes.NewReader(in.Data))
	if err != nil {
		return "", fmt.Errorf("objectstore: decode image: %w", err)
	}

	encoded, err := encodeMaster(decoded)
	if err != nil {
		return "", fmt.Errorf("objectstore: encode image: %w", err)
	}

	rel := path.Join(fmt.Sprintf("%d", in.OwnerID), uuid.NewString()+".webp")
	full := filepath.Join(l.dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("objectstore: create owner dir: %w", err)
	}
	if err := os.WriteFile(full, encoded, 0o644); err != nil {
		return "", fmt.Errorf("objectstore: write object: %w", err)
	}

	return l.baseURL + "/" + rel, nil
}

func (l *Local) Remove(ctx context.Context, url string) error {
	rel, ok := strings.CutPrefix(url, l.baseURL+"/")
	if !ok {
		return fmt.Errorf("objectstore: url %q is not served by this store", url)
	}

	full := filepath.Join(l.dir, filepath.FromSlash(rel))
	// Refuse paths escaping the store root.
	if resolved, err := filepath.Rel(l.dir, full); err != nil || strings.HasPrefix(resolved, "..") {
		return fmt.Errorf("objectstore: url %q resolves outside the store", url)
	}

	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// encodeMaster downsizes the image to the master bound and encodes WebP.
func encodeMaster(src image.Image) ([]byte, error) {
	resized := resizeToFit(src, masterMaxSize)
	var buf bytes.Buffer
	if err := webp.Encode(&buf, resized, &webp.Options{Quality: webpQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// resizeToFit scales the image down so neither edge exceeds bound. Images
// already within the bound are returned unchanged.
func resizeToFit(src image.Image, bound int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= bound && h <= bound {
		return src
	}

	scale := float64(bound) / float64(w)
	if h > w {
		scale = float64(bound) / float64(h)
	}
	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}
