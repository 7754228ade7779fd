// Package storage keeps uploaded request and catalog images on local disk.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxBytes   = 5 << 20
	DefaultThumbWidth = 320
	thumbDir          = "thumbs"
)

var (
	ErrTooLarge        = errors.New("file size exceeds limit")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrExists          = errors.New("blob already exists")
)

var imageMIMEs = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Blob describes a stored file.
type Blob struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ThumbURL    string `json:"thumbUrl,omitempty"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// Store is the blob storage the handlers write attachments to.
type Store interface {
	Put(ctx context.Context, prefix, filename string, r io.Reader) (Blob, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(u string) string
}

// Local writes blobs under Root and serves them from BaseURL + "/uploads".
type Local struct {
	Root       string
	BaseURL    string
	MaxBytes   int64
	ThumbWidth int

	now func() time.Time
}

func NewLocal(root, baseURL string) *Local {
	return &Local{
		Root:       root,
		BaseURL:    strings.TrimRight(baseURL, "/"),
		MaxBytes:   DefaultMaxBytes,
		ThumbWidth: DefaultThumbWidth,
		now:        time.Now,
	}
}

// DetectType sniffs the content type from the first bytes of r and rewinds it.
func DetectType(r io.ReadSeeker) (string, error) {
	buf := make([]byte, 512)
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read header: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind: %w", err)
	}
	return http.DetectContentType(buf[:n]), nil
}

// Put stores an image as {prefix}/{unixMillis}_{name}. Existing keys are never
// overwritten.
func (s *Local) Put(ctx context.Context, prefix, filename string, r io.Reader) (Blob, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.MaxBytes+1))
	if err != nil {
		return Blob{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.MaxBytes {
		return Blob{}, ErrTooLarge
	}
	mime := http.DetectContentType(data)
	if !imageMIMEs[mime] {
		return Blob{}, fmt.Errorf("%w: %s", ErrUnsupportedType, mime)
	}
	if err := ctx.Err(); err != nil {
		return Blob{}, err
	}

	prefix = sanitizePrefix(prefix)
	name := fmt.Sprintf("%d_%s", s.now().UnixMilli(), SanitizeName(filename))
	key := path.Join(prefix, name)
	full := filepath.Join(s.Root, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return Blob{}, fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return Blob{}, ErrExists
		}
		return Blob{}, fmt.Errorf("create %s: %w", key, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(full)
		return Blob{}, fmt.Errorf("write %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return Blob{}, fmt.Errorf("close %s: %w", key, err)
	}

	blob := Blob{Key: key, URL: s.url(key), ContentType: mime, Size: int64(len(data))}
	if thumbKey, err := s.thumbnail(prefix, name, data); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("thumbnail failed")
	} else {
		blob.ThumbURL = s.url(thumbKey)
	}
	return blob, nil
}

func (s *Local) thumbnail(prefix, name string, data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	resized := imaging.Resize(img, s.ThumbWidth, 0, imaging.Lanczos)

	key := path.Join(prefix, thumbDir, strings.TrimSuffix(name, path.Ext(name))+".jpg")
	full := filepath.Join(s.Root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}
	out, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create thumbnail: %w", err)
	}
	defer out.Close()
	if err := jpeg.Encode(out, resized, &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}
	return key, nil
}

// Delete removes a blob and its thumbnail. Missing files are ignored.
func (s *Local) Delete(ctx context.Context, key string) error {
	key = s.KeyFromURL(key)
	if key == "" || strings.Contains(key, "..") {
		return nil
	}
	full := filepath.Join(s.Root, filepath.FromSlash(key))
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	dir, name := path.Split(key)
	thumb := filepath.Join(s.Root, filepath.FromSlash(path.Join(dir, thumbDir, strings.TrimSuffix(name, path.Ext(name))+".jpg")))
	if err := os.Remove(thumb); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete thumbnail: %w", err)
	}
	return nil
}

func (s *Local) url(key string) string { return s.BaseURL + "/uploads/" + key }

// KeyFromURL strips the public prefix from a blob URL. Keys pass through.
func (s *Local) KeyFromURL(u string) string {
	return strings.TrimPrefix(strings.TrimPrefix(u, s.BaseURL), "/uploads/")
}

// sanitizePrefix cleans each segment of a slash-separated prefix.
func sanitizePrefix(prefix string) string {
	var parts []string
	for _, seg := range strings.Split(prefix, "/") {
		seg = strings.TrimSpace(seg)
		if seg == "" || seg == "." || seg == ".." {
			continue
		}
		parts = append(parts, SanitizeName(seg))
	}
	if len(parts) == 0 {
		return "misc"
	}
	return path.Join(parts...)
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_.\-]`)

// SanitizeName keeps a filename safe for use as a path segment.
func SanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, ".")
	if name == "" {
		return "file"
	}
	return name
}
