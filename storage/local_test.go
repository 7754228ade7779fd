package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newTestStore(t *testing.T) *Local {
	t.Helper()
	s := NewLocal(t.TempDir(), "http://localhost:8080/")
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return s
}

func TestPutWritesBlobAndThumbnail(t *testing.T) {
	s := newTestStore(t)
	blob, err := s.Put(context.Background(), "reports", "broken screen.png", bytes.NewReader(pngBytes(t, 640, 480)))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if blob.Key != "reports/1700000000000_broken_screen.png" {
		t.Fatalf("key = %q", blob.Key)
	}
	if blob.URL != "http://localhost:8080/uploads/reports/1700000000000_broken_screen.png" {
		t.Fatalf("url = %q", blob.URL)
	}
	if blob.ContentType != "image/png" || blob.ThumbURL == "" {
		t.Fatalf("blob = %+v", blob)
	}
	if _, err := os.Stat(filepath.Join(s.Root, "reports", "thumbs", "1700000000000_broken_screen.jpg")); err != nil {
		t.Fatalf("thumbnail missing: %v", err)
	}
}

func TestPutIsWriteOnce(t *testing.T) {
	s := newTestStore(t)
	data := pngBytes(t, 10, 10)
	if _, err := s.Put(context.Background(), "p", "a.png", bytes.NewReader(data)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Put(context.Background(), "p", "a.png", bytes.NewReader(data)); !errors.Is(err, ErrExists) {
		t.Fatalf("err = %v, want ErrExists", err)
	}
}

func TestPutRejects(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Put(context.Background(), "p", "a.txt", strings.NewReader("hello")); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("err = %v, want ErrUnsupportedType", err)
	}
	s.MaxBytes = 16
	if _, err := s.Put(context.Background(), "p", "a.png", bytes.NewReader(pngBytes(t, 50, 50))); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	blob, err := s.Put(context.Background(), "catalog", "m.png", bytes.NewReader(pngBytes(t, 20, 20)))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(context.Background(), blob.URL); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(s.Root, filepath.FromSlash(blob.Key))); !os.IsNotExist(err) {
		t.Fatalf("blob still present: %v", err)
	}
	if err := s.Delete(context.Background(), blob.URL); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"../../etc/passwd": "passwd",
		"my photo (1).jpg": "my_photo_1.jpg",
		"...":              "file",
		`C:\x\y.png`:       "y.png",
	}
	for in, want := range cases {
		if got := SanitizeName(in); got != want {
			t.Errorf("SanitizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDetectType(t *testing.T) {
	r := bytes.NewReader(pngBytes(t, 4, 4))
	mt, err := DetectType(r)
	if err != nil || mt != "image/png" {
		t.Fatalf("type = %q err = %v", mt, err)
	}
	if pos, _ := r.Seek(0, 1); pos != 0 {
		t.Fatalf("reader not rewound: %d", pos)
	}
}

func TestSanitizePrefix(t *testing.T) {
	cases := map[string]string{
		"catalog/borrow": "catalog/borrow",
		"../etc":         "etc",
		"/reports/":      "reports",
		"":               "misc",
	}
	for in, want := range cases {
		if got := sanitizePrefix(in); got != want {
			t.Errorf("sanitizePrefix(%q) = %q, want %q", in, got, want)
		}
	}
}
