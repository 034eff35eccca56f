package services

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/diewo77/nats-backoffice/internal/storage"
)

// DefaultMaxUploadBytes is the largest accepted image.
const DefaultMaxUploadBytes = 5 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// UploadFile is one file taken from a multipart form.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type UploadResult struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

type UploadService struct {
	store    storage.Store
	maxBytes int64
	now      func() time.Time
	last     atomic.Int64
}

func NewUploadService(store storage.Store, maxBytes int64) *UploadService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &UploadService{store: store, maxBytes: maxBytes, now: time.Now}
}

// MaxBytes is the per-file limit.
func (s *UploadService) MaxBytes() int64 { return s.maxBytes }

// SanitizeFilename keeps the base name and replaces every character outside
// [A-Za-z0-9._-] with an underscore.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	return unsafeNameChars.ReplaceAllString(filepath.Base(name), "_")
}

// nextToken returns the current Unix milliseconds, bumped so that two calls
// never return the same value.
func (s *UploadService) nextToken() int64 {
	ms := s.now().UnixMilli()
	for {
		last := s.last.Load()
		next := ms
		if next <= last {
			next = last + 1
		}
		if s.last.CompareAndSwap(last, next) {
			return next
		}
	}
}

// errTooLarge is returned by limitReader once the limit is crossed.
var errTooLarge = errors.New("upload exceeds size limit")

type limitReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, errTooLarge
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, errTooLarge
	}
	return n, err
}

// Upload validates and stores an image. It never touches portfolio records.
func (s *UploadService) Upload(ctx context.Context, f UploadFile) (*UploadResult, error) {
	if _, err := requireSession(ctx); err != nil {
		return nil, err
	}
	if f.Body == nil || f.Name == "" {
		return nil, ErrNoFile
	}
	if !allowedImageTypes[strings.ToLower(strings.TrimSpace(f.ContentType))] {
		return nil, ErrUnsupportedMediaType
	}
	if f.Size > s.maxBytes {
		return nil, ErrPayloadTooLarge
	}

	name := strconv.FormatInt(s.nextToken(), 10) + "_" + SanitizeFilename(f.Name)
	url, err := s.store.Save(ctx, name, &limitReader{r: f.Body, remaining: s.maxBytes})
	if errors.Is(err, errTooLarge) {
		return nil, ErrPayloadTooLarge
	}
	if err != nil {
		return nil, storeErr("save upload", err)
	}
	return &UploadResult{URL: url, Filename: name}, nil
}
