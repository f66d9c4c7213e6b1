// Package image validates uploaded pictures and stores them in the object store.
package image

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// keyPrefix starts every generated storage key.
const keyPrefix = "|"

// Storage is the object store capability the service needs.
// Uploaded objects must be publicly readable.
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
}

// Config holds the upload rules and the public URL prefix.
type Config struct {
	BaseURL           string
	MinSize           int64
	AllowedExtensions []string
}

// DefaultConfig returns the production upload rules for baseURL.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:           baseURL,
		MinSize:           25,
		AllowedExtensions: []string{"jpg", "jpeg", "png", "heic", "HEIC"},
	}
}

// File is an uploaded file as received from the client.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Size returns the payload length in bytes.
func (f File) Size() int64 { return int64(len(f.Data)) }

// UploadResponse is returned to clients after a successful upload.
type UploadResponse struct {
	URL string `json:"url" example:"https://cdn.example.com/|1b4e28ba-2fa1-11d2-883f-0016d3cca427.png"`
}

// Service uploads and deletes review images.
type Service struct {
	store Storage
	cfg   Config
	log   *zap.Logger
	newID func() string
}

// NewService creates a new image Service.
func NewService(store Storage, cfg Config, log *zap.Logger) *Service {
	return &Service{
		store: store,
		cfg:   cfg,
		log:   log,
		newID: func() string { return uuid.NewString() },
	}
}

// Validate checks f against cfg and returns its extension.
// Files at or below cfg.MinSize bytes are rejected.
func Validate(cfg Config, f File) (string, error) {
	if len(f.Data) == 0 && f.Filename != "" {
		return "", ErrEmptyFile
	}
	if f.Size() <= cfg.MinSize {
		return "", ErrFileTooSmall
	}

	ext := Extension(f.Filename)
	for _, allowed := range cfg.AllowedExtensions {
		if ext == allowed {
			return ext, nil
		}
	}
	return "", ErrUnsupportedExtension
}

// Extension returns the text after the last dot, or the whole name when
// there is no dot. Case is preserved.
func Extension(filename string) string {
	return filename[strings.LastIndex(filename, ".")+1:]
}

// UploadImage stores f and returns its public URL.
func (s *Service) UploadImage(ctx context.Context, f File) (*UploadResponse, error) {
	key, err := s.Upload(ctx, f)
	if err != nil {
		return nil, err
	}
	return &UploadResponse{URL: s.URL(key)}, nil
}

// Upload validates f, writes it under a fresh random key and returns the key.
func (s *Service) Upload(ctx context.Context, f File) (string, error) {
	ext, err := Validate(s.cfg, f)
	if err != nil {
		return "", err
	}

	key := keyPrefix + s.newID() + "." + ext
	if err := s.store.Upload(ctx, key, bytes.NewReader(f.Data), f.Size(), f.ContentType); err != nil {
		return "", &Error{Kind: KindUploadFailed, Err: err}
	}

	s.log.Info("image uploaded",
		zap.String("key", key),
		zap.String("filename", f.Filename),
		zap.Int64("size", f.Size()))
	return key, nil
}

// Delete removes the object stored under key. The store's error is logged
// and replaced by ErrDeleteFailed.
func (s *Service) Delete(ctx context.Context, key string) error {
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.Warn("image delete failed", zap.String("key", key), zap.Error(err))
		return ErrDeleteFailed
	}
	return nil
}

// URL returns the public URL for key.
func (s *Service) URL(key string) string {
	return BuildURL(s.cfg.BaseURL, key)
}

// BuildURL joins baseURL and key with a single slash.
func BuildURL(baseURL, key string) string {
	return baseURL + "/" + key
}

// KeyFromURL extracts the storage key from a URL produced by URL.
func (s *Service) KeyFromURL(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, s.cfg.BaseURL+"/")
	if !ok || !strings.HasPrefix(key, keyPrefix) || strings.Contains(key, "/") {
		return "", false
	}
	return key, true
}

// DeleteByURL deletes the object behind url. URLs that do not point into
// the configured bucket are ignored.
func (s *Service) DeleteByURL(ctx context.Context, url string) error {
	key, ok := s.KeyFromURL(url)
	if !ok {
		s.log.Debug("skipping foreign image url", zap.String("url", url))
		return nil
	}
	return s.Delete(ctx, key)
}
