// Package storage validates uploaded media and persists it under a content
// folder.
package storage

import (
	"context"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/apperr"
	"github.com/google/uuid"
)

const (
	FolderReviews    = "reviews"
	FolderWorkPhotos = "work-photos"
	FolderBlog       = "blog"
	FolderEmail      = "email"

	MaxImageSize = 10 * 1024 * 1024
)

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Storage saves and removes uploaded files. Save returns the URL the file is
// served from; Delete takes that URL back.
type Storage interface {
	Save(ctx context.Context, folder string, file *multipart.FileHeader) (string, error)
	Delete(ctx context.Context, url string) error
}

// ValidateImage checks size and type before anything is written.
func ValidateImage(field string, file *multipart.FileHeader) error {
	if file == nil {
		return apperr.Invalid(field, "file is required")
	}
	if file.Size > MaxImageSize {
		return apperr.Invalid(field, "%s exceeds the 10MB limit", file.Filename)
	}
	if file.Size == 0 {
		return apperr.Invalid(field, "%s is empty", file.Filename)
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if _, ok := imageTypes[ext]; !ok {
		return apperr.Invalid(field, "%s: only jpg, png, gif and webp images are allowed", file.Filename)
	}
	if ct := file.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return apperr.Invalid(field, "%s is not an image", file.Filename)
	}
	return nil
}

// ContentType guesses a MIME type from a file extension.
func ContentType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ct, ok := imageTypes[ext]; ok {
		return ct
	}
	switch ext {
	case ".svg":
		return "image/svg+xml"
	case ".pdf":
		return "application/pdf"
	case ".mp4":
		return "video/mp4"
	}
	return "application/octet-stream"
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

// UniqueName keeps a readable stem of the original name and appends a random
// suffix so concurrent uploads of the same name do not collide.
func UniqueName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	stem := strings.TrimSuffix(strings.ToLower(filepath.Base(original)), ext)
	stem = strings.Trim(unsafeChars.ReplaceAllString(stem, "-"), "-")
	if len(stem) > 40 {
		stem = stem[:40]
	}
	if stem == "" {
		stem = "file"
	}
	return stem + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12] + ext
}
