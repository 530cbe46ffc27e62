package modules

import (
	"context"
	"mime/multipart"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
)

// FormFiles returns the files posted under field, or nil when the request is
// not multipart.
func FormFiles(c *fiber.Ctx, field string) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	return form.File[field]
}

// FormFile returns the first file posted under field, or nil.
func FormFile(c *fiber.Ctx, field string) *multipart.FileHeader {
	files := FormFiles(c, field)
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

// SaveImages validates every file before writing any, then stores them in
// order. If one write fails the files already written are removed.
func SaveImages(ctx context.Context, store storage.Storage, folder, field string, files []*multipart.FileHeader) ([]string, error) {
	for _, f := range files {
		if err := storage.ValidateImage(field, f); err != nil {
			return nil, err
		}
	}
	urls := make([]string, 0, len(files))
	for _, f := range files {
		url, err := store.Save(ctx, folder, f)
		if err != nil {
			DiscardFiles(ctx, store, urls)
			return nil, err
		}
		metrics.Uploads.WithLabelValues(folder).Inc()
		urls = append(urls, url)
	}
	return urls, nil
}

// SaveImage stores a single image. A nil file with required=false yields "".
func SaveImage(ctx context.Context, store storage.Storage, folder, field string, file *multipart.FileHeader, required bool) (string, error) {
	if file == nil {
		if required {
			return "", apperr.Invalid(field, "file is required")
		}
		return "", nil
	}
	urls, err := SaveImages(ctx, store, folder, field, []*multipart.FileHeader{file})
	if err != nil {
		return "", err
	}
	return urls[0], nil
}

// DiscardFiles removes uploads written for a request that then failed.
func DiscardFiles(ctx context.Context, store storage.Storage, urls []string) {
	for _, url := range urls {
		DeleteFile(ctx, store, url)
	}
}
