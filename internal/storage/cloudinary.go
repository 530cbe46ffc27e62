package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStorage stores uploads in Cloudinary instead of local disk.
type CloudinaryStorage struct {
	client  *cloudinary.Cloudinary
	root    string
	timeout time.Duration
}

func NewCloudinaryStorage(cloudinaryURL, root string) (*CloudinaryStorage, error) {
	client, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryStorage{client: client, root: root, timeout: 30 * time.Second}, nil
}

func (s *CloudinaryStorage) Save(ctx context.Context, folder string, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	name := UniqueName(file.Filename)
	overwrite := false
	result, err := s.client.Upload.Upload(ctx, src, uploader.UploadParams{
		Folder:       path.Join(s.root, folder),
		PublicID:     strings.TrimSuffix(name, path.Ext(name)),
		ResourceType: "image",
		Overwrite:    &overwrite,
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload failed: %w", err)
	}
	return result.SecureURL, nil
}

func (s *CloudinaryStorage) Delete(ctx context.Context, url string) error {
	publicID, ok := PublicIDFromURL(url)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("cloudinary destroy failed: %w", err)
	}
	return nil
}

// PublicIDFromURL extracts the Cloudinary public id from a delivery URL such
// as https://res.cloudinary.com/demo/image/upload/v1712/site/blog/a-1f.jpg.
func PublicIDFromURL(url string) (string, bool) {
	_, rest, found := strings.Cut(url, "/upload/")
	if !found || rest == "" {
		return "", false
	}
	segments := strings.Split(rest, "/")
	if len(segments) > 1 && isVersion(segments[0]) {
		segments = segments[1:]
	}
	id := strings.Join(segments, "/")
	id = strings.TrimSuffix(id, path.Ext(id))
	return id, id != ""
}

func isVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
