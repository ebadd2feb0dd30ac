package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"realtycore/internal/blob"
	blobfs "realtycore/internal/infra/blob/fs"
	blobmem "realtycore/internal/infra/blob/memory"
	blobs3 "realtycore/internal/infra/blob/s3"
)

// Environment variables controlling blob driver selection.
const (
	EnvBlobDriver      = "REALTYCORE_BLOB_DRIVER"
	EnvBlobFSRoot      = "REALTYCORE_BLOB_FS_ROOT"
	EnvBlobS3Bucket    = "REALTYCORE_BLOB_S3_BUCKET"
	EnvBlobS3Region    = "REALTYCORE_BLOB_S3_REGION"
	EnvBlobS3Endpoint  = "REALTYCORE_BLOB_S3_ENDPOINT"
	EnvBlobS3PathStyle = "REALTYCORE_BLOB_S3_PATH_STYLE"
)

// OpenBlobStore selects a blob backend from the environment. An unset driver
// yields the filesystem store.
func OpenBlobStore(ctx context.Context) (blob.Store, error) {
	driver := strings.ToLower(strings.TrimSpace(os.Getenv(EnvBlobDriver)))
	switch blob.Driver(driver) {
	case "", blob.DriverFilesystem:
		return blobfs.New(os.Getenv(EnvBlobFSRoot))
	case blob.DriverS3:
		bucket := os.Getenv(EnvBlobS3Bucket)
		if bucket == "" {
			return nil, fmt.Errorf("%s required for s3 driver", EnvBlobS3Bucket)
		}
		return blobs3.New(ctx, blobs3.Config{
			Bucket:    bucket,
			Region:    os.Getenv(EnvBlobS3Region),
			Endpoint:  os.Getenv(EnvBlobS3Endpoint),
			PathStyle: strings.EqualFold(os.Getenv(EnvBlobS3PathStyle), "true"),
		})
	case blob.DriverMemory:
		return blobmem.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", driver)
	}
}

// WithBlobStore attaches an object store for property media.
func WithBlobStore(store blob.Store) Option {
	return func(s *Service) {
		s.blobs = store
	}
}

// AttachPropertyImage uploads an image for a property and appends the stored
// blob's URL to the listing's image list. The property must exist before the
// upload starts; a failed upload leaves the listing untouched.
func (s *Service) AttachPropertyImage(ctx context.Context, propertyID, filename string, r io.Reader, opts blob.PutOptions) (Property, blob.Info, error) {
	if s.blobs == nil {
		return Property{}, blob.Info{}, fmt.Errorf("no blob store configured")
	}
	property, err := s.GetProperty(ctx, propertyID)
	if err != nil {
		return Property{}, blob.Info{}, err
	}

	key := fmt.Sprintf("properties/%s/%s", propertyID, filename)
	info, err := s.blobs.Put(ctx, key, r, opts)
	if err != nil {
		s.notify(EntityProperty, ActionUpdate, propertyID, err, "", "failed to attach image")
		return Property{}, blob.Info{}, fmt.Errorf("store image: %w", err)
	}

	images := append(append([]string(nil), property.Images...), info.URL)
	updated, err := s.UpdateProperty(ctx, propertyID, PropertyPatch{Images: &images})
	if err != nil {
		return Property{}, blob.Info{}, err
	}
	return updated, info, nil
}

// ListPropertyImages returns the stored blobs attached to a property.
func (s *Service) ListPropertyImages(ctx context.Context, propertyID string) ([]blob.Info, error) {
	if s.blobs == nil {
		return nil, fmt.Errorf("no blob store configured")
	}
	if _, err := s.GetProperty(ctx, propertyID); err != nil {
		return nil, err
	}
	return s.blobs.List(ctx, "properties/"+propertyID+"/")
}
