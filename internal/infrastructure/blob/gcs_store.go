package blob

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/go-ddd-board/internal/domain/repository"
	"github.com/oksasatya/go-ddd-board/pkg/helpers"
)

// GCSStore keeps blobs as objects in one bucket. Objects are private and
// served back through the download endpoints.
type GCSStore struct {
	client *storage.Client
	bucket string
}

func NewGCSStore(client *storage.Client, bucket string) *GCSStore {
	return &GCSStore{client: client, bucket: bucket}
}

func (s *GCSStore) Put(ctx context.Context, name string, r io.Reader) (int64, error) {
	name, err := cleanName(name)
	if err != nil {
		return 0, err
	}
	return helpers.UploadObject(ctx, s.client, s.bucket, name, "", r)
}

func (s *GCSStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	rc, err := s.client.Bucket(s.bucket).Object(name).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, repository.ErrBlobNotExist
	}
	return rc, err
}

func (s *GCSStore) Exists(ctx context.Context, name string) (bool, error) {
	name, err := cleanName(name)
	if err != nil {
		return false, err
	}
	_, err = s.client.Bucket(s.bucket).Object(name).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	return err == nil, err
}

var _ repository.BlobStore = (*GCSStore)(nil)
