package repository

import (
	"context"
	"errors"
	"io"
)

var ErrBlobNotExist = errors.New("blob does not exist")

// BlobStore holds attachment bytes addressed by a slash-separated path.
type BlobStore interface {
	Put(ctx context.Context, name string, r io.Reader) (int64, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Exists(ctx context.Context, name string) (bool, error)
}
