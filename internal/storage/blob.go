package storage

import "io"

// BlobStore keeps the raw bytes of uploaded source files so a material can
// be re-extracted later without a re-upload.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	Delete(key string) error
}
