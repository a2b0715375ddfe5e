package filestorage

import "mime/multipart"

// FileStorage defines the interface for certificate artifact storage. The
// returned reference is opaque to callers; they store and serve it verbatim.
type FileStorage interface {
	// SaveFile saves a file and returns an opaque reference to it
	SaveFile(fileHeader *multipart.FileHeader) (string, error)

	// DeleteFile removes a previously stored file by its reference
	DeleteFile(ref string) error
}
